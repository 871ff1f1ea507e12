/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import "fmt"

// Cache is the scratch buffer pick lists are fetched into. Each traversal
// level appends its list to the end of the buffer, walks its own window and
// truncates on the way out, so one buffer serves a whole walk without
// per-node allocation.
//
// A PickList implementation may itself run a nested query. While a fetch is in
// progress the buffer tail is owned by that fetch, so a nested fetch gets a
// fresh slice instead.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	buf      []Component
	fetching bool
	active   int
}

// NewCache returns a cache with a small preallocated buffer.
func NewCache() *Cache { return &Cache{buf: make([]Component, 0, 64)} }

// begin marks the start of a traversal; the outermost one resets the buffer.
func (c *Cache) begin() {
	if c.active == 0 && !c.fetching {
		clear(c.buf[:cap(c.buf)])
		c.buf = c.buf[:0]
	}
	c.active++
}

func (c *Cache) end() { c.active-- }

// fetch returns comp's pick list. The mark must be handed back to release
// once the caller is done with the list; -1 marks a list outside the buffer.
func (c *Cache) fetch(comp Component, ctx *Context) (list []Component, mark int, err error) {
	if c.fetching {
		list, err = pickList(comp, ctx, nil)
		return list, -1, err
	}
	mark = len(c.buf)
	c.fetching = true
	buf, err := pickList(comp, ctx, c.buf)
	c.fetching = false
	if err != nil || len(buf) < mark {
		c.buf = c.buf[:mark]
		if err == nil {
			err = fmt.Errorf("pick list dropped %d buffered entries", mark-len(buf))
		}
		return nil, -1, err
	}
	c.buf = buf
	// Cap the window so nothing appended later can write into it.
	return buf[mark:len(buf):len(buf)], mark, nil
}

func (c *Cache) release(mark int) {
	if mark >= 0 && mark <= len(c.buf) {
		c.buf = c.buf[:mark]
	}
}

// Nested reports whether a fetch is currently in progress.
func (c *Cache) Nested() bool { return c.fetching }

// pickList fetches comp's pick list, turning a panic in the provider into an error.
func pickList(comp Component, ctx *Context, buf []Component) (list []Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			list, err = nil, fmt.Errorf("pick list panicked: %v", r)
		}
	}()
	if pl, ok := comp.(PickLister); ok {
		return pl.PickList(ctx, buf)
	}
	return append(buf, comp.Children()...), nil
}
