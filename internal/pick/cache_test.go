/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import (
	"testing"
)

func TestCache_WindowsAreStacked(t *testing.T) {
	c := NewCache()
	c.begin()
	defer c.end()

	outer := container("outer", box("o1", 0, 0, 1, 1), box("o2", 0, 0, 1, 1))
	inner := container("inner", box("i1", 0, 0, 1, 1))

	l1, m1, err := c.fetch(outer, nil)
	if err != nil || m1 != 0 || len(l1) != 2 {
		t.Fatalf("outer fetch: len=%d mark=%d err=%v", len(l1), m1, err)
	}
	l2, m2, err := c.fetch(inner, nil)
	if err != nil || m2 != 2 || len(l2) != 1 {
		t.Fatalf("inner fetch: len=%d mark=%d err=%v", len(l2), m2, err)
	}
	if cap(l1) != len(l1) {
		t.Fatalf("outer window must be capped, cap=%d", cap(l1))
	}
	c.release(m2)
	if nameOf(l1[0]) != "o1" || nameOf(l1[1]) != "o2" {
		t.Fatalf("outer window corrupted: %s %s", nameOf(l1[0]), nameOf(l1[1]))
	}
	c.release(m1)
	if len(c.buf) != 0 {
		t.Fatalf("buffer not truncated, len=%d", len(c.buf))
	}
}

func TestCache_NestedFetchGetsFreshSlice(t *testing.T) {
	c := NewCache()
	c.begin()
	defer c.end()

	inner := container("inner", box("i1", 0, 0, 1, 1))
	var nestedMark int
	var nested bool
	host := container("host", box("h1", 0, 0, 1, 1))
	host.onList = func(*Context) {
		nested = c.Nested()
		_, nestedMark, _ = c.fetch(inner, nil)
	}

	list, mark, err := c.fetch(host, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !nested || nestedMark != -1 {
		t.Fatalf("nested fetch should bypass the buffer: nested=%v mark=%d", nested, nestedMark)
	}
	if len(list) != 1 || nameOf(list[0]) != "h1" {
		t.Fatalf("host list = %d entries", len(list))
	}
	c.release(mark)
}

func TestCache_NestedQueryDuringWalk(t *testing.T) {
	// The side tree is queried from inside the main tree's pick list provider.
	sideHit := box("side-hit", 0, 0, 10, 10)
	side := container("side", box("side-other", 100, 100, 10, 10), sideHit)

	target := box("target", 0, 0, 10, 10)
	host := container("host", box("below", 0, 0, 10, 10), target)
	root := container("root", box("sibling", 500, 500, 10, 10), host)

	var nestedResult Component
	host.onList = func(ctx *Context) {
		nc := NewPointContext(side, 5, 5, 1)
		nc.Cache = ctx.Cache
		nestedResult = Point(nc)
	}

	ctx := NewPointContext(root, 5, 5, 1)
	ctx.Cache = NewCache()
	got := Point(ctx)
	if got != target {
		t.Fatalf("outer query = %s, want target", nameOf(got))
	}
	if nestedResult != sideHit {
		t.Fatalf("nested query = %s, want side-hit", nameOf(nestedResult))
	}
	if ctx.Cache.active != 0 || ctx.Cache.fetching || len(ctx.Cache.buf) != 0 {
		t.Fatalf("cache not unwound: active=%d fetching=%v len=%d",
			ctx.Cache.active, ctx.Cache.fetching, len(ctx.Cache.buf))
	}
}

func TestCache_ReusedAcrossQueries(t *testing.T) {
	a := box("a", 0, 0, 10, 10)
	b := box("b", 20, 0, 10, 10)
	root := container("root", a, b)
	cache := NewCache()
	for i := 0; i < 3; i++ {
		ctx := NewPointContext(root, 25, 5, 1)
		ctx.Cache = cache
		if got := Point(ctx); got != b {
			t.Fatalf("run %d: got %s", i, nameOf(got))
		}
	}
}
