/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import (
	"log/slog"

	applog "scenepick/internal/log"
)

// MaxTraversalDepth bounds recursion below the query root. A deeper walk is
// taken to be a cycle in the tree and aborts the query.
const MaxTraversalDepth = 15

// Visitor supplies the predicates and the visit action for a Traversal.
//
// Accept gates the visit of a single node. AcceptTraversal gates the node's
// whole subtree; in post-order mode a rejected subtree also skips the node
// itself. AcceptChildren can refuse recursion while still allowing the visit.
type Visitor interface {
	Accept(c Component) bool
	AcceptTraversal(c Component) bool
	AcceptChildren(c Component) bool
	Visit(c Component)
}

// Traversal is a depth-first walk that visits children in reverse insertion
// order (topmost first), deferring a zoomed-focus child to the end of its
// siblings. Post-order is the default: children are visited before their parent.
type Traversal struct {
	PreOrder bool
	Context  *Context
	Cache    *Cache
	Logger   *slog.Logger

	depth   int
	done    bool
	aborted bool
}

// Depth is the current distance below the traversal root.
func (t *Traversal) Depth() int { return t.depth }

// Done reports whether the walk has been stopped.
func (t *Traversal) Done() bool { return t.done }

// Aborted reports whether the depth guard or another structural defect ended the walk.
func (t *Traversal) Aborted() bool { return t.aborted }

// Stop ends the walk after the current visit.
func (t *Traversal) Stop() { t.done = true }

// Traverse walks c and, subject to v's predicates, its descendants.
func (t *Traversal) Traverse(c Component, v Visitor) {
	if c == nil {
		return
	}
	if t.Cache == nil {
		t.Cache = NewCache()
	}
	t.Cache.begin()
	defer t.Cache.end()
	t.traverse(c, v)
}

func (t *Traversal) traverse(c Component, v Visitor) {
	if t.done {
		return
	}
	if t.depth > MaxTraversalDepth {
		t.aborted = true
		t.done = true
		t.logger().Warn("traversal depth exceeded; assuming cycle",
			slog.String("op", "traverse"), slog.Int("depth", t.depth))
		return
	}
	if !v.AcceptTraversal(c) {
		if t.PreOrder && v.Accept(c) {
			v.Visit(c)
		}
		return
	}
	if t.PreOrder && v.Accept(c) {
		v.Visit(c)
		if t.done {
			return
		}
	}
	if c.HasPicks() && v.AcceptChildren(c) {
		t.traverseChildren(c, v)
	}
	if !t.PreOrder && !t.done && v.Accept(c) {
		v.Visit(c)
	}
}

func (t *Traversal) traverseChildren(c Component, v Visitor) {
	list, mark, err := t.Cache.fetch(c, t.Context)
	if err != nil {
		t.logger().Warn("pick list unavailable; skipping subtree",
			slog.String("op", "pick_list"), slog.Int("depth", t.depth), slog.Any("err", err))
		return
	}
	defer t.Cache.release(mark)

	t.depth++
	defer func() { t.depth-- }()

	var focus Component
	for i := len(list) - 1; i >= 0 && !t.done; i-- {
		child := list[i]
		if child == nil {
			continue
		}
		if focus == nil && child.IsZoomedFocus() {
			focus = child
			continue
		}
		t.traverse(child, v)
	}
	if focus != nil && !t.done {
		t.traverse(focus, v)
	}
}

func (t *Traversal) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return applog.WithComponent("pick")
}
