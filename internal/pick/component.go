/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import "scenepick/internal/vector"

// Distance sentinels returned by Component.PickDistance.
const (
	DirectHit = 0.0
	Miss      = -1.0
)

// Component is the view of a scene node the pick engine works against.
// Implementations own their tree; the engine only reads it.
type Component interface {
	// Parent returns the enclosing component, or nil at the top of the tree.
	Parent() Component
	// Children returns the children in insertion order (last is topmost).
	Children() []Component
	// TransformToZero maps a document point into the component's zero-coordinate space.
	TransformToZero(p vector.Pt) vector.Pt
	// PickDistance reports DirectHit, Miss or a positive squared distance to
	// the hit area for a point in zero-coordinate space.
	PickDistance(zx, zy float64, ctx *Context) float64
	// Intersects tests the component's document-space bounds against r.
	Intersects(r vector.Rect) bool

	IsDrawn() bool
	IsFiltered() bool
	IsSelected() bool
	IsZoomedFocus() bool
	Layer() int
	// HasPicks is a cheap check for whether the pick list could be non-empty.
	HasPicks() bool
}

// PickLister lets a component substitute or extend its children for picking,
// e.g. to append a synthetic overlay icon. Entries are appended to buf.
type PickLister interface {
	PickList(ctx *Context, buf []Component) ([]Component, error)
}

// PickRedirector lets a parent report something else in place of a child hit.
// Returning nil keeps the child.
type PickRedirector interface {
	PickChild(ctx *Context, hit Component) Component
}

// DefaultPicker substitutes the final pick. Returning nil means nothing is picked.
type DefaultPicker interface {
	DefaultPick(ctx *Context) Component
}

// DropTargeter chooses the component that receives a drop aimed at it.
type DropTargeter interface {
	DefaultDropTarget(ctx *Context) Component
}

// Grouper marks group-type components that take part in pick-depth indirection.
type Grouper interface {
	IsGroup() bool
}

// Overlay marks synthetic targets (slide icons and the like) that are returned
// as soon as they are hit.
type Overlay interface {
	IsPickOverlay() bool
}

// PathwayMember marks components owned by a pathway overlay; their contents
// are only pickable when the component itself is the query root.
type PathwayMember interface {
	PathwayOwned() bool
}

// Acceptor is a caller-supplied eligibility predicate.
type Acceptor func(c Component) bool

func isGroup(c Component) bool {
	g, ok := c.(Grouper)
	return ok && g.IsGroup()
}

func isOverlay(c Component) bool {
	o, ok := c.(Overlay)
	return ok && o.IsPickOverlay()
}

func isPathwayOwned(c Component) bool {
	p, ok := c.(PathwayMember)
	return ok && p.PathwayOwned()
}

// maxAncestorSteps bounds every upward walk so that a parent cycle cannot hang a query.
const maxAncestorSteps = MaxTraversalDepth + 1

// IsDescendant reports whether c lies strictly below ancestor. The walk gives
// up after maxAncestorSteps parents and reports false.
func IsDescendant(c, ancestor Component) bool {
	if c == nil || ancestor == nil {
		return false
	}
	p := c.Parent()
	for i := 0; p != nil && i < maxAncestorSteps; i++ {
		if p == ancestor {
			return true
		}
		p = p.Parent()
	}
	return false
}

// withinRoot reports whether c is the root or one of its descendants.
func withinRoot(c, root Component) bool {
	return c == root || IsDescendant(c, root)
}
