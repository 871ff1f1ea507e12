/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"math"

	"scenepick/internal/pick"
	"scenepick/internal/vector"
)

// Node is a comparable handle to a node in a Scene. The zero Node is invalid.
type Node struct {
	s  *Scene
	id NodeID
}

var (
	_ pick.Component      = Node{}
	_ pick.PickLister     = Node{}
	_ pick.PickRedirector = Node{}
	_ pick.DefaultPicker  = Node{}
	_ pick.DropTargeter   = Node{}
	_ pick.Grouper        = Node{}
	_ pick.Overlay        = Node{}
	_ pick.PathwayMember  = Node{}
)

func (n Node) ID() NodeID             { return n.id }
func (n Node) Scene() *Scene          { return n.s }
func (n Node) Valid() bool            { return n.s != nil && n.s.valid(n.id) }
func (n Node) data() *node            { return &n.s.nodes[n.id] }
func (n Node) Name() string           { return n.data().name }
func (n Node) Kind() Kind             { return n.data().kind }
func (n Node) Flags() Flags           { return n.data().flags }
func (n Node) Has(f Flags) bool       { return n.data().flags&f != 0 }
func (n Node) Shape() vector.Shape    { return n.data().shape }
func (n Node) Local() vector.Affine2D { return n.data().local }

func (n Node) String() string {
	if !n.Valid() {
		return "<invalid>"
	}
	return n.Name()
}

// SetFlag sets or clears f.
func (n Node) SetFlag(f Flags, on bool) Node {
	if on {
		n.data().flags |= f
	} else {
		n.data().flags &^= f
	}
	return n
}

func (n Node) SetHidden(on bool) Node       { return n.SetFlag(Hidden, on) }
func (n Node) SetFiltered(on bool) Node     { return n.SetFlag(Filtered, on) }
func (n Node) SetSelected(on bool) Node     { return n.SetFlag(Selected, on) }
func (n Node) SetZoomedFocus(on bool) Node  { return n.SetFlag(ZoomedFocus, on) }
func (n Node) SetPathwayOwned(on bool) Node { return n.SetFlag(PathwayOwned, on) }
func (n Node) SetAbsorbChildPicks(on bool) Node {
	return n.SetFlag(AbsorbChildPicks, on)
}

// SetLayer assigns the node's layer.
func (n Node) SetLayer(layer int) Node { n.data().layer = layer; return n }

// SetTransform sets the mapping from the node's zero space to its parent's.
func (n Node) SetTransform(m vector.Affine2D) Node { n.data().local = m; return n }

// SetShape replaces the hit geometry. Groups keep having none.
func (n Node) SetShape(sh vector.Shape) Node {
	if sh == nil || n.Kind() == KindGroup {
		sh = vector.Nowhere{}
	}
	n.data().shape = sh
	return n
}

// ParentNode returns the parent handle and false for the root or a detached node.
func (n Node) ParentNode() (Node, bool) {
	p := n.data().parent
	if p == NoNode {
		return Node{}, false
	}
	return Node{s: n.s, id: p}, true
}

// Icon returns the overlay icon owned by n, if any.
func (n Node) Icon() (Node, bool) {
	i := n.data().icon
	if i == NoNode {
		return Node{}, false
	}
	return Node{s: n.s, id: i}, true
}

// MapTransform maps the node's zero space to document space.
func (n Node) MapTransform() vector.Affine2D {
	m := n.data().local
	p := n.data().parent
	for steps := 0; p != NoNode && steps < maxWalk; steps++ {
		pn := &n.s.nodes[p]
		m = pn.local.Mul(m)
		p = pn.parent
	}
	return m
}

// MapBounds returns the node's document-space bounds. A group's bounds are
// the union of its children's.
func (n Node) MapBounds() vector.Rect {
	return n.mapBounds(0)
}

func (n Node) mapBounds(depth int) vector.Rect {
	d := n.data()
	var b vector.Rect
	if r := d.shape.Bounds(); r != (vector.Rect{}) {
		b = n.MapTransform().ApplyRect(r)
	}
	if d.kind != KindGroup || depth > pick.MaxTraversalDepth {
		return b
	}
	for _, c := range d.children {
		b = b.Union(Node{s: n.s, id: c}.mapBounds(depth + 1))
	}
	return b
}

// Parent implements pick.Component.
func (n Node) Parent() pick.Component {
	if p, ok := n.ParentNode(); ok {
		return p
	}
	return nil
}

// Children implements pick.Component.
func (n Node) Children() []pick.Component {
	kids := n.data().children
	out := make([]pick.Component, 0, len(kids))
	for _, c := range kids {
		out = append(out, Node{s: n.s, id: c})
	}
	return out
}

// PickList appends the children followed by the overlay icon, so the icon is
// tested before anything else.
func (n Node) PickList(_ *pick.Context, buf []pick.Component) ([]pick.Component, error) {
	d := n.data()
	for _, c := range d.children {
		buf = append(buf, Node{s: n.s, id: c})
	}
	if d.icon != NoNode {
		buf = append(buf, Node{s: n.s, id: d.icon})
	}
	return buf, nil
}

func (n Node) HasPicks() bool {
	d := n.data()
	return len(d.children) > 0 || d.icon != NoNode
}

// TransformToZero maps a document point into zero space. A singular
// transform yields NaN coordinates, which never hit.
func (n Node) TransformToZero(p vector.Pt) vector.Pt {
	inv, ok := n.MapTransform().Invert()
	if !ok {
		return vector.Pt{X: math.NaN(), Y: math.NaN()}
	}
	return inv.Apply(p)
}

// PickDistance measures against the shape in zero space and scales a near
// miss back to squared document units.
func (n Node) PickDistance(zx, zy float64, _ *pick.Context) float64 {
	d := n.data().shape.DistanceSq(vector.Pt{X: zx, Y: zy})
	if d > 0 {
		s := n.MapTransform().ScaleFactor()
		d *= s * s
	}
	return d
}

func (n Node) Intersects(r vector.Rect) bool { return n.MapBounds().Intersects(r) }

func (n Node) IsDrawn() bool       { return !n.Has(Hidden) }
func (n Node) IsFiltered() bool    { return n.Has(Filtered) }
func (n Node) IsSelected() bool    { return n.Has(Selected) }
func (n Node) IsZoomedFocus() bool { return n.Has(ZoomedFocus) }
func (n Node) Layer() int          { return n.data().layer }
func (n Node) IsGroup() bool       { return n.Kind() == KindGroup }
func (n Node) IsPickOverlay() bool { return n.Kind() == KindIcon }
func (n Node) PathwayOwned() bool  { return n.Has(PathwayOwned) }

// PickChild reports n in place of a hit child when n absorbs child picks.
func (n Node) PickChild(_ *pick.Context, _ pick.Component) pick.Component {
	if n.Has(AbsorbChildPicks) {
		return n
	}
	return nil
}

// DefaultPick returns n, except for the canvas which never counts as a pick.
func (n Node) DefaultPick(_ *pick.Context) pick.Component {
	if n.Kind() == KindCanvas {
		return nil
	}
	return n
}

// DefaultDropTarget sends drops on links and icons to the node they belong
// to. Everything else, including the canvas, takes the drop itself.
func (n Node) DefaultDropTarget(_ *pick.Context) pick.Component {
	switch n.Kind() {
	case KindLink, KindIcon:
		if p, ok := n.ParentNode(); ok {
			return p
		}
	}
	return n
}
