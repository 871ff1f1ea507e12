/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import (
	"errors"

	"scenepick/internal/vector"
)

// fake is a minimal in-memory component used to drive the engine in tests.
// Shapes are given in document coordinates; offset shifts the zero space.
type fake struct {
	name   string
	parent *fake
	kids   []*fake
	extra  []*fake // synthetic entries appended to the pick list
	shape  vector.Shape
	offset vector.Pt

	hidden, filtered, selected, focus bool
	group, overlay, pathway           bool
	layer                             int

	redirectTo *fake
	defPick    func(ctx *Context) Component
	dropTarget func(ctx *Context) Component
	listErr    error
	listPanic  bool
	onList     func(ctx *Context)

	distCalls int
}

func leaf(name string, shape vector.Shape) *fake { return &fake{name: name, shape: shape} }

func box(name string, x, y, w, h float64) *fake {
	return leaf(name, vector.RectShape{Rect: vector.R(x, y, w, h)})
}

func container(name string, kids ...*fake) *fake {
	f := &fake{name: name, shape: vector.Nowhere{}}
	add(f, kids...)
	return f
}

func group(name string, kids ...*fake) *fake {
	f := container(name, kids...)
	f.group = true
	return f
}

func add(parent *fake, kids ...*fake) *fake {
	for _, k := range kids {
		k.parent = parent
		parent.kids = append(parent.kids, k)
	}
	return parent
}

func (f *fake) String() string { return f.name }

func (f *fake) Parent() Component {
	if f.parent == nil {
		return nil
	}
	return f.parent
}

func (f *fake) Children() []Component {
	out := make([]Component, 0, len(f.kids))
	for _, k := range f.kids {
		out = append(out, k)
	}
	return out
}

func (f *fake) PickList(ctx *Context, buf []Component) ([]Component, error) {
	if f.onList != nil {
		f.onList(ctx)
	}
	if f.listPanic {
		panic("pick list exploded")
	}
	if f.listErr != nil {
		return buf, f.listErr
	}
	for _, k := range f.kids {
		buf = append(buf, k)
	}
	for _, k := range f.extra {
		buf = append(buf, k)
	}
	return buf, nil
}

func (f *fake) TransformToZero(p vector.Pt) vector.Pt {
	return vector.Pt{X: p.X - f.offset.X, Y: p.Y - f.offset.Y}
}

func (f *fake) PickDistance(zx, zy float64, _ *Context) float64 {
	f.distCalls++
	return f.shape.DistanceSq(vector.Pt{X: zx + f.offset.X, Y: zy + f.offset.Y})
}

func (f *fake) bounds() vector.Rect {
	b := f.shape.Bounds()
	for _, k := range f.kids {
		b = b.Union(k.bounds())
	}
	return b
}

func (f *fake) Intersects(r vector.Rect) bool { return f.bounds().Intersects(r) }
func (f *fake) IsDrawn() bool                 { return !f.hidden }
func (f *fake) IsFiltered() bool              { return f.filtered }
func (f *fake) IsSelected() bool              { return f.selected }
func (f *fake) IsZoomedFocus() bool           { return f.focus }
func (f *fake) Layer() int                    { return f.layer }
func (f *fake) HasPicks() bool {
	return len(f.kids) > 0 || len(f.extra) > 0 || f.listErr != nil || f.listPanic || f.onList != nil
}
func (f *fake) IsGroup() bool       { return f.group }
func (f *fake) IsPickOverlay() bool { return f.overlay }
func (f *fake) PathwayOwned() bool  { return f.pathway }

func (f *fake) PickChild(_ *Context, _ Component) Component {
	if f.redirectTo == nil {
		return nil
	}
	return f.redirectTo
}

func (f *fake) DefaultPick(ctx *Context) Component {
	if f.defPick != nil {
		return f.defPick(ctx)
	}
	return f
}

func (f *fake) DefaultDropTarget(ctx *Context) Component {
	if f.dropTarget != nil {
		return f.dropTarget(ctx)
	}
	return f
}

var errBrokenList = errors.New("broken pick list")

// nameOf renders a pick result for failure messages.
func nameOf(c Component) string {
	if c == nil {
		return "<nil>"
	}
	if f, ok := c.(*fake); ok {
		return f.name
	}
	return "<other>"
}
