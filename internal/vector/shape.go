/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Shape is a hit area expressed in a node's zero-coordinate space.
// DistanceSq reports 0 when p lies inside the shape, otherwise the squared
// distance from p to the shape's outline. A shape with no geometry reports -1.
type Shape interface {
	Bounds() Rect
	DistanceSq(p Pt) float64
}

// RectShape is an axis-aligned rectangle.
type RectShape struct{ Rect Rect }

func (s RectShape) Bounds() Rect { return s.Rect }

func (s RectShape) DistanceSq(p Pt) float64 {
	if s.Rect.W < 0 || s.Rect.H < 0 {
		return -1
	}
	return s.Rect.DistanceSq(p)
}

// RoundedRectShape uses a uniform corner radius. Its outline is the core
// rectangle (inset by the radius) grown by a disk of that radius.
type RoundedRectShape struct {
	Rect   Rect
	Radius float64
}

func (s RoundedRectShape) Bounds() Rect { return s.Rect }

func (s RoundedRectShape) DistanceSq(p Pt) float64 {
	if s.Rect.W < 0 || s.Rect.H < 0 {
		return -1
	}
	r := max(0, min(s.Radius, s.Rect.W/2, s.Rect.H/2))
	core := s.Rect.Inset(r, r)
	d := math.Sqrt(core.DistanceSq(p)) - r
	if d <= 0 {
		return 0
	}
	return d * d
}

// EllipseShape is the ellipse inscribed in Rect.
type EllipseShape struct{ Rect Rect }

func (s EllipseShape) Bounds() Rect { return s.Rect }

func (s EllipseShape) DistanceSq(p Pt) float64 {
	rx := s.Rect.W / 2
	ry := s.Rect.H / 2
	if rx <= 0 || ry <= 0 {
		return -1
	}
	c := s.Rect.Center()
	dx := p.X - c.X
	dy := p.Y - c.Y
	// point-in-ellipse: ((x-cx)/rx)^2 + ((y-cy)/ry)^2 <= 1
	k := (dx/rx)*(dx/rx) + (dy/ry)*(dy/ry)
	if k <= 1 {
		return 0
	}
	// Radial approximation: the outline point on the ray from the center through p.
	t := 1 / math.Sqrt(k)
	ex := dx - t*dx
	ey := dy - t*dy
	return ex*ex + ey*ey
}

// StrokeShape is a stroked open or closed path, e.g. a link line. Only the
// stroke itself is solid; the enclosed area is not.
type StrokeShape struct {
	Path  Path
	Width float64
}

func (s StrokeShape) Bounds() Rect {
	hw := s.Width / 2
	return s.Path.Bounds().Inset(-hw, -hw)
}

func (s StrokeShape) DistanceSq(p Pt) float64 {
	d2 := s.Path.DistanceSq(p)
	if d2 < 0 {
		return -1
	}
	d := math.Sqrt(d2) - s.Width/2
	if d <= 0 {
		return 0
	}
	return d * d
}

// Everywhere is a shape that contains every point, used for canvas backgrounds.
type Everywhere struct{}

func (Everywhere) Bounds() Rect { return Rect{X: -math.MaxFloat64 / 4, Y: -math.MaxFloat64 / 4, W: math.MaxFloat64 / 2, H: math.MaxFloat64 / 2} }

func (Everywhere) DistanceSq(Pt) float64 { return 0 }

// Nowhere is a shape that is never hit, used for pure containers.
type Nowhere struct{}

func (Nowhere) Bounds() Rect { return Rect{} }

func (Nowhere) DistanceSq(Pt) float64 { return -1 }
