/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands and stroke distance.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo  // quadratic bezier (cx, cy, x, y)
	CubicTo // cubic bezier (cx1, cy1, cx2, cy2, x, y)
	Close
)

// curveSteps is the number of line segments a bezier is flattened into for distance tests.
const curveSteps = 8

type PathCmd struct {
	Op   PathOp
	Data [6]float64 // enough for cubic; unused slots are zero
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Data: [6]float64{x, y}})
}
func (p *Path) LineTo(x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Data: [6]float64{x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: QuadTo, Data: [6]float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(cx1, cy1, cx2, cy2, x, y float64) {
	p.Cmds = append(p.Cmds, PathCmd{Op: CubicTo, Data: [6]float64{cx1, cy1, cx2, cy2, x, y}})
}
func (p *Path) Close() { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Polyline builds an open path through pts.
func Polyline(pts ...Pt) Path {
	var p Path
	for i, q := range pts {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
		} else {
			p.LineTo(q.X, q.Y)
		}
	}
	return p
}

// Bounds returns an axis-aligned bounding box of the path using the control
// points, which always contain the curve.
func (p *Path) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY float64
	add := func(x, y float64) {
		if first {
			minX, minY, maxX, maxY = x, y, x, y
			first = false
			return
		}
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo, LineTo:
			add(c.Data[0], c.Data[1])
		case QuadTo:
			add(c.Data[0], c.Data[1])
			add(c.Data[2], c.Data[3])
		case CubicTo:
			add(c.Data[0], c.Data[1])
			add(c.Data[2], c.Data[3])
			add(c.Data[4], c.Data[5])
		}
	}
	if first {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// DistanceSq returns the squared distance from q to the nearest point on the
// path outline. Curves are flattened; the result is -1 for an empty path.
func (p *Path) DistanceSq(q Pt) float64 {
	best := -1.0
	consider := func(a, b Pt) {
		d := segmentDistanceSq(q, a, b)
		if best < 0 || d < best {
			best = d
		}
	}
	var cur, start Pt
	for _, c := range p.Cmds {
		switch c.Op {
		case MoveTo:
			cur = Pt{c.Data[0], c.Data[1]}
			start = cur
			if best < 0 {
				consider(cur, cur)
			}
		case LineTo:
			next := Pt{c.Data[0], c.Data[1]}
			consider(cur, next)
			cur = next
		case QuadTo:
			c1, end := Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]}
			prev := cur
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				pt := Pt{
					X: u*u*cur.X + 2*u*t*c1.X + t*t*end.X,
					Y: u*u*cur.Y + 2*u*t*c1.Y + t*t*end.Y,
				}
				consider(prev, pt)
				prev = pt
			}
			cur = end
		case CubicTo:
			c1, c2, end := Pt{c.Data[0], c.Data[1]}, Pt{c.Data[2], c.Data[3]}, Pt{c.Data[4], c.Data[5]}
			prev := cur
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				pt := Pt{
					X: u*u*u*cur.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
					Y: u*u*u*cur.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
				}
				consider(prev, pt)
				prev = pt
			}
			cur = end
		case Close:
			consider(cur, start)
			cur = start
		}
	}
	return best
}
