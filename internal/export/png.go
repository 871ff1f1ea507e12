/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"scenepick/internal/scene"
	"scenepick/internal/vector"
)

// maxPNGSide caps the raster size so a huge scene cannot exhaust memory.
const maxPNGSide = 8192

// RenderPNG rasterizes s to w.
func RenderPNG(w io.Writer, s *scene.Scene, o Options) error {
	o = o.withDefaults()
	items, v := layout(s, o)
	pixW := int(math.Min(math.Max(v.w, 1), maxPNGSide))
	pixH := int(math.Min(math.Max(v.h, 1), maxPNGSide))

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(o.Background)}, image.Point{}, draw.Src)

	for _, it := range items {
		st := o.NodeStroke
		if it.muted {
			st.Color = vector.Muted
		}
		if it.picked {
			st = o.PickStroke
		}
		col := toRGBA(st.Color)
		width := max(1, int(math.Round(st.Width)))
		r := v.rect(it.bounds)
		switch it.kind {
		case scene.KindGroup:
			// Dashed outline keeps groups apart from the nodes they hold.
			dashRect(img, r, col)
		case scene.KindLink:
			for i := 1; i < len(it.points); i++ {
				drawLine(img, v.pt(it.points[i-1]), v.pt(it.points[i]), col, width)
			}
		case scene.KindEllipse:
			strokeEllipse(img, r, col, width)
		case scene.KindIcon:
			fillRect(img, rnd(r.X), rnd(r.Y), rnd(r.X+r.W)-1, rnd(r.Y+r.H)-1, col)
		default:
			for i := 0; i < width; i++ {
				strokeRect(img, rnd(r.X)+i, rnd(r.Y)+i, rnd(r.X+r.W)-1-i, rnd(r.Y+r.H)-1-i, col)
			}
		}
		if o.Labels && it.kind != scene.KindLink {
			drawLabel(img, rnd(r.X)+3, rnd(r.Y)+13, it.name, col)
		}
	}

	qc := toRGBA(o.QueryColor)
	if o.Rect != nil {
		r := v.rect(o.Rect.Normalize())
		strokeRect(img, rnd(r.X), rnd(r.Y), rnd(r.X+r.W)-1, rnd(r.Y+r.H)-1, qc)
	}
	if o.Point != nil {
		p := v.pt(*o.Point)
		drawLine(img, vector.Pt{X: p.X - 6, Y: p.Y}, vector.Pt{X: p.X + 6, Y: p.Y}, qc, 1)
		drawLine(img, vector.Pt{X: p.X, Y: p.Y - 6}, vector.Pt{X: p.X, Y: p.Y + 6}, qc, 1)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func rnd(f float64) int { return int(math.Round(f)) }

func toRGBA(c vector.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// setPx ignores points outside the image.
func setPx(img *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(img.Rect) {
		img.SetRGBA(x, y, col)
	}
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		setPx(img, x, y0, col)
		setPx(img, x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		setPx(img, x0, y, col)
		setPx(img, x1, y, col)
	}
}

func dashRect(img *image.RGBA, r vector.Rect, col color.RGBA) {
	x0, y0, x1, y1 := rnd(r.X), rnd(r.Y), rnd(r.X+r.W)-1, rnd(r.Y+r.H)-1
	for x := x0; x <= x1; x++ {
		if (x-x0)%8 < 4 {
			setPx(img, x, y0, col)
			setPx(img, x, y1, col)
		}
	}
	for y := y0; y <= y1; y++ {
		if (y-y0)%8 < 4 {
			setPx(img, x0, y, col)
			setPx(img, x1, y, col)
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			setPx(img, x, y, col)
		}
	}
}

// drawLine steps along the segment one pixel at a time, widening it with a square brush.
func drawLine(img *image.RGBA, a, b vector.Pt, col color.RGBA, width int) {
	steps := int(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)))
	half := width / 2
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x := rnd(a.X + (b.X-a.X)*t)
		y := rnd(a.Y + (b.Y-a.Y)*t)
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				setPx(img, x+dx, y+dy, col)
			}
		}
	}
}

func strokeEllipse(img *image.RGBA, r vector.Rect, col color.RGBA, width int) {
	c := r.Center()
	rx, ry := r.W/2, r.H/2
	n := max(16, int(math.Ceil(math.Pi*(rx+ry))))
	prev := vector.Pt{X: c.X + rx, Y: c.Y}
	for i := 1; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		p := vector.Pt{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)}
		drawLine(img, prev, p, col, width)
		prev = p
	}
}

// drawLabel renders text with the fixed 7x13 face; (x, y) is the baseline start.
func drawLabel(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
