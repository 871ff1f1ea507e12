/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders scenes with pick results for inspection. Nodes are
// drawn at their document bounds, picked nodes are highlighted and the query
// point or rectangle is marked.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"scenepick/internal/scene"
	"scenepick/internal/vector"
)

// Options controls a rendering. Zero-valued styles get defaults.
//
//nolint:revive // clarity is preferred
type Options struct {
	// Scale is output units per document unit; 0 means 1.
	Scale float64
	// Margin is added around the content, in document units.
	Margin float64
	Labels bool

	Picked []scene.Node
	Point  *vector.Pt
	Rect   *vector.Rect

	NodeStroke vector.Stroke
	PickStroke vector.Stroke
	QueryColor vector.Color
	Background vector.Color
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.NodeStroke.Width == 0 {
		o.NodeStroke = vector.Stroke{Color: vector.Black, Width: 1}
	}
	if o.PickStroke.Width == 0 {
		o.PickStroke = vector.Stroke{Color: vector.Highlight, Width: 3}
	}
	if o.QueryColor.IsZero() {
		o.QueryColor = vector.QueryMark
	}
	if o.Background.IsZero() {
		o.Background = vector.White
	}
	return o
}

// item is one drawable node in document coordinates.
type item struct {
	name   string
	kind   scene.Kind
	bounds vector.Rect
	radius float64
	points []vector.Pt // links only
	picked bool
	muted  bool
}

// view maps document coordinates into the output.
type view struct {
	origin vector.Pt
	scale  float64
	w, h   float64 // output size
}

func (v view) pt(p vector.Pt) vector.Pt {
	return vector.Pt{X: (p.X - v.origin.X) * v.scale, Y: (p.Y - v.origin.Y) * v.scale}
}

func (v view) rect(r vector.Rect) vector.Rect {
	p := v.pt(r.Min())
	return vector.Rect{X: p.X, Y: p.Y, W: r.W * v.scale, H: r.H * v.scale}
}

// layout collects the drawable items in paint order and fits the view around
// them and the query marks.
func layout(s *scene.Scene, o Options) ([]item, view) {
	picked := make(map[scene.NodeID]bool, len(o.Picked))
	for _, n := range o.Picked {
		picked[n.ID()] = true
	}
	var items []item
	var content vector.Rect
	s.Walk(func(n scene.Node, depth int) bool {
		if depth == 0 {
			return true
		}
		if !n.IsDrawn() {
			return false
		}
		it := item{name: n.Name(), kind: n.Kind(), bounds: n.MapBounds(), picked: picked[n.ID()], muted: n.IsFiltered()}
		switch sh := n.Shape().(type) {
		case vector.RoundedRectShape:
			it.radius = sh.Radius * n.MapTransform().ScaleFactor()
		case vector.StrokeShape:
			m := n.MapTransform()
			for _, c := range sh.Path.Cmds {
				if c.Op == vector.MoveTo || c.Op == vector.LineTo {
					it.points = append(it.points, m.Apply(vector.Pt{X: c.Data[0], Y: c.Data[1]}))
				}
			}
		}
		content = content.Union(it.bounds)
		items = append(items, it)
		return true
	})
	if o.Point != nil {
		content = content.Union(vector.Rect{X: o.Point.X - 1, Y: o.Point.Y - 1, W: 2, H: 2})
	}
	if o.Rect != nil {
		content = content.Union(o.Rect.Normalize())
	}
	if content == (vector.Rect{}) {
		content = vector.R(0, 0, 100, 100)
	}
	content = content.Inset(-o.Margin, -o.Margin)
	return items, view{
		origin: content.Min(),
		scale:  o.Scale,
		w:      math.Ceil(content.W * o.Scale),
		h:      math.Ceil(content.H * o.Scale),
	}
}

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}

// RenderFile renders s to path in the format given by its extension.
func RenderFile(path string, s *scene.Scene, o Options) error {
	if s == nil {
		return fmt.Errorf("scene is nil")
	}
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if f == FormatPDF {
		return RenderPDF(path, s, o)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	if f == FormatPNG {
		err = RenderPNG(out, s, o)
	} else {
		err = RenderSVG(out, s, o)
	}
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", f, cerr)
	}
	return err
}
