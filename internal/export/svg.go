/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"scenepick/internal/scene"
	"scenepick/internal/vector"
)

// RenderSVG writes s as a standalone SVG document to w.
func RenderSVG(w io.Writer, s *scene.Scene, o Options) error {
	o = o.withDefaults()
	items, v := layout(s, o)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", v.w, v.h, v.w, v.h)
	wf("  <title>%s</title>\n", escText(s.Name))
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", v.w, v.h, svgColor(o.Background))

	for _, it := range items {
		st := o.NodeStroke
		if it.muted {
			st.Color = vector.Muted
		}
		if it.picked {
			st = o.PickStroke
		}
		sc := svgColor(st.Color)
		r := v.rect(it.bounds)
		id := escAttr(it.name)
		switch it.kind {
		case scene.KindGroup:
			wf("  <rect id=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\" stroke-dasharray=\"4 4\"/>\n", id, r.X, r.Y, r.W, r.H, sc, st.Width)
		case scene.KindLink:
			pts := make([]string, 0, len(it.points))
			for _, p := range it.points {
				q := v.pt(p)
				pts = append(pts, fmt.Sprintf("%g,%g", q.X, q.Y))
			}
			wf("  <polyline id=\"%s\" points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", id, strings.Join(pts, " "), sc, st.Width)
		case scene.KindEllipse:
			wf("  <ellipse id=\"%s\" cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", id, r.X+r.W/2, r.Y+r.H/2, r.W/2, r.H/2, sc, st.Width)
		case scene.KindIcon:
			wf("  <rect id=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", id, r.X, r.Y, r.W, r.H, sc)
		default:
			rad := it.radius * v.scale
			wf("  <rect id=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"%g\" ry=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", id, r.X, r.Y, r.W, r.H, rad, rad, sc, st.Width)
		}
		if o.Labels && it.kind != scene.KindLink {
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"10\" fill=\"%s\">%s</text>\n", r.X+3, r.Y+12, sc, escText(it.name))
		}
	}

	qc := svgColor(o.QueryColor)
	if o.Rect != nil {
		r := v.rect(o.Rect.Normalize())
		wf("  <rect class=\"query\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"/>\n", r.X, r.Y, r.W, r.H, qc)
	}
	if o.Point != nil {
		p := v.pt(*o.Point)
		wf("  <path class=\"query\" d=\"M%g %gH%gM%g %gV%g\" stroke=\"%s\" stroke-width=\"1\"/>\n", p.X-6, p.Y, p.X+6, p.X, p.Y-6, p.Y+6, qc)
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c vector.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for node names
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
