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

	"github.com/jung-kurt/gofpdf"

	"scenepick/internal/scene"
	"scenepick/internal/vector"
	"scenepick/internal/version"
)

// RenderPDF writes s as a single-page PDF to path. Units are points, so one
// document unit maps to Options.Scale points.
func RenderPDF(path string, s *scene.Scene, o Options) error {
	o = o.withDefaults()
	items, v := layout(s, o)
	size := gofpdf.SizeType{Wd: max(v.w, 1), Ht: max(v.h, 1)}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    size,
		// Orientation follows the page size
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s pick rendering", s.Name), false)
	pdf.SetCreator("scenepick "+version.String(), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPageFormat("", size)

	setFillColor(pdf, o.Background)
	pdf.Rect(0, 0, size.Wd, size.Ht, "F")
	pdf.SetFont("Helvetica", "", 8)

	for _, it := range items {
		st := o.NodeStroke
		if it.muted {
			st.Color = vector.Muted
		}
		if it.picked {
			st = o.PickStroke
		}
		setDrawColor(pdf, st.Color)
		pdf.SetLineWidth(st.Width)
		r := v.rect(it.bounds)
		switch it.kind {
		case scene.KindGroup:
			pdf.SetDashPattern([]float64{4, 4}, 0)
			pdf.Rect(r.X, r.Y, r.W, r.H, "D")
			pdf.SetDashPattern([]float64{}, 0)
		case scene.KindLink:
			for i := 1; i < len(it.points); i++ {
				a, b := v.pt(it.points[i-1]), v.pt(it.points[i])
				pdf.Line(a.X, a.Y, b.X, b.Y)
			}
		case scene.KindEllipse:
			pdf.Ellipse(r.X+r.W/2, r.Y+r.H/2, r.W/2, r.H/2, 0, "D")
		case scene.KindIcon:
			setFillColor(pdf, st.Color)
			pdf.Rect(r.X, r.Y, r.W, r.H, "F")
		default:
			// Rounded corners are not drawn; the outline is the node's bounds.
			pdf.Rect(r.X, r.Y, r.W, r.H, "D")
		}
		if o.Labels && it.kind != scene.KindLink {
			setTextColor(pdf, st.Color)
			pdf.Text(r.X+3, r.Y+10, it.name)
		}
	}

	setDrawColor(pdf, o.QueryColor)
	pdf.SetLineWidth(1)
	if o.Rect != nil {
		r := v.rect(o.Rect.Normalize())
		pdf.Rect(r.X, r.Y, r.W, r.H, "D")
	}
	if o.Point != nil {
		p := v.pt(*o.Point)
		pdf.Line(p.X-6, p.Y, p.X+6, p.Y)
		pdf.Line(p.X, p.Y-6, p.X, p.Y+6)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
