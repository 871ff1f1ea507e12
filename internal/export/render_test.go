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
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenepick/internal/pick"
	"scenepick/internal/scene"
	"scenepick/internal/vector"
)

func sampleScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New("render test")
	g, err := s.AddGroup(0, "groupA")
	if err != nil {
		t.Fatal(err)
	}
	x, err := s.Add(g.ID(), "x", scene.KindRect, vector.RectShape{Rect: vector.R(0, 0, 50, 50)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(g.ID(), "y", scene.KindRounded, vector.RoundedRectShape{Rect: vector.R(100, 0, 50, 50), Radius: 6}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(0, "z", scene.KindEllipse, vector.EllipseShape{Rect: vector.R(200, 0, 60, 40)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(x.ID(), "x-link", scene.KindLink,
		vector.StrokeShape{Path: vector.Polyline(vector.Pt{X: 25, Y: 50}, vector.Pt{X: 125, Y: 50}), Width: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetIcon(x.ID(), "x-icon", vector.RectShape{Rect: vector.R(40, 0, 10, 10)}); err != nil {
		t.Fatal(err)
	}
	hidden, err := s.Add(0, "ghost", scene.KindRect, vector.RectShape{Rect: vector.R(1000, 1000, 10, 10)})
	if err != nil {
		t.Fatal(err)
	}
	hidden.SetHidden(true)
	return s
}

func pickedOptions(t *testing.T, s *scene.Scene) Options {
	t.Helper()
	pt := vector.Pt{X: 25, Y: 25}
	ctx := pick.NewPointContext(s.Root(), pt.X, pt.Y, 1)
	ctx.PickDepth = 1
	got := pick.Point(ctx)
	n, ok := got.(scene.Node)
	if !ok {
		t.Fatalf("expected a node pick, got %v", got)
	}
	return Options{Labels: true, Margin: 10, Picked: []scene.Node{n}, Point: &pt}
}

func TestLayout_FitsVisibleContent(t *testing.T) {
	s := sampleScene(t)
	items, v := layout(s, Options{Scale: 2, Margin: 10}.withDefaults())
	if len(items) != 6 {
		t.Fatalf("expected 6 drawable items (hidden skipped), got %d", len(items))
	}
	if v.origin != (vector.Pt{X: -10, Y: -10}) {
		t.Fatalf("origin = %+v", v.origin)
	}
	if v.w != 2*(260+20) || v.h != 2*(51+20) {
		t.Fatalf("view size = %gx%g", v.w, v.h)
	}
}

func TestRenderPNG(t *testing.T) {
	s := sampleScene(t)
	var buf bytes.Buffer
	if err := RenderPNG(&buf, s, pickedOptions(t, s)); err != nil {
		t.Fatalf("render png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 280 || b.Dy() != 71 {
		t.Fatalf("png size = %dx%d", b.Dx(), b.Dy())
	}
	// x is picked: its top-left corner (document 0,0 -> pixel 10,10) carries the highlight.
	r, g, bl, _ := img.At(10, 10).RGBA()
	want := toRGBA(vector.Highlight)
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(bl>>8) != want.B {
		t.Fatalf("pixel at picked corner = %d,%d,%d", r>>8, g>>8, bl>>8)
	}
}

func TestRenderSVG(t *testing.T) {
	s := sampleScene(t)
	var buf bytes.Buffer
	if err := RenderSVG(&buf, s, pickedOptions(t, s)); err != nil {
		t.Fatalf("render svg: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`id="x"`, `id="x-link"`, `<ellipse id="z"`, `stroke-dasharray`, `class="query"`, `>render test</title>`} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q", want)
		}
	}
	if strings.Contains(out, "ghost") {
		t.Fatalf("hidden node rendered")
	}
	if !strings.Contains(out, `id="x" x="10" y="10" width="50" height="50" rx="0" ry="0" fill="none" stroke="#e63c28"`) {
		t.Fatalf("picked node not highlighted:\n%s", out)
	}
}

func TestRenderFile_AllFormats(t *testing.T) {
	s := sampleScene(t)
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.svg", "nested/out.pdf"} {
		path := filepath.Join(dir, name)
		if err := RenderFile(path, s, pickedOptions(t, s)); err != nil {
			t.Fatalf("render %s: %v", name, err)
		}
		st, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("%s empty", name)
		}
	}
	if err := RenderFile(filepath.Join(dir, "out.gif"), s, Options{}); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestRenderPDF_Header(t *testing.T) {
	s := sampleScene(t)
	path := filepath.Join(t.TempDir(), "picks.pdf")
	o := pickedOptions(t, s)
	o.Rect = &vector.Rect{X: 0, Y: 0, W: 60, H: 60}
	if err := RenderPDF(path, s, o); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
}
