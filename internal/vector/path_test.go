/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestPath_QuadAndCubic_Bounds(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.QuadTo(10, 10, 20, 0)
	p.CubicTo(30, -10, 40, 10, 50, 0)
	p.Close()

	b := p.Bounds()
	// Control points are included, so min/max reflect their extremes
	if b.X != 0 || b.Y != -10 || b.W != 50 || b.H != 20 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestPath_DistanceSqToPolyline(t *testing.T) {
	p := Polyline(Pt{0, 0}, Pt{100, 0}, Pt{100, 100})
	if d := p.DistanceSq(Pt{50, 0}); d != 0 {
		t.Fatalf("point on segment should have zero distance, got %v", d)
	}
	if d := p.DistanceSq(Pt{50, 3}); d != 9 {
		t.Fatalf("distance = %v, want 9", d)
	}
	if d := p.DistanceSq(Pt{104, 50}); d != 16 {
		t.Fatalf("distance to second leg = %v, want 16", d)
	}
}

func TestPath_DistanceSqClosedAndEmpty(t *testing.T) {
	var p Path
	if d := p.DistanceSq(Pt{1, 1}); d != -1 {
		t.Fatalf("empty path should report -1, got %v", d)
	}
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	p.Close()
	// nearest to the closing edge (10,10)->(0,0)
	if d := p.DistanceSq(Pt{2, 4}); d > 2.01 || d < 1.99 {
		t.Fatalf("distance to closing edge = %v, want 2", d)
	}
}

func TestPath_DistanceSqQuad(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.QuadTo(50, 100, 100, 0)
	// apex of the curve sits at (50, 50)
	d := p.DistanceSq(Pt{50, 50})
	if d > 1 {
		t.Fatalf("apex should be on the flattened curve, got %v", d)
	}
}
