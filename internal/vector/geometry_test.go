/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestRectIntersects(t *testing.T) {
	a := R(0, 0, 10, 10)
	cases := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlap", R(5, 5, 10, 10), true},
		{"inside", R(2, 2, 1, 1), true},
		{"touching edge", R(10, 0, 5, 5), false},
		{"apart", R(20, 20, 5, 5), false},
	}
	for _, tc := range cases {
		if got := a.Intersects(tc.b); got != tc.want {
			t.Errorf("%s: Intersects = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRectDistanceSq(t *testing.T) {
	r := R(0, 0, 10, 10)
	if d := r.DistanceSq(Pt{5, 5}); d != 0 {
		t.Fatalf("inside point distance = %v", d)
	}
	if d := r.DistanceSq(Pt{13, 14}); d != 25 { // 3-4-5 from the corner
		t.Fatalf("corner distance = %v, want 25", d)
	}
	if d := r.DistanceSq(Pt{-2, 5}); d != 4 {
		t.Fatalf("edge distance = %v, want 4", d)
	}
}

func TestRectUnionIgnoresEmpty(t *testing.T) {
	u := Rect{}.Union(R(1, 2, 3, 4))
	if u != R(1, 2, 3, 4) {
		t.Fatalf("unexpected union: %+v", u)
	}
	u = R(0, 0, 1, 1).Union(R(5, 5, 1, 1))
	if u != R(0, 0, 6, 6) {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	m := Translate(10, -4).Mul(Rotate(math.Pi / 6)).Mul(Scale(2, 0.5))
	inv, ok := m.Invert()
	if !ok {
		t.Fatalf("expected invertible matrix")
	}
	p := Pt{3, 7}
	q := inv.Apply(m.Apply(p))
	if math.Abs(q.X-p.X) > 1e-9 || math.Abs(q.Y-p.Y) > 1e-9 {
		t.Fatalf("round trip mismatch: %+v vs %+v", q, p)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Fatalf("singular matrix reported invertible")
	}
}

func TestAffineApplyRect(t *testing.T) {
	b := Translate(5, -3).ApplyRect(R(0, 0, 10, 20))
	if b.X != 5 || b.Y != -3 || b.W != 10 || b.H != 20 {
		t.Fatalf("unexpected transformed bounds: %+v", b)
	}
	b = Scale(2, 2).ApplyRect(R(1, 1, 2, 2))
	if b != R(2, 2, 4, 4) {
		t.Fatalf("unexpected scaled bounds: %+v", b)
	}
}
