/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import (
	"math"
	"testing"
)

func TestTolerance_Bands(t *testing.T) {
	tol := DefaultTolerance()
	tests := []struct {
		zoom, eff, distSq float64
	}{
		{0.25, 0.25, 1024},
		{0.5, 0.5, 256},
		{0, 1, 64},
		{-3, 1, 64},
		{1, 1, 64},
		{3.99, 1, 64},
		{4, 2, 16},
		{16, 2, 16},
	}
	for _, tc := range tests {
		if got := tol.EffectiveZoom(tc.zoom); got != tc.eff {
			t.Errorf("EffectiveZoom(%v) = %v, want %v", tc.zoom, got, tc.eff)
		}
		if got := tol.DistanceSq(tc.zoom); math.Abs(got-tc.distSq) > 1e-9 {
			t.Errorf("DistanceSq(%v) = %v, want %v", tc.zoom, got, tc.distSq)
		}
	}
}

func TestTolerance_ZeroValueUsesDefaults(t *testing.T) {
	var tol Tolerance
	if got := tol.DistanceSq(1); got != 64 {
		t.Fatalf("zero tolerance = %v, want default 64", got)
	}
}

func TestTolerance_CustomBands(t *testing.T) {
	tol := Tolerance{RadiusPx: 4, ZoomOutBelow: 0.5, ZoomInAt: 2, ZoomInFactor: 4}
	if got := tol.EffectiveZoom(0.75); got != 1 {
		t.Fatalf("0.75 should sit in the neutral band, got %v", got)
	}
	if got := tol.DistanceSq(2); got != 1 {
		t.Fatalf("DistanceSq(2) = %v, want 1", got)
	}
}
