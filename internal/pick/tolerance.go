/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

// Tolerance controls how close a near miss must be to count as a pick.
// The slack is RadiusPx screen pixels converted to document units through an
// effective zoom that changes in bands:
//
//	zoom <  ZoomOutBelow             effective = zoom (slack grows as you zoom out)
//	ZoomOutBelow <= zoom < ZoomInAt  effective = 1
//	zoom >= ZoomInAt                 effective = ZoomInFactor
type Tolerance struct {
	RadiusPx     float64
	ZoomOutBelow float64
	ZoomInAt     float64
	ZoomInFactor float64
}

// DefaultTolerance returns the tuned defaults: 8px, bands at 1x and 4x.
func DefaultTolerance() Tolerance {
	return Tolerance{RadiusPx: 8, ZoomOutBelow: 1, ZoomInAt: 4, ZoomInFactor: 2}
}

// withDefaults fills zero fields from DefaultTolerance.
func (t Tolerance) withDefaults() Tolerance {
	d := DefaultTolerance()
	if t.RadiusPx <= 0 {
		t.RadiusPx = d.RadiusPx
	}
	if t.ZoomOutBelow <= 0 {
		t.ZoomOutBelow = d.ZoomOutBelow
	}
	if t.ZoomInAt <= 0 {
		t.ZoomInAt = d.ZoomInAt
	}
	if t.ZoomInFactor <= 0 {
		t.ZoomInFactor = d.ZoomInFactor
	}
	return t
}

// EffectiveZoom maps a view zoom to the divisor applied to RadiusPx.
func (t Tolerance) EffectiveZoom(zoom float64) float64 {
	t = t.withDefaults()
	if zoom <= 0 {
		zoom = 1
	}
	switch {
	case zoom < t.ZoomOutBelow:
		return zoom
	case zoom >= t.ZoomInAt:
		return t.ZoomInFactor
	default:
		return 1
	}
}

// DistanceSq returns the squared close-hit tolerance in document units.
func (t Tolerance) DistanceSq(zoom float64) float64 {
	t = t.withDefaults()
	d := t.RadiusPx / t.EffectiveZoom(zoom)
	return d * d
}
