/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Colors used when rendering scenes for inspection.

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
	Highlight   = Color{230, 60, 40, 255}
	Muted       = Color{150, 150, 160, 255}
	QueryMark   = Color{30, 110, 220, 255}
)

// Stroke is an outline style in document units.
type Stroke struct {
	Color Color
	Width float64
}

// IsZero reports whether c is the zero value (fully transparent black).
func (c Color) IsZero() bool { return c == Color{} }
