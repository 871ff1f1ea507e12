/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import (
	"log/slog"

	"scenepick/internal/vector"
)

// RegionPick collects every eligible component whose bounds intersect the
// query rectangle, e.g. for rubber-band selection.
type RegionPick struct {
	Picker
	rect vector.Rect
	hits []Component
}

// NewRegionPick prepares a region query. The context must not be nil.
func NewRegionPick(ctx *Context) *RegionPick {
	return &RegionPick{Picker: newPicker(ctx), rect: ctx.Rect().Normalize()}
}

func (rp *RegionPick) Visit(c Component) {
	if c == rp.ctx.Root {
		return
	}
	if c.Intersects(rp.rect) {
		rp.hits = append(rp.hits, c)
	}
}

// Pick runs the query. Results are in traversal order. If the walk aborts,
// whatever was collected before the abort is returned.
func (rp *RegionPick) Pick() []Component {
	if rp.ctx.Root == nil {
		return nil
	}
	rp.Traverse(rp.ctx.Root, rp)
	if rp.Aborted() {
		rp.logger().Warn("region pick aborted; returning partial result",
			slog.String("op", "region"), slog.Int("hits", len(rp.hits)))
	}
	return rp.hits
}

// Region runs a region query described by ctx.
func Region(ctx *Context) []Component {
	if ctx == nil || ctx.Root == nil {
		return nil
	}
	return NewRegionPick(ctx).Pick()
}
