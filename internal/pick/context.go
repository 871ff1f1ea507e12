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

// Context describes one pick query. It is built by the caller, used for a
// single query and must not change while the query runs.
//
// MaxDepth and MaxLayer take NoLimit (or any negative value) for "no limit";
// zero is a real limit (root children only, layer 0 only). The constructors
// start both at NoLimit. Zoom values <= 0 are treated as 1.
type Context struct {
	// Root bounds the query: nothing outside its subtree is ever returned.
	Root Component
	// Excluded is skipped, e.g. the component being dragged.
	Excluded Component
	// Dropping is non-nil during a drag; it is never a candidate itself and
	// enables drop-target redirection.
	Dropping Component
	Acceptor Acceptor

	IgnoreSelected bool
	// PickDepth selects how far into nested groups a point pick resolves:
	// 0 returns the outermost group, 1 the group below it, and so on.
	PickDepth int
	MaxDepth  int
	MaxLayer  int
	Zoom      float64

	// Query geometry in document coordinates. Point queries use X and Y only.
	X, Y          float64
	Width, Height float64

	Tolerance Tolerance
	// Cache is an optional scratch buffer shared across queries on one goroutine.
	Cache  *Cache
	Logger *slog.Logger
}

// NoLimit disables the MaxDepth or MaxLayer check.
const NoLimit = -1

// NewPointContext returns a point query context with default policy.
func NewPointContext(root Component, x, y, zoom float64) *Context {
	return &Context{Root: root, X: x, Y: y, Zoom: zoom, MaxDepth: NoLimit, MaxLayer: NoLimit, Tolerance: DefaultTolerance()}
}

// NewRegionContext returns a region query context for r with default policy.
func NewRegionContext(root Component, r vector.Rect, zoom float64) *Context {
	r = r.Normalize()
	return &Context{
		Root: root, X: r.X, Y: r.Y, Width: r.W, Height: r.H, Zoom: zoom,
		MaxDepth: NoLimit, MaxLayer: NoLimit, Tolerance: DefaultTolerance(),
	}
}

// Point returns the query point.
func (c *Context) Point() vector.Pt { return vector.Pt{X: c.X, Y: c.Y} }

// Rect returns the query rectangle.
func (c *Context) Rect() vector.Rect { return vector.R(c.X, c.Y, c.Width, c.Height) }

// EffectiveZoom returns the zoom with the non-positive fallback applied.
func (c *Context) EffectiveZoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

func (c *Context) depthLimited(depth int) bool { return c.MaxDepth >= 0 && depth > c.MaxDepth }
func (c *Context) layerLimited(layer int) bool { return c.MaxLayer >= 0 && layer > c.MaxLayer }
