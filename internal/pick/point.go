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
	"math"
)

// PointPick finds the single best target for a point.
type PointPick struct {
	Picker
	hit      Component
	closeHit Component
	closest  float64
}

// NewPointPick prepares a point query. The context must not be nil.
func NewPointPick(ctx *Context) *PointPick {
	return &PointPick{Picker: newPicker(ctx), closest: math.Inf(1)}
}

// Visit tests c against the query point. A direct hit ends the walk: the
// post-order walk has already tried everything nested inside c.
func (pp *PointPick) Visit(c Component) {
	zp := c.TransformToZero(pp.ctx.Point())
	d := c.PickDistance(zp.X, zp.Y, pp.ctx)
	switch {
	case d == DirectHit:
		pp.hit = c
		pp.Stop()
	case d > 0 && d < pp.closest:
		pp.closest = d
		pp.closeHit = c
	}
}

// Pick runs the query and resolves the target, or nil when nothing is picked.
func (pp *PointPick) Pick() Component {
	root := pp.ctx.Root
	if root == nil {
		return nil
	}
	pp.Traverse(root, pp)
	if pp.Aborted() {
		return nil
	}
	return pp.resolve()
}

// Candidates returns the raw direct hit, the closest near miss and its squared distance.
func (pp *PointPick) Candidates() (hit, closeHit Component, closestSq float64) {
	return pp.hit, pp.closeHit, pp.closest
}

func (pp *PointPick) resolve() Component {
	ctx := pp.ctx
	hit := pp.hit
	// A near miss wins when nothing was hit outright, or when it sits inside
	// the component that was hit (e.g. a link line drawn over a node).
	if pp.closeHit != nil && (hit == nil || IsDescendant(pp.closeHit, hit)) &&
		pp.closest <= ctx.Tolerance.DistanceSq(ctx.EffectiveZoom()) {
		hit = pp.closeHit
	}
	if hit == nil {
		return nil
	}
	if isOverlay(hit) {
		return pp.contain(hit)
	}
	if g := pp.groupTarget(hit); g != nil {
		return pp.contain(g)
	}
	if r := redirect(ctx, hit); r != nil {
		return pp.contain(r)
	}
	return pp.contain(finalPick(ctx, hit))
}

// groupTarget applies pick-depth indirection. The chain is every eligible
// group from hit (inclusive) up to the root (exclusive), outermost first; the
// result is chain[PickDepth]. Groups that Accept refuses (excluded, filtered,
// ignored selection, acceptor) are left out of the chain, so indirection never
// returns them. It returns nil when no indirection applies.
func (pp *PointPick) groupTarget(hit Component) Component {
	root := pp.ctx.Root
	n := 0
	c := hit
	for steps := 0; c != nil && c != root && steps < maxAncestorSteps; steps++ {
		if pp.chainGroup(c) {
			n++
		}
		c = c.Parent()
	}
	if c != root {
		return nil
	}
	k := max(pp.ctx.PickDepth, 0)
	if k >= n {
		return nil
	}
	want := n - 1 - k // counted from the hit upwards
	i := 0
	for c = hit; c != root; c = c.Parent() {
		if !pp.chainGroup(c) {
			continue
		}
		if i == want {
			if c == hit {
				return nil
			}
			return c
		}
		i++
	}
	return nil
}

func (pp *PointPick) chainGroup(c Component) bool { return isGroup(c) && pp.Accept(c) }

// redirect gives the parent of hit a chance to report something else.
func redirect(ctx *Context, hit Component) Component {
	parent := hit.Parent()
	if parent == nil {
		return nil
	}
	pr, ok := parent.(PickRedirector)
	if !ok {
		return nil
	}
	if r := pr.PickChild(ctx, hit); r != nil && r != hit {
		return r
	}
	return nil
}

// finalPick passes hit through the default drop-target hook during a drag,
// otherwise through the default pick hook.
func finalPick(ctx *Context, hit Component) Component {
	if ctx.Dropping != nil {
		if dt, ok := hit.(DropTargeter); ok {
			return dt.DefaultDropTarget(ctx)
		}
		return hit
	}
	if dp, ok := hit.(DefaultPicker); ok {
		return dp.DefaultPick(ctx)
	}
	return hit
}

// contain drops any result that escaped the root's subtree.
func (pp *PointPick) contain(c Component) Component {
	if c == nil {
		return nil
	}
	if !withinRoot(c, pp.ctx.Root) {
		pp.logger().Warn("pick resolved outside query root; discarding", slog.String("op", "resolve"))
		return nil
	}
	return c
}

// Point runs a point query described by ctx.
func Point(ctx *Context) Component {
	if ctx == nil || ctx.Root == nil {
		return nil
	}
	return NewPointPick(ctx).Pick()
}

// PointAt picks at document point (x, y) below root with default policy.
func PointAt(root Component, x, y, zoom float64) Component {
	return Point(NewPointContext(root, x, y, zoom))
}
