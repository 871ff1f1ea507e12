/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

// Picker is the Traversal specialised with the eligibility rules shared by
// point and region queries. Concrete picks embed it and supply Visit.
type Picker struct {
	Traversal
	ctx *Context
}

func newPicker(ctx *Context) Picker {
	if ctx.Cache == nil {
		// Share one buffer with nested queries started from this one.
		ctx.Cache = NewCache()
	}
	return Picker{
		Traversal: Traversal{Context: ctx, Cache: ctx.Cache, Logger: ctx.Logger},
		ctx:       ctx,
	}
}

// QueryContext returns the query context.
func (p *Picker) QueryContext() *Context { return p.ctx }

// AcceptTraversal rejects the dragged component and, below the root, anything
// not drawn or beyond the depth and layer limits.
func (p *Picker) AcceptTraversal(c Component) bool {
	ctx := p.ctx
	if ctx.Dropping != nil && c == ctx.Dropping {
		return false
	}
	if c != ctx.Root {
		if !c.IsDrawn() {
			return false
		}
		if ctx.depthLimited(p.depth) {
			return false
		}
		if ctx.layerLimited(c.Layer()) {
			return false
		}
	}
	return true
}

// Accept rejects the excluded component, filtered components, selected
// components when asked to, and anything the caller's acceptor refuses.
func (p *Picker) Accept(c Component) bool {
	ctx := p.ctx
	if ctx.Excluded != nil && c == ctx.Excluded {
		return false
	}
	if c.IsFiltered() {
		return false
	}
	if ctx.IgnoreSelected && c.IsSelected() {
		return false
	}
	if ctx.Acceptor != nil && !ctx.Acceptor(c) {
		return false
	}
	return true
}

// AcceptChildren keeps queries out of pathway-owned contents unless the
// pathway member is itself the root.
func (p *Picker) AcceptChildren(c Component) bool {
	return c == p.ctx.Root || !isPathwayOwned(c)
}
