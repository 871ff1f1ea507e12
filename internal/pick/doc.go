/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pick decides which scene component a pointer interaction targets.
//
// A query walks the tree below a root in reverse z-order, children before
// parents, and tests every eligible node against the query point or
// rectangle. Point queries resolve a single target from the direct hit and the
// nearest close miss, then apply group pick-depth indirection, parent
// redirection and the default pick / drop hooks. Region queries collect every
// eligible node whose bounds intersect the query rectangle.
//
// Queries are synchronous, read-only and run on the caller's goroutine. The
// only state that survives a query is an optional shared Cache.
package pick
