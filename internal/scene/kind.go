/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene is an arena-backed scene graph whose nodes can be queried
// with the pick engine. Nodes are addressed by NodeID; a Node handle pairs an
// ID with its scene and implements pick.Component.
package scene

import (
	"fmt"
	"strings"
)

// NodeID indexes a node inside its Scene.
type NodeID int32

// NoNode is the ID of a missing parent or icon.
const NoNode NodeID = -1

// Kind selects a node's hit geometry and pick behaviour.
type Kind uint8

const (
	// KindCanvas is the scene root. It is hit everywhere and reports nothing
	// as a pick, but accepts drops.
	KindCanvas Kind = iota
	// KindGroup has no geometry of its own and takes part in pick depth.
	KindGroup
	KindRect
	KindRounded
	KindEllipse
	// KindLink is a stroked path, e.g. a connector between two nodes.
	KindLink
	// KindIcon is a synthetic overlay attached to an owner node.
	KindIcon
)

var kindNames = [...]string{
	KindCanvas:  "canvas",
	KindGroup:   "group",
	KindRect:    "rect",
	KindRounded: "rounded",
	KindEllipse: "ellipse",
	KindLink:    "link",
	KindIcon:    "icon",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind maps a document kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// Flags are per-node display and pick states.
type Flags uint16

const (
	Hidden Flags = 1 << iota
	Filtered
	Selected
	ZoomedFocus
	// PathwayOwned nodes keep their contents out of picks unless they are the query root.
	PathwayOwned
	// AbsorbChildPicks makes a node report itself when one of its children is hit.
	AbsorbChildPicks
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{Hidden, "hidden"},
	{Filtered, "filtered"},
	{Selected, "selected"},
	{ZoomedFocus, "zoomedFocus"},
	{PathwayOwned, "pathwayOwned"},
	{AbsorbChildPicks, "absorbChildPicks"},
}

// ParseFlag maps a document flag name to its Flags bit.
func ParseFlag(s string) (Flags, error) {
	for _, fn := range flagNames {
		if strings.EqualFold(s, fn.name) {
			return fn.f, nil
		}
	}
	return 0, fmt.Errorf("unknown node flag %q", s)
}

// Names lists the set flags in declaration order.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}
