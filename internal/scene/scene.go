/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"fmt"
	"slices"

	"scenepick/internal/pick"
	"scenepick/internal/vector"
)

var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrDuplicateName = errors.New("duplicate node name")
	ErrCycle         = errors.New("attach would create a cycle")
	ErrInvalidParent = errors.New("invalid parent")
)

// maxWalk bounds upward walks in the same way the pick engine does.
const maxWalk = pick.MaxTraversalDepth + 1

type node struct {
	name     string
	kind     Kind
	parent   NodeID
	children []NodeID
	icon     NodeID
	// local maps the node's zero space into its parent's zero space.
	local vector.Affine2D
	shape vector.Shape
	flags Flags
	layer int
}

// Scene owns every node. The root is always a canvas with ID 0.
type Scene struct {
	Name   string
	nodes  []node
	byName map[string]NodeID
}

// New returns a scene holding only its canvas root.
func New(name string) *Scene {
	s := &Scene{Name: name, byName: map[string]NodeID{}}
	s.nodes = append(s.nodes, node{
		name:   "root",
		kind:   KindCanvas,
		parent: NoNode,
		icon:   NoNode,
		local:  vector.Identity,
		shape:  vector.Everywhere{},
	})
	s.byName["root"] = 0
	return s
}

// Root returns the canvas node.
func (s *Scene) Root() Node { return Node{s: s, id: 0} }

// Len returns the number of nodes, including detached ones.
func (s *Scene) Len() int { return len(s.nodes) }

// Node returns the handle for id. It does not check that id exists.
func (s *Scene) Node(id NodeID) Node { return Node{s: s, id: id} }

// ByName looks a node up by its unique name.
func (s *Scene) ByName(name string) (Node, bool) {
	id, ok := s.byName[name]
	if !ok {
		return Node{}, false
	}
	return Node{s: s, id: id}, true
}

func (s *Scene) valid(id NodeID) bool { return id >= 0 && int(id) < len(s.nodes) }

func (s *Scene) get(id NodeID) (*node, error) {
	if !s.valid(id) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownNode, id)
	}
	return &s.nodes[id], nil
}

func (s *Scene) insert(n node) (Node, error) {
	if n.name == "" {
		n.name = fmt.Sprintf("%s-%d", n.kind, len(s.nodes))
	}
	if _, dup := s.byName[n.name]; dup {
		return Node{}, fmt.Errorf("%w: %q", ErrDuplicateName, n.name)
	}
	id := NodeID(len(s.nodes))
	s.nodes = append(s.nodes, n)
	s.byName[n.name] = id
	return Node{s: s, id: id}, nil
}

// Add creates a node of kind below parent, topmost among its siblings. The
// shape is given in the node's zero space; a nil shape means no geometry.
func (s *Scene) Add(parent NodeID, name string, kind Kind, shape vector.Shape) (Node, error) {
	p, err := s.get(parent)
	if err != nil {
		return Node{}, err
	}
	if p.kind == KindIcon {
		return Node{}, fmt.Errorf("%w: icons cannot have children", ErrInvalidParent)
	}
	switch kind {
	case KindCanvas:
		return Node{}, fmt.Errorf("%w: only the root is a canvas", ErrInvalidParent)
	case KindIcon:
		return Node{}, fmt.Errorf("%w: use SetIcon for icons", ErrInvalidParent)
	case KindGroup:
		shape = vector.Nowhere{}
	}
	if shape == nil {
		shape = vector.Nowhere{}
	}
	n, err := s.insert(node{name: name, kind: kind, parent: parent, icon: NoNode, local: vector.Identity, shape: shape})
	if err != nil {
		return Node{}, err
	}
	s.nodes[parent].children = append(s.nodes[parent].children, n.id)
	return n, nil
}

// AddGroup creates an empty group below parent.
func (s *Scene) AddGroup(parent NodeID, name string) (Node, error) {
	return s.Add(parent, name, KindGroup, nil)
}

// SetIcon attaches an overlay icon to owner, replacing any previous one. The
// icon's shape is in the owner's zero space. Icons are not children: they are
// appended to the owner's pick list only.
func (s *Scene) SetIcon(owner NodeID, name string, shape vector.Shape) (Node, error) {
	o, err := s.get(owner)
	if err != nil {
		return Node{}, err
	}
	if o.kind == KindIcon || o.kind == KindCanvas {
		return Node{}, fmt.Errorf("%w: %s cannot own an icon", ErrInvalidParent, o.kind)
	}
	if shape == nil {
		shape = vector.Nowhere{}
	}
	n, err := s.insert(node{name: name, kind: KindIcon, parent: owner, icon: NoNode, local: vector.Identity, shape: shape})
	if err != nil {
		return Node{}, err
	}
	if old := s.nodes[owner].icon; old != NoNode {
		s.nodes[old].parent = NoNode
	}
	s.nodes[owner].icon = n.id
	return n, nil
}

// Attach moves child below parent as its topmost child. Attaching a node
// below itself or one of its descendants fails with ErrCycle.
func (s *Scene) Attach(child, parent NodeID) error {
	c, err := s.get(child)
	if err != nil {
		return err
	}
	p, err := s.get(parent)
	if err != nil {
		return err
	}
	if c.kind == KindCanvas || c.kind == KindIcon {
		return fmt.Errorf("%w: cannot attach a %s", ErrInvalidParent, c.kind)
	}
	if p.kind == KindIcon {
		return fmt.Errorf("%w: icons cannot have children", ErrInvalidParent)
	}
	for id, steps := parent, 0; id != NoNode; id, steps = s.nodes[id].parent, steps+1 {
		if id == child || steps > len(s.nodes) {
			return fmt.Errorf("%w: %q below %q", ErrCycle, c.name, p.name)
		}
	}
	s.unlink(child)
	s.nodes[child].parent = parent
	s.nodes[parent].children = append(s.nodes[parent].children, child)
	return nil
}

// Detach removes id from its parent. The node and its subtree stay in the
// arena and can be attached again.
func (s *Scene) Detach(id NodeID) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if n.kind == KindCanvas {
		return fmt.Errorf("%w: cannot detach the root", ErrInvalidParent)
	}
	if n.kind == KindIcon {
		if n.parent != NoNode {
			s.nodes[n.parent].icon = NoNode
		}
		n.parent = NoNode
		return nil
	}
	s.unlink(id)
	s.nodes[id].parent = NoNode
	return nil
}

func (s *Scene) unlink(id NodeID) {
	p := s.nodes[id].parent
	if p == NoNode {
		return
	}
	kids := s.nodes[p].children
	if i := slices.Index(kids, id); i >= 0 {
		s.nodes[p].children = slices.Delete(kids, i, i+1)
	}
}

// Walk visits the attached tree in paint order (parents before children,
// bottom child first), giving each node its depth below the root. Returning
// false from fn skips the node's subtree. Unlike a pick, the walk reaches
// every attached node however deep it sits.
func (s *Scene) Walk(fn func(n Node, depth int) bool) {
	s.walk(0, 0, fn)
}

func (s *Scene) walk(id NodeID, depth int, fn func(Node, int) bool) {
	// Attach keeps the tree acyclic, so no path is longer than the arena.
	if depth >= len(s.nodes) {
		return
	}
	if !fn(Node{s: s, id: id}, depth) {
		return
	}
	for _, c := range s.nodes[id].children {
		s.walk(c, depth+1, fn)
	}
	if icon := s.nodes[id].icon; icon != NoNode {
		fn(Node{s: s, id: icon}, depth+1)
	}
}
