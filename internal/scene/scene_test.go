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
	"testing"

	"scenepick/internal/vector"
)

func mustAdd(t *testing.T, s *Scene, parent NodeID, name string, kind Kind, sh vector.Shape) Node {
	t.Helper()
	n, err := s.Add(parent, name, kind, sh)
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return n
}

func rect(x, y, w, h float64) vector.Shape { return vector.RectShape{Rect: vector.R(x, y, w, h)} }

func TestScene_AddAndLookup(t *testing.T) {
	s := New("demo")
	g, err := s.AddGroup(s.Root().ID(), "g")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	a := mustAdd(t, s, g.ID(), "a", KindRect, rect(0, 0, 10, 10))
	if got, ok := s.ByName("a"); !ok || got != a {
		t.Fatalf("ByName(a) = %v, %v", got, ok)
	}
	if p, ok := a.ParentNode(); !ok || p != g {
		t.Fatalf("parent of a = %v", p)
	}
	if _, err := s.Add(g.ID(), "a", KindRect, nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := s.Add(99, "x", KindRect, nil); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if _, err := s.Add(g.ID(), "c", KindCanvas, nil); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent for a second canvas, got %v", err)
	}
	if g.Shape() != (vector.Nowhere{}) {
		t.Fatalf("groups must not carry geometry")
	}
	unnamed := mustAdd(t, s, g.ID(), "", KindEllipse, rect(0, 0, 1, 1))
	if unnamed.Name() == "" {
		t.Fatalf("unnamed nodes get a generated name")
	}
}

func TestScene_AttachRejectsCycles(t *testing.T) {
	s := New("demo")
	a, _ := s.AddGroup(0, "a")
	b, _ := s.AddGroup(a.ID(), "b")
	c := mustAdd(t, s, b.ID(), "c", KindRect, rect(0, 0, 1, 1))

	if err := s.Attach(a.ID(), c.ID()); !errors.Is(err, ErrCycle) {
		t.Fatalf("attaching an ancestor below its descendant: %v", err)
	}
	if err := s.Attach(a.ID(), a.ID()); !errors.Is(err, ErrCycle) {
		t.Fatalf("attaching a node below itself: %v", err)
	}
	if err := s.Attach(c.ID(), a.ID()); err != nil {
		t.Fatalf("attach c to a: %v", err)
	}
	if len(b.Children()) != 0 || len(a.Children()) != 2 {
		t.Fatalf("attach did not move c: a=%d b=%d", len(a.Children()), len(b.Children()))
	}
	if a.Children()[1] != c {
		t.Fatalf("attached node must be topmost")
	}
}

func TestScene_Detach(t *testing.T) {
	s := New("demo")
	a := mustAdd(t, s, 0, "a", KindRect, rect(0, 0, 10, 10))
	if err := s.Detach(a.ID()); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if len(s.Root().Children()) != 0 {
		t.Fatalf("root still lists a")
	}
	if a.Parent() != nil {
		t.Fatalf("detached node must report a nil parent")
	}
	if err := s.Detach(0); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("detaching the root: %v", err)
	}
	if err := s.Attach(a.ID(), 0); err != nil {
		t.Fatalf("re-attach: %v", err)
	}
}

func TestScene_Icon(t *testing.T) {
	s := New("demo")
	owner := mustAdd(t, s, 0, "owner", KindRect, rect(0, 0, 100, 100))
	icon, err := s.SetIcon(owner.ID(), "owner-icon", rect(90, 0, 10, 10))
	if err != nil {
		t.Fatalf("set icon: %v", err)
	}
	if len(owner.Children()) != 0 {
		t.Fatalf("icons are not children")
	}
	list, _ := owner.PickList(nil, nil)
	if len(list) != 1 || list[0] != icon {
		t.Fatalf("icon missing from pick list: %v", list)
	}
	if p, _ := icon.ParentNode(); p != owner {
		t.Fatalf("icon parent = %v", p)
	}
	if _, err := s.SetIcon(0, "root-icon", nil); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("canvas cannot own an icon: %v", err)
	}
	if err := s.Detach(icon.ID()); err != nil {
		t.Fatalf("detach icon: %v", err)
	}
	if owner.HasPicks() {
		t.Fatalf("owner still reports picks after icon removal")
	}
}

func TestScene_MapTransformAndBounds(t *testing.T) {
	s := New("demo")
	g, _ := s.AddGroup(0, "g")
	g.SetTransform(vector.Translate(100, 50))
	a := mustAdd(t, s, g.ID(), "a", KindRect, rect(0, 0, 10, 10))
	a.SetTransform(vector.Scale(2, 2))
	b := mustAdd(t, s, g.ID(), "b", KindRect, rect(-10, -10, 5, 5))

	if got := a.MapBounds(); got != vector.R(100, 50, 20, 20) {
		t.Fatalf("a bounds = %+v", got)
	}
	if got := g.MapBounds(); got != vector.R(90, 40, 30, 30) {
		t.Fatalf("group bounds = %+v", got)
	}
	zp := a.TransformToZero(vector.Pt{X: 110, Y: 60})
	if zp != (vector.Pt{X: 5, Y: 5}) {
		t.Fatalf("zero point = %+v", zp)
	}
	_ = b
}

func TestScene_WalkPaintOrder(t *testing.T) {
	s := New("demo")
	a := mustAdd(t, s, 0, "a", KindRect, rect(0, 0, 1, 1))
	mustAdd(t, s, a.ID(), "a1", KindRect, rect(0, 0, 1, 1))
	mustAdd(t, s, 0, "b", KindRect, rect(0, 0, 1, 1))
	if _, err := s.SetIcon(a.ID(), "a-icon", rect(0, 0, 1, 1)); err != nil {
		t.Fatal(err)
	}
	var got []string
	s.Walk(func(n Node, _ int) bool {
		got = append(got, n.Name())
		return true
	})
	want := []string{"root", "a", "a1", "a-icon", "b"}
	if len(got) != len(want) {
		t.Fatalf("walk = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("walk = %v, want %v", got, want)
		}
	}
}

func TestScene_WalkReachesDeepNodes(t *testing.T) {
	s := New("deep")
	parent := s.Root().ID()
	for i := range 20 {
		g, err := s.AddGroup(parent, fmt.Sprintf("g%d", i))
		if err != nil {
			t.Fatal(err)
		}
		parent = g.ID()
	}
	leaf := mustAdd(t, s, parent, "leaf", KindRect, rect(0, 0, 1, 1))
	deepest, found := 0, false
	s.Walk(func(n Node, depth int) bool {
		deepest = max(deepest, depth)
		found = found || n == leaf
		return true
	})
	if !found || deepest != 21 {
		t.Fatalf("walk reached depth %d, leaf found %v; want 21, true", deepest, found)
	}
}

func TestParseKindAndFlag(t *testing.T) {
	for _, name := range []string{"canvas", "group", "rect", "rounded", "ellipse", "link", "icon"} {
		k, err := ParseKind(name)
		if err != nil || k.String() != name {
			t.Fatalf("ParseKind(%q) = %v, %v", name, k, err)
		}
	}
	if _, err := ParseKind("triangle"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	f, err := ParseFlag("zoomedfocus")
	if err != nil || f != ZoomedFocus {
		t.Fatalf("ParseFlag = %v, %v", f, err)
	}
	if names := (Hidden | Selected).Names(); len(names) != 2 || names[0] != "hidden" || names[1] != "selected" {
		t.Fatalf("Names = %v", names)
	}
}
