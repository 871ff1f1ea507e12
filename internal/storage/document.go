/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	applog "scenepick/internal/log"
	"scenepick/internal/scene"
	"scenepick/internal/vector"
)

const (
	BackupsDirName = "backups"
	// DocumentVersion is written into saved documents.
	DocumentVersion = 1
)

var (
	ErrInvalidDocument = errors.New("invalid scene document")
	ErrUnknownNode     = errors.New("unknown node")
)

//go:embed schema/scene.schema.json
var sceneSchema []byte

// Document is the JSON form of a scene. Nodes are listed parents first; an
// empty parent means the canvas root.
type Document struct {
	Name    string     `json:"name"`
	Version int        `json:"version,omitempty"`
	Nodes   []NodeSpec `json:"nodes"`
}

// NodeSpec describes one node. Geometry is in the node's own zero space.
type NodeSpec struct {
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Parent    string       `json:"parent,omitempty"`
	Rect      []float64    `json:"rect,omitempty"` // x, y, w, h
	Radius    float64      `json:"radius,omitempty"`
	Points    [][2]float64 `json:"points,omitempty"`
	Width     float64      `json:"width,omitempty"`
	Transform []float64    `json:"transform,omitempty"` // a, b, c, d, e, f
	Layer     int          `json:"layer,omitempty"`
	Flags     []string     `json:"flags,omitempty"`
}

// ValidateDocument checks raw JSON against the embedded scene schema.
func ValidateDocument(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(sceneSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}

// ParseDocument validates and decodes a scene document.
func ParseDocument(data []byte) (*Document, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// LoadDocument reads a scene document. If the file is missing or does not
// parse, the latest backup written by SaveDocument is tried instead.
func LoadDocument(path string) (*Document, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "load_document").With(slog.String("path", path))
	b, err := os.ReadFile(path)
	if err == nil {
		doc, perr := ParseDocument(b)
		if perr == nil {
			return doc, nil
		}
		err = perr
	}
	doc, berr := loadLatestBackup(path)
	if berr != nil {
		return nil, fmt.Errorf("load document: %w; backup attempt: %v", err, berr)
	}
	l.Warn("document unreadable; loaded latest backup", slog.Any("err", err))
	return doc, nil
}

// SaveDocument writes doc to path with a temp file and rename. The previous
// file, if any, is copied to a timestamped backup first.
func SaveDocument(path string, doc *Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("document path is required")
	}
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure document dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if cerr := copyFile(path, backupPath(path, time.Now())); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}

	base := filepath.Base(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", base, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	return nil
}

func backupPath(path string, at time.Time) string {
	stamp := at.Format("20060102-150405")
	return filepath.Join(filepath.Dir(path), BackupsDirName, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
}

// AutosaveCrashSnapshot writes the current state of s next to the backups of
// path as <base>.crash-<stamp>.json. It never touches path itself.
func AutosaveCrashSnapshot(path string, s *scene.Scene) (string, error) {
	if s == nil {
		return "", errors.New("nil scene")
	}
	data, err := json.MarshalIndent(Capture(s), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	out := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", filepath.Base(path), time.Now().Format("20060102-150405")))
	if err := writeFileSync(out, append(data, '\n')); err != nil {
		return "", err
	}
	return out, nil
}

// Build turns the document into a scene.
func (d *Document) Build() (*scene.Scene, error) {
	s := scene.New(d.Name)
	for i, ns := range d.Nodes {
		if err := addNode(s, ns); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, ns.Name, err)
		}
	}
	return s, nil
}

func addNode(s *scene.Scene, ns NodeSpec) error {
	parentName := ns.Parent
	if parentName == "" {
		parentName = "root"
	}
	parent, ok := s.ByName(parentName)
	if !ok {
		return fmt.Errorf("%w: parent %q must be declared first", ErrUnknownNode, parentName)
	}
	kind, err := scene.ParseKind(ns.Kind)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	shape, err := ns.shape(kind)
	if err != nil {
		return err
	}
	var n scene.Node
	if kind == scene.KindIcon {
		n, err = s.SetIcon(parent.ID(), ns.Name, shape)
	} else {
		n, err = s.Add(parent.ID(), ns.Name, kind, shape)
	}
	if err != nil {
		return err
	}
	if len(ns.Transform) > 0 {
		if len(ns.Transform) != 6 {
			return fmt.Errorf("%w: transform needs 6 values", ErrInvalidDocument)
		}
		t := ns.Transform
		n.SetTransform(vector.Affine2D{A: t[0], B: t[1], C: t[2], D: t[3], E: t[4], F: t[5]})
	}
	n.SetLayer(ns.Layer)
	for _, name := range ns.Flags {
		f, err := scene.ParseFlag(name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		n.SetFlag(f, true)
	}
	return nil
}

func (ns NodeSpec) shape(kind scene.Kind) (vector.Shape, error) {
	switch kind {
	case scene.KindGroup:
		return nil, nil
	case scene.KindLink:
		if len(ns.Points) < 2 {
			return nil, fmt.Errorf("%w: link needs at least 2 points", ErrInvalidDocument)
		}
		pts := make([]vector.Pt, len(ns.Points))
		for i, p := range ns.Points {
			pts[i] = vector.Pt{X: p[0], Y: p[1]}
		}
		return vector.StrokeShape{Path: vector.Polyline(pts...), Width: ns.Width}, nil
	}
	if len(ns.Rect) != 4 {
		return nil, fmt.Errorf("%w: %s needs rect [x, y, w, h]", ErrInvalidDocument, kind)
	}
	r := vector.R(ns.Rect[0], ns.Rect[1], ns.Rect[2], ns.Rect[3]).Normalize()
	switch kind {
	case scene.KindRounded:
		return vector.RoundedRectShape{Rect: r, Radius: ns.Radius}, nil
	case scene.KindEllipse:
		return vector.EllipseShape{Rect: r}, nil
	default:
		return vector.RectShape{Rect: r}, nil
	}
}

// Capture converts a scene back into a document. Detached nodes are dropped.
func Capture(s *scene.Scene) *Document {
	doc := &Document{Name: s.Name, Version: DocumentVersion}
	s.Walk(func(n scene.Node, depth int) bool {
		if depth == 0 {
			return true
		}
		ns := NodeSpec{Name: n.Name(), Kind: n.Kind().String(), Layer: n.Layer(), Flags: n.Flags().Names()}
		if p, ok := n.ParentNode(); ok && p.Kind() != scene.KindCanvas {
			ns.Parent = p.Name()
		}
		if m := n.Local(); m != vector.Identity {
			ns.Transform = []float64{m.A, m.B, m.C, m.D, m.E, m.F}
		}
		switch sh := n.Shape().(type) {
		case vector.RectShape:
			ns.Rect = rectValues(sh.Rect)
		case vector.RoundedRectShape:
			ns.Rect, ns.Radius = rectValues(sh.Rect), sh.Radius
		case vector.EllipseShape:
			ns.Rect = rectValues(sh.Rect)
		case vector.StrokeShape:
			ns.Width = sh.Width
			for _, c := range sh.Path.Cmds {
				if c.Op == vector.MoveTo || c.Op == vector.LineTo {
					ns.Points = append(ns.Points, [2]float64{c.Data[0], c.Data[1]})
				}
			}
		}
		doc.Nodes = append(doc.Nodes, ns)
		return true
	})
	return doc
}

func rectValues(r vector.Rect) []float64 { return []float64{r.X, r.Y, r.W, r.H} }

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// loadLatestBackup parses the newest backup of path.
func loadLatestBackup(path string) (*Document, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	b, err := os.ReadFile(candidates[len(candidates)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	return ParseDocument(b)
}
