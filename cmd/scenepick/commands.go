/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"scenepick/internal/export"
	applog "scenepick/internal/log"
	"scenepick/internal/pick"
	"scenepick/internal/scene"
	"scenepick/internal/storage"
	"scenepick/internal/vector"
	"scenepick/internal/version"
)

func newFlagSet(env *cmdEnv, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.out)
	return fs
}

// parseArgs parses flags that may appear before, between or after positional
// args. Numeric args such as -5 are positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		for len(args) > 0 && isNumber(args[0]) {
			pos = append(pos, args[0])
			args = args[1:]
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseFloats(vals []string) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errUsage, v)
		}
		out[i] = f
	}
	return out, nil
}

// queryFlags are the pick policy options shared by pick, region and render.
type queryFlags struct {
	zoom           float64
	depth          int
	maxDepth       int
	maxLayer       *int // nil = from config
	ignoreSelected bool
	root           string
	exclude        string
	dropping       string
	record         bool
}

func (q *queryFlags) register(fs *flag.FlagSet, point, record bool) {
	fs.Float64Var(&q.zoom, "zoom", 1, "view zoom factor")
	fs.IntVar(&q.maxDepth, "max-depth", pick.NoLimit, "deepest traversal level considered (-1 = unlimited)")
	fs.Func("max-layer", "highest layer considered (-1 = unlimited, default from config)", func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		n = max(n, pick.NoLimit)
		q.maxLayer = &n
		return nil
	})
	fs.BoolVar(&q.ignoreSelected, "ignore-selected", false, "skip selected nodes")
	fs.StringVar(&q.root, "root", "", "name of the node that bounds the query")
	fs.StringVar(&q.exclude, "exclude", "", "name of a node to skip")
	if point {
		fs.IntVar(&q.depth, "depth", 0, "group pick depth")
		fs.StringVar(&q.dropping, "dropping", "", "name of the node being dragged")
	}
	if record {
		fs.BoolVar(&q.record, "record", false, "record the query in the journal")
	}
}

// journaled reports whether the query can be replayed from a journal entry,
// which stores neither the query root nor the excluded and dragged nodes.
func (q *queryFlags) journaled() bool {
	return q.root == "" && q.exclude == "" && q.dropping == "" && q.maxDepth < 0
}

func (q *queryFlags) apply(env *cmdEnv, s *scene.Scene, pc *pick.Context) error {
	if q.record && !q.journaled() {
		return fmt.Errorf("%w: -record cannot be combined with -root, -exclude, -dropping or -max-depth", errUsage)
	}
	pc.Tolerance = env.cfg.Pick.Tolerance()
	pc.PickDepth = q.depth
	pc.MaxDepth = q.maxDepth
	pc.IgnoreSelected = q.ignoreSelected || env.cfg.Pick.IgnoreSelected
	pc.MaxLayer = env.cfg.Pick.MaxLayer
	if q.maxLayer != nil {
		pc.MaxLayer = *q.maxLayer
	}
	pc.Logger = applog.WithComponent("pick")
	for _, ref := range []struct {
		name string
		dst  *pick.Component
	}{{q.root, &pc.Root}, {q.exclude, &pc.Excluded}, {q.dropping, &pc.Dropping}} {
		if ref.name == "" {
			continue
		}
		n, err := lookup(s, ref.name)
		if err != nil {
			return err
		}
		*ref.dst = n
	}
	return nil
}

func lookup(s *scene.Scene, name string) (scene.Node, error) {
	n, ok := s.ByName(name)
	if !ok {
		return scene.Node{}, fmt.Errorf("%w: %q", storage.ErrUnknownNode, name)
	}
	return n, nil
}

func loadScene(env *cmdEnv, path string) (*scene.Scene, error) {
	doc, err := storage.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	s, err := doc.Build()
	if err != nil {
		return nil, err
	}
	env.sess.DocPath = path
	env.sess.Scene = s
	return s, nil
}

func queryContext(s *scene.Scene, kind string) context.Context {
	return applog.ContextWith(context.Background(), slog.String("scene", s.Name), slog.String("query", kind))
}

// names returns the node names of cs, skipping nil entries.
func names(cs []pick.Component) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		if n, ok := c.(scene.Node); ok {
			out = append(out, n.Name())
		}
	}
	return out
}

func nodes(cs []pick.Component) []scene.Node {
	out := make([]scene.Node, 0, len(cs))
	for _, c := range cs {
		if n, ok := c.(scene.Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func printResult(env *cmdEnv, result []string) {
	if len(result) == 0 {
		_, _ = fmt.Fprintln(env.out, "(none)")
		return
	}
	for _, r := range result {
		_, _ = fmt.Fprintln(env.out, r)
	}
}

func openJournal(ctx context.Context, env *cmdEnv) (*storage.Journal, error) {
	dsn, err := env.cfg.JournalDSN()
	if err != nil {
		return nil, fmt.Errorf("resolve journal: %w", err)
	}
	return storage.OpenJournal(ctx, dsn)
}

func record(ctx context.Context, env *cmdEnv, q *queryFlags, e *storage.Entry) error {
	if !q.record && !env.cfg.Journal.Record {
		return nil
	}
	if !q.journaled() {
		env.log.DebugContext(ctx, "query not journaled; it uses options a journal entry cannot replay")
		return nil
	}
	j, err := openJournal(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := j.Close(); cerr != nil {
			env.log.Warn("close journal", slog.Any("err", cerr))
		}
	}()
	if err := j.Record(ctx, e); err != nil {
		return err
	}
	env.log.InfoContext(ctx, "query journaled", slog.Int64("id", e.ID))
	return nil
}

func runPick(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "pick")
	var q queryFlags
	q.register(fs, true, true)
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 3 {
		return errUsage
	}
	xy, err := parseFloats(pos[1:])
	if err != nil {
		return err
	}
	s, err := loadScene(env, pos[0])
	if err != nil {
		return err
	}
	pc := pick.NewPointContext(s.Root(), xy[0], xy[1], q.zoom)
	if err := q.apply(env, s, pc); err != nil {
		return err
	}
	ctx := queryContext(s, storage.KindPoint)
	result := names([]pick.Component{pick.Point(pc)})
	env.log.InfoContext(ctx, "point pick", slog.Float64("x", pc.X), slog.Float64("y", pc.Y),
		slog.Int("pick_depth", pc.PickDepth), slog.Any("result", result))
	printResult(env, result)
	return record(ctx, env, &q, &storage.Entry{
		Scene: s.Name, Kind: storage.KindPoint, X: pc.X, Y: pc.Y, Zoom: q.zoom,
		PickDepth: pc.PickDepth, IgnoreSelected: pc.IgnoreSelected, MaxLayer: pc.MaxLayer, Result: result,
	})
}

func runRegion(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "region")
	var q queryFlags
	q.register(fs, false, true)
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 5 {
		return errUsage
	}
	v, err := parseFloats(pos[1:])
	if err != nil {
		return err
	}
	s, err := loadScene(env, pos[0])
	if err != nil {
		return err
	}
	pc := pick.NewRegionContext(s.Root(), vector.R(v[0], v[1], v[2], v[3]), q.zoom)
	if err := q.apply(env, s, pc); err != nil {
		return err
	}
	ctx := queryContext(s, storage.KindRegion)
	result := names(pick.Region(pc))
	env.log.InfoContext(ctx, "region pick", slog.Any("rect", pc.Rect()), slog.Int("hits", len(result)))
	printResult(env, result)
	return record(ctx, env, &q, &storage.Entry{
		Scene: s.Name, Kind: storage.KindRegion, X: pc.X, Y: pc.Y, W: pc.Width, H: pc.Height, Zoom: q.zoom,
		IgnoreSelected: pc.IgnoreSelected, MaxLayer: pc.MaxLayer, Result: result,
	})
}

func runValidate(env *cmdEnv, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := storage.ValidateDocument(data); err != nil {
		return err
	}
	doc, err := storage.ParseDocument(data)
	if err != nil {
		return err
	}
	s, err := doc.Build()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.out, "ok: %s (%d nodes)\n", s.Name, s.Len()-1)
	return nil
}

func runRender(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "render")
	var q queryFlags
	q.register(fs, true, false)
	x := fs.Float64("x", math.NaN(), "query point x")
	y := fs.Float64("y", math.NaN(), "query point y")
	rect := fs.String("rect", "", "query rectangle x,y,w,h")
	scale := fs.Float64("scale", 1, "output units per document unit")
	labels := fs.Bool("labels", false, "draw node names")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return errUsage
	}
	s, err := loadScene(env, pos[0])
	if err != nil {
		return err
	}
	opts := export.Options{Scale: *scale, Labels: *labels}
	switch {
	case *rect != "":
		v, err := parseFloats(strings.Split(*rect, ","))
		if err != nil {
			return err
		}
		if len(v) != 4 {
			return fmt.Errorf("%w: -rect needs x,y,w,h", errUsage)
		}
		pc := pick.NewRegionContext(s.Root(), vector.R(v[0], v[1], v[2], v[3]), q.zoom)
		if err := q.apply(env, s, pc); err != nil {
			return err
		}
		r := pc.Rect()
		opts.Rect = &r
		opts.Picked = nodes(pick.Region(pc))
	case !math.IsNaN(*x) && !math.IsNaN(*y):
		pc := pick.NewPointContext(s.Root(), *x, *y, q.zoom)
		if err := q.apply(env, s, pc); err != nil {
			return err
		}
		p := pc.Point()
		opts.Point = &p
		opts.Picked = nodes([]pick.Component{pick.Point(pc)})
	case !math.IsNaN(*x) || !math.IsNaN(*y):
		return fmt.Errorf("%w: -x and -y go together", errUsage)
	}
	if err := export.RenderFile(pos[1], s, opts); err != nil {
		return err
	}
	env.log.Info("rendered", slog.String("out", pos[1]), slog.Int("picked", len(opts.Picked)))
	_, _ = fmt.Fprintf(env.out, "wrote %s\n", pos[1])
	return nil
}

// replayEntry re-runs e against s. One cache serves all entries of a replay.
func replayEntry(s *scene.Scene, e storage.Entry, tol pick.Tolerance, cache *pick.Cache) []string {
	var pc *pick.Context
	if e.Kind == storage.KindRegion {
		pc = pick.NewRegionContext(s.Root(), vector.R(e.X, e.Y, e.W, e.H), e.Zoom)
	} else {
		pc = pick.NewPointContext(s.Root(), e.X, e.Y, e.Zoom)
	}
	pc.Tolerance = tol
	pc.PickDepth = e.PickDepth
	pc.IgnoreSelected = e.IgnoreSelected
	pc.MaxLayer = e.MaxLayer
	pc.Cache = cache
	pc.Logger = applog.WithComponent("pick")
	if e.Kind == storage.KindRegion {
		return names(pick.Region(pc))
	}
	return names([]pick.Component{pick.Point(pc)})
}

func runReplay(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "replay")
	limit := fs.Int("limit", 0, "replay at most n entries (0 = all)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}
	s, err := loadScene(env, pos[0])
	if err != nil {
		return err
	}
	ctx := queryContext(s, "replay")
	j, err := openJournal(ctx, env)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()
	entries, err := j.List(ctx, s.Name, *limit)
	if err != nil {
		return err
	}
	tol := env.cfg.Pick.Tolerance()
	cache := pick.NewCache()
	bad := 0
	for _, e := range entries {
		got := replayEntry(s, e, tol, cache)
		if slices.Equal(got, e.Result) {
			continue
		}
		bad++
		env.log.WarnContext(ctx, "replay mismatch", slog.Int64("id", e.ID), slog.Any("recorded", e.Result), slog.Any("got", got))
		_, _ = fmt.Fprintf(env.out, "MISMATCH #%d %s: recorded %v, got %v\n", e.ID, e.Kind, e.Result, got)
	}
	_, _ = fmt.Fprintf(env.out, "replayed %d entries, %d mismatches\n", len(entries), bad)
	if bad > 0 {
		return errMismatch
	}
	return nil
}

func runJournal(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "journal")
	limit := fs.Int("limit", 0, "list at most n entries (0 = all)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}
	ctx := applog.ContextWith(context.Background(), slog.String("scene", pos[0]))
	j, err := openJournal(ctx, env)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()
	entries, err := j.List(ctx, pos[0], *limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		where := fmt.Sprintf("%g,%g", e.X, e.Y)
		if e.Kind == storage.KindRegion {
			where = fmt.Sprintf("%g,%g,%g,%g", e.X, e.Y, e.W, e.H)
		}
		_, _ = fmt.Fprintf(env.out, "#%d %s %s zoom=%g depth=%d -> %s\n",
			e.ID, e.Kind, where, e.Zoom, e.PickDepth, strings.Join(e.Result, ","))
	}
	_, _ = fmt.Fprintf(env.out, "%d entries\n", len(entries))
	return nil
}

func runVersion(env *cmdEnv, _ []string) error {
	_, _ = fmt.Fprintln(env.out, version.String())
	return nil
}
