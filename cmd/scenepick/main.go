/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"scenepick/internal/config"
	"scenepick/internal/crash"
	applog "scenepick/internal/log"
	"scenepick/internal/version"
)

var (
	errUsage    = errors.New("usage")
	errMismatch = errors.New("replay mismatch")
)

type command struct {
	name  string
	usage string
	run   func(env *cmdEnv, args []string) error
}

// cmdEnv is what every command gets: resolved config, output and the crash session.
type cmdEnv struct {
	cfg  config.AppConfig
	out  io.Writer
	sess *crash.Session
	log  *slog.Logger
}

var commands = []command{
	{"pick", "pick <scene.json> <x> <y> [-zoom z] [-depth n] [-ignore-selected] [-max-layer n] [-root name] [-exclude name] [-dropping name] [-record]", runPick},
	{"region", "region <scene.json> <x> <y> <w> <h> [-zoom z] [-ignore-selected] [-max-layer n] [-root name] [-exclude name] [-record]", runRegion},
	{"validate", "validate <scene.json>", runValidate},
	{"render", "render <scene.json> <out.png|out.svg|out.pdf> [-x x -y y | -rect x,y,w,h] [-zoom z] [-depth n] [-scale s] [-labels]", runRender},
	{"replay", "replay <scene.json> [-limit n]", runReplay},
	{"journal", "journal <scene-name> [-limit n]", runJournal},
	{"version", "version|-v|--version", runVersion},
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "scenepick: pick queries over scene documents")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	for _, c := range commands {
		_, _ = fmt.Fprintf(w, "  scenepick %s\n", c.usage)
	}
}

func main() {
	// initialize structured logging using environment defaults until the config is read
	applog.Init(applog.FromEnv())
	sess := &crash.Session{}
	defer crash.Recover(sess)
	code := run(os.Args[1:], os.Stdout, sess)
	if code != 0 {
		os.Exit(code)
	}
}

// run executes one command and returns the process exit code.
func run(args []string, out io.Writer, sess *crash.Session) int {
	if len(args) == 0 {
		usage(out)
		return 2
	}
	name := args[0]
	switch name {
	case "--version", "-v":
		name = "version"
	case "help", "-h", "--help":
		usage(out)
		return 0
	}

	cfg, err := config.Load()
	applog.Init(cfg.Logging.Options())
	l := applog.WithComponent("cli")
	if err != nil {
		l.Warn("config unreadable; using defaults and env", slog.Any("err", err))
	}
	if sess == nil {
		sess = &crash.Session{}
	}
	sess.Command = name
	env := &cmdEnv{cfg: cfg, out: out, sess: sess, log: l}

	for _, c := range commands {
		if c.name != name {
			continue
		}
		l.Debug("start", slog.String("cmd", name), slog.Int("args", len(args)-1))
		err := c.run(env, args[1:])
		switch {
		case err == nil:
			return 0
		case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
			if err != errUsage && err != flag.ErrHelp {
				_, _ = fmt.Fprintln(out, "Error:", err)
			}
			_, _ = fmt.Fprintf(out, "Usage: scenepick %s\n", c.usage)
			return 2
		case errors.Is(err, errMismatch):
			return 1
		default:
			l.Error(name+" failed", slog.Any("err", err))
			_, _ = fmt.Fprintln(out, "Error:", err)
			return 1
		}
	}
	_, _ = fmt.Fprintf(out, "unknown command %q\n", name)
	usage(out)
	return 2
}
