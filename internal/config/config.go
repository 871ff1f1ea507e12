/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "scenepick/internal/log"
	"scenepick/internal/pick"
)

// PickConfig tunes pick queries. Tolerance fields mirror pick.Tolerance.
type PickConfig struct {
	RadiusPx       float64 `yaml:"radius_px"`
	ZoomOutBelow   float64 `yaml:"zoom_out_below"`
	ZoomInAt       float64 `yaml:"zoom_in_at"`
	ZoomInFactor   float64 `yaml:"zoom_in_factor"`
	IgnoreSelected bool    `yaml:"ignore_selected"`
	MaxLayer       int     `yaml:"max_layer"` // pick.NoLimit (-1) = unlimited, 0 = layer 0 only
}

type JournalConfig struct {
	// DSN is a SQLite file path or a postgres:// URL. Empty means journal.sqlite next to the config file.
	DSN    string `yaml:"dsn"`
	Record bool   `yaml:"record"` // record every CLI query without -record
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Pick          PickConfig    `yaml:"pick"`
	Journal       JournalConfig `yaml:"journal"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	t := pick.DefaultTolerance()
	return AppConfig{
		ConfigVersion: 1,
		Pick: PickConfig{
			RadiusPx:     t.RadiusPx,
			ZoomOutBelow: t.ZoomOutBelow,
			ZoomInAt:     t.ZoomInAt,
			ZoomInFactor: t.ZoomInFactor,
			MaxLayer:     pick.NoLimit,
		},
		Journal: JournalConfig{DSN: "", Record: false},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile = "SPK_CONFIG"

	EnvPickRadius       = "SPK_PICK_RADIUS"
	EnvPickZoomOutBelow = "SPK_PICK_ZOOM_OUT_BELOW"
	EnvPickZoomInAt     = "SPK_PICK_ZOOM_IN_AT"
	EnvPickZoomInFactor = "SPK_PICK_ZOOM_IN_FACTOR"
	EnvPickMaxLayer     = "SPK_PICK_MAX_LAYER"
	EnvJournalDSN       = "SPK_JOURNAL_DSN"
	EnvJournalRecord    = "SPK_JOURNAL_RECORD"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SPK_LOG_LEVEL"
	EnvLogFormat = "SPK_LOG_FORMAT"
	EnvLogSource = "SPK_LOG_SOURCE"
	EnvLogFile   = "SPK_LOG_FILE"
)

// ConfigPath returns the per-user config file path. SPK_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ScenePick")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ScenePick")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "scenepick")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file. A missing file yields the defaults;
// a malformed one is reported after defaults and env overrides are applied.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	var ferr error
	if data, err := os.ReadFile(path); err == nil {
		// A missing max_layer key keeps NoLimit so an explicit 0 can be told apart.
		fileCfg := AppConfig{Pick: PickConfig{MaxLayer: pick.NoLimit}}
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			ferr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, ferr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg to path.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// pick
	if src.Pick.RadiusPx > 0 {
		dst.Pick.RadiusPx = src.Pick.RadiusPx
	}
	if src.Pick.ZoomOutBelow > 0 {
		dst.Pick.ZoomOutBelow = src.Pick.ZoomOutBelow
	}
	if src.Pick.ZoomInAt > 0 {
		dst.Pick.ZoomInAt = src.Pick.ZoomInAt
	}
	if src.Pick.ZoomInFactor > 0 {
		dst.Pick.ZoomInFactor = src.Pick.ZoomInFactor
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Pick.IgnoreSelected = src.Pick.IgnoreSelected
	if src.Pick.MaxLayer >= 0 {
		dst.Pick.MaxLayer = src.Pick.MaxLayer
	}
	// journal
	if strings.TrimSpace(src.Journal.DSN) != "" {
		dst.Journal.DSN = strings.TrimSpace(src.Journal.DSN)
	}
	dst.Journal.Record = src.Journal.Record
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envFloat(key string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			*dst = f
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envFloat(EnvPickRadius, &cfg.Pick.RadiusPx)
	envFloat(EnvPickZoomOutBelow, &cfg.Pick.ZoomOutBelow)
	envFloat(EnvPickZoomInAt, &cfg.Pick.ZoomInAt)
	envFloat(EnvPickZoomInFactor, &cfg.Pick.ZoomInFactor)
	if v := strings.TrimSpace(os.Getenv(EnvPickMaxLayer)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pick.MaxLayer = max(n, pick.NoLimit)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalDSN)); v != "" {
		cfg.Journal.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalRecord)); v != "" {
		cfg.Journal.Record = parseBool(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"pick.radius_px":      EnvPickRadius,
	"pick.zoom_out_below": EnvPickZoomOutBelow,
	"pick.zoom_in_at":     EnvPickZoomInAt,
	"pick.zoom_in_factor": EnvPickZoomInFactor,
	"pick.max_layer":      EnvPickMaxLayer,
	"journal.dsn":         EnvJournalDSN,
	"journal.record":      EnvJournalRecord,
	"logging.level":       EnvLogLevel,
	"logging.format":      EnvLogFormat,
	"logging.source":      EnvLogSource,
	"logging.file":        EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Tolerance converts the pick settings for the pick engine.
func (p PickConfig) Tolerance() pick.Tolerance {
	return pick.Tolerance{
		RadiusPx:     p.RadiusPx,
		ZoomOutBelow: p.ZoomOutBelow,
		ZoomInAt:     p.ZoomInAt,
		ZoomInFactor: p.ZoomInFactor,
	}
}

// Options converts the logging settings for log.Init.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

// JournalDSN resolves the journal location, defaulting next to the config file.
func (c AppConfig) JournalDSN() (string, error) {
	if c.Journal.DSN != "" {
		return c.Journal.DSN, nil
	}
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "journal.sqlite"), nil
}
