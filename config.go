// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/YindSoft/webtexture/engine"
	"github.com/YindSoft/webtexture/nativeengine"
	"github.com/YindSoft/webtexture/softengine"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the base URL of content loaded without one.
const DefaultBaseURL = "about:blank"

const (
	defaultMinContentWidth  = 300
	defaultMinContentHeight = 100
)

// Duration is a time.Duration read from TOML strings such as "100ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Options for creating a pump. All fields are optional.
type Options struct {
	BaseDir string `toml:"base_dir"` // Directory containing the native bridge library. Defaults to working directory.
	Debug   bool   `toml:"debug"`    // Enable debug logging.

	LogLevel string `toml:"log_level"`
	// Scheme is the reserved URL scheme. It is registered once per process;
	// the first pump's value wins.
	Scheme string `toml:"scheme"`

	TickInterval   Duration `toml:"tick_interval"`
	ScrollRepeat   Duration `toml:"scroll_repeat"`
	ResolveTimeout Duration `toml:"resolve_timeout"`

	FrameWidth       int `toml:"frame_width"`
	FrameHeight      int `toml:"frame_height"`
	MinContentWidth  int `toml:"min_content_width"`
	MinContentHeight int `toml:"min_content_height"`

	// DisableEmbedCapture turns off periodic captures of documents that
	// contain embed or object elements.
	DisableEmbedCapture bool `toml:"disable_embed_capture"`

	Engine    engine.Factory     `toml:"-"`
	Logger    logrus.FieldLogger `toml:"-"`
	Callbacks *CallbackQueue     `toml:"-"`
}

// LoadOptions reads Options from a TOML file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options %s: %w", path, err)
	}
	var opts Options
	if err := toml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing options %s: %w", path, err)
	}
	return &opts, nil
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Scheme == "" {
		out.Scheme = "webtexture"
	}
	if out.TickInterval <= 0 {
		out.TickInterval = Duration(30 * time.Millisecond)
	}
	if out.ScrollRepeat <= 0 {
		out.ScrollRepeat = Duration(100 * time.Millisecond)
	}
	if out.ResolveTimeout <= 0 {
		out.ResolveTimeout = Duration(2 * time.Second)
	}
	if out.FrameWidth <= 0 {
		out.FrameWidth = 800
	}
	if out.FrameHeight <= 0 {
		out.FrameHeight = 600
	}
	if out.MinContentWidth <= 0 {
		out.MinContentWidth = defaultMinContentWidth
	}
	if out.MinContentHeight <= 0 {
		out.MinContentHeight = defaultMinContentHeight
	}
	if out.BaseDir == "" {
		out.BaseDir = resolveBaseDir()
	}
	if out.Logger == nil {
		out.Logger = newLogger(out.LogLevel, out.Debug)
	}
	if out.Engine == nil {
		out.Engine = defaultEngine(out.BaseDir, out.Debug, out.Logger)
	}
	return out
}

func resolveBaseDir() string {
	baseDir, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(baseDir, nativeengine.LibraryName())); err != nil {
		if exe, _ := os.Executable(); exe != "" {
			baseDir = filepath.Dir(exe)
		}
	}
	return baseDir
}

func newLogger(level string, debug bool) logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	if lv, err := logrus.ParseLevel(level); level != "" && err == nil {
		l.SetLevel(lv)
	}
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func defaultEngine(baseDir string, debug bool, log logrus.FieldLogger) engine.Factory {
	if err := nativeengine.Load(baseDir, debug); err != nil {
		log.WithError(err).WithField("base_dir", baseDir).Warn("native bridge unavailable, falling back to the soft engine")
		return softengine.Factory(nil)
	}
	return nativeengine.Factory()
}
