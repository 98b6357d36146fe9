package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Overrides carries command-line settings that take priority over the file.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	ConfigPath  string
	Debug       bool
	Windowed    bool
	Fullscreen  bool
	Width       int
	Height      int
	BoneFile    string
	Constraints string
	Watch       bool
	Preset      string
}

// ParseSize parses a "WIDTHxHEIGHT" string such as "1920x1080".
func ParseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: expected WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad width", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: bad height", s)
	}
	return w, h, nil
}

// apply applies CLI overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.Windowed {
		cfg.Viewport.Fullscreen = false
	}
	if o.Fullscreen {
		cfg.Viewport.Fullscreen = true
	}
	if o.Width > 0 {
		cfg.Viewport.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Viewport.Height = o.Height
	}
	if o.BoneFile != "" {
		cfg.Rig.BoneFile = o.BoneFile
	}
	if o.Constraints != "" {
		cfg.Rig.ConstraintsFile = o.Constraints
	}
	if o.Watch {
		cfg.Rig.WatchConstraints = true
	}
	if o.Preset != "" {
		cfg.Camera.Preset = o.Preset
	}
}
