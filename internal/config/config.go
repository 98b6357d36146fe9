// Package config handles viewer configuration loading and management.
package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Faultbox/anypose/internal/engine/camera"
	"github.com/Faultbox/anypose/internal/engine/debug"
)

// Config holds all viewer settings.
type Config struct {
	Viewport    ViewportConfig    `yaml:"viewport"`
	Camera      CameraConfig      `yaml:"camera"`
	Interaction InteractionConfig `yaml:"interaction"`
	Rig         RigConfig         `yaml:"rig"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Viewport.Validate(); err != nil {
		return err
	}
	if err := c.Camera.Validate(); err != nil {
		return err
	}
	if err := c.Interaction.Validate(); err != nil {
		return err
	}
	if err := c.Rig.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// ViewportConfig holds display and rendering settings.
type ViewportConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Fullscreen    bool    `yaml:"fullscreen"`
	VSync         bool    `yaml:"vsync"`
	MSAA          int     `yaml:"msaa"`
	GridCells     int     `yaml:"grid_cells"`
	GridCellSize  float32 `yaml:"grid_cell_size"`
	ScreenshotDir string  `yaml:"screenshot_dir"`

	ScreenshotFormat  string `yaml:"screenshot_format"`   // png, webp or tga
	ScreenshotMaxSize int    `yaml:"screenshot_max_size"` // longer side in pixels, 0 keeps the framebuffer size
}

// Validate validates the viewport configuration.
func (c *ViewportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(320)),
		validation.Field(&c.Height, validation.Required, validation.Min(240)),
		validation.Field(&c.MSAA, validation.In(0, 2, 4, 8, 16)),
		validation.Field(&c.GridCells, validation.Min(0), validation.Max(200)),
		validation.Field(&c.GridCellSize, validation.Required, validation.Min(float32(0.01))),
		validation.Field(&c.ScreenshotFormat, validation.In(screenshotFormats()...)),
		validation.Field(&c.ScreenshotMaxSize, validation.Min(0)),
	)
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	Preset        string        `yaml:"preset"`
	FovY          float32       `yaml:"fov"` // degrees
	Near          float32       `yaml:"near"`
	Far           float32       `yaml:"far"`
	MinDistance   float32       `yaml:"min_distance"`
	MaxDistance   float32       `yaml:"max_distance"`
	Damping       bool          `yaml:"damping"`
	DampingFactor float32       `yaml:"damping_factor"`
	Transition    time.Duration `yaml:"transition"`
}

// Validate validates the camera configuration.
func (c *CameraConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Preset, validation.In(presetNames()...)),
		validation.Field(&c.FovY, validation.Required, validation.Min(float32(10)), validation.Max(float32(150))),
		validation.Field(&c.Near, validation.Required, validation.Min(float32(0.001))),
		validation.Field(&c.Far, validation.Required, validation.Min(c.Near).Error("must be greater than near")),
		validation.Field(&c.MinDistance, validation.Required, validation.Min(float32(0.01))),
		validation.Field(&c.MaxDistance, validation.Required, validation.Min(c.MinDistance).Error("must not be less than min_distance")),
		validation.Field(&c.DampingFactor, validation.Min(float32(0)), validation.Max(float32(1))),
		validation.Field(&c.Transition, validation.Min(time.Duration(0))),
	)
}

func screenshotFormats() []any {
	return toAny(debug.ScreenshotFormats)
}

func presetNames() []any {
	return toAny(camera.PresetNames())
}

func toAny(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// Apply copies the settings onto an orbit camera and moves it to the
// configured preset.
func (c *CameraConfig) Apply(o *camera.Orbit) {
	o.FovY = c.FovY
	o.Near = c.Near
	o.Far = c.Far
	o.MinDistance = c.MinDistance
	o.MaxDistance = c.MaxDistance
	o.EnableDamping = c.Damping
	o.DampingFactor = c.DampingFactor
	o.TransitionDuration = c.Transition
	if c.Preset != "" {
		o.SetPreset(c.Preset, false)
	}
}

// InteractionConfig holds picking and gizmo settings.
type InteractionConfig struct {
	ClickSlop        float32 `yaml:"click_slop"` // pixels
	GizmoRadius      float32 `yaml:"gizmo_radius"`
	GizmoSensitivity float32 `yaml:"gizmo_sensitivity"` // radians per pixel
	ShowJoints       bool    `yaml:"show_joints"`
}

// Validate validates the interaction configuration.
func (c *InteractionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ClickSlop, validation.Min(float32(0))),
		validation.Field(&c.GizmoRadius, validation.Required, validation.Min(float32(0.01))),
		validation.Field(&c.GizmoSensitivity, validation.Required, validation.Min(float32(0.0001))),
	)
}

// RigConfig names the optional external skeleton and constraint files.
type RigConfig struct {
	BoneFile         string  `yaml:"bone_file"`
	ProxyRadius      float32 `yaml:"proxy_radius"` // joint pick radius for imported rigs, 0 for the default
	ConstraintsFile  string  `yaml:"constraints_file"`
	WatchConstraints bool    `yaml:"watch_constraints"`
}

// Validate validates the rig configuration.
func (c *RigConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ProxyRadius, validation.Min(float32(0))),
		validation.Field(&c.ConstraintsFile, validation.When(c.WatchConstraints,
			validation.Required.Error("is required when watch_constraints is set"))),
	)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Validate validates the logging configuration.
func (c *LoggingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:         1280,
			Height:        720,
			Fullscreen:    false,
			VSync:         true,
			MSAA:          4,
			GridCells:     10,
			GridCellSize:  1,
			ScreenshotDir: "screenshots",

			ScreenshotFormat: debug.FormatPNG,
		},
		Camera: CameraConfig{
			Preset:        camera.PresetIsometric,
			FovY:          75,
			Near:          0.1,
			Far:           1000,
			MinDistance:   2,
			MaxDistance:   50,
			Damping:       true,
			DampingFactor: 0.05,
			Transition:    time.Second,
		},
		Interaction: InteractionConfig{
			ClickSlop:        4,
			GizmoRadius:      0.5,
			GizmoSensitivity: 0.01,
			ShowJoints:       true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
