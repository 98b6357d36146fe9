// Package viewer runs the SDL2/OpenGL posing window around a studio session.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/anypose/internal/config"
	"github.com/Faultbox/anypose/internal/engine/debug"
	"github.com/Faultbox/anypose/internal/engine/input"
	"github.com/Faultbox/anypose/internal/engine/pose"
	"github.com/Faultbox/anypose/internal/engine/renderer"
	"github.com/Faultbox/anypose/internal/engine/window"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/internal/studio"
)

// App is the viewer instance. All fields are owned by the loop goroutine;
// background work reports back through the channels.
type App struct {
	cfg *config.Config

	window      *window.Window
	renderer    *renderer.Renderer
	input       *input.Input
	session     *studio.Session
	screenshots *debug.ScreenshotCapture

	reloads        chan pose.Table
	boneFiles      chan string
	title          string
	wantScreenshot bool
}

// New creates the window, GL renderer and posing session.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Viewport.Width),
		zap.Int("height", cfg.Viewport.Height),
		zap.Bool("fullscreen", cfg.Viewport.Fullscreen),
	)

	screenshots := debug.NewScreenshotCapture(cfg.Viewport.ScreenshotDir, "anypose",
		debug.WithFormat(cfg.Viewport.ScreenshotFormat),
		debug.WithMaxSize(cfg.Viewport.ScreenshotMaxSize),
	)
	a := &App{
		cfg:         cfg,
		input:       input.New(),
		screenshots: screenshots,
		reloads:     make(chan pose.Table, 1),
		boneFiles:   make(chan string, 1),
	}

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      studio.Title,
		Width:      cfg.Viewport.Width,
		Height:     cfg.Viewport.Height,
		Fullscreen: cfg.Viewport.Fullscreen,
		VSync:      cfg.Viewport.VSync,
		MSAA:       cfg.Viewport.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:        dw,
		Height:       dh,
		GridCells:    cfg.Viewport.GridCells,
		GridCellSize: cfg.Viewport.GridCellSize,
		ClearColor:   [3]float32{0.1, 0.1, 0.15},
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.session, err = studio.NewSession(cfg, a.renderer)
	if err != nil {
		a.Close()
		return nil, err
	}
	// Picking and the camera work in window points, GL in pixels.
	a.session.Resize(a.window.GetSize())

	logger.Info("viewer initialized")
	return a, nil
}

// Session returns the posing session.
func (a *App) Session() *studio.Session {
	return a.session
}

// Run runs the frame loop until the window closes or ctx is cancelled. It
// must be called from the thread that created the window.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	if path := a.cfg.Rig.ConstraintsFile; path != "" && a.cfg.Rig.WatchConstraints {
		g.Go(func() error {
			if err := pose.WatchConstraints(gCtx, path, a.reloads); err != nil {
				logger.Warn("constraint hot reload unavailable", zap.String("path", path), zap.Error(err))
			}
			return nil
		})
	}

	err := a.loop(gCtx)
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

func (a *App) loop(ctx context.Context) error {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	logger.Info("starting frame loop")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			return nil
		}
		for _, ev := range a.input.Events() {
			if quit := a.handleEvent(ctx, ev); quit {
				return nil
			}
		}

		// 2. Apply background results
		a.drain()

		// 3. Advance camera
		a.session.Update(dt)

		// 4. Render, capture, present
		a.render()
		if a.wantScreenshot {
			a.wantScreenshot = false
			a.screenshot()
		}
		a.window.SwapBuffers()
		a.updateTitle()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

func (a *App) handleEvent(ctx context.Context, ev input.Event) bool {
	ic := a.session.Interaction

	switch ev.Type {
	case input.EventQuit:
		return true
	case input.EventWindowResize:
		a.session.Resize(a.window.GetSize())
		a.renderer.Resize(a.window.DrawableSize())
	case input.EventMouseDown:
		ic.PointerDown(ev.Pointer())
	case input.EventMouseMove:
		ic.PointerMove(ev.Pointer())
	case input.EventMouseUp:
		ic.PointerUp(ev.Pointer())
	case input.EventMouseWheel:
		ic.Wheel(ev.Wheel)
	case input.EventKeyDown:
		if ev.Repeat {
			return false
		}
		return a.handleKey(ctx, ev)
	}
	return false
}

func (a *App) handleKey(ctx context.Context, ev input.Event) bool {
	s := a.session

	switch ev.Key {
	case sdl.SCANCODE_ESCAPE:
		return true
	case sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4,
		sdl.SCANCODE_5, sdl.SCANCODE_6, sdl.SCANCODE_7:
		s.PresetKey(int(ev.Key-sdl.SCANCODE_1) + 1)
	case sdl.SCANCODE_HOME:
		s.ResetView()
	case sdl.SCANCODE_H:
		visible := s.ToggleJoints()
		logger.Info("joint proxies toggled", zap.Bool("visible", visible))
	case sdl.SCANCODE_E:
		s.Interaction.SetEnabled(!s.Interaction.Enabled())
	case sdl.SCANCODE_R:
		if ev.Shift {
			s.ResetPose()
		} else {
			s.ResetSelected()
		}
	case sdl.SCANCODE_O:
		a.openBoneDialog(ctx)
	case sdl.SCANCODE_F12:
		a.wantScreenshot = true
	}
	return false
}

// openBoneDialog shows a native file dialog to pick a bone file.
func (a *App) openBoneDialog(ctx context.Context) {
	// The dialog blocks, so it runs off the loop; the model swap happens in drain
	go func() {
		filename, err := dialog.File().
			Filter("Bone files", "yaml", "yml").
			Filter("All Files", "*").
			Title("Open Bone File").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case a.boneFiles <- filename:
		case <-ctx.Done():
		}
	}()
}

// drain applies results produced by background goroutines.
func (a *App) drain() {
	for {
		select {
		case t := <-a.reloads:
			a.session.SetConstraints(t)
		case path := <-a.boneFiles:
			if err := a.session.LoadBoneFile(path); err != nil {
				dialog.Message("Could not load %s:\n%v", path, err).Title("Open Bone File").Error()
			}
		default:
			return
		}
	}
}

func (a *App) render() {
	s := a.session
	frame := s.Frame()

	a.renderer.Begin()
	a.renderer.DrawGrid()
	a.renderer.DrawModel(s.Model(), frame)
	if world, ok := s.GizmoTransform(frame); ok {
		a.renderer.DrawGizmo(world, s.Gizmo.HandleRadius)
	}
	a.renderer.End(s.Camera.ViewProjection())
}

func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (a *App) updateTitle() {
	title := a.session.Title()
	if title != a.title {
		a.title = title
		a.window.SetTitle(title)
	}
}

// Close cleans up viewer resources.
func (a *App) Close() {
	logger.Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
