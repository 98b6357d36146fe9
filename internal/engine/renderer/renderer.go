// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/anypose/internal/engine/debug"
	"github.com/Faultbox/anypose/internal/engine/interaction"
	"github.com/Faultbox/anypose/internal/engine/shader"
	"github.com/Faultbox/anypose/internal/engine/skeleton"
	"github.com/Faultbox/anypose/internal/logger"
	"github.com/Faultbox/anypose/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	GridCells    int
	GridCellSize float32
	GridHeight   float32 // ground level, usually just below the feet

	ClearColor [3]float32
}

// Renderer draws the posing viewport as colored line batches.
type Renderer struct {
	config Config

	lineProgram *shader.Program
	vao         uint32
	vbo         uint32
	vboCapacity int // bytes

	lines  debug.Lines
	styles map[string]interaction.Style
}

var _ interaction.Highlighter = (*Renderer)(nil)

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uViewProj;

out vec3 vertexColor;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
	vertexColor = aColor;
}
`

const lineFragmentShader = `
#version 410 core

in vec3 vertexColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vertexColor, 1.0);
}
`

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		styles: make(map[string]interaction.Style),
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.MULTISAMPLE)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)

	var err error
	r.lineProgram, err = shader.New(lineVertexShader, lineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create line shader: %w", err)
	}

	r.createLineBuffers()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.lineProgram != nil {
		r.lineProgram.Delete()
	}
}

// Resize handles framebuffer resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetJointStyle records the highlight for a joint proxy.
func (r *Renderer) SetJointStyle(joint string, s interaction.Style) {
	if s == interaction.StyleNormal {
		delete(r.styles, joint)
		return
	}
	r.styles[joint] = s
}

// JointStyle returns the highlight of a joint proxy.
func (r *Renderer) JointStyle(joint string) interaction.Style {
	return r.styles[joint]
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.lines.Reset()
}

// DrawGrid queues the ground grid.
func (r *Renderer) DrawGrid() {
	r.lines.Grid(r.config.GridCells, r.config.GridCellSize, r.config.GridHeight)
}

// DrawModel queues a model's body parts, bones and joint proxies.
func (r *Renderer) DrawModel(m *skeleton.Model, frame skeleton.Frame) {
	r.lines.Model(m, frame, r.JointStyle)
}

// DrawGizmo queues rotation rings around a joint.
func (r *Renderer) DrawGizmo(world math.Mat4, radius float32) {
	r.lines.RotationRings(world, radius)
}

// End uploads the queued lines and draws them.
func (r *Renderer) End(viewProj math.Mat4) {
	n := r.lines.Len()
	if n == 0 {
		return
	}
	verts := r.lines.Vertices()
	size := n * debug.VertexSize

	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if size > r.vboCapacity {
		// Grow geometrically so a model swap does not reallocate every frame
		r.vboCapacity = size * 2
		gl.BufferData(gl.ARRAY_BUFFER, r.vboCapacity, nil, gl.DYNAMIC_DRAW)
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, unsafe.Pointer(&verts[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.lineProgram.Use()
	r.lineProgram.SetMat4("uViewProj", viewProj)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.LINES, 0, int32(n))
	gl.BindVertexArray(0)
}

// ReadPixels reads the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// createLineBuffers creates the dynamic line VAO/VBO.
func (r *Renderer) createLineBuffers() {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, debug.VertexSize, nil)
	gl.EnableVertexAttribArray(0)

	// Color attribute (location = 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, debug.VertexSize, 3*4)
	gl.EnableVertexAttribArray(1)

	// Unbind
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("line buffers created",
		zap.Uint32("vao", r.vao),
		zap.Uint32("vbo", r.vbo),
	)
}
