// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marble-maze/internal/engine/lighting"
	"github.com/Faultbox/marble-maze/internal/engine/shader"
	"github.com/Faultbox/marble-maze/internal/geom"
	"github.com/Faultbox/marble-maze/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor mgl32.Vec3
}

// Mesh is a mesh uploaded to the GPU.
type Mesh struct {
	Name  string
	vao   uint32
	vbo   uint32
	ebo   uint32
	count int32
}

// Lines is a GPU line list with per-vertex colours.
type Lines struct {
	vao   uint32
	vbo   uint32
	count int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	meshShader *shader.Program
	lineShader *shader.Program

	view       mgl32.Mat4
	projection mgl32.Mat4
	light      lighting.Hemispheric
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:     cfg,
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		light:      lighting.Default(),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	// Subtracted meshes and mirrored views flip winding, so draw both sides.
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.meshShader, err = shader.New(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.lineShader, err = shader.New(lineVertexShader, lineFragmentShader)
	if err != nil {
		r.meshShader.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.meshShader != nil {
		r.meshShader.Delete()
	}
	if r.lineShader != nil {
		r.lineShader.Delete()
	}
}

// Resize sets the backing resolution, in pixels.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns width / height.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// SetCamera sets the view and projection used by subsequent draws.
func (r *Renderer) SetCamera(view, projection mgl32.Mat4) {
	r.view = view
	r.projection = projection
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// Upload copies a mesh into GPU buffers.
func (r *Renderer) Upload(m *geom.Mesh) (*Mesh, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	vertices := m.Interleaved()
	out := &Mesh{Name: m.Name, count: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &out.vao)
	gl.BindVertexArray(out.vao)

	gl.GenBuffers(1, &out.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, out.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &out.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, out.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	stride := int32(geom.VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	logger.Debug("mesh uploaded",
		zap.String("mesh", m.Name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
	)
	return out, nil
}

// UploadLines copies a line list of position(3) colour(3) vertices.
func (r *Renderer) UploadLines(vertices []float32) *Lines {
	out := &Lines{count: int32(len(vertices) / 6)}
	if out.count == 0 {
		return out
	}

	gl.GenVertexArrays(1, &out.vao)
	gl.BindVertexArray(out.vao)
	gl.GenBuffers(1, &out.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, out.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 6*4, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
	return out
}

// DrawMesh draws m with the given model matrix.
func (r *Renderer) DrawMesh(m *Mesh, model mgl32.Mat4) {
	p := r.meshShader
	p.Use()
	p.SetMat4("uModel", model)
	p.SetMat4("uView", r.view)
	p.SetMat4("uProjection", r.projection)
	p.SetMat3("uNormalMatrix", model.Mat3().Inv().Transpose())
	p.SetVec3("uLightDir", r.light.Direction)
	p.SetVec3("uSkyColor", r.light.Sky)
	p.SetVec3("uGroundColor", r.light.Ground)
	p.SetFloat("uIntensity", r.light.Intensity)

	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
}

// DrawLines draws l with the given model matrix, on top of the scene.
func (r *Renderer) DrawLines(l *Lines, model mgl32.Mat4) {
	if l.count == 0 {
		return
	}
	p := r.lineShader
	p.Use()
	p.SetMat4("uModel", model)
	p.SetMat4("uView", r.view)
	p.SetMat4("uProjection", r.projection)

	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(l.vao)
	gl.DrawArrays(gl.LINES, 0, l.count)
	gl.Enable(gl.DEPTH_TEST)
}

// Release frees a mesh's GPU buffers.
func (r *Renderer) Release(m *Mesh) {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}

// ReleaseLines frees a line list's GPU buffers.
func (r *Renderer) ReleaseLines(l *Lines) {
	if l.count == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &l.vao)
	gl.DeleteBuffers(1, &l.vbo)
}

// ReadPixels returns the back buffer as RGBA rows, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}
