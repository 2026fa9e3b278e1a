// Package ui2d draws screen-space panels and images over the 3D scene using
// OpenGL.
package ui2d

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marble-maze/internal/engine/shader"
)

// Renderer handles 2D UI rendering with OpenGL. Coordinates are pixels with
// the origin at the top-left corner.
type Renderer struct {
	screenWidth  int
	screenHeight int

	// Shader program for solid color quads
	solidShader *shader.Program
	// Shader program for image quads
	imageShader *shader.Program

	solidVAO uint32
	solidVBO uint32
	imageVAO uint32
	imageVBO uint32

	// Current draw lists
	solidVertices []float32
	images        []imageQuad

	// texture holds the last uploaded image; one per frame is enough for
	// the overlay.
	texture    uint32
	texW, texH int
}

type imageQuad struct {
	img  *image.RGBA
	x, y float32
}

// New creates a new 2D UI renderer. A GL context must be current.
func New(width, height int) (*Renderer, error) {
	r := &Renderer{
		screenWidth:   width,
		screenHeight:  height,
		solidVertices: make([]float32, 0, 256),
	}

	var err error
	if r.solidShader, err = shader.New(solidVertexShader, solidFragmentShader); err != nil {
		return nil, fmt.Errorf("create solid shader: %w", err)
	}
	if r.imageShader, err = shader.New(imageVertexShader, imageFragmentShader); err != nil {
		r.solidShader.Delete()
		return nil, fmt.Errorf("create image shader: %w", err)
	}

	// Vertex format: x, y, r, g, b, a
	r.solidVAO, r.solidVBO = newQuadBuffers(2, 4)
	// Vertex format: x, y, u, v
	r.imageVAO, r.imageVBO = newQuadBuffers(2, 2)

	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return r, nil
}

// newQuadBuffers creates a VAO with two float attributes of the given sizes.
func newQuadBuffers(size0, size1 int32) (vao, vbo uint32) {
	stride := (size0 + size1) * 4
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.VertexAttribPointerWithOffset(0, size0, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, size1, gl.FLOAT, false, stride, uintptr(size0*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
	return vao, vbo
}

// Resize updates the screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.screenWidth = width
	r.screenHeight = height
}

// Begin starts a new UI frame.
func (r *Renderer) Begin() {
	r.solidVertices = r.solidVertices[:0]
	r.images = r.images[:0]
}

// DrawRect queues a filled rectangle.
func (r *Renderer) DrawRect(x, y, width, height float32, c color.RGBA) {
	red, g, b, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	x1, y1 := x+width, y+height
	r.solidVertices = append(r.solidVertices,
		x, y, red, g, b, a,
		x1, y, red, g, b, a,
		x1, y1, red, g, b, a,
		x, y, red, g, b, a,
		x1, y1, red, g, b, a,
		x, y1, red, g, b, a,
	)
}

// DrawImage queues img with its top-left corner at (x, y). img must stay
// unchanged until End.
func (r *Renderer) DrawImage(x, y float32, img *image.RGBA) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	r.images = append(r.images, imageQuad{img: img, x: x, y: y})
}

// End renders everything queued since Begin on top of the current frame.
func (r *Renderer) End() {
	if len(r.solidVertices) == 0 && len(r.images) == 0 {
		return
	}

	// Save OpenGL state
	var prevBlend, prevDepth, prevCull int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.CULL_FACE, &prevCull)

	gl.Enable(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	proj := mgl32.Ortho(0, float32(r.screenWidth), float32(r.screenHeight), 0, -1, 1)

	// Solid quads first
	if len(r.solidVertices) > 0 {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		r.solidShader.Use()
		r.solidShader.SetMat4("uProjection", proj)
		gl.BindVertexArray(r.solidVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, r.solidVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(r.solidVertices)*4, unsafe.Pointer(&r.solidVertices[0]), gl.STREAM_DRAW)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.solidVertices)/6))
	}

	// image.RGBA is alpha-premultiplied.
	if len(r.images) > 0 {
		gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
		r.imageShader.Use()
		r.imageShader.SetMat4("uProjection", proj)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.texture)
		gl.BindVertexArray(r.imageVAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, r.imageVBO)
		for _, q := range r.images {
			r.drawImage(q)
		}
	}

	// Restore state
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
	if prevDepth == gl.TRUE {
		gl.Enable(gl.DEPTH_TEST)
	}
	if prevCull == gl.TRUE {
		gl.Enable(gl.CULL_FACE)
	}
}

func (r *Renderer) drawImage(q imageQuad) {
	b := q.img.Bounds()
	w, h := b.Dx(), b.Dy()

	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(q.img.Stride/4))
	pix := unsafe.Pointer(&q.img.Pix[q.img.PixOffset(b.Min.X, b.Min.Y)])
	if w == r.texW && h == r.texH {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, pix)
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, pix)
		r.texW, r.texH = w, h
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	// Row 0 of the image is the top edge, which is v = 0 in the texture.
	x0, y0 := q.x, q.y
	x1, y1 := q.x+float32(w), q.y+float32(h)
	vertices := [...]float32{
		x0, y0, 0, 0,
		x1, y0, 1, 0,
		x1, y1, 1, 1,
		x0, y0, 0, 0,
		x1, y1, 1, 1,
		x0, y1, 0, 1,
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
	}
	if r.solidVAO != 0 {
		gl.DeleteVertexArrays(1, &r.solidVAO)
	}
	if r.solidVBO != 0 {
		gl.DeleteBuffers(1, &r.solidVBO)
	}
	if r.imageVAO != 0 {
		gl.DeleteVertexArrays(1, &r.imageVAO)
	}
	if r.imageVBO != 0 {
		gl.DeleteBuffers(1, &r.imageVBO)
	}
	r.solidShader.Delete()
	r.imageShader.Delete()
}
