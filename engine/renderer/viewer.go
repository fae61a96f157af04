package renderer

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/meshview/engine/config"
	"github.com/spaghettifunk/meshview/engine/core"
	"github.com/spaghettifunk/meshview/engine/math"
	"github.com/spaghettifunk/meshview/engine/renderer/components"
	"github.com/spaghettifunk/meshview/engine/renderer/metadata"
)

// ebiten indexes vertices with uint16, so one draw call holds at most this many.
const maxBatchVertices = 65535

// Lambert shading terms for lit geometry.
const (
	ambientLight = 0.3
	diffuseLight = 0.7
)

type triangle struct {
	vertices [3]ebiten.Vertex
	// Average NDC depth of the corners; larger is farther away.
	depth float32
}

// Viewer is the ebiten game drawing one rotating geometry. SetGeometry may be
// called from any goroutine; everything else runs on the ebiten loop.
type Viewer struct {
	bus    *core.EventBus
	camera *components.Camera

	clearColour     color.RGBA
	axis            mgl32.Vec3
	lightDir        mgl32.Vec3
	degreesPerFrame float32
	angle           float32

	mutex    sync.RWMutex
	geometry *metadata.GeometryConfig

	clock    *core.Clock
	metrics  *core.FrameMetrics
	lastTime float64

	width  int
	height int
	quit   atomic.Bool

	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
	triangles     []triangle
	vertices      []ebiten.Vertex
	indices       []uint16
}

func NewViewer(cfg *config.ViewerConfig, bus *core.EventBus) *Viewer {
	eye := mgl32.Vec3(cfg.Camera.Eye)
	c := cfg.ClearColour
	v := &Viewer{
		bus:    bus,
		camera: components.NewCamera(eye, cfg.Camera.Near, cfg.Camera.Far),
		clearColour: color.RGBA{
			R: toByte(c[0]),
			G: toByte(c[1]),
			B: toByte(c[2]),
			A: toByte(c[3]),
		},
		axis:            mgl32.Vec3(cfg.Animation.Axis).Normalize(),
		lightDir:        eye.Normalize(),
		degreesPerFrame: cfg.Animation.DegreesPerFrame,
		clock:           core.NewClock(),
		metrics:         core.NewFrameMetrics(),
	}
	v.camera.SetViewport(cfg.Width, cfg.Height)
	return v
}

func toByte(c float32) uint8 {
	return uint8(math.Clamp(c*255+0.5, 0, 255))
}

// SetGeometry replaces the geometry drawn from the next frame on.
func (v *Viewer) SetGeometry(g *metadata.GeometryConfig) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.geometry = g
}

func (v *Viewer) Geometry() *metadata.GeometryConfig {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.geometry
}

// Close makes the next Update end the game loop.
func (v *Viewer) Close() {
	v.quit.Store(true)
}

func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		// Other listeners get a chance to clean up before the loop ends.
		if v.bus == nil || !v.bus.Fire(core.EVENT_CODE_APPLICATION_QUIT, v, core.EventContext{}) {
			v.Close()
		}
	}
	if v.quit.Load() {
		return ebiten.Termination
	}

	if v.lastTime == 0 {
		v.clock.Start()
	}
	v.clock.Update()
	now := v.clock.Elapsed()
	v.metrics.Update(now - v.lastTime)
	v.lastTime = now

	v.angle += v.degreesPerFrame
	if v.angle >= 360 {
		v.angle -= 360
	}
	return nil
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(v.clearColour)

	g := v.Geometry()
	if g != nil {
		w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
		model := ModelMatrix(g, v.angle, v.axis)
		mvp := v.camera.ViewProjection().Mul4(model)
		v.triangles = projectGeometry(v.triangles[:0], g, mvp, model, v.lightDir, w, h)
		v.drawTriangles(screen)
	}

	fps, ms := v.metrics.Frame()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.0f  Ft: %.2fms", fps, ms), 0, 0)
	if g != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %d vertices, %d indices", g.Name, g.VertexCount, g.IndexCount), 0, 14)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Triangles: %d", len(v.triangles)), 0, 28)
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.width || outsideHeight != v.height {
		v.width, v.height = outsideWidth, outsideHeight
		v.camera.SetViewport(outsideWidth, outsideHeight)
		if v.bus != nil {
			ctx := core.EventContext{}
			ctx.Data.U32[0] = uint32(outsideWidth)
			ctx.Data.U32[1] = uint32(outsideHeight)
			v.bus.Fire(core.EVENT_CODE_RESIZED, v, ctx)
		}
	}
	return outsideWidth, outsideHeight
}

func (v *Viewer) drawTriangles(screen *ebiten.Image) {
	if v.whiteImage == nil {
		v.whiteImage = ebiten.NewImage(3, 3)
		v.whiteImage.Fill(color.White)
		v.whiteSubImage = v.whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}

	v.vertices = v.vertices[:0]
	v.indices = v.indices[:0]
	for _, t := range v.triangles {
		if len(v.vertices)+3 > maxBatchVertices {
			screen.DrawTriangles(v.vertices, v.indices, v.whiteSubImage, &ebiten.DrawTrianglesOptions{})
			v.vertices = v.vertices[:0]
			v.indices = v.indices[:0]
		}
		first := uint16(len(v.vertices))
		v.vertices = append(v.vertices, t.vertices[:]...)
		v.indices = append(v.indices, first, first+1, first+2)
	}
	if len(v.vertices) > 0 {
		screen.DrawTriangles(v.vertices, v.indices, v.whiteSubImage, &ebiten.DrawTrianglesOptions{})
	}
}

// ModelMatrix rotates g by angle degrees about axis after moving its centre to
// the origin and scaling its largest side to one unit.
func ModelMatrix(g *metadata.GeometryConfig, angle float32, axis mgl32.Vec3) mgl32.Mat4 {
	size := g.Extents.Max.Sub(g.Extents.Min)
	largest := size.X
	if size.Y > largest {
		largest = size.Y
	}
	if size.Z > largest {
		largest = size.Z
	}
	scale := float32(1)
	if largest > math.K_FLOAT_EPSILON {
		scale = 1 / largest
	}

	rotation := mgl32.HomogRotate3D(math.DegToRad(angle), axis)
	return rotation.
		Mul4(mgl32.Scale3D(scale, scale, scale)).
		Mul4(mgl32.Translate3D(-g.Center.X, -g.Center.Y, -g.Center.Z))
}

// projectGeometry transforms every triangle of g to screen space and returns
// them sorted back to front. Triangles with a corner outside the near or far
// plane are dropped.
func projectGeometry(dst []triangle, g *metadata.GeometryConfig, mvp, model mgl32.Mat4, lightDir mgl32.Vec3, width, height int) []triangle {
	halfW, halfH := float32(width)*0.5, float32(height)*0.5

outer:
	for i := 0; i+2 < len(g.Indices); i += 3 {
		var t triangle
		for k := 0; k < 3; k++ {
			idx := g.Indices[i+k]
			if idx >= uint32(len(g.Vertices)) {
				continue outer
			}
			vert := g.Vertices[idx]

			clip := mvp.Mul4x1(mgl32.Vec4{vert.Position.X, vert.Position.Y, vert.Position.Z, 1})
			if clip.W() <= 0 {
				continue outer
			}
			ndc := clip.Vec3().Mul(1 / clip.W())
			if ndc.Z() < -1 || ndc.Z() > 1 {
				continue outer
			}

			colour := vert.Colour
			if !g.Unlit {
				n := model.Mul4x1(mgl32.Vec4{vert.Normal.X, vert.Normal.Y, vert.Normal.Z, 0}).Vec3()
				if n.Len() > 0 {
					n = n.Normalize()
				}
				diffuse := math.Clamp(n.Dot(lightDir), 0, 1)
				colour = math.Shade(colour, ambientLight+diffuseLight*diffuse)
			}

			t.vertices[k] = ebiten.Vertex{
				DstX:   (ndc.X() + 1) * halfW,
				DstY:   (1 - ndc.Y()) * halfH,
				SrcX:   1,
				SrcY:   1,
				ColorR: colour.X,
				ColorG: colour.Y,
				ColorB: colour.Z,
				ColorA: colour.W,
			}
			t.depth += ndc.Z() / 3
		}
		dst = append(dst, t)
	}

	slices.SortStableFunc(dst, func(a, b triangle) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		default:
			return 0
		}
	})
	return dst
}
