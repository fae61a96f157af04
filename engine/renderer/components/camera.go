package components

import (
	"github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief Represents the fixed viewer camera. It always looks at the
 * origin with +Y up; only the eye, the frustum planes and the aspect
 * ratio of the target can change.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetEye() instead
	 * so the view matrix is recalculated when needed.
	 */
	Eye mgl32.Vec3
	/** @brief Distance to the near and far clipping planes. */
	Near float32
	Far  float32
	/** @brief Width over height of the render target. */
	Aspect float32
	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	IsDirty bool

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
}

func NewCamera(eye mgl32.Vec3, near, far float32) *Camera {
	return &Camera{
		Eye:     eye,
		Near:    near,
		Far:     far,
		Aspect:  1,
		IsDirty: true,
	}
}

func (c *Camera) SetEye(eye mgl32.Vec3) {
	c.Eye = eye
	c.IsDirty = true
}

// SetViewport updates the aspect ratio from the target size in pixels.
// A zero height, such as a minimized window, is ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	aspect := float32(width) / float32(height)
	if aspect != c.Aspect {
		c.Aspect = aspect
		c.IsDirty = true
	}
}

func (c *Camera) GetView() mgl32.Mat4 {
	c.rebuild()
	return c.viewMatrix
}

// GetProjection returns a frustum spanning [-aspect, aspect] horizontally and
// [-1, 1] vertically at the near plane.
func (c *Camera) GetProjection() mgl32.Mat4 {
	c.rebuild()
	return c.projectionMatrix
}

// ViewProjection is the projection multiplied by the view matrix.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.rebuild()
	return c.projectionMatrix.Mul4(c.viewMatrix)
}

func (c *Camera) rebuild() {
	if !c.IsDirty {
		return
	}
	c.viewMatrix = mgl32.LookAtV(c.Eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	c.projectionMatrix = mgl32.Frustum(-c.Aspect, c.Aspect, -1, 1, c.Near, c.Far)
	c.IsDirty = false
}
