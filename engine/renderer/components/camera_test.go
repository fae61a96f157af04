package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraProjectsOriginToCentre(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, -4}, 3, 7)
	c.SetViewport(1280, 720)

	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	if !ndc.ApproxEqualThreshold(mgl32.Vec3{0, 0, ndc.Z()}, 1e-6) {
		t.Fatalf("origin projected to %v; want screen centre", ndc)
	}
	if ndc.Z() <= -1 || ndc.Z() >= 1 {
		t.Fatalf("origin depth %v; want inside the frustum", ndc.Z())
	}
}

func TestCameraClipsOutsidePlanes(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, -4}, 3, 7)
	vp := c.ViewProjection()

	for _, p := range []mgl32.Vec3{{0, 0, -2}, {0, 0, 4}} {
		clip := vp.Mul4x1(p.Vec4(1))
		z := clip.Z() / clip.W()
		if z >= -1 && z <= 1 {
			t.Fatalf("point %v has depth %v; want outside [-1, 1]", p, z)
		}
	}
}

func TestCameraViewportMarksDirty(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, -4}, 3, 7)
	before := c.GetProjection()
	if c.IsDirty {
		t.Fatalf("IsDirty=true after GetProjection")
	}

	c.SetViewport(0, 100)
	if c.IsDirty {
		t.Fatalf("IsDirty=true after zero-width viewport")
	}
	c.SetViewport(200, 100)
	if !c.IsDirty {
		t.Fatalf("IsDirty=false after aspect change")
	}
	if after := c.GetProjection(); after.ApproxEqual(before) {
		t.Fatalf("projection unchanged after aspect change")
	}
}
