package math

import "testing"

func TestClamp(t *testing.T) {
	tcs := []struct {
		v, lo, hi, want float32
	}{
		{v: -1, lo: 0, hi: 1, want: 0},
		{v: 0.5, lo: 0, hi: 1, want: 0.5},
		{v: 3, lo: 0, hi: 1, want: 1},
	}
	for _, tc := range tcs {
		if got := Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("Clamp(%v, %v, %v)=%v; want %v", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
	if got := Clamp(7, 1, 5); got != 5 {
		t.Fatalf("Clamp(7, 1, 5)=%v; want 5", got)
	}
}

func TestShadeKeepsAlpha(t *testing.T) {
	got := Shade(NewVec4(0.8, 0.4, 1, 0.5), 2)
	want := NewVec4(1, 0.8, 1, 0.5)
	if !got.Compare(want, 1e-6) {
		t.Fatalf("Shade()=%v; want %v", got, want)
	}
}

func TestCrossAndNormalized(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	if got := x.Cross(y); !got.Compare(NewVec3(0, 0, 1), K_FLOAT_EPSILON) {
		t.Fatalf("x.Cross(y)=%v; want (0,0,1)", got)
	}
	if got := NewVec3(0, 3, 4).Normalized(); !got.Compare(NewVec3(0, 0.6, 0.8), 1e-6) {
		t.Fatalf("Normalized()=%v; want (0,0.6,0.8)", got)
	}
	if got := (Vec3{}).Normalized(); got != (Vec3{}) {
		t.Fatalf("zero.Normalized()=%v; want zero", got)
	}
}

func TestGeometryGenerateNormals(t *testing.T) {
	vertices := []Vertex3D{
		{Position: NewVec3(0, 0, 0)},
		{Position: NewVec3(1, 0, 0)},
		{Position: NewVec3(0, 1, 0)},
	}
	GeometryGenerateNormals(vertices, []uint32{0, 1, 2})
	for i, v := range vertices {
		if !v.Normal.Compare(NewVec3(0, 0, 1), 1e-6) {
			t.Fatalf("vertices[%d].Normal=%v; want (0,0,1)", i, v.Normal)
		}
	}
}

func TestGeometryCalculateExtents(t *testing.T) {
	vertices := []Vertex3D{
		{Position: NewVec3(-1, 2, 0)},
		{Position: NewVec3(3, -2, 1)},
		{Position: NewVec3(1, 0, -1)},
	}
	ext, center := GeometryCalculateExtents(vertices)
	if !ext.Min.Compare(NewVec3(-1, -2, -1), 0) || !ext.Max.Compare(NewVec3(3, 2, 1), 0) {
		t.Fatalf("extents=%v; want min (-1,-2,-1) max (3,2,1)", ext)
	}
	if !center.Compare(NewVec3(1, 0, 0), 1e-6) {
		t.Fatalf("center=%v; want (1,0,0)", center)
	}
}
