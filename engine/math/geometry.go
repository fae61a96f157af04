package math

import "github.com/spaghettifunk/meshview/engine/core"

// GeometryGenerateNormals assigns the face normal of every triangle to its three
// corners. Degenerate triangles get a zero normal.
func GeometryGenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalized()
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GeometryCalculateExtents returns the bounding box and centre of the vertices.
func GeometryCalculateExtents(vertices []Vertex3D) (Extents3D, Vec3) {
	if len(vertices) == 0 {
		core.LogWarn("geometry_calculate_extents: no vertices, returning empty extents")
		return Extents3D{}, Vec3{}
	}
	ext := Extents3D{
		Min: NewVec3(K_INFINITY, K_INFINITY, K_INFINITY),
		Max: NewVec3(-K_INFINITY, -K_INFINITY, -K_INFINITY),
	}
	for _, v := range vertices {
		p := v.Position
		ext.Min = NewVec3(min(ext.Min.X, p.X), min(ext.Min.Y, p.Y), min(ext.Min.Z, p.Z))
		ext.Max = NewVec3(max(ext.Max.X, p.X), max(ext.Max.Y, p.Y), max(ext.Max.Z, p.Z))
	}
	center := ext.Min.Add(ext.Max).MulScalar(0.5)
	return ext, center
}
