package systems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/meshview/engine/core"
	"github.com/spaghettifunk/meshview/engine/math"
	"github.com/spaghettifunk/meshview/engine/renderer/metadata"
)

// Colour given to OBJ vertices, which carry no colour of their own.
var DefaultMeshColour = math.NewVec4(0.8, 0.8, 0.8, 1.0)

type cubeFace struct {
	normal math.Vec3
	// Corners as signs of the half extents, ordered like the plane
	// generator: bottom-left, top-right, top-left, bottom-right.
	corners [4]math.Vec3
	colour  math.Vec4
}

var cubeFaces = [6]cubeFace{
	// Front face (red)
	{normal: math.NewVec3(0, 0, 1), corners: [4]math.Vec3{{-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, {1, -1, 1}}, colour: math.NewVec4(1, 0, 0, 1)},
	// Back face (green)
	{normal: math.NewVec3(0, 0, -1), corners: [4]math.Vec3{{1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, -1}}, colour: math.NewVec4(0, 1, 0, 1)},
	// Top face (blue)
	{normal: math.NewVec3(0, 1, 0), corners: [4]math.Vec3{{-1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {1, 1, 1}}, colour: math.NewVec4(0, 0, 1, 1)},
	// Bottom face (yellow)
	{normal: math.NewVec3(0, -1, 0), corners: [4]math.Vec3{{1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}}, colour: math.NewVec4(1, 1, 0, 1)},
	// Right face (magenta)
	{normal: math.NewVec3(1, 0, 0), corners: [4]math.Vec3{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}, {1, -1, -1}}, colour: math.NewVec4(1, 0, 1, 1)},
	// Left face (cyan)
	{normal: math.NewVec3(-1, 0, 0), corners: [4]math.Vec3{{-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}}, colour: math.NewVec4(0, 1, 1, 1)},
}

/**
 * @brief Generates configuration for the built-in cube: 4 vertices and 2
 * triangles per side, each side a flat colour. The cube is centred on the origin.
 *
 * @param width The overall width of the cube. Must be non-zero.
 * @param height The overall height of the cube. Must be non-zero.
 * @param depth The overall depth of the cube. Must be non-zero.
 * @param name The name of the generated geometry.
 */
func GeometrySystemGenerateCubeConfig(width, height, depth float32, name string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}

	config := &metadata.GeometryConfig{
		ID:          uuid.New(),
		VertexCount: 4 * 6, // 4 verts per side, 6 side
		Vertices:    make([]math.Vertex3D, 4*6),
		IndexSize:   4,     // number of bytes of a uint32
		IndexCount:  6 * 6, // 6 indices per side, 6 side
		Indices:     make([]uint32, 6*6),
		Unlit:       true,
	}

	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 0}}

	for i, face := range cubeFaces {
		vOffset := i * 4
		for c, corner := range face.corners {
			config.Vertices[vOffset+c] = math.Vertex3D{
				Position: math.NewVec3(corner.X*half.X, corner.Y*half.Y, corner.Z*half.Z),
				Normal:   face.normal,
				Texcoord: uvs[c],
				Colour:   face.colour,
			}
		}
		iOffset := i * 6
		config.Indices[iOffset+0] = uint32(vOffset + 0)
		config.Indices[iOffset+1] = uint32(vOffset + 1)
		config.Indices[iOffset+2] = uint32(vOffset + 2)
		config.Indices[iOffset+3] = uint32(vOffset + 0)
		config.Indices[iOffset+4] = uint32(vOffset + 3)
		config.Indices[iOffset+5] = uint32(vOffset + 1)
	}

	// Always centred since min/max of each axis are -/+ half of the size.
	config.Extents = math.Extents3D{
		Min: math.NewVec3(-half.X, -half.Y, -half.Z),
		Max: half,
	}

	if len(name) > 0 {
		config.Name = name
	} else {
		config.Name = metadata.DefaultGeometryName
	}
	return config
}

// GeometrySystemConfigFromMesh converts a loaded mesh into drawable geometry.
// Meshes without normals get flat face normals so they can still be shaded.
func GeometrySystemConfigFromMesh(name string, mesh *metadata.MeshData) (*metadata.GeometryConfig, error) {
	if mesh == nil {
		return nil, fmt.Errorf("%w: nil mesh", core.ErrInvalidMesh)
	}

	n := mesh.NumVertices()
	vertices := make([]math.Vertex3D, n)
	for i := 0; i < n; i++ {
		p := mesh.Position(i)
		vertices[i].Position = math.NewVec3(p[0], p[1], p[2])
		vertices[i].Colour = DefaultMeshColour
		if nrm, ok := mesh.Normal(i); ok {
			vertices[i].Normal = math.NewVec3(nrm[0], nrm[1], nrm[2]).Normalized()
		}
		if uv, ok := mesh.TextureCoord(i); ok {
			vertices[i].Texcoord = math.NewVec2(uv[0], uv[1])
		}
	}

	indices := mesh.Indices()
	if !mesh.HasNormals() {
		core.LogDebug("mesh '%s' has no normals, generating face normals", name)
		math.GeometryGenerateNormals(vertices, indices)
	}

	extents, center := math.GeometryCalculateExtents(vertices)

	config := &metadata.GeometryConfig{
		ID:          uuid.New(),
		Name:        name,
		VertexCount: uint32(n),
		Vertices:    vertices,
		IndexSize:   4,
		IndexCount:  uint32(len(indices)),
		Indices:     indices,
		Center:      center,
		Extents:     extents,
	}
	if config.Name == "" {
		config.Name = metadata.DefaultGeometryName
	}
	return config, nil
}
