package metadata

import (
	"fmt"

	"github.com/spaghettifunk/meshview/engine/core"
	"golang.org/x/exp/slices"
)

const (
	PositionComponents = 3
	NormalComponents   = 3
	TexcoordComponents = 2
)

// MeshData is the flattened, non-deduplicated output of a model load: one
// vertex per face corner, in file order, and an identity index buffer.
// It is immutable; every accessor returns a copy.
type MeshData struct {
	positions     []float32
	normals       []float32
	textureCoords []float32
	indices       []uint32
}

// NewMeshData takes ownership of the given slices. normals and textureCoords
// may be nil when the attribute is absent.
func NewMeshData(positions, normals, textureCoords []float32, indices []uint32) (*MeshData, error) {
	if len(positions)%PositionComponents != 0 {
		return nil, fmt.Errorf("%w: %d position components is not a multiple of %d", core.ErrInvalidMesh, len(positions), PositionComponents)
	}
	numVertices := len(positions) / PositionComponents
	if len(normals) != 0 && len(normals) != numVertices*NormalComponents {
		return nil, fmt.Errorf("%w: %d normal components for %d vertices", core.ErrInvalidMesh, len(normals), numVertices)
	}
	if len(textureCoords) != 0 && len(textureCoords) != numVertices*TexcoordComponents {
		return nil, fmt.Errorf("%w: %d texture components for %d vertices", core.ErrInvalidMesh, len(textureCoords), numVertices)
	}
	if len(indices) != numVertices {
		return nil, fmt.Errorf("%w: %d indices for %d vertices", core.ErrInvalidMesh, len(indices), numVertices)
	}
	for i, idx := range indices {
		if int(idx) >= numVertices {
			return nil, fmt.Errorf("%w: indices[%d]=%d exceeds vertex count %d", core.ErrInvalidMesh, i, idx, numVertices)
		}
	}

	md := &MeshData{
		positions: positions,
		indices:   indices,
	}
	if len(normals) != 0 {
		md.normals = normals
	}
	if len(textureCoords) != 0 {
		md.textureCoords = textureCoords
	}
	return md, nil
}

func (md *MeshData) Positions() []float32 {
	return slices.Clone(md.positions)
}

// Normals returns nil when the mesh carries no normals.
func (md *MeshData) Normals() []float32 {
	return slices.Clone(md.normals)
}

// TextureCoords returns nil when the mesh carries no texture coordinates.
func (md *MeshData) TextureCoords() []float32 {
	return slices.Clone(md.textureCoords)
}

func (md *MeshData) Indices() []uint32 {
	return slices.Clone(md.indices)
}

func (md *MeshData) HasNormals() bool {
	return md.normals != nil
}

func (md *MeshData) HasTextureCoords() bool {
	return md.textureCoords != nil
}

func (md *MeshData) NumVertices() int {
	return len(md.positions) / PositionComponents
}

func (md *MeshData) NumIndices() int {
	return len(md.indices)
}

// Position returns the i-th vertex position.
func (md *MeshData) Position(i int) [3]float32 {
	o := i * PositionComponents
	return [3]float32{md.positions[o], md.positions[o+1], md.positions[o+2]}
}

// Normal returns the i-th vertex normal and false when the mesh has none.
func (md *MeshData) Normal(i int) ([3]float32, bool) {
	if md.normals == nil {
		return [3]float32{}, false
	}
	o := i * NormalComponents
	return [3]float32{md.normals[o], md.normals[o+1], md.normals[o+2]}, true
}

// TextureCoord returns the i-th texture coordinate and false when the mesh has none.
func (md *MeshData) TextureCoord(i int) ([2]float32, bool) {
	if md.textureCoords == nil {
		return [2]float32{}, false
	}
	o := i * TexcoordComponents
	return [2]float32{md.textureCoords[o], md.textureCoords[o+1]}, true
}

// Stride is the number of floats per vertex in Interleaved.
func (md *MeshData) Stride() int {
	stride := PositionComponents
	if md.normals != nil {
		stride += NormalComponents
	}
	if md.textureCoords != nil {
		stride += TexcoordComponents
	}
	return stride
}

// Interleaved packs every vertex as [px py pz (nx ny nz) (u v)], omitting the
// attributes the mesh does not carry.
func (md *MeshData) Interleaved() []float32 {
	n := md.NumVertices()
	out := make([]float32, 0, n*md.Stride())
	for i := 0; i < n; i++ {
		p := md.Position(i)
		out = append(out, p[:]...)
		if nrm, ok := md.Normal(i); ok {
			out = append(out, nrm[:]...)
		}
		if uv, ok := md.TextureCoord(i); ok {
			out = append(out, uv[:]...)
		}
	}
	return out
}
