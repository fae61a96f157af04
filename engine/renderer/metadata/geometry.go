package metadata

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/meshview/engine/math"
)

/** @brief The name of the default geometry. */
const DefaultGeometryName string = "default"

/**
 * @brief Represents the configuration for a geometry: the vertex and index
 * buffers the viewer draws each frame.
 */
type GeometryConfig struct {
	/** @brief Unique identifier, regenerated for every load. */
	ID uuid.UUID
	/** @brief The Name of the geometry. */
	Name string
	/** @brief The number of vertices. */
	VertexCount uint32
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief The size of each index in bytes. */
	IndexSize uint32
	/** @brief The number of indices. */
	IndexCount uint32
	/** @brief An array of Indices. */
	Indices []uint32

	Center  math.Vec3
	Extents math.Extents3D
	/** @brief False when the vertex colours should be shaded by the normals. */
	Unlit bool
}
