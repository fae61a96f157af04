package assets

import "github.com/spaghettifunk/meshview/engine/renderer/metadata"

// Loader turns a file on disk into a Resource. Resource.Data holds the typed
// payload, *metadata.MeshData for models.
type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
