package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/meshview/engine/assets/loaders"
	"github.com/spaghettifunk/meshview/engine/core"
	"github.com/spaghettifunk/meshview/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the asset directory, dispatches loads to the loader
// registered for each resource type and, when watching, fires
// EVENT_CODE_MODEL_CHANGED for every model file that is created or written.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	bus      *core.EventBus
	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed atomic.Bool
}

func NewAssetManager(bus *core.EventBus) *AssetManager {
	am := &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		bus:     bus,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	am.registerLoader(metadata.ResourceTypeModel, &loaders.ModelLoader{})
	return am
}

// Initialize indexes assetsDir. With watch set, the directory tree is also
// watched for changes until Shutdown. A missing directory is not an error.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = w
		go am.start()
	}

	if assetsDir == "" {
		return nil
	}
	if _, err := os.Stat(assetsDir); errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("assets directory '%s' does not exist, nothing indexed", assetsDir)
		return nil
	}
	return am.watchRecursive(assetsDir)
}

// Watch starts watching the directory holding path, for models that live
// outside the assets directory. It is a no-op when the manager is not watching.
func (am *AssetManager) Watch(path string) error {
	if am.fsnotify == nil {
		return nil
	}
	if am.isClosed.Load() {
		return core.ErrWatcherClosed
	}
	return am.fsnotify.Add(filepath.Dir(path))
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset loads the file at path with the loader registered for its type.
// Files that were not indexed yet are indexed on the way.
func (am *AssetManager) LoadAsset(path string, params interface{}) (*metadata.Resource, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	asset, exists := am.assets[key]
	if !exists {
		asset = AssetInfo{Path: key, Type: determineAssetType(key)}
	}
	if asset.Type == metadata.ResourceTypeNone {
		am.mutex.Unlock()
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownAsset, path)
	}
	asset.LastLoaded = time.Now()
	am.assets[key] = asset
	loader, loaderExists := am.loaders[asset.Type]
	am.mutex.Unlock()

	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(key, asset.Type, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// Asset returns the index entry for path.
func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	key, err := filepath.Abs(path)
	if err != nil {
		return AssetInfo{}, false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	a, ok := am.assets[key]
	return a, ok
}

// Shutdown stops the watcher goroutine and waits for it to exit.
func (am *AssetManager) Shutdown() error {
	if am.fsnotify == nil || !am.isClosed.CompareAndSwap(false, true) {
		return nil
	}
	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogError("failed to close asset watcher: %s", err)
			}
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogError("failed to watch '%s': %s", e.Name, err)
			}
			return
		}
	}
	// Editors often save by rename, which shows up as Create on the new name.
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		info, ok := am.handleFileEvent(e.Name)
		if ok && info.Type == metadata.ResourceTypeModel && am.bus != nil {
			ctx := core.EventContext{}
			ctx.Data.C[0] = info.Path
			am.bus.Fire(core.EVENT_CODE_MODEL_CHANGED, am, ctx)
		}
	}
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
	}
}

// watchRecursive indexes every file under path and, when watching, adds every
// directory to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if am.fsnotify != nil && !am.isClosed.Load() {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return AssetInfo{}, false
	}
	key, err := filepath.Abs(path)
	if err != nil {
		core.LogError("failed to resolve '%s': %s", path, err)
		return AssetInfo{}, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	info := am.assets[key]
	info.Path = key
	info.Type = assetType
	am.assets[key] = info
	return info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, key)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".obj", ".OBJ":
		return metadata.ResourceTypeModel
	default:
		return metadata.ResourceTypeNone
	}
}
