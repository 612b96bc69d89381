package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/minio/highwayhash"

	"github.com/armakit/armakit/pkg/source"
)

// ErrNotFound indicates that no layer contains the requested path.
// Include misses are reported as diagnostics by the caller; only the engine
// entry file escalates a miss into a run failure.
var ErrNotFound = errors.New("file not found in workspace")

// hashKey seeds the highwayhash content sums used to detect unchanged
// content across version bumps.
var hashKey = [32]byte{
	'a', 'r', 'm', 'a', 'k', 'i', 't', '-',
	'w', 'o', 'r', 'k', 's', 'p', 'a', 'c',
	'e', '-', 'c', 'o', 'n', 't', 'e', 'n',
	't', '-', 'h', 'a', 's', 'h', '-', '1',
}

// LayerConfig describes one root of the workspace.
type LayerConfig struct {
	// Name identifies the layer in diagnostics and file handles.
	Name string `yaml:"name"`

	// Path is the layer root: a directory path or an afs URL.
	Path string `yaml:"path"`

	// Rank is the priority rank; lower ranks win. Ranks must be unique.
	Rank int `yaml:"rank"`
}

// Config describes the workspace composition.
type Config struct {
	// Layers are the contributing roots.
	Layers []LayerConfig `yaml:"layers"`

	// SystemMount is an optional lowest-priority root (a game or tool
	// install directory) appended after the configured layers.
	SystemMount string `yaml:"system_mount"`

	// EnableSystemMount gates the system mount.
	EnableSystemMount bool `yaml:"enable_system_mount"`
}

// cacheEntry pairs a file snapshot with its content sum.
type cacheEntry struct {
	file *source.File
	sum  uint64
}

// Workspace merges ordered layers into one addressable namespace and caches
// resolved file content. Reads are safe for concurrent use across parallel
// preprocessing runs; version bumps take the writer lock, so readers observe
// a consistent pre- or post-bump snapshot.
type Workspace struct {
	layers  []*Layer // ascending rank, overlay first
	overlay *Layer

	mu       sync.RWMutex
	cache    map[string]cacheEntry // layer|pathKey|version
	versions map[string]int        // pathKey -> current version
}

// New composes a workspace from the given configuration. The layer priority
// total order is fixed here; it never changes for the lifetime of the
// workspace.
func New(cfg Config) (*Workspace, error) {
	if len(cfg.Layers) == 0 {
		return nil, errors.New("workspace: at least one layer is required")
	}

	seen := make(map[int]string, len(cfg.Layers))
	layers := make([]*Layer, 0, len(cfg.Layers)+2)
	for _, lc := range cfg.Layers {
		if prev, dup := seen[lc.Rank]; dup {
			return nil, fmt.Errorf("workspace: layers %q and %q share rank %d", prev, lc.Name, lc.Rank)
		}
		seen[lc.Rank] = lc.Name
		layers = append(layers, NewLayer(lc.Name, lc.Rank, lc.Path))
	}

	if cfg.EnableSystemMount && cfg.SystemMount != "" {
		maxRank := 0
		for _, l := range layers {
			if l.Rank > maxRank {
				maxRank = l.Rank
			}
		}
		layers = append(layers, NewLayer("system", maxRank+1, cfg.SystemMount))
	}

	overlay := newOverlayLayer()
	layers = append(layers, overlay)
	sort.SliceStable(layers, func(i, j int) bool { return layers[i].Rank < layers[j].Rank })

	return &Workspace{
		layers:   layers,
		overlay:  overlay,
		cache:    make(map[string]cacheEntry),
		versions: make(map[string]int),
	}, nil
}

// Layers returns the layers in resolution order (highest priority first).
func (w *Workspace) Layers() []*Layer {
	return w.layers
}

// Resolve finds the highest-priority layer containing the given path and
// returns its file snapshot. Returns ErrNotFound when no layer has it.
func (w *Workspace) Resolve(ctx context.Context, path VirtualPath) (*source.File, error) {
	for _, layer := range w.layers {
		concrete, ok := layer.Exists(ctx, path)
		if !ok {
			continue
		}
		return w.read(ctx, layer, path, concrete)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// IncludeSearch resolves an include request made from a given file.
// Relative requests prefer an existing sibling of the requesting file, then
// probe the layer roots in priority order. Absolute requests (leading
// separator) are resolved against the highest-priority root only.
func (w *Workspace) IncludeSearch(ctx context.Context, requested string, from *source.File) (*source.File, error) {
	req := NormalizePath(requested)

	if req.IsAbs() {
		layer := w.layers[0]
		if layer == w.overlay && len(w.layers) > 1 {
			// The overlay shadows the primary root but is not itself
			// the root absolute paths resolve against.
			if file, err := w.resolveIn(ctx, w.overlay, req); err == nil {
				return file, nil
			}
			layer = w.layers[1]
		}
		return w.resolveIn(ctx, layer, req)
	}

	if from != nil {
		sibling := NormalizePath(from.Path).Dir().Join(req)
		if file, err := w.Resolve(ctx, sibling); err == nil {
			return file, nil
		}
	}

	return w.Resolve(ctx, req)
}

// resolveIn resolves a path within a single layer.
func (w *Workspace) resolveIn(ctx context.Context, layer *Layer, path VirtualPath) (*source.File, error) {
	concrete, ok := layer.Exists(ctx, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return w.read(ctx, layer, path, concrete)
}

// read returns the cached snapshot for (layer, path, current version),
// downloading and caching on miss. When a version bump leaves the bytes
// unchanged, the previous snapshot is reused so downstream consumers keep
// their derived state.
func (w *Workspace) read(ctx context.Context, layer *Layer, logical, concrete VirtualPath) (*source.File, error) {
	key := logical.Key()

	w.mu.RLock()
	version := w.versions[key]
	if entry, ok := w.cache[cacheKeyFor(layer.Name, key, version)]; ok {
		w.mu.RUnlock()
		return entry.file, nil
	}
	w.mu.RUnlock()

	content, err := layer.Download(ctx, concrete)
	if err != nil {
		return nil, err
	}
	sum := highwayhash.Sum64(content, hashKey[:])

	w.mu.Lock()
	defer w.mu.Unlock()

	// The version may have been bumped while downloading; key the entry by
	// the version current at insertion time.
	version = w.versions[key]
	cacheKey := cacheKeyFor(layer.Name, key, version)
	if entry, ok := w.cache[cacheKey]; ok {
		return entry.file, nil
	}

	// Unchanged content across a bump keeps the previous snapshot.
	if version > 0 {
		if prev, ok := w.cache[cacheKeyFor(layer.Name, key, version-1)]; ok && prev.sum == sum {
			w.cache[cacheKey] = prev
			return prev.file, nil
		}
	}

	file := source.NewFile(logical.String(), layer.Name, version, content)
	w.cache[cacheKey] = cacheEntry{file: file, sum: sum}
	return file, nil
}

// Invalidate bumps the content version of a path. Subsequent reads re-fetch
// from the owning layer; in-flight reads keep their pre-bump snapshot.
func (w *Workspace) Invalidate(path VirtualPath) {
	w.mu.Lock()
	w.versions[path.Key()]++
	w.mu.Unlock()
}

// SetOverlay installs editor-buffer content for a path in the in-memory
// overlay layer and bumps the path's version.
func (w *Workspace) SetOverlay(ctx context.Context, path VirtualPath, content []byte) error {
	if err := w.overlay.Upload(ctx, path, content); err != nil {
		return err
	}
	w.Invalidate(path)
	return nil
}

// ClearOverlay removes editor-buffer content for a path, restoring
// resolution to the physical layers.
func (w *Workspace) ClearOverlay(ctx context.Context, path VirtualPath) {
	w.overlay.Delete(ctx, path)
	w.Invalidate(path)
}

func cacheKeyFor(layer, pathKey string, version int) string {
	return fmt.Sprintf("%s|%s|%d", layer, pathKey, version)
}
