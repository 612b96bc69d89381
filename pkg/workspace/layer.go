package workspace

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// overlayBaseURL is the in-memory storage root backing unsaved editor buffers.
const overlayBaseURL = "mem://localhost/armakit/overlay"

// Layer is one root contributing files to the logical workspace, ranked by
// priority. Rank 0 is the highest priority; the overlay layer uses a
// negative rank so editor buffers shadow every physical root. Content is
// served by an afs storage service, so a layer root may be a local
// directory (file://) or an in-memory mount (mem://).
type Layer struct {
	// Name identifies the layer in file handles and diagnostics.
	Name string

	// Rank is the priority rank; lower ranks win.
	Rank int

	// BaseURL is the afs storage URL of the layer root.
	BaseURL string

	fs afs.Service
}

// NewLayer creates a layer over the given storage URL. A bare filesystem
// path is accepted and treated as a file:// root.
func NewLayer(name string, rank int, baseURL string) *Layer {
	if !strings.Contains(baseURL, "://") {
		baseURL = "file://" + baseURL
	}
	return &Layer{
		Name:    name,
		Rank:    rank,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		fs:      afs.New(),
	}
}

// newOverlayLayer creates the in-memory overlay layer.
func newOverlayLayer() *Layer {
	return NewLayer("overlay", -1, overlayBaseURL)
}

// urlFor builds the storage URL of a virtual path within this layer.
func (l *Layer) urlFor(path VirtualPath) string {
	return url.Join(l.BaseURL, path.storageRel())
}

// Exists reports whether the layer contains the given path. It probes the
// path as authored first and falls back to the case-folded form, so
// case-insensitive references resolve on case-sensitive storages that use
// lower-case on disk.
func (l *Layer) Exists(ctx context.Context, path VirtualPath) (VirtualPath, bool) {
	if ok, _ := l.fs.Exists(ctx, l.urlFor(path)); ok {
		return path, true
	}
	folded := VirtualPath(path.Key())
	if folded != path {
		if ok, _ := l.fs.Exists(ctx, l.urlFor(folded)); ok {
			return folded, true
		}
	}
	return path, false
}

// Download reads the bytes of a virtual path from this layer.
func (l *Layer) Download(ctx context.Context, path VirtualPath) ([]byte, error) {
	content, err := l.fs.DownloadWithURL(ctx, l.urlFor(path))
	if err != nil {
		return nil, fmt.Errorf("layer %s: download %s: %w", l.Name, path, err)
	}
	return content, nil
}

// Upload writes bytes to a virtual path in this layer. Only writable
// storages (the overlay mount, test fixtures) accept uploads.
func (l *Layer) Upload(ctx context.Context, path VirtualPath, content []byte) error {
	if err := l.fs.Upload(ctx, l.urlFor(path), os.FileMode(0644), bytes.NewReader(content)); err != nil {
		return fmt.Errorf("layer %s: upload %s: %w", l.Name, path, err)
	}
	return nil
}

// Delete removes a virtual path from this layer, ignoring missing entries.
func (l *Layer) Delete(ctx context.Context, path VirtualPath) {
	_ = l.fs.Delete(ctx, l.urlFor(path))
}

// Walk visits every entry under the layer root. The visitor receives paths
// relative to the layer base URL.
func (l *Layer) Walk(ctx context.Context, visitor storage.OnVisit) error {
	return l.fs.Walk(ctx, l.BaseURL, visitor)
}
