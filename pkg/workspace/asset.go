package workspace

import (
	"context"

	"github.com/armakit/armakit/pkg/langdetect"
)

// Asset is raw workspace content with classification metadata, served to
// packaging and codec collaborators. The preprocessor never interprets
// binary assets; it only resolves and hands them through.
type Asset struct {
	// Path is the resolved virtual path.
	Path VirtualPath

	// Layer names the layer that supplied the content.
	Layer string

	// Content is the raw bytes.
	Content []byte

	// Class is the detected content class.
	Class langdetect.ContentClass
}

// ReadAsset resolves a path and returns its raw bytes with content
// classification. Unlike Resolve it never builds a line index, so it is the
// cheap path for binary payloads.
func (w *Workspace) ReadAsset(ctx context.Context, path VirtualPath) (*Asset, error) {
	for _, layer := range w.layers {
		concrete, ok := layer.Exists(ctx, path)
		if !ok {
			continue
		}
		content, err := layer.Download(ctx, concrete)
		if err != nil {
			return nil, err
		}
		return &Asset{
			Path:    path,
			Layer:   layer.Name,
			Content: content,
			Class:   langdetect.Classify(path.Base(), content),
		}, nil
	}
	return nil, ErrNotFound
}
