// Package workspace composes ordered root directories into one logical,
// case-insensitive path space. Includes are resolved against the layers by
// priority rank, file content is cached per (layer, path, version), and an
// in-memory overlay layer serves unsaved editor buffers.
package workspace

import "strings"

// Separator is the logical path separator of the virtual path space.
const Separator = "\\"

// VirtualPath is a logical, layer-independent path such as
// `\common\util.inc`. It is stored normalized: backslash separators, no `.`
// or `..` segments, no trailing separator. Comparison is case-insensitive.
type VirtualPath string

// NormalizePath converts a raw path into a VirtualPath. Forward slashes are
// accepted as separators; `.` and `..` segments are resolved. A leading
// separator marks the path as absolute within the logical space.
func NormalizePath(raw string) VirtualPath {
	unified := strings.ReplaceAll(raw, "/", Separator)
	abs := strings.HasPrefix(unified, Separator)

	var segments []string
	for seg := range strings.SplitSeq(unified, Separator) {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}

	joined := strings.Join(segments, Separator)
	if abs {
		return VirtualPath(Separator + joined)
	}
	return VirtualPath(joined)
}

// IsAbs reports whether the path is absolute in the logical space.
func (p VirtualPath) IsAbs() bool {
	return strings.HasPrefix(string(p), Separator)
}

// Key returns the case-folded form used for map keys and comparisons.
func (p VirtualPath) Key() string {
	return strings.ToLower(string(p))
}

// Equal reports whether two paths are equal under case-insensitive comparison.
func (p VirtualPath) Equal(other VirtualPath) bool {
	return strings.EqualFold(string(p), string(other))
}

// Dir returns the path without its final segment.
func (p VirtualPath) Dir() VirtualPath {
	idx := strings.LastIndex(string(p), Separator)
	if idx < 0 {
		return ""
	}
	if idx == 0 {
		return VirtualPath(Separator)
	}
	return p[:idx]
}

// Base returns the final segment of the path.
func (p VirtualPath) Base() string {
	idx := strings.LastIndex(string(p), Separator)
	if idx < 0 {
		return string(p)
	}
	return string(p[idx+1:])
}

// Join appends a relative path, renormalizing the result so `..` segments
// in rel resolve against p.
func (p VirtualPath) Join(rel VirtualPath) VirtualPath {
	if rel.IsAbs() {
		return rel
	}
	if p == "" {
		return NormalizePath(string(rel))
	}
	return NormalizePath(string(p) + Separator + string(rel))
}

// String returns the normalized display form.
func (p VirtualPath) String() string {
	return string(p)
}

// storageRel converts the virtual path to a forward-slash relative path for
// building storage URLs.
func (p VirtualPath) storageRel() string {
	trimmed := strings.TrimPrefix(string(p), Separator)
	return strings.ReplaceAll(trimmed, Separator, "/")
}
