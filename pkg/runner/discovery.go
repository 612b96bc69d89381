package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/armakit/armakit/pkg/workspace"
)

// Discover finds entry files matching opts in the workspace's top physical
// layer. It returns a deterministically sorted list of virtual paths.
func Discover(ctx context.Context, ws *workspace.Workspace, opts Options) ([]string, error) {
	layer := topLayer(ws)
	if layer == nil {
		return nil, fmt.Errorf("workspace has no physical layer")
	}

	extensions := opts.effectiveExtensions()

	// Use a map for deduplication: explicit entries may overlap globs.
	seen := make(map[string]struct{})
	var entries []string

	add := func(vp workspace.VirtualPath) {
		key := vp.Key()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		entries = append(entries, vp.String())
	}

	// Explicit non-glob entries resolve directly; glob entries and the
	// empty default come from a layer walk.
	var globs []string
	walkAll := len(opts.Entries) == 0
	for _, entry := range opts.Entries {
		if strings.ContainsAny(entry, "*?[") {
			globs = append(globs, entry)
			continue
		}
		vp := workspace.NormalizePath(entry)
		if _, err := ws.Resolve(ctx, vp); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry, err)
		}
		add(vp)
	}

	if walkAll || len(globs) > 0 {
		err := layer.Walk(ctx, func(_ context.Context, _, parent string, info os.FileInfo, _ io.Reader) (bool, error) {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			if info.IsDir() {
				return true, nil
			}

			rel := path.Join(parent, info.Name())
			if hiddenPath(rel) {
				return true, nil
			}
			vp := workspace.NormalizePath(rel)

			if !hasMatchingExtension(info.Name(), extensions) {
				return true, nil
			}
			if matchesAnyPattern(vp, opts.ExcludeGlobs) {
				return true, nil
			}
			if !walkAll && !matchesAnyPattern(vp, globs) {
				return true, nil
			}

			add(vp)
			return true, nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk layer %s: %w", layer.Name, err)
		}
	}

	// Explicit entries are also subject to the exclusion rules.
	filtered := entries[:0]
	for _, entry := range entries {
		if matchesAnyPattern(workspace.NormalizePath(entry), opts.ExcludeGlobs) {
			continue
		}
		filtered = append(filtered, entry)
	}
	entries = filtered

	// Sort for deterministic ordering.
	sort.Strings(entries)

	return entries, nil
}

// topLayer returns the highest-priority physical layer, skipping the
// editor-buffer overlay.
func topLayer(ws *workspace.Workspace) *workspace.Layer {
	for _, layer := range ws.Layers() {
		if layer.Rank >= 0 {
			return layer
		}
	}
	return nil
}

// hiddenPath reports whether any component of a relative path is hidden.
func hiddenPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// hasMatchingExtension checks if the file has a matching extension.
func hasMatchingExtension(name string, extensions []string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// matchesAnyPattern checks if the virtual path matches any glob pattern.
func matchesAnyPattern(vp workspace.VirtualPath, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(vp, pattern) {
			return true
		}
	}
	return false
}

// matchGlob matches a virtual path against a glob pattern.
// It supports patterns like "*.cpp", "addons/**", "**/legacy/**", etc.
func matchGlob(vp workspace.VirtualPath, pattern string) bool {
	// Match on forward slashes regardless of how the pattern is written.
	p := strings.ReplaceAll(strings.ToLower(vp.String()), `\`, "/")
	pattern = strings.ReplaceAll(strings.ToLower(pattern), `\`, "/")

	// Handle ** patterns for recursive matching.
	if strings.Contains(pattern, "**") {
		return matchDoubleStarPattern(p, pattern)
	}

	// Standard path.Match for simple patterns.
	matched, matchErr := path.Match(pattern, p)
	if matchErr != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching against just the filename.
	matched, matchErr = path.Match(pattern, path.Base(p))
	if matchErr != nil {
		return false
	}
	return matched
}

// matchSegments matches consecutive path components against per-segment
// patterns.
func matchSegments(patterns, segs []string) bool {
	for i, pat := range patterns {
		matched, err := path.Match(pat, segs[i])
		if err != nil || !matched {
			return false
		}
	}
	return true
}

// matchDoubleStarPattern handles ** glob patterns.
func matchDoubleStarPattern(p, pattern string) bool {
	parts := strings.Split(pattern, "**")

	if len(parts) == 1 {
		// No ** found, shouldn't happen but handle gracefully.
		matched, matchErr := path.Match(pattern, p)
		if matchErr != nil {
			return false
		}
		return matched
	}

	// Handle common patterns:
	// "**/foo" - matches foo anywhere
	// "foo/**" - matches anything under foo
	// "**/foo/**" - matches foo directory anywhere

	if parts[0] == "" && len(parts) == 2 {
		// Pattern starts with **/, e.g., "**/legacy"
		suffix := strings.TrimPrefix(parts[1], "/")
		if suffix == "" {
			// Just "**" matches everything.
			return true
		}

		if strings.HasSuffix(p, suffix) {
			return true
		}

		// Check if any path component matches.
		for _, part := range strings.Split(p, "/") {
			matched, matchErr := path.Match(suffix, part)
			if matchErr == nil && matched {
				return true
			}
		}

		return strings.Contains(p, suffix)
	}

	if parts[1] == "" || parts[1] == "/" {
		// Pattern ends with /**, e.g., "addons/**"
		prefix := strings.TrimSuffix(parts[0], "/")
		if prefix == "" {
			return true
		}
		return strings.HasPrefix(p, prefix+"/") || p == prefix
	}

	if len(parts) == 3 && parts[0] == "" && parts[2] == "" {
		// Pattern with ** on both ends, e.g. "**/legacy/**": the middle
		// segments must match interior path components, with at least one
		// segment remaining after them.
		middle := strings.Trim(parts[1], "/")
		if middle == "" {
			return true
		}
		mids := strings.Split(middle, "/")
		segs := strings.Split(p, "/")
		for i := 0; i+len(mids) < len(segs); i++ {
			if matchSegments(mids, segs[i:i+len(mids)]) {
				return true
			}
		}
		return false
	}

	// Complex pattern with ** in the middle.
	// Simplified: check if prefix matches start and suffix matches end.
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix != "" && !strings.HasPrefix(p, prefix) {
		return false
	}

	if suffix != "" && !strings.HasSuffix(p, suffix) {
		// Also check if suffix pattern matches.
		matched, matchErr := path.Match(suffix, path.Base(p))
		if matchErr != nil || !matched {
			return false
		}
	}

	return true
}
