package source

import "fmt"

// Location is a point in one physical file, addressed by byte offset.
// Line and column are derived on demand through the file's line index.
type Location struct {
	File   *File
	Offset int
}

// Position returns the 1-based line and column of the location.
func (l Location) Position() (line, col int) {
	if l.File == nil {
		return 0, 0
	}
	return l.File.LineAt(l.Offset)
}

// IsValid reports whether the location references a file.
func (l Location) IsValid() bool {
	return l.File != nil
}

// String renders the location as path:line:col.
func (l Location) String() string {
	if l.File == nil {
		return "<unknown>"
	}
	line, col := l.Position()
	return fmt.Sprintf("%s:%d:%d", l.File.Path, line, col)
}

// Expansion is one link in a token's location chain: the macro whose
// expansion produced the token and the site the macro was invoked from.
// Parent points at the enclosing expansion, so walking Parent pointers
// yields the chain outermost-first.
type Expansion struct {
	// Macro is the name of the expanded macro.
	Macro string

	// Site is where the macro invocation appeared.
	Site Location

	// Parent is the enclosing expansion, nil at the outermost frame.
	Parent *Expansion
}

// ChainFrame is one entry of a flattened location chain.
type ChainFrame struct {
	Macro string
	Site  Location
}

// Frames flattens the expansion chain, ordered outermost-first with the
// innermost expansion last.
func (e *Expansion) Frames() []ChainFrame {
	var depth int
	for cur := e; cur != nil; cur = cur.Parent {
		depth++
	}

	frames := make([]ChainFrame, depth)
	for cur := e; cur != nil; cur = cur.Parent {
		depth--
		frames[depth] = ChainFrame{Macro: cur.Macro, Site: cur.Site}
	}
	return frames
}

// Depth returns the number of nested expansions in the chain.
func (e *Expansion) Depth() int {
	var depth int
	for cur := e; cur != nil; cur = cur.Parent {
		depth++
	}
	return depth
}
