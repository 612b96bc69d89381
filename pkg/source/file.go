package source

// File is an immutable snapshot of one resolved file: its virtual path, the
// layer it was resolved from, its content version, and the raw bytes. Tokens
// and locations hold non-owning references into Content, so a File must
// outlive every token derived from it; the workspace keeps all files of one
// preprocessing run alive until the run's result is discarded.
type File struct {
	// Path is the virtual path this file was resolved as (e.g. `\x\cba\script_macros.hpp`).
	Path string

	// Layer names the workspace layer that supplied the content.
	Layer string

	// Version is the content version; a new version is a new File, content
	// is never mutated in place.
	Version int

	// Content is the raw file bytes.
	Content []byte

	lines []LineInfo
}

// NewFile creates a file snapshot and builds its line index.
func NewFile(path, layer string, version int, content []byte) *File {
	return &File{
		Path:    path,
		Layer:   layer,
		Version: version,
		Content: content,
		lines:   BuildLines(content),
	}
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.lines)
}
