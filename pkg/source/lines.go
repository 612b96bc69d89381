package source

import "sort"

// LineInfo describes one line of a file by byte offsets.
type LineInfo struct {
	// StartOffset is the byte index of the first byte of the line.
	StartOffset int

	// NewlineStart is the byte index where the line's newline sequence
	// begins (equal to EndOffset for the final, unterminated line).
	NewlineStart int

	// EndOffset is the byte index just past the line's newline sequence.
	EndOffset int
}

// BuildLines constructs line metadata from file content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char == '\n' {
			newlineStart := idx
			if idx > 0 && content[idx-1] == '\r' {
				newlineStart = idx - 1
			}

			lines = append(lines, LineInfo{
				StartOffset:  lineStart,
				NewlineStart: newlineStart,
				EndOffset:    idx + 1,
			})
			lineStart = idx + 1
		}
	}

	// Last line may not have a trailing newline.
	if lineStart <= len(content) {
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: len(content),
			EndOffset:    len(content),
		})
	}

	return lines
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is out of range.
func (f *File) LineAt(offset int) (int, int) {
	if offset < 0 || len(f.lines) == 0 {
		return 0, 0
	}

	// Offset at or past end of content maps to the end of the last line.
	if offset >= len(f.Content) {
		lastLine := f.lines[len(f.lines)-1]
		return len(f.lines), offset - lastLine.StartOffset + 1
	}

	lineIdx := sort.Search(len(f.lines), func(i int) bool {
		return f.lines[i].EndOffset > offset
	})

	if lineIdx >= len(f.lines) {
		lineIdx = len(f.lines) - 1
	}

	lineInfo := f.lines[lineIdx]

	if offset < lineInfo.StartOffset {
		return 0, 0
	}

	return lineIdx + 1, offset - lineInfo.StartOffset + 1
}

// LineContent returns the content of a 1-based line number, excluding the newline.
// Returns nil if the line number is out of range.
func (f *File) LineContent(line int) []byte {
	if line < 1 || line > len(f.lines) {
		return nil
	}

	lineInfo := f.lines[line-1]
	return f.Content[lineInfo.StartOffset:lineInfo.NewlineStart]
}
