// Package langdetect classifies workspace content so the preprocessor only
// runs over text sources. Binary assets (textures, models, audio) are served
// raw to packaging collaborators and never tokenized.
package langdetect

import (
	"path"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// ContentClass describes how the toolchain should treat a file.
type ContentClass string

const (
	// ClassConfig is the C-like config dialect the preprocessor handles.
	ClassConfig ContentClass = "config"

	// ClassScript is scripting-language source, preprocessed the same way
	// but consumed by the script analyzer downstream.
	ClassScript ContentClass = "script"

	// ClassText is any other text content.
	ClassText ContentClass = "text"

	// ClassBinary is a non-text asset; never preprocessed.
	ClassBinary ContentClass = "binary"
)

// configExtensions are the extensions of the config dialect.
//
//nolint:gochecknoglobals // Read-only lookup table.
var configExtensions = map[string]struct{}{
	".cpp": {}, ".hpp": {}, ".inc": {}, ".ext": {}, ".rvmat": {}, ".bikb": {},
}

// scriptExtensions are the extensions of the scripting dialect.
//
//nolint:gochecknoglobals // Read-only lookup table.
var scriptExtensions = map[string]struct{}{
	".sqf": {}, ".fsm": {},
}

// IsBinary reports whether content is a binary asset.
func IsBinary(content []byte) bool {
	return enry.IsBinary(content)
}

// Classify determines the content class from a file name and its bytes.
// The extension decides between config and script dialects; enry's binary
// detector gates everything else.
func Classify(name string, content []byte) ContentClass {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))

	if _, ok := configExtensions[ext]; ok {
		return ClassConfig
	}
	if _, ok := scriptExtensions[ext]; ok {
		return ClassScript
	}
	if IsBinary(content) {
		return ClassBinary
	}
	return ClassText
}

// Preprocessable reports whether the class is fed through the preprocessor.
func (c ContentClass) Preprocessable() bool {
	return c == ClassConfig || c == ClassScript
}

// Language returns enry's language guess for display purposes, or "" when
// detection fails.
func Language(name string, content []byte) string {
	lang := enry.GetLanguage(path.Base(strings.ReplaceAll(name, "\\", "/")), content)
	if lang == enry.OtherLanguage {
		return ""
	}
	return lang
}
