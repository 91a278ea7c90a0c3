package types

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dshills/gocodequality/internal/fingerprint"
)

// Document is a source file read into memory. Chunkers never modify it.
type Document struct {
	Path    string // Relative to the analyzed folder
	Content string
}

// FileName returns the base name of the document path
func (d Document) FileName() string {
	return filepath.Base(d.Path)
}

// LineCount returns the number of "\n"-separated lines in the document
func (d Document) LineCount() int {
	return strings.Count(d.Content, "\n") + 1
}

// Chunk is a contiguous run of lines taken from a Document.
//
// Line numbers are 0-based. StartLine is inclusive and EndLine is exclusive,
// so EndLine equals the number of document lines consumed once the chunk
// was emitted.
type Chunk struct {
	// Content
	Code string

	// Location
	Document  Document
	StartLine int
	EndLine   int
}

// LineCount returns the number of lines the chunk spans
func (c Chunk) LineCount() int {
	return c.EndLine - c.StartLine
}

// Length returns the chunk size in characters (runes)
func (c Chunk) Length() int {
	return utf8.RuneCountInString(c.Code)
}

// HashableString returns the chunk code with all whitespace removed
func (c Chunk) HashableString() string {
	return fingerprint.StripWhitespace(c.Code)
}

// Fingerprint returns the whitespace-insensitive cache key of the chunk
func (c Chunk) Fingerprint() string {
	return fingerprint.Code(c.Code)
}

// Validate checks the line range of the chunk
func (c Chunk) Validate() error {
	if c.StartLine < 0 || c.EndLine < 0 {
		return errors.New("line numbers cannot be negative")
	}

	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	return nil
}
