// Package extract reads transcript text out of caption and document files.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor turns transcript files into plain text.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its transcript text.
// Subtitle files (.srt, .vtt) yield cue text only, joined with single spaces.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on the given extension,
// which includes the leading dot (e.g. ".srt"). Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".srt", ".vtt":
		return extractSubtitles(content)
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".rtf", ".odt":
		return extractWithCat(content)
	default:
		return extractPlain(content)
	}
}

// Supported reports whether ext has a dedicated extractor or is plain text.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".srt", ".vtt", ".pdf", ".docx", ".rtf", ".odt":
		return true
	}
	return false
}
