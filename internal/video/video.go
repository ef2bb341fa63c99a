// Package video derives stable video IDs from YouTube URLs and local transcript files.
package video

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hyperjump/kiku/internal/models"
)

var (
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
	}
	bareID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// localPrefix marks IDs derived from file paths.
const localPrefix = "file-"

// ParseID extracts the video ID from a YouTube URL in watch, youtu.be, embed or
// /v/ form, or accepts a bare 11-character ID.
func ParseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, re := range urlPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}
	if bareID.MatchString(raw) {
		return raw, nil
	}
	return "", fmt.Errorf("could not extract video ID from %q: %w", raw, models.ErrInvalidArgument)
}

// LocalID returns a stable ID for a transcript file. The same cleaned path
// always yields the same ID.
func LocalID(path string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return localPrefix + hex.EncodeToString(hash[:8])
}

// IsLocal reports whether id came from LocalID.
func IsLocal(id string) bool {
	return strings.HasPrefix(id, localPrefix)
}
