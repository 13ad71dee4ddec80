package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFileNameBytes = 255

// ErrInvalidFileName is returned for upload names that cannot be stored.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps the base name a browser sent, dropping any client
// path. Traversal, control characters and names over 255 bytes are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") || !utf8.ValidString(name) {
		return "", ErrInvalidFileName
	}
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	s = strings.TrimSpace(path.Base(s))
	if s == "" || s == "." || s == "/" {
		return "", ErrInvalidFileName
	}
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", ErrInvalidFileName
	}
	if len(s) > maxFileNameBytes {
		return "", ErrInvalidFileName
	}
	return s, nil
}
