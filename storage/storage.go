// Package storage keeps uploaded project images and maps them to public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ImageStore persists images and resolves the URLs it hands out.
type ImageStore interface {
	// Save writes the image under name and returns its public URL.
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	// Delete removes the image behind url. Missing images are not an error.
	Delete(ctx context.Context, url string) error
	// Owns reports whether url points at an image this store manages.
	Owns(url string) bool
}

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// AllowedImage reports whether filename has one of the accepted image extensions
func AllowedImage(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename reduces an uploaded filename to a safe base name
func SanitizeFilename(filename string) string {
	// Browsers on Windows may send the full client path
	filename = strings.ReplaceAll(filename, `\`, "/")
	filename = path.Base(filename)

	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	filename = strings.TrimLeft(filename, "._")

	if filename == "" {
		return "image"
	}
	return filename
}

// UniqueName sanitizes filename and puts a timestamp before its extension
func UniqueName(filename string, now time.Time) string {
	safe := SanitizeFilename(filename)
	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	if stem == "" {
		stem = "image"
	}
	// a bare ".png" loses its dot to sanitizing
	if ext == "" && AllowedImage(filename) {
		ext = filepath.Ext(filename)
	}
	return fmt.Sprintf("%s_%d%s", stem, now.UnixNano(), strings.ToLower(ext))
}
