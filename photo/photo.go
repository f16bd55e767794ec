/*
Package photo turns an uploaded image into a stored file plus a resolvable URL.

PURPOSE:
  Two ingestion paths, both optional at report-creation time:
  - Local storage (this file): bytes land under <dir>/reports/ named after
    the pre-allocated report identifier, so the filename is stable and
    collision-free.
  - Remote hosting (remote.go): bytes are forwarded to a configured image
    host; unconfigured or failing uploads yield "no URL" and the caller
    falls back to local storage.

NAMING:
  The extension comes from the uploaded file's original name, lower-cased
  and constrained to a small allow-list. Anything else falls back to .jpg.
*/
package photo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// allowedExtensions is the closed set of accepted photo suffixes.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
}

// Storage writes report photos under a local uploads directory.
type Storage struct {
	// Dir is the uploads root; files land in Dir/reports/.
	Dir string
}

// NewStorage returns a Storage rooted at dir.
func NewStorage(dir string) *Storage {
	return &Storage{Dir: dir}
}

// Save persists the image bytes as <reportID><ext> and returns the internal
// storage reference (e.g. "uploads/reports/SLP-2026-0005.png") and the
// public URL path (e.g. "/uploads/reports/SLP-2026-0005.png").
func (s *Storage) Save(reportID, originalName string, data []byte) (photoPath, imageURL string, err error) {
	dir := filepath.Join(s.Dir, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filename := reportID + Extension(originalName)
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write photo: %w", err)
	}

	photoPath = path.Join("uploads", "reports", filename)
	return photoPath, "/" + photoPath, nil
}

// Extension returns the lower-cased suffix of the original filename when it
// is on the allow-list, and ".jpg" otherwise.
func Extension(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return ".jpg"
	}
	return ext
}
