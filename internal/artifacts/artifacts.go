// Package artifacts stores uploaded photos and rendered cards in local
// directories keyed by registration id. Writes overwrite any previous file.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// Dir is a flat directory of artifacts.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at root. The directory is created lazily.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Write stores data under name and returns the stored path.
func (d *Dir) Write(name string, data []byte) (string, error) {
	name = SanitizeName(name)
	if name == "" {
		return "", fmt.Errorf("artifact name is empty")
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", d.root, err)
	}
	path := filepath.Join(d.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// PhotoName is the stored file name of a registrant's photo.
func PhotoName(registrationID, ext string) string {
	ext = strings.ToLower(SanitizeName(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return registrationID + "_photo" + ext
}

// CardName is the stored file name of a registrant's card document.
func CardName(registrationID string) string {
	return "card_" + registrationID + ".pdf"
}

// SanitizeName strips path separators and anything outside [a-zA-Z0-9._-].
func SanitizeName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return unsafeChars.ReplaceAllString(name, "_")
}
