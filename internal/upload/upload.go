// Package upload validates local files before they are sent to a module.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedExtension is returned for files that are not csv, xls or xlsx.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// AllowedExtensions lists the accepted extensions without the dot.
var AllowedExtensions = []string{"csv", "xls", "xlsx"}

// File is a validated upload.
type File struct {
	Path string
	Name string
	Size int64
	UUID string
}

// AllowedExtensionsList returns the accepted extensions joined for display.
func AllowedExtensionsList() string {
	return strings.Join(AllowedExtensions, ", ")
}

// Allowed reports whether name has an accepted extension, ignoring case.
func Allowed(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// Prepare checks path and returns the metadata sent with the upload.
func Prepare(path string) (File, error) {
	if !Allowed(path) {
		return File{}, fmt.Errorf("%s: %w (allowed: %s)", filepath.Base(path), ErrUnsupportedExtension, AllowedExtensionsList())
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
		UUID: uuid.NewString(),
	}, nil
}
