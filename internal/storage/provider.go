// Package storage defines the vault file-system abstraction.
package storage

import "time"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root and use forward slashes.
type Provider interface {
	// List walks dir (relative to root) and returns metadata for every
	// markdown file found.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a file exists at path.
	Exists(path string) bool
}

// FileMeta is what List returns for each markdown file.
type FileMeta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}
