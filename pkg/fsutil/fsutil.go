// Package fsutil loads source files for a session and writes edited text
// back safely: atomically, optionally with a backup, and never over a file
// that changed on disk since it was loaded.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilFile is returned when a nil File is passed.
	ErrNilFile = errors.New("nil File")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrModified indicates the file changed on disk after it was loaded.
	ErrModified = errors.New("file modified on disk")

	// ErrNotFileURI is returned for URIs with a scheme other than file.
	ErrNotFileURI = errors.New("not a file URI")
)

// File is a loaded source file and the on-disk state it was loaded from.
type File struct {
	// Path is the absolute path.
	Path string

	// URI is the file:// URI sent to the syntax service.
	URI string

	// Mode is the file's permission and mode bits.
	Mode os.FileMode

	// ModTime is the file's modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64

	// Hash is the SHA-256 hash of the content.
	Hash [32]byte
}

// Load reads a file and records its state for later conflict detection.
func Load(ctx context.Context, path string) (*File, []byte, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("load: %w", ctx.Err())
	default:
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return nil, nil, classify(abs, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, abs)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, nil, classify(abs, err)
	}

	return &File{
		Path:    abs,
		URI:     PathToURI(abs),
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, content, nil
}

// Modified reports whether the file changed since it was loaded. A deleted
// file counts as modified.
//
// Mod time and size are compared first; the content is re-hashed only when
// they match.
func (f *File) Modified(ctx context.Context) (bool, error) {
	if f == nil {
		return false, ErrNilFile
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("check modified: %w", ctx.Err())
	default:
	}

	stat, err := os.Stat(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", f.Path, err)
	}
	if !stat.ModTime().Equal(f.ModTime) || stat.Size() != f.Size {
		return true, nil
	}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return sha256.Sum256(content) != f.Hash, nil
}

// PathToURI converts an absolute path to a file:// URI.
func PathToURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// URIToPath converts a file:// URI back to a path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %s", ErrNotFileURI, uri)
	}
	return filepath.FromSlash(u.Path), nil
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}
