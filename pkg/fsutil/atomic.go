package fsutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the default permission mode for newly created files.
const DefaultFileMode os.FileMode = 0644

// BackupSuffix is appended to a file's path for its pre-edit backup.
const BackupSuffix = ".orig"

// SaveOptions controls Save.
type SaveOptions struct {
	// Backup keeps the on-disk content at Path+BackupSuffix before writing.
	Backup bool

	// Force writes even if the file changed on disk since it was loaded.
	Force bool
}

// Save writes content over a loaded file. It refuses with ErrModified when
// the file changed on disk, unless forced, and reports whether anything was
// written. On success f describes the new on-disk state.
func Save(ctx context.Context, f *File, content []byte, opts SaveOptions) (bool, error) {
	if f == nil {
		return false, ErrNilFile
	}

	if !opts.Force {
		modified, err := f.Modified(ctx)
		if err != nil {
			return false, err
		}
		if modified {
			return false, fmt.Errorf("%w: %s", ErrModified, f.Path)
		}
	}

	existing, err := os.ReadFile(f.Path)
	if err != nil && !os.IsNotExist(err) {
		return false, classify(f.Path, err)
	}
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	if opts.Backup && existing != nil {
		if err := WriteAtomic(ctx, f.Path+BackupSuffix, existing, f.Mode.Perm()); err != nil {
			return false, fmt.Errorf("backup: %w", err)
		}
	}
	if err := WriteAtomic(ctx, f.Path, content, f.Mode.Perm()); err != nil {
		return false, err
	}

	if stat, err := os.Stat(f.Path); err == nil {
		f.ModTime = stat.ModTime()
		f.Size = stat.Size()
	}
	f.Hash = sha256.Sum256(content)
	return true, nil
}

// WriteAtomic replaces path with content by renaming a synced temp file
// from the same directory over it. Readers see the old or the new content,
// and on error the target is untouched. A zero mode keeps the mode of an
// existing target, or DefaultFileMode for a new one.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if mode == 0 {
		mode = DefaultFileMode
		if info, err := os.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
	}

	tmpPath, err := writeTemp(filepath.Dir(path), filepath.Base(path), content, mode)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// writeTemp writes content to a new file in dir and returns its path. The
// file is removed again if any step fails.
func writeTemp(dir, base string, content []byte, mode os.FileMode) (path string, err error) {
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}
