package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/astnav/pkg/fsutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes new file with default mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "new.c")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("int x;"), 0); err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != fsutil.DefaultFileMode {
			t.Errorf("mode = %v, want %v", info.Mode().Perm(), fsutil.DefaultFileMode)
		}
	})

	t.Run("keeps the mode of an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "run.sh")
		if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.Chmod(path, 0o750); err != nil {
			t.Fatalf("chmod: %v", err)
		}
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("new"), 0); err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0o750 {
			t.Errorf("mode = %v, want 0750", info.Mode().Perm())
		}
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "a.c")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0644); err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("found %d entries, want 1", len(entries))
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "a.c")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0644); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestSave(t *testing.T) {
	t.Parallel()

	t.Run("writes and refreshes state", func(t *testing.T) {
		t.Parallel()

		f := loadFixture(t, "foo(bar);")
		written, err := fsutil.Save(context.Background(), f, []byte("foo();"), fsutil.SaveOptions{})
		if err != nil || !written {
			t.Fatalf("Save() = %v, %v; want true, nil", written, err)
		}

		got, _ := os.ReadFile(f.Path)
		if string(got) != "foo();" {
			t.Errorf("content = %q", got)
		}

		// A second save must not see its own write as a conflict.
		written, err = fsutil.Save(context.Background(), f, []byte("bar();"), fsutil.SaveOptions{})
		if err != nil || !written {
			t.Errorf("second Save() = %v, %v; want true, nil", written, err)
		}
	})

	t.Run("unchanged content is not written", func(t *testing.T) {
		t.Parallel()

		f := loadFixture(t, "foo(bar);")
		written, err := fsutil.Save(context.Background(), f, []byte("foo(bar);"), fsutil.SaveOptions{Backup: true})
		if err != nil || written {
			t.Errorf("Save() = %v, %v; want false, nil", written, err)
		}
		if _, err := os.Stat(f.Path + fsutil.BackupSuffix); !os.IsNotExist(err) {
			t.Error("no backup is made when nothing is written")
		}
	})

	t.Run("backup keeps the old content", func(t *testing.T) {
		t.Parallel()

		f := loadFixture(t, "foo(bar);")
		if _, err := fsutil.Save(context.Background(), f, []byte("bar;"), fsutil.SaveOptions{Backup: true}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		backup, err := os.ReadFile(f.Path + fsutil.BackupSuffix)
		if err != nil {
			t.Fatalf("read backup: %v", err)
		}
		if string(backup) != "foo(bar);" {
			t.Errorf("backup = %q", backup)
		}
	})

	t.Run("refuses a file changed on disk", func(t *testing.T) {
		t.Parallel()

		f := loadFixture(t, "foo(bar);")
		if err := os.WriteFile(f.Path, []byte("changed elsewhere"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := fsutil.Save(context.Background(), f, []byte("foo();"), fsutil.SaveOptions{})
		if !errors.Is(err, fsutil.ErrModified) {
			t.Fatalf("error = %v, want ErrModified", err)
		}

		written, err := fsutil.Save(context.Background(), f, []byte("foo();"), fsutil.SaveOptions{Force: true})
		if err != nil || !written {
			t.Errorf("forced Save() = %v, %v; want true, nil", written, err)
		}
	})
}
