package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

// Scope names the layer a configuration file belongs to.
type Scope string

// Scopes in increasing precedence.
const (
	ScopeSystem   Scope = "system"
	ScopeUser     Scope = "user"
	ScopeProject  Scope = "project"
	ScopeExplicit Scope = "explicit"
)

// Source is a configuration file and the layer it was found for.
type Source struct {
	Scope Scope
	Path  string
}

// File names searched for while walking up from the working directory.
var projectFileNames = []string{".astnav.yml", ".astnav.yaml"}

// Entries marking the top of a checkout. A worktree or submodule has a .git
// file rather than a directory, so any entry type counts.
var checkoutMarkers = []string{".git", ".hg", ".svn"}

// Discover lists the configuration files that apply to workDir, lowest
// precedence first. Scopes in skip are not searched. Layers without a file
// are left out.
func Discover(ctx context.Context, workDir string, skip ...Scope) ([]Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover configuration: %w", err)
	}

	var sources []Source
	add := func(scope Scope, path string) {
		if path != "" && !slices.Contains(skip, scope) {
			sources = append(sources, Source{Scope: scope, Path: path})
		}
	}

	add(ScopeSystem, firstConfig(systemConfigDir()))
	add(ScopeUser, firstConfig(userConfigDir()))

	if !slices.Contains(skip, ScopeProject) {
		path, err := FindProjectConfig(ctx, workDir)
		if err != nil {
			return nil, err
		}
		add(ScopeProject, path)
	}
	return sources, nil
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		if data := os.Getenv("ProgramData"); data != "" {
			return filepath.Join(data, "astnav")
		}
		return `C:\ProgramData\astnav`
	}
	return "/etc/astnav"
}

func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "astnav")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "astnav")
}

// firstConfig returns dir/config.yaml or dir/config.yml, whichever exists.
func firstConfig(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		if isFile(filepath.Join(dir, name)) {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

// FindProjectConfig walks up from dir looking for .astnav.yml or
// .astnav.yaml. The walk ends at the top of a checkout, the home directory
// or the filesystem root; "" means nothing was found.
func FindProjectConfig(ctx context.Context, dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}
		for _, name := range projectFileNames {
			if path := filepath.Join(dir, name); isFile(path) {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == home || isCheckoutRoot(dir) {
			return "", nil
		}
		dir = parent
	}
}

func isCheckoutRoot(dir string) bool {
	for _, marker := range checkoutMarkers {
		if _, err := os.Lstat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
