package pretty

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/astnav/pkg/fix"
)

// FormatDiff formats a diff in git style with colored lines. Returns "" when
// there are no changes.
func (s *Styles) FormatDiff(diff *fix.Diff) string {
	if !diff.HasChanges() {
		return ""
	}

	displayPath := RelativePath(diff.Path)

	var builder strings.Builder
	builder.WriteString(s.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", displayPath, displayPath)) + "\n")
	builder.WriteString(s.DiffRemove.Render("--- a/"+displayPath) + "\n")
	builder.WriteString(s.DiffAdd.Render("+++ b/"+displayPath) + "\n")

	builder.WriteString(s.DiffHunk.Render(diff.Hunk.Header()) + "\n")
	for _, line := range diff.Hunk.Lines {
		builder.WriteString(s.diffLine(line) + "\n")
	}

	return builder.String()
}

func (s *Styles) diffLine(line fix.Line) string {
	switch line.Op {
	case fix.LineAdd:
		return s.DiffAdd.Render(line.String())
	case fix.LineRemove:
		return s.DiffRemove.Render(line.String())
	default:
		return s.DiffContext.Render(line.String())
	}
}

// RelativePath converts an absolute path to a relative path from the current directory.
// If the relative path would require too many "../" traversals, use the basename instead.
func RelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return filepath.Base(path)
	}
	if strings.Count(rel, "..") > 2 {
		return filepath.Base(path)
	}
	return rel
}
