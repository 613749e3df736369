package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/astnav/pkg/query"
)

const summaryDividerWidth = 40

// Summary describes one nav run for the summary block.
type Summary struct {
	Path     string
	Commands int
	Failed   int
	Edits    int
	Version  int
	Stats    query.Stats
}

// FormatStatsOneLine formats query statistics as a single line.
// Example: "12 queries, 3 cache hits, 1 retry".
func (s *Styles) FormatStatsOneLine(stats query.Stats) string {
	parts := []string{
		plural(stats.Queries, "query", "queries"),
		plural(stats.CacheHits, "cache hit", "cache hits"),
	}
	if stats.Retries > 0 {
		parts = append(parts, plural(stats.Retries, "retry", "retries"))
	}
	if stats.Stale > 0 {
		parts = append(parts, s.Noop.Render(fmt.Sprintf("%d stale", stats.Stale)))
	}
	if stats.Malformed > 0 {
		parts = append(parts, s.Error.Render(plural(stats.Malformed, "malformed reply", "malformed replies")))
	}
	return s.Dim.Render(strings.Join(parts, ", ")) + "\n"
}

// FormatSummary formats a nav run as a summary block.
func (s *Styles) FormatSummary(sum Summary) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	if sum.Path != "" {
		builder.WriteString(" " + s.FilePath.Render(RelativePath(sum.Path)))
	}
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Commands:          " + s.SummaryValue.Render(strconv.Itoa(sum.Commands)) + "\n")
	if sum.Failed > 0 {
		builder.WriteString("  Failed:            " + s.Error.Render(strconv.Itoa(sum.Failed)) + "\n")
	}
	if sum.Edits > 0 {
		builder.WriteString("  Edits applied:     " + s.Success.Render(strconv.Itoa(sum.Edits)) + "\n")
	}
	builder.WriteString("  Document version:  " + s.SummaryValue.Render(strconv.Itoa(sum.Version)) + "\n")
	builder.WriteString("\n")
	builder.WriteString("  Queries:           " + s.SummaryValue.Render(strconv.FormatInt(sum.Stats.Queries, 10)) + "\n")
	builder.WriteString("  Cache hits:        " + s.SummaryValue.Render(strconv.FormatInt(sum.Stats.CacheHits, 10)) + "\n")
	if sum.Stats.Retries > 0 {
		builder.WriteString("  Retries:           " + s.SummaryValue.Render(strconv.FormatInt(sum.Stats.Retries, 10)) + "\n")
	}
	if sum.Stats.Malformed > 0 {
		builder.WriteString("  Malformed replies: " + s.Error.Render(strconv.FormatInt(sum.Stats.Malformed, 10)) + "\n")
	}

	return builder.String()
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.FormatInt(n, 10) + " " + many
}
