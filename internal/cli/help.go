package cli

import (
	"bytes"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astnav/internal/ui/pretty"
)

// applyHelpStyles colors the help output of cmd and its subcommands when
// the color mode read from *colorMode allows it. Cobra renders the text; the
// styling is applied line by line afterwards.
func applyHelpStyles(cmd *cobra.Command, colorMode *string) {
	render := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		out := c.OutOrStdout()
		if !pretty.IsColorEnabled(*colorMode, out) {
			render(c, args)
			return
		}

		var buf bytes.Buffer
		c.SetOut(&buf)
		render(c, args)
		c.SetOut(out)

		if _, err := io.WriteString(out, styleHelp(pretty.NewStyles(true), buf.String())); err != nil {
			c.PrintErrln(err)
		}
	})
}

// styleHelp styles rendered help text. Unindented lines ending in a colon
// open a section. Indented lines are styled by the section they are in.
func styleHelp(styles *pretty.Styles, text string) string {
	lines := strings.Split(text, "\n")
	section := ""
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]

		switch {
		case trimmed == "":
		case indent == "" && strings.HasSuffix(line, ":"):
			section = strings.TrimSuffix(line, ":")
			lines[i] = styles.Bold.Render(line)
		case indent == "":
			section = ""
		case section == "Usage":
			lines[i] = indent + styles.Op.Render(trimmed)
		case strings.HasPrefix(trimmed, "astnav "):
			lines[i] = indent + styles.Dim.Render(trimmed)
		case strings.HasSuffix(section, "Flags"):
			lines[i] = indent + styleFlag(styles, trimmed)
		case section != "":
			if term, desc, ok := splitColumns(trimmed); ok {
				lines[i] = indent + styles.Op.Render(term) + trimmed[len(term):len(trimmed)-len(desc)] + desc
			}
		}
	}
	return strings.Join(lines, "\n")
}

// styleFlag styles one pflag usage line such as "-w, --write   write edits".
func styleFlag(styles *pretty.Styles, line string) string {
	names, desc, ok := splitColumns(line)
	if !ok {
		return line
	}

	tokens := strings.Fields(names)
	for i, token := range tokens {
		name, comma := strings.CutSuffix(token, ",")
		if strings.HasPrefix(name, "-") {
			name = styles.Kind.Render(name)
		} else {
			name = styles.Dim.Render(name)
		}
		if comma {
			name += ","
		}
		tokens[i] = name
	}
	return strings.Join(tokens, " ") + line[len(names):len(line)-len(desc)] + desc
}

// splitColumns splits a line at its first run of two or more spaces.
func splitColumns(line string) (term, desc string, ok bool) {
	i := strings.Index(line, "  ")
	if i <= 0 {
		return "", "", false
	}
	desc = strings.TrimLeft(line[i:], " ")
	if desc == "" {
		return "", "", false
	}
	return line[:i], desc, true
}
