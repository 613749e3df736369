package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/fsutil"
	"github.com/yaklabco/astnav/pkg/langdetect"
	"github.com/yaklabco/astnav/pkg/nav"
	"github.com/yaklabco/astnav/pkg/reporter"
	"github.com/yaklabco/astnav/pkg/resolve"
)

// ErrCommandFailed signals that at least one navigation command returned an
// error status. The outcomes have already been printed.
var ErrCommandFailed = errors.New("navigation command failed")

// navFlags holds the flags for the nav command.
type navFlags struct {
	at      string
	do      []string
	diff    bool
	write   bool
	backup  bool
	force   bool
	summary bool
	quiet   bool
	format  string
}

func newNavCommand(global *globalFlags) *cobra.Command {
	flags := &navFlags{}

	cmd := &cobra.Command{
		Use:   "nav FILE",
		Short: "Run navigation and edit commands on a file",
		Long: `Place the cursor on the node at a position and run a sequence of commands.

Positions are zero-based LINE:CHARACTER pairs, with characters counted in
UTF-16 code units.

Commands:
  next, prev, last     move among siblings of the cursor (next and prev wrap)
  first-child, parent  move down or up one level
  extract              move the cursor's text in front of its parent
  substitute           replace the parent's text with the cursor's text
  delete               remove the cursor node's text

Edits are applied to an in-memory copy. Use --diff to preview them and
--write to save the file.

Examples:
  astnav nav main.c --at 4:10 --do parent,next
  astnav nav main.c --at 4:10 --do extract --diff
  astnav nav main.cc --at 12:3 --do delete --write --backup
  astnav nav main.c --at 4:10 --do next,next --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNav(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.at, "at", "", "position to focus, as LINE:CHARACTER (required)")
	cmd.Flags().StringSliceVar(&flags.do, "do", nil, "commands to run after focusing, comma separated")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "show a diff of the edits")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write edits back to the file")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep the original as FILE.orig when writing")
	cmd.Flags().BoolVar(&flags.force, "force", false, "write even if the file changed on disk")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a summary with query statistics")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "print outcomes only, without the selected source")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, diff")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func runNav(cmd *cobra.Command, global *globalFlags, flags *navFlags, path string) error {
	ctx := commandContext(cmd)

	pos, err := document.ParsePosition(flags.at)
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}
	commands := make([]nav.Command, 0, len(flags.do)+1)
	commands = append(commands, nav.Focus(pos))
	for _, name := range flags.do {
		op, err := nav.ParseOp(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
		}
		if op == nav.OpFocus {
			return fmt.Errorf("%w: focus is set with --at", ErrInvalidUsage)
		}
		commands = append(commands, nav.Command{Op: op})
	}
	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
	}
	if (flags.backup || flags.force) && !flags.write {
		return fmt.Errorf("%w: --backup and --force require --write", ErrInvalidUsage)
	}

	cfg, err := loadConfig(cmd, global)
	if err != nil {
		return err
	}
	ctx = logging.With(withLogger(ctx, cfg), logging.FieldPath, path)
	logger := logging.From(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	file, content, err := fsutil.Load(ctx, absPath)
	if err != nil {
		return err
	}
	if !langdetect.IsCFamily(absPath) {
		logger.Warn("file does not look like C or C++")
	}
	languageID := langdetect.LanguageID(absPath, content)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	svc, err := openBackend(ctx, cfg, wd)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.close(ctx); err != nil {
			logger.Warn("backend shutdown failed", logging.FieldError, err)
		}
	}()

	session, err := nav.Open(ctx, svc.service, fsutil.PathToURI(absPath), content,
		nav.WithLogger(logger),
		nav.WithHeuristics(resolve.HeuristicsFromConfig(cfg.Resolver)),
		nav.WithTimeout(cfg.QueryTimeout),
		nav.WithLanguage(languageID),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(ctx); err != nil {
			logger.Debug("close document failed", logging.FieldError, err)
		}
	}()
	logger.Debug("session open",
		logging.FieldLanguage, languageID,
		logging.FieldBackend, cfg.Backend,
	)

	run := &reporter.Run{Path: absPath, Original: content}
	for _, command := range commands {
		outcome := session.Execute(ctx, command)
		step := reporter.Step{Outcome: outcome, Snapshot: session.Snapshot()}
		if cursor := session.Cursor(); cursor != nil && cursor.Node != nil {
			step.Kind = cursor.Node.Kind
		}
		run.Steps = append(run.Steps, step)
	}
	run.Final = session.Snapshot()
	run.Stats = session.Stats()

	if flags.write {
		saved, err := fsutil.Save(ctx, file, []byte(run.Final.Text()), fsutil.SaveOptions{Backup: flags.backup, Force: flags.force})
		if err != nil {
			return err
		}
		run.Written = saved
		if saved {
			logger.Info("wrote file", logging.FieldVersion, run.Final.Version)
		}
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       cfg.Color,
		ShowSource:  !flags.quiet,
		ShowDiff:    flags.diff,
		ShowSummary: flags.summary,
	})
	if err != nil {
		return err
	}
	if err := rep.Report(ctx, run); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if run.Failed() > 0 {
		return ErrCommandFailed
	}
	return nil
}
