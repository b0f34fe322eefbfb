package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/loadout-dev/loadout/internal/check"
	"github.com/loadout-dev/loadout/internal/config"
	"github.com/loadout-dev/loadout/internal/fileutil"
	"github.com/loadout-dev/loadout/internal/linker"
	"github.com/loadout-dev/loadout/internal/logging"
	"github.com/spf13/cobra"
)

type checkFlags struct {
	verbose bool
	asJSON  bool
	watch   bool
	min     check.Severity
}

// CheckSummary is the machine-readable form of a check run.
type CheckSummary struct {
	ConfigPath    string          `json:"config_path"`
	Skills        int             `json:"skills"`
	Errors        int             `json:"errors"`
	Warnings      int             `json:"warnings"`
	Info          int             `json:"info"`
	Suppressed    int             `json:"suppressed"`
	Findings      []check.Finding `json:"findings"`
	UnusedIgnores []string        `json:"unused_ignores,omitempty"`
}

func RunCheck(cmd *cobra.Command, args []string) error {
	flags, err := parseCheckFlags(cmd)
	if err != nil {
		return err
	}

	if flags.watch {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watchCheck(ctx, cmd, flags)
	}

	_, summary, code, err := runCheckOnce(commandContext(cmd), cmd, flags)
	if err != nil {
		return err
	}
	if err := printCheck(cmd.OutOrStdout(), summary, flags); err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func parseCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var flags checkFlags
	var err error
	if flags.verbose, err = OptionalBoolFlag(cmd, "verbose"); err != nil {
		return flags, err
	}
	if flags.asJSON, err = OptionalBoolFlag(cmd, "json"); err != nil {
		return flags, err
	}
	if flags.watch, err = OptionalBoolFlag(cmd, "watch"); err != nil {
		return flags, err
	}
	if flags.min, err = ParseSeverityFlag(cmd); err != nil {
		return flags, err
	}
	return flags, nil
}

// runCheckOnce loads the config and skills from scratch and evaluates them.
func runCheckOnce(ctx context.Context, cmd *cobra.Command, flags checkFlags) (*config.Config, CheckSummary, int, error) {
	logger := logging.FromContext(ctx)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, CheckSummary{}, 0, err
	}
	lib, err := discoverSkills(ctx, cfg)
	if err != nil {
		return cfg, CheckSummary{}, 0, err
	}
	links, err := linker.InspectAll(cfg.AllTargets())
	if err != nil {
		return cfg, CheckSummary{}, 0, fmt.Errorf("failed to inspect targets: %w", err)
	}

	report := check.Run(check.Input{
		Skills:     lib.Skills,
		Problems:   lib.Problems,
		Active:     cfg.ActiveSkills(),
		Links:      links,
		ConfigPath: cfg.Path,
	}, check.Options{
		Ignore:      cfg.Check.Ignore,
		Verbose:     flags.verbose,
		MinSeverity: flags.min,
	})
	logger.Debug("check complete", "findings", len(report.Findings), "suppressed", report.SuppressedCount())

	counts := report.Counts()
	summary := CheckSummary{
		ConfigPath:    cfg.Path,
		Skills:        len(lib.Skills),
		Errors:        counts[check.SeverityError],
		Warnings:      counts[check.SeverityWarning],
		Info:          counts[check.SeverityInfo],
		Suppressed:    report.SuppressedCount(),
		Findings:      report.Visible(),
		UnusedIgnores: report.UnusedIgnores,
	}
	return cfg, summary, report.ExitCode(), nil
}

func printCheck(w io.Writer, summary CheckSummary, flags checkFlags) error {
	if flags.asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	if len(summary.Findings) == 0 {
		fmt.Fprintln(w, successStyle.Sprintf("No issues found in %d skills.", summary.Skills))
	}

	for _, severity := range []check.Severity{check.SeverityError, check.SeverityWarning, check.SeverityInfo} {
		var group []check.Finding
		for _, f := range summary.Findings {
			if f.Severity == severity {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}

		style := severityStyle(severity)
		fmt.Fprintf(w, "\n%s (%d found)\n", style.Sprint(severity.Label()), len(group))
		for _, f := range group {
			message := f.Message
			if f.Path != "" {
				message = fmt.Sprintf("%s (%s)", message, f.Path)
			}
			if f.Suppressed {
				fmt.Fprintf(w, "  %s %s %s\n", mutedStyle.Sprint(bullet), mutedStyle.Sprint(message), mutedStyle.Sprintf("[suppressed by %s]", f.IgnoredBy))
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", style.Sprint(bullet), message)
			fmt.Fprintf(w, "    %s %s\n", style.Sprint(fixArrow), mutedStyle.Sprint(f.Fix))
			if flags.verbose {
				fmt.Fprintf(w, "    %s\n", mutedStyle.Sprintf("ignore key: %s", f.Key))
			}
		}
	}

	if flags.verbose && len(summary.UnusedIgnores) > 0 {
		fmt.Fprintf(w, "\n%s\n", warningStyle.Sprint("Unused check.ignore patterns:"))
		for _, pattern := range summary.UnusedIgnores {
			fmt.Fprintf(w, "  %s %s\n", mutedStyle.Sprint(bullet), pattern)
		}
	}

	parts := []string{
		fmt.Sprintf("%d errors", summary.Errors),
		fmt.Sprintf("%d warnings", summary.Warnings),
		fmt.Sprintf("%d info", summary.Info),
	}
	line := strings.Join(parts, ", ")
	if summary.Suppressed > 0 {
		line += fmt.Sprintf(" (%d suppressed)", summary.Suppressed)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", line)
	return err
}

// watchCheck re-runs the check whenever a skill source or the config file
// changes, until ctx is cancelled.
func watchCheck(ctx context.Context, cmd *cobra.Command, flags checkFlags) error {
	logger := logging.FromContext(ctx)
	out := cmd.OutOrStdout()

	run := func() []string {
		cfg, summary, _, err := runCheckOnce(ctx, cmd, flags)
		fmt.Fprintln(out, mutedStyle.Sprintf("--- %s ---", time.Now().Format(time.Kitchen)))
		if err != nil {
			fmt.Fprintln(out, errorStyle.Sprintf("check failed: %v", err))
		} else if err := printCheck(out, summary, flags); err != nil {
			logger.Warn("failed to print findings", "error", err)
		}
		if cfg == nil {
			return nil
		}
		return append(append([]string{}, cfg.Sources.Skills...), cfg.Path)
	}

	paths := run()
	if len(paths) == 0 {
		return fmt.Errorf("nothing to watch: no config loaded")
	}

	w, err := newSourceWatcher(paths, defaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintln(out, infoStyle.Sprint("Watching for changes (Ctrl-C to stop)..."))
	return w.Run(ctx, func() {
		if next := run(); len(next) > 0 {
			if err := w.Reset(next); err != nil {
				logger.Warn("failed to refresh watch list", "error", err)
			}
		}
	})
}
