package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/premerge/internal/config"
	"github.com/dshills/premerge/internal/detect"
	"github.com/dshills/premerge/internal/gitctx"
	"github.com/dshills/premerge/internal/logging"
	"github.com/dshills/premerge/internal/output"
	"github.com/dshills/premerge/internal/redact"
	"github.com/dshills/premerge/internal/scan"
)

// Shared scan flags
var (
	flagExclude        string
	flagSkipPaths      string
	flagFormat         string
	flagOut            string
	flagRules          string
	flagWorkers        int
	flagMaxFileBytes   int
	flagFailOnFindings string
	flagMask           bool
)

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Suppress findings whose file or match contains any of these substrings (comma-separated)")
	cmd.Flags().StringVar(&flagSkipPaths, "skip", "", "Skip files matching these path globs (comma-separated)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Custom detectors file (YAML)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Number of files scanned in parallel")
	cmd.Flags().IntVar(&flagMaxFileBytes, "max-file-bytes", 0, "Skip files larger than this many bytes")
	cmd.Flags().StringVar(&flagFailOnFindings, "fail-on-findings", "", "Exit 1 when findings are reported (true, false)")
	cmd.Flags().BoolVar(&flagMask, "mask", false, "Mask matched text in the report")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagExclude != "" {
		m["excludePatterns"] = flagExclude
	}
	if flagSkipPaths != "" {
		m["skipPaths"] = flagSkipPaths
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagWorkers > 0 {
		m["workers"] = strconv.Itoa(flagWorkers)
	}
	if flagMaxFileBytes > 0 {
		m["maxFileBytes"] = strconv.Itoa(flagMaxFileBytes)
	}
	if flagFailOnFindings != "" {
		m["failOnFindings"] = flagFailOnFindings
	}
	if flagMask {
		m["maskMatches"] = "true"
	}
	return m
}

func loadConfig() (config.Config, error) {
	return config.Load(flagConfigPath, buildOverrides())
}

// newEngine builds the detector registry (builtins plus the custom rules
// file) and a scan engine configured from cfg.
func newEngine(cfg config.Config, log *zap.SugaredLogger) (*scan.Engine, error) {
	defs, err := detect.LoadDefinitions(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	reg, err := detect.Build(defs)
	if err != nil {
		return nil, fmt.Errorf("building detectors: %w", err)
	}
	return scan.NewEngine(reg,
		scan.WithExclusions(scan.NewExclusions(cfg.ExcludePatterns)),
		scan.WithSkipPaths(cfg.SkipPaths),
		scan.WithWorkers(cfg.Workers),
		scan.WithVersion(version),
		scan.WithLogger(log),
	), nil
}

// runScan builds the engine for cfg and scans src. Matches are masked when
// configured.
func runScan(ctx context.Context, src scan.Source, cfg config.Config) (*scan.Report, error) {
	log, err := logging.New(flagDebug)
	if err != nil {
		return nil, err
	}
	defer func() { _ = log.Sync() }()

	engine, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}
	report, err := engine.Run(ctx, src)
	if err != nil {
		return nil, err
	}
	if cfg.MaskMatches {
		report = redact.Report(report)
	}
	return report, nil
}

// writeAndGate writes the report and sets the findings exit code.
func writeAndGate(report *scan.Report, cfg config.Config) {
	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if report.HasFindings() && cfg.FailOnFindings {
		exitCode = ExitFindings
	}
}

func scanSource(ctx context.Context, cfg config.Config, src scan.Source) {
	report, err := runScan(ctx, src, cfg)
	if err != nil {
		fail(err)
		return
	}
	writeAndGate(report, cfg)
}

func runGitScan(cmd *cobra.Command, mode gitctx.Mode, rev string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := gitctx.NewSource(mode, rev, gitctx.Options{
		MaxFileBytes: cfg.MaxFileBytes,
		MergeBase:    flagMergeBase,
	})
	if err != nil {
		fail(err)
		return nil
	}
	scanSource(cmd.Context(), cfg, src)
	return nil
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan local changes for secrets and PII",
	Long:  "Scan local files for secrets and PII. Use subcommands to select which files are scanned.",
}

var scanStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Scan staged files (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGitScan(cmd, gitctx.ModeStaged, "")
	},
}

var scanUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Scan unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGitScan(cmd, gitctx.ModeUnstaged, "")
	},
}

var scanCommitCmd = &cobra.Command{
	Use:   "commit <sha>",
	Short: "Scan files added or modified by a commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGitScan(cmd, gitctx.ModeCommit, args[0])
	},
}

var flagMergeBase bool

var scanRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Scan files changed in a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !strings.Contains(args[0], "..") {
			fmt.Fprintf(os.Stderr, "Error: %q is not a revision range (want a..b)\n", args[0])
			exitCode = ExitUsageError
			return nil
		}
		return runGitScan(cmd, gitctx.ModeRange, args[0])
	},
}

var scanCodebaseCmd = &cobra.Command{
	Use:   "codebase",
	Short: "Scan all tracked files in the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGitScan(cmd, gitctx.ModeCodebase, "")
	},
}

var scanFilesCmd = &cobra.Command{
	Use:   "files <path>...",
	Short: "Scan files and directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scanSource(cmd.Context(), cfg, gitctx.Files(args, cfg.MaxFileBytes))
		return nil
	},
}

var flagStdinPath string

var scanStdinCmd = &cobra.Command{
	Use:   "stdin",
	Short: "Scan content read from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scanSource(cmd.Context(), cfg, gitctx.Stdin(cmd.InOrStdin(), flagStdinPath, cfg.MaxFileBytes))
		return nil
	},
}

func init() {
	subs := []*cobra.Command{
		scanStagedCmd,
		scanUnstagedCmd,
		scanCommitCmd,
		scanRangeCmd,
		scanCodebaseCmd,
		scanFilesCmd,
		scanStdinCmd,
	}
	for _, cmd := range subs {
		scanCmd.AddCommand(cmd)
		addScanFlags(cmd)
	}

	scanRangeCmd.Flags().BoolVar(&flagMergeBase, "merge-base", false, "Compare against the merge base (a...b)")
	scanStdinCmd.Flags().StringVar(&flagStdinPath, "path", "", "File name reported for stdin content")
}
