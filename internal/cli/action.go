package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/premerge/internal/actions"
	"github.com/dshills/premerge/internal/github"
	"github.com/dshills/premerge/internal/output"
)

const scanModePRDiff = "pr-diff"

// newRunner is replaced in tests to capture workflow commands.
var newRunner = func() *actions.Runner { return actions.New() }

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Run as a GitHub Action step on a pull_request event",
	Long: "Scan the pull request that triggered the workflow, annotate findings, comment on the PR, " +
		"set the findings-count, critical-count and high-count outputs, and fail the step when " +
		"fail-on-findings is set.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := newRunner()
		if !runner.Enabled() {
			fmt.Fprintln(cmd.ErrOrStderr(), "premerge: GITHUB_ACTIONS is not set, workflow commands are written to stdout")
		}

		cfg, err := loadConfig()
		if err != nil {
			runner.Fail(fmt.Sprintf("Action failed with error: %v", err))
			exitCode = ExitUsageError
			return nil
		}

		if cfg.ScanMode != scanModePRDiff {
			runner.Warningf("PR diff mode not available, skipping scan")
			return nil
		}
		pr, err := runner.PullRequest()
		if errors.Is(err, actions.ErrNoPullRequest) {
			runner.Warningf("PR diff mode not available, skipping scan")
			return nil
		}
		if err != nil {
			actionFail(runner, err)
			return nil
		}

		if err := cfg.RequireToken(); err != nil {
			actionFail(runner, err)
			return nil
		}
		client, err := github.NewClient(cfg.GithubToken, cfg.GithubAPIURL)
		if err != nil {
			actionFail(runner, err)
			return nil
		}

		ctx := cmd.Context()
		runner.Infof("Scanning PR #%d for secrets and PII...", pr.Number)
		src := github.NewPRSource(client, pr.Owner, pr.Repo, pr.Number, cfg.MaxFileBytes)
		report, err := runScan(ctx, src, cfg)
		if err != nil {
			actionFail(runner, err)
			return nil
		}

		if flagOut != "" {
			if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
				actionFail(runner, fmt.Errorf("writing output: %w", err))
				return nil
			}
		}

		if report.HasFindings() {
			runner.Warningf("Found %d potential secrets/PII", report.Summary.Total)
			runner.Annotate(report.Findings)

			if cfg.Comment {
				if err := publish(ctx, client, pr.Owner, pr.Repo, pr.Number, report.Findings, flagGHInline); err != nil {
					actionFail(runner, err)
					return nil
				}
			}
			runner.StepSummary(output.Comment(report.Findings))

			if cfg.FailOnFindings {
				runner.Fail(actions.FailureMessage(report.Summary.Total))
				exitCode = ExitFindings
			}
		} else {
			runner.Infof("✅ No secrets or PII detected in this PR")
		}

		runner.SetOutputs(report.Summary)
		return nil
	},
}

func actionFail(runner *actions.Runner, err error) {
	runner.Fail(fmt.Sprintf("Action failed with error: %v", err))
	fail(err)
}

func init() {
	addScanFlags(actionCmd)
	actionCmd.Flags().BoolVar(&flagGHInline, "inline", false, "Post findings as an inline PR review")
}
