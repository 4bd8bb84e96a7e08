package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/premerge/internal/github"
	"github.com/dshills/premerge/internal/output"
	"github.com/dshills/premerge/internal/scan"
)

var (
	flagGHOwner  string
	flagGHRepo   string
	flagGHDryRun bool
	flagGHInline bool
)

var githubCmd = &cobra.Command{
	Use:   "github <pr-number>",
	Short: "Scan a GitHub pull request",
	Long:  "Fetch the added and modified files of a PR from GitHub, scan them, and optionally post the findings as a PR comment.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := strconv.Atoi(args[0])
		if err != nil || prNumber <= 0 {
			fmt.Fprintf(os.Stderr, "Error: invalid PR number %q\n", args[0])
			exitCode = ExitUsageError
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireToken(); err != nil {
			fail(err)
			return nil
		}

		// Detect owner/repo if not provided
		owner, repo := flagGHOwner, flagGHRepo
		if owner == "" || repo == "" {
			detected, detectedRepo, err := github.DetectRepo("")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\nUse --owner and --repo flags to specify manually.\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			if owner == "" {
				owner = detected
			}
			if repo == "" {
				repo = detectedRepo
			}
		}

		client, err := github.NewClient(cfg.GithubToken, cfg.GithubAPIURL)
		if err != nil {
			fail(err)
			return nil
		}

		ctx := cmd.Context()
		fmt.Fprintf(os.Stderr, "Scanning PR #%d in %s/%s...\n", prNumber, owner, repo)
		src := github.NewPRSource(client, owner, repo, prNumber, cfg.MaxFileBytes)
		report, err := runScan(ctx, src, cfg)
		if err != nil {
			fail(err)
			return nil
		}

		if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		switch {
		case !report.HasFindings():
		case flagGHDryRun:
			fmt.Fprintf(os.Stderr, "Dry run: %d findings found, not posting to GitHub.\n", len(report.Findings))
		case !cfg.Comment:
			fmt.Fprintln(os.Stderr, "PR comments disabled by config.")
		default:
			if err := publish(ctx, client, owner, repo, prNumber, report.Findings, flagGHInline); err != nil {
				fail(err)
				return nil
			}
			fmt.Fprintf(os.Stderr, "Findings posted to PR #%d.\n", prNumber)
		}

		if report.HasFindings() && cfg.FailOnFindings {
			exitCode = ExitFindings
		}
		return nil
	},
}

// publish posts the findings comment on the PR. With inline set the comment
// is posted as a review with one inline comment per located finding; if
// GitHub rejects the review, a plain comment is posted instead.
func publish(ctx context.Context, client *github.Client, owner, repo string, prNumber int, findings []scan.Finding, inline bool) error {
	body := output.Comment(findings)
	if body == "" {
		return nil
	}
	if inline {
		err := client.PostReview(ctx, owner, repo, prNumber, github.BuildReview(body, findings))
		if err == nil {
			return nil
		}
		if !github.IsUnprocessable(err) {
			return err
		}
		fmt.Fprintln(os.Stderr, "Warning: inline review rejected, posting a plain comment instead.")
	}
	return client.CreateComment(ctx, owner, repo, prNumber, body)
}

func init() {
	addScanFlags(githubCmd)
	githubCmd.Flags().StringVar(&flagGHOwner, "owner", "", "GitHub repository owner (auto-detected if omitted)")
	githubCmd.Flags().StringVar(&flagGHRepo, "repo", "", "GitHub repository name (auto-detected if omitted)")
	githubCmd.Flags().BoolVar(&flagGHDryRun, "dry-run", false, "Scan but don't post to GitHub")
	githubCmd.Flags().BoolVar(&flagGHInline, "inline", false, "Post findings as an inline PR review")
}
