package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> premerge pre-commit hook >>>"
	hookMarkerEnd   = "# <<< premerge pre-commit hook <<<"
)

var (
	hookFormat string
	hookMask   bool
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Scan staged changes before every commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd.Context())
		if err != nil {
			fail(err)
			return nil
		}
		if err := installHook(hookPath, hookFormat, hookMask); err != nil {
			fail(err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed premerge pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the premerge section from the pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd.Context())
		if err != nil {
			fail(err)
			return nil
		}
		msg, err := uninstallHook(hookPath)
		if err != nil {
			fail(err)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

// installHook adds or refreshes the premerge section of the hook at hookPath,
// keeping whatever else the hook runs.
func installHook(hookPath, format string, mask bool) error {
	section := generateHookScript(format, mask)

	existing, err := os.ReadFile(hookPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading hook file: %w", err)
	}

	hook := "#!/bin/sh\n" + section
	if len(existing) > 0 {
		hook = replaceHookSection(string(existing), section)
	}

	if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}
	if err := os.WriteFile(hookPath, []byte(hook), 0o755); err != nil {
		return fmt.Errorf("writing hook file: %w", err)
	}
	return nil
}

// uninstallHook strips the premerge section. A hook left with nothing but a
// shebang is deleted.
func uninstallHook(hookPath string) (string, error) {
	existing, err := os.ReadFile(hookPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "No pre-commit hook found.", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading hook file: %w", err)
	}

	rest := removeHookSection(string(existing))
	switch strings.TrimSpace(rest) {
	case "", "#!/bin/sh", "#!/bin/bash":
		if err := os.Remove(hookPath); err != nil {
			return "", fmt.Errorf("removing hook file: %w", err)
		}
		return "Removed premerge pre-commit hook at " + hookPath, nil
	}

	if err := os.WriteFile(hookPath, []byte(rest), 0o755); err != nil {
		return "", fmt.Errorf("writing hook file: %w", err)
	}
	return "Removed premerge section from " + hookPath, nil
}

func getHookPath(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", errors.New("not a git repository (git rev-parse --git-dir failed)")
	}
	return filepath.Join(strings.TrimSpace(string(out)), "hooks", "pre-commit"), nil
}

// generateHookScript blocks the commit on findings (exit 1) and lets it
// through when the scan itself fails.
func generateHookScript(format string, mask bool) string {
	run := fmt.Sprintf("premerge scan staged --format %s --fail-on-findings true", format)
	if mask {
		run += " --mask"
	}
	lines := []string{
		hookMarkerStart,
		run,
		"PREMERGE_EXIT=$?",
		"if [ $PREMERGE_EXIT -eq 1 ]; then",
		`  echo "premerge: possible secrets or PII staged, commit blocked"`,
		"  exit 1",
		"elif [ $PREMERGE_EXIT -ge 2 ]; then",
		`  echo "premerge: warning: scan encountered an error (exit $PREMERGE_EXIT), allowing commit"`,
		"fi",
		hookMarkerEnd,
	}
	return strings.Join(lines, "\n") + "\n"
}

func replaceHookSection(existing, section string) string {
	start := strings.Index(existing, hookMarkerStart)
	end := strings.Index(existing, hookMarkerEnd)
	if start == -1 || end == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}
	after := strings.TrimPrefix(existing[end+len(hookMarkerEnd):], "\n")
	return existing[:start] + section + after
}

func removeHookSection(existing string) string {
	start := strings.Index(existing, hookMarkerStart)
	end := strings.Index(existing, hookMarkerEnd)
	if start == -1 || end == -1 {
		return existing
	}
	after := strings.TrimPrefix(existing[end+len(hookMarkerEnd):], "\n")
	return existing[:start] + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookFormat, "format", "text", "Output format (text, json, markdown, sarif)")
	hookInstallCmd.Flags().BoolVar(&hookMask, "mask", false, "Mask matched text in hook output")
}
