package actions

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sethvargo/go-githubactions"

	"github.com/dshills/premerge/internal/github"
	"github.com/dshills/premerge/internal/scan"
)

// Output names set on the step.
const (
	OutputFindings = "findings-count"
	OutputCritical = "critical-count"
	OutputHigh     = "high-count"
)

// ErrNoPullRequest is returned when the triggering event carries no pull request.
var ErrNoPullRequest = errors.New("event has no pull_request payload")

// Runner wraps the workflow-command interface of the Actions runner.
type Runner struct {
	gha *githubactions.Action
}

// New creates a Runner. Options are passed to go-githubactions, which lets
// tests substitute the environment and the command writer.
func New(opts ...githubactions.Option) *Runner {
	return &Runner{gha: githubactions.New(opts...)}
}

// Enabled reports whether the process runs inside GitHub Actions.
func (r *Runner) Enabled() bool {
	return r.gha.Getenv("GITHUB_ACTIONS") == "true"
}

// PullRequest identifies the pull request that triggered the workflow.
type PullRequest struct {
	Owner  string
	Repo   string
	Number int
}

// PullRequest reads the repository and PR number from the event payload.
// It returns ErrNoPullRequest for events that are not pull requests.
func (r *Runner) PullRequest() (PullRequest, error) {
	ctx, err := r.gha.Context()
	if err != nil {
		return PullRequest{}, fmt.Errorf("reading workflow context: %w", err)
	}

	pr, ok := ctx.Event["pull_request"].(map[string]any)
	if !ok {
		return PullRequest{}, ErrNoPullRequest
	}
	num, ok := pr["number"].(float64)
	if !ok || num <= 0 {
		return PullRequest{}, fmt.Errorf("pull_request payload has no number")
	}

	owner, repo, err := github.SplitRepository(ctx.Repository)
	if err != nil {
		return PullRequest{}, fmt.Errorf("GITHUB_REPOSITORY: %w", err)
	}
	return PullRequest{Owner: owner, Repo: repo, Number: int(num)}, nil
}

func (r *Runner) Infof(format string, args ...any) {
	r.gha.Infof(format, args...)
}

func (r *Runner) Warningf(format string, args ...any) {
	r.gha.Warningf(format, args...)
}

// Annotate emits one annotation per finding: critical findings as errors,
// everything else as warnings.
func (r *Runner) Annotate(findings []scan.Finding) {
	for _, f := range findings {
		fields := map[string]string{"file": f.File, "title": f.Detector}
		if f.Line > 0 {
			fields["line"] = strconv.Itoa(f.Line)
		}
		a := r.gha.WithFieldsMap(fields)
		msg := fmt.Sprintf("%s in %s: %s", f.Detector, f.File, f.Match)
		if f.Severity.AnnotationLevel() == "error" {
			a.Errorf("%s", msg)
		} else {
			a.Warningf("%s", msg)
		}
	}
}

// SetOutputs publishes the finding counts as step outputs.
func (r *Runner) SetOutputs(s scan.Summary) {
	r.gha.SetOutput(OutputFindings, strconv.Itoa(s.Total))
	r.gha.SetOutput(OutputCritical, strconv.Itoa(s.Critical))
	r.gha.SetOutput(OutputHigh, strconv.Itoa(s.High))
}

// StepSummary appends markdown to the job summary. It is a no-op outside
// Actions.
func (r *Runner) StepSummary(markdown string) {
	if r.gha.Getenv("GITHUB_STEP_SUMMARY") == "" {
		return
	}
	r.gha.AddStepSummary(markdown)
}

// FailureMessage is the message the step fails with when findings block the merge.
func FailureMessage(total int) string {
	return fmt.Sprintf("Found %d potential secrets or PII. Please review and fix before merging.", total)
}

// Fail reports the step failure. The caller decides the exit code.
func (r *Runner) Fail(msg string) {
	r.gha.Errorf("%s", msg)
}
