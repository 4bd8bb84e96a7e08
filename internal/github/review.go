package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dshills/premerge/internal/scan"
)

// ReviewComment represents an inline comment on a PR review.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// ReviewRequest represents a PR review to post.
type ReviewRequest struct {
	Body     string          `json:"body"`
	Event    string          `json:"event"`
	Comments []ReviewComment `json:"comments"`
}

// PostReview posts a pull request review with inline comments. GitHub rejects
// the whole review (422) if any comment targets a line outside the diff.
func (c *Client) PostReview(ctx context.Context, owner, repo string, prNumber int, review ReviewRequest) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", owner, repo, prNumber)
	if _, err := c.do(ctx, http.MethodPost, path, review); err != nil {
		return fmt.Errorf("posting review: %w", err)
	}
	return nil
}

// IsUnprocessable reports whether GitHub rejected a request as invalid (422).
func IsUnprocessable(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnprocessableEntity
}

// BuildReview attaches each located finding as an inline comment. Findings
// without a line number stay in the summary body only.
func BuildReview(summary string, findings []scan.Finding) ReviewRequest {
	var comments []ReviewComment
	for _, f := range findings {
		if f.Line == 0 {
			continue
		}
		comments = append(comments, ReviewComment{
			Path: f.File,
			Line: f.Line,
			Body: formatInlineComment(f),
		})
	}
	return ReviewRequest{
		Body:     summary,
		Event:    "COMMENT",
		Comments: comments,
	}
}

func formatInlineComment(f scan.Finding) string {
	return fmt.Sprintf("%s **%s** (%s)\n\n%s", f.Severity.Icon(), f.Detector, f.Severity, f.Remediation)
}
