package github

import (
	"context"
	"fmt"

	"github.com/dshills/premerge/internal/content"
	"github.com/dshills/premerge/internal/scan"
)

// PRSource serves the added and modified files of a pull request, read at
// the PR head ref.
type PRSource struct {
	client   *Client
	owner    string
	repo     string
	number   int
	maxBytes int
}

var _ scan.Source = (*PRSource)(nil)

// NewPRSource creates a source for owner/repo#number. Files larger than
// maxBytes are skipped; zero disables the limit.
func NewPRSource(c *Client, owner, repo string, number, maxBytes int) *PRSource {
	return &PRSource{client: c, owner: owner, repo: repo, number: number, maxBytes: maxBytes}
}

// Ref is the git ref the file contents are read at.
func (s *PRSource) Ref() string {
	return fmt.Sprintf("refs/pull/%d/head", s.number)
}

func (s *PRSource) Describe() scan.SourceInfo {
	return scan.SourceInfo{
		Mode: "pr-diff",
		Ref:  s.Ref(),
		Repo: s.owner + "/" + s.repo,
	}
}

// ListFiles returns the PR files whose status is added or modified.
func (s *PRSource) ListFiles(ctx context.Context) ([]scan.FileRef, error) {
	files, err := s.client.ListPRFiles(ctx, s.owner, s.repo, s.number)
	if err != nil {
		return nil, err
	}
	var refs []scan.FileRef
	for _, f := range files {
		if f.Status != "added" && f.Status != "modified" {
			continue
		}
		refs = append(refs, scan.FileRef{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
		})
	}
	return refs, nil
}

func (s *PRSource) ReadFile(ctx context.Context, ref scan.FileRef) (string, error) {
	data, err := s.client.GetFileContent(ctx, s.owner, s.repo, ref.Filename, s.Ref())
	if err != nil {
		return "", err
	}
	return content.Decode(ref.Filename, data, s.maxBytes)
}
