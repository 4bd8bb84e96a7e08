package scan

import (
	"context"
	"fmt"
)

// Source lists the files of a change set and fetches their content.
type Source interface {
	Describe() SourceInfo
	ListFiles(ctx context.Context) ([]FileRef, error)
	ReadFile(ctx context.Context, ref FileRef) (string, error)
}

// StaticSource serves in-memory inputs.
type StaticSource struct {
	Info   SourceInfo
	Inputs []Input
}

func (s StaticSource) Describe() SourceInfo { return s.Info }

func (s StaticSource) ListFiles(_ context.Context) ([]FileRef, error) {
	refs := make([]FileRef, 0, len(s.Inputs))
	for _, in := range s.Inputs {
		refs = append(refs, FileRef{
			Filename:  in.Filename,
			Status:    "added",
			Additions: in.Additions,
			Deletions: in.Deletions,
		})
	}
	return refs, nil
}

func (s StaticSource) ReadFile(_ context.Context, ref FileRef) (string, error) {
	for _, in := range s.Inputs {
		if in.Filename == ref.Filename {
			return in.Content, nil
		}
	}
	return "", fmt.Errorf("%s: not found", ref.Filename)
}
