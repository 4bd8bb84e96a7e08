package gitctx

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/premerge/internal/content"
	"github.com/dshills/premerge/internal/scan"
)

// FilesSource scans explicit paths. Directories are walked recursively,
// skipping .git.
type FilesSource struct {
	paths    []string
	maxBytes int
}

var _ scan.Source = (*FilesSource)(nil)

// Files creates a source over the given files and directories.
func Files(paths []string, maxBytes int) *FilesSource {
	return &FilesSource{paths: paths, maxBytes: maxBytes}
}

func (s *FilesSource) Describe() scan.SourceInfo {
	return scan.SourceInfo{Mode: "files"}
}

func (s *FilesSource) ListFiles(_ context.Context) ([]scan.FileRef, error) {
	var refs []scan.FileRef
	seen := make(map[string]bool)
	add := func(path string) {
		path = filepath.ToSlash(filepath.Clean(path))
		if !seen[path] {
			seen[path] = true
			refs = append(refs, scan.FileRef{Filename: path, Status: "file"})
		}
	}

	for _, p := range s.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	return refs, nil
}

func (s *FilesSource) ReadFile(_ context.Context, ref scan.FileRef) (string, error) {
	data, err := os.ReadFile(filepath.FromSlash(ref.Filename))
	if err != nil {
		return "", err
	}
	return content.Decode(ref.Filename, data, s.maxBytes)
}

// StdinSource scans a single stream, read once.
type StdinSource struct {
	r        io.Reader
	name     string
	maxBytes int

	once sync.Once
	data []byte
	err  error
}

var _ scan.Source = (*StdinSource)(nil)

// Stdin creates a source that reports findings under name.
func Stdin(r io.Reader, name string, maxBytes int) *StdinSource {
	if name == "" {
		name = "stdin"
	}
	return &StdinSource{r: r, name: name, maxBytes: maxBytes}
}

func (s *StdinSource) Describe() scan.SourceInfo {
	return scan.SourceInfo{Mode: "stdin"}
}

func (s *StdinSource) ListFiles(_ context.Context) ([]scan.FileRef, error) {
	return []scan.FileRef{{Filename: s.name, Status: "stdin"}}, nil
}

func (s *StdinSource) ReadFile(_ context.Context, ref scan.FileRef) (string, error) {
	s.once.Do(func() {
		s.data, s.err = io.ReadAll(s.r)
	})
	if s.err != nil {
		return "", fmt.Errorf("reading stdin: %w", s.err)
	}
	return content.Decode(ref.Filename, s.data, s.maxBytes)
}
