package scan

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/premerge/internal/detect"
	"github.com/dshills/premerge/internal/logging"
)

// DefaultWorkers is the number of files scanned concurrently when no
// explicit limit is configured.
const DefaultWorkers = 4

// Engine scans change sets against a detector registry.
type Engine struct {
	registry  *detect.Registry
	exclude   Exclusions
	skipPaths []string
	workers   int
	version   string
	log       *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExclusions suppresses findings whose file or match contains any entry.
func WithExclusions(ex Exclusions) Option {
	return func(e *Engine) { e.exclude = ex }
}

// WithSkipPaths drops listed files matching any glob before they are fetched.
func WithSkipPaths(globs []string) Option {
	return func(e *Engine) { e.skipPaths = globs }
}

// WithWorkers bounds the number of files fetched and scanned concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithVersion sets the version recorded in reports.
func WithVersion(v string) Option {
	return func(e *Engine) { e.version = v }
}

// WithLogger sets the logger used for skipped-file warnings.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an Engine over the given registry.
func NewEngine(reg *detect.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		workers:  DefaultWorkers,
		version:  "dev",
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScanFile runs the secret detectors and then the PII detectors over one
// file. The result is not deduplicated.
func (e *Engine) ScanFile(in Input) []Finding {
	findings := Scan(in.Content, in.Filename, e.registry.SecretDetectors(), e.exclude)
	return append(findings, Scan(in.Content, in.Filename, e.registry.PIIDetectors(), e.exclude)...)
}

// ScanInputs scans every input and aggregates the combined findings once.
// The only possible error is cancellation of ctx.
func (e *Engine) ScanInputs(ctx context.Context, inputs []Input) ([]Finding, error) {
	perFile := make([][]Finding, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perFile[i] = e.ScanFile(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Aggregate(flatten(perFile)), nil
}

// fileResult is the outcome of fetching and scanning one listed file.
type fileResult struct {
	scanned  bool
	skip     string
	findings []Finding
}

// Run lists the files of src, fetches and scans each, and aggregates all
// findings into a Report. A file that cannot be fetched is logged, recorded
// as skipped and otherwise ignored. Only a listing failure or cancellation
// fails the run.
func (e *Engine) Run(ctx context.Context, src Source) (*Report, error) {
	start := time.Now()
	info := src.Describe()

	refs, err := src.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	listMs := time.Since(start).Milliseconds()
	e.log.Debugw("listed files", "mode", info.Mode, "ref", info.Ref, "count", len(refs))

	scanStart := time.Now()
	results := make([]fileResult, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, ref := range refs {
		if MatchesAny(ref.Filename, e.skipPaths) {
			e.log.Debugw("skipping file", "file", ref.Filename, "reason", "skip path")
			results[i] = fileResult{skip: "matched skip path"}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := src.ReadFile(gctx, ref)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.log.Warnw("could not fetch file, skipping", "file", ref.Filename, "error", err)
				results[i] = fileResult{skip: err.Error()}
				return nil
			}
			results[i] = fileResult{
				scanned: true,
				findings: e.ScanFile(Input{
					Filename:  ref.Filename,
					Content:   content,
					Additions: ref.Additions,
					Deletions: ref.Deletions,
				}),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Tool:    Tool,
		Version: e.version,
		RunID:   generateRunID(),
		Source:  info,
		Files:   []string{},
	}
	perFile := make([][]Finding, 0, len(results))
	for i, r := range results {
		if !r.scanned {
			report.Skipped = append(report.Skipped, SkippedFile{Filename: refs[i].Filename, Reason: r.skip})
			continue
		}
		report.Files = append(report.Files, refs[i].Filename)
		perFile = append(perFile, r.findings)
	}

	report.Findings = Aggregate(flatten(perFile))
	report.Summary = Summarize(report.Findings)
	report.Timing = Timing{
		ListMs:  listMs,
		ScanMs:  time.Since(scanStart).Milliseconds(),
		TotalMs: time.Since(start).Milliseconds(),
	}
	return report, nil
}

func flatten(perFile [][]Finding) []Finding {
	var all []Finding
	for _, f := range perFile {
		all = append(all, f...)
	}
	return all
}

func generateRunID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return fmt.Sprintf("%x", h[:16])
}
