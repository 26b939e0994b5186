package acquire

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/repotext/internal/binaryfile"
	"github.com/fyrsmithlabs/repotext/internal/config"
	"github.com/fyrsmithlabs/repotext/internal/discovery"
	"github.com/fyrsmithlabs/repotext/internal/fetch"
	"github.com/fyrsmithlabs/repotext/internal/gitmeta"
	"github.com/fyrsmithlabs/repotext/internal/intake"
	"github.com/fyrsmithlabs/repotext/internal/logstore"
)

// Result is the terminal artifact of one acquisition.
//
// FileCount counts files that produced non-empty text content;
// LineCount additionally includes one line per placeholder, so
// aggregate counts reflect the true repository size even when content
// is abbreviated or unavailable.
type Result struct {
	Content   string
	FileCount int
	LineCount int
}

// Pipeline bundles the per-request collaborators built for one
// credential. Strategies are ordered by priority.
type Pipeline interface {
	Resolver() gitmeta.Resolver
	Strategies() []discovery.Strategy
	RemoteSource(id intake.Identity, branch string) fetch.Source
}

// PipelineBuilder constructs a Pipeline for one acquisition attempt.
// The credential is forwarded to API calls only; it never reaches logs
// or output.
type PipelineBuilder interface {
	Build(ctx context.Context, token string) Pipeline
}

// Service is the acquisition orchestrator.
type Service struct {
	cfg     config.AcquireConfig
	builder PipelineBuilder
	store   logstore.Store
	fetcher *fetch.Fetcher
	logger  *zap.Logger
	metrics *metrics
}

// NewService creates the orchestrator. store may be nil when no
// processing log is kept.
func NewService(cfg config.AcquireConfig, builder PipelineBuilder, store logstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Service{
		cfg:     cfg,
		builder: builder,
		store:   store,
		fetcher: fetch.NewFetcher(cfg.LineCap, logger),
		logger:  logger,
		metrics: newMetrics(logger),
	}
}

// Acquire converts the repository identified by id into one text
// artifact. The returned error is non-nil only when ctx is cancelled;
// every other failure mode is expressed inside the Result.
func (s *Service) Acquire(ctx context.Context, id intake.Identity, token string) (Result, error) {
	start := time.Now()
	pl := s.builder.Build(ctx, token)
	strategies := pl.Strategies()

	// Strategies that retain local state (the clone workspace) are
	// released on every exit path, including cancellation.
	defer func() {
		for _, st := range strategies {
			if c, ok := st.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}()

	branch := pl.Resolver().Resolve(ctx, id)

	var (
		chosen  discovery.Strategy
		paths   []string
		lastErr error
	)
	for _, st := range strategies {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		found, err := st.Discover(ctx, id, branch)
		if err != nil {
			s.logger.Warn("discovery strategy failed",
				zap.String("repo", id.String()),
				zap.String("strategy", st.Name()),
				zap.Error(err))
			lastErr = err
			continue
		}
		if len(found) > 0 {
			chosen = st
			paths = found
			break
		}
	}
	if chosen == nil {
		res := s.emptyResult(id, branch)
		s.record(ctx, id, res, lastErr)
		s.metrics.observe(ctx, "empty", "none", time.Since(start), 0)
		return res, nil
	}

	paths = discovery.Dedup(paths)
	if s.cfg.MaxFiles > 0 && len(paths) > s.cfg.MaxFiles {
		s.logger.Info("file ceiling applied",
			zap.String("repo", id.String()),
			zap.Int("discovered", len(paths)),
			zap.Int("ceiling", s.cfg.MaxFiles))
		paths = paths[:s.cfg.MaxFiles]
	}

	src := s.contentSource(pl, chosen, id, branch)

	files, err := s.fetchAll(ctx, src, paths)
	if err != nil {
		// Cancellation: stop without aggregating, write no log entry.
		return Result{}, err
	}

	res := aggregate(files)
	s.record(ctx, id, res, nil)
	s.metrics.observe(ctx, "ok", chosen.Name(), time.Since(start), res.FileCount)

	s.logger.Info("acquisition complete",
		zap.String("repo", id.String()),
		zap.String("branch", branch),
		zap.String("strategy", chosen.Name()),
		zap.Int("file_count", res.FileCount),
		zap.Int("line_count", res.LineCount),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

// contentSource picks the transport matching the winning strategy:
// local files for a retained clone, the raw-content host otherwise.
func (s *Service) contentSource(pl Pipeline, chosen discovery.Strategy, id intake.Identity, branch string) fetch.Source {
	if sp, ok := chosen.(discovery.SourceProvider); ok {
		if src := sp.Source(); src != nil {
			return src
		}
	}
	return pl.RemoteSource(id, branch)
}

// fetchAll retrieves every path with bounded concurrency. Results are
// folded in discovery order regardless of completion order, so the
// final artifact is deterministic for a fixed file set. Per-file
// failures become placeholders inside the fetcher; the only error out
// of here is context cancellation.
func (s *Service) fetchAll(ctx context.Context, src fetch.Source, paths []string) ([]fetch.FetchedFile, error) {
	results := make([]fetch.FetchedFile, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, p := range paths {
		if binaryfile.IsBinary(p) {
			results[i] = s.fetcher.Binary(p)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fctx := gctx
			if d := s.cfg.FetchTimeout.Duration(); d > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, d)
				defer cancel()
			}

			results[i] = s.fetcher.Fetch(fctx, src, p)

			// A placeholder caused by the caller going away is not a
			// per-file failure; surface the cancellation instead.
			if err := ctx.Err(); err != nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// aggregate concatenates blocks in discovery order and sums counters.
func aggregate(files []fetch.FetchedFile) Result {
	var sb strings.Builder
	var res Result

	for _, f := range files {
		sb.WriteString(f.FormattedContent)
		res.LineCount += f.LineCount
		if f.Kind == fetch.KindText && f.LineCount > 0 {
			res.FileCount++
		}
	}

	res.Content = sb.String()
	return res
}

// emptyResult is the well-formed artifact substituted when no strategy
// produced any candidate path.
func (s *Service) emptyResult(id intake.Identity, branch string) Result {
	content := fmt.Sprintf("No files could be retrieved from %s (branch %q). "+
		"The repository may be empty, private, or temporarily unavailable.\n", id, branch)
	return Result{
		Content:   content,
		FileCount: 1,
		LineCount: 1,
	}
}

// record writes the processing log entry, exactly once per invocation.
// Log failure never masks the result already computed.
func (s *Service) record(ctx context.Context, id intake.Identity, res Result, discovErr error) {
	if s.store == nil {
		return
	}

	entry := logstore.Entry{
		RepositoryURL: id.URL(),
		FileCount:     res.FileCount,
		LineCount:     res.LineCount,
		ProcessedAt:   time.Now().UTC(),
		Success:       discovErr == nil,
	}
	if discovErr != nil {
		entry.ErrorMessage = discovErr.Error()
	}

	if err := s.store.Record(ctx, entry); err != nil {
		s.logger.Warn("processing log write failed",
			zap.String("repo", id.String()),
			zap.Error(err))
	}
}
