package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/wcurl/wcurl/internal/downloader/types"
	"github.com/wcurl/wcurl/internal/naming"
)

// Config controls how a Service runs.
type Config struct {
	// Parallel is the maximum number of concurrent transport processes.
	Parallel int
	// DryRun prints each invocation to DryRunOut instead of executing it.
	DryRun    bool
	DryRunOut io.Writer
}

// Service runs downloads for a list of URLs.
type Service struct {
	resolver *naming.Resolver
	builder  types.Builder
	executor types.Executor
	fs       afero.Fs
	cfg      Config
	logger   zerolog.Logger
}

// NewService creates a new download service. fs is used to size completed
// downloads and must be the filesystem the resolver checks.
func NewService(resolver *naming.Resolver, builder types.Builder, executor types.Executor, fs afero.Fs, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.DryRunOut == nil {
		cfg.DryRunOut = io.Discard
	}
	return &Service{
		resolver: resolver,
		builder:  builder,
		executor: executor,
		fs:       fs,
		cfg:      cfg,
		logger:   logger,
	}
}

// Plan resolves every URL in input order and builds its invocation.
// Resolution is sequential so numbering follows the input order.
func (s *Service) Plan(urls []string) []types.Task {
	tasks := make([]types.Task, 0, len(urls))
	for i, u := range urls {
		path := s.resolver.Resolve(u)
		tasks = append(tasks, types.Task{
			Index:      i,
			URL:        u,
			Path:       path,
			Invocation: s.builder.Build(u, path),
		})
	}
	return tasks
}

// Run downloads every URL. A failing URL never stops the others; the
// returned Summary carries each outcome and the aggregate exit code.
// The error is non-nil only when the run could not start at all.
func (s *Service) Run(ctx context.Context, urls []string) (*Summary, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	runID := uuid.New().String()
	log := s.logger.With().Str("run_id", runID).Logger()

	tasks := s.Plan(urls)
	summary := &Summary{
		RunID:    runID,
		DryRun:   s.cfg.DryRun,
		Outcomes: make([]types.Outcome, len(tasks)),
	}

	log.Debug().Int("urls", len(tasks)).Int("parallel", s.cfg.Parallel).Bool("dryRun", s.cfg.DryRun).Msg("starting run")

	if s.cfg.DryRun {
		for i, task := range tasks {
			fmt.Fprintln(s.cfg.DryRunOut, task.Invocation.String())
			summary.Outcomes[i] = types.Outcome{Task: task, Status: types.StatusPlanned}
		}
		summary.tally()
		return summary, nil
	}

	// Workers always return nil so one failure never cancels the group.
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Parallel)
	for i, task := range tasks {
		if ctx.Err() != nil {
			summary.Outcomes[i] = canceledOutcome(task, ctx.Err())
			continue
		}
		i, task := i, task
		g.Go(func() error {
			summary.Outcomes[i] = s.execute(ctx, task, log)
			return nil
		})
	}
	_ = g.Wait()

	summary.tally()

	log.Debug().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("canceled", summary.Canceled).
		Int("exitCode", summary.ExitCode()).
		Msg("run finished")

	return summary, nil
}

func (s *Service) execute(ctx context.Context, task types.Task, log zerolog.Logger) types.Outcome {
	if err := ctx.Err(); err != nil {
		return canceledOutcome(task, err)
	}

	start := time.Now()
	err := s.executor.Execute(ctx, task.Invocation)
	outcome := types.Outcome{
		Task:     task,
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		outcome.Status = types.StatusSucceeded
		if info, statErr := s.fs.Stat(task.Path); statErr == nil {
			outcome.Size = info.Size()
		}
		log.Info().
			Str("url", task.URL).
			Str("path", task.Path).
			Int64("size", outcome.Size).
			Dur("duration", outcome.Duration).
			Msg("download complete")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		outcome = canceledOutcome(task, err)
		outcome.Duration = time.Since(start)
		log.Warn().Str("url", task.URL).Msg("download canceled")
	default:
		outcome.Status = types.StatusFailed
		outcome.Err = err
		outcome.ExitCode = -1
		var terr *types.TransportError
		if errors.As(err, &terr) {
			outcome.ExitCode = terr.ExitCode
		}
		log.Error().
			Err(err).
			Str("url", task.URL).
			Str("path", task.Path).
			Int("exitCode", outcome.ExitCode).
			Msg("download failed")
	}

	return outcome
}

func canceledOutcome(task types.Task, err error) types.Outcome {
	return types.Outcome{
		Task:     task,
		Status:   types.StatusCanceled,
		ExitCode: -1,
		Err:      err,
	}
}
