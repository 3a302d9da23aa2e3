package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// JobFunc is a background loop. It returns when ctx is canceled.
type JobFunc func(ctx context.Context) error

type namedJob struct {
	name string
	run  JobFunc
}

// Group runs background jobs for the lifetime of the process. The first job
// to fail cancels the others.
type Group struct {
	logger *zap.Logger
	jobs   []namedJob
}

// NewGroup creates an empty group.
func NewGroup(logger *zap.Logger) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Group{logger: logger}
}

// Add registers a job. It must be called before Run.
func (g *Group) Add(name string, job JobFunc) {
	g.jobs = append(g.jobs, namedJob{name: name, run: job})
}

// AddSweeper registers a reset sweeper.
func (g *Group) AddSweeper(s *ResetSweeper) {
	g.Add("reset-sweeper", func(ctx context.Context) error {
		s.Run(ctx)
		return nil
	})
}

// Run blocks until every job has returned. Cancellation is not an error.
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, job := range g.jobs {
		job := job
		eg.Go(func() error {
			g.logger.Info("worker started", zap.String("worker", job.name))
			err := job.run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				g.logger.Error("worker failed", zap.String("worker", job.name), zap.Error(err))
				return err
			}
			g.logger.Info("worker stopped", zap.String("worker", job.name))
			return nil
		})
	}
	return eg.Wait()
}
