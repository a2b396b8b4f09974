package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pixel-filter-engine/internal/algorithms"
)

// Job describes one file to filter.
type Job struct {
	Input  string
	Output string
	Filter string
}

type JobResult struct {
	Job      Job
	Kind     algorithms.Kind
	Fallback bool
	Width    int
	Height   int
	Elapsed  time.Duration
}

// ProcessFile loads job.Input, applies the filter and writes job.Output.
func (p *Processor) ProcessFile(ctx context.Context, job Job) (res *JobResult, err error) {
	start := time.Now()
	defer func() {
		name := statsKey(job.Filter)
		if res != nil {
			name = res.Kind.String()
		}
		p.stats.Record(name, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind, fallback, err := p.ResolveFilter(job.Filter)
	if err != nil {
		return nil, err
	}

	input, err := p.loader.LoadImage(job.Input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := p.ApplyBuffer(input, kind)
	if err != nil {
		return nil, fmt.Errorf("applying %s to %s: %w", kind, job.Input, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.loader.SaveImage(output, job.Output); err != nil {
		return nil, err
	}

	return &JobResult{
		Job:      job,
		Kind:     kind,
		Fallback: fallback,
		Width:    output.Width,
		Height:   output.Height,
		Elapsed:  time.Since(start),
	}, nil
}

// ProcessBatch runs jobs on at most workers goroutines. Each job owns its
// buffers. The first failure cancels the jobs not yet finished.
func (p *Processor) ProcessBatch(ctx context.Context, jobs []Job, workers int) ([]JobResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := p.ProcessFile(gctx, job)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Input, err)
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"jobs":    len(jobs),
		"workers": workers,
	}).Info("Batch completed")

	return results, nil
}
