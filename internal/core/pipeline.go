// internal/core/pipeline.go
// Sequential filter chains
package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"pixel-filter-engine/internal/algorithms"
	"pixel-filter-engine/internal/metrics"
	"pixel-filter-engine/internal/pixel"
)

// ProcessingStep represents a sequential processing step
type ProcessingStep struct {
	Algorithm  string
	Parameters map[string]interface{}
	Enabled    bool
}

// Pipeline applies an ordered list of filters. Steps may be edited while
// no Process call is running; Process works on a copy of the step list.
type Pipeline struct {
	mu          sync.RWMutex
	steps       []ProcessingStep
	metricsEval *metrics.Evaluator
	logger      logrus.FieldLogger
}

func NewPipeline(logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		steps:       make([]ProcessingStep, 0),
		metricsEval: metrics.NewEvaluator(),
		logger:      logger,
	}
}

// NewPipelineFromNames builds a pipeline of the named filters, each using
// the parameters derived from settings.
func NewPipelineFromNames(names []string, settings FilterSettings, logger logrus.FieldLogger) (*Pipeline, error) {
	p := NewPipeline(logger)
	for _, name := range names {
		kind, err := algorithms.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if err := p.AddStep(kind.String(), settings.ParamsFor(kind)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddStep adds a sequential processing step
func (p *Pipeline) AddStep(algorithm string, parameters map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !algorithms.IsValidAlgorithm(algorithm) {
		return fmt.Errorf("%w: %q", algorithms.ErrUnknownFilter, algorithm)
	}

	if err := algorithms.ValidateParameters(algorithm, parameters); err != nil {
		return fmt.Errorf("invalid parameters for %s: %w", algorithm, err)
	}

	p.steps = append(p.steps, ProcessingStep{
		Algorithm:  algorithm,
		Parameters: parameters,
		Enabled:    true,
	})
	p.logger.WithField("algorithm", algorithm).Debug("PIPELINE: Sequential step added")

	return nil
}

func (p *Pipeline) SetStepEnabled(index int, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.steps) {
		return fmt.Errorf("step index out of range: %d", index)
	}
	p.steps[index].Enabled = enabled
	return nil
}

// GetSteps returns a copy of the processing steps
func (p *Pipeline) GetSteps() []ProcessingStep {
	p.mu.RLock()
	defer p.mu.RUnlock()

	steps := make([]ProcessingStep, len(p.steps))
	copy(steps, p.steps)
	return steps
}

func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = make([]ProcessingStep, 0)
}

// Process applies enabled steps in order. Metrics are keyed
// "<algorithm>_<metric>"; a repeated algorithm keeps its last values.
// The input buffer is never returned or modified.
func (p *Pipeline) Process(ctx context.Context, input *pixel.Buffer) (*pixel.Buffer, map[string]float64, error) {
	if err := input.Validate(); err != nil {
		return nil, nil, err
	}

	current := input
	processMetrics := make(map[string]float64)

	steps := p.GetSteps()
	p.logger.WithField("step_count", len(steps)).Debug("PIPELINE: Processing sequential steps")

	for i, step := range steps {
		select {
		case <-ctx.Done():
			p.logger.Debug("PIPELINE: Sequential processing cancelled")
			return nil, nil, ctx.Err()
		default:
		}

		if !step.Enabled {
			p.logger.WithFields(logrus.Fields{"step": i, "algorithm": step.Algorithm}).Debug("PIPELINE: Skipping disabled step")
			continue
		}

		result, err := algorithms.Apply(step.Algorithm, current, step.Parameters)
		if err != nil {
			p.logger.WithFields(logrus.Fields{
				"step":      i,
				"algorithm": step.Algorithm,
				"error":     err,
			}).Error("PIPELINE: Sequential step failed")
			return nil, nil, fmt.Errorf("step %d (%s): %w", i, step.Algorithm, err)
		}

		name := step.Algorithm
		if kind, err := algorithms.ParseKind(name); err == nil {
			name = kind.String()
		}
		for k, v := range p.metricsEval.EvaluateStep(current, result, name) {
			processMetrics[fmt.Sprintf("%s_%s", name, k)] = v
		}

		current = result
	}

	if current == input {
		current = input.Clone()
	}
	return current, processMetrics, nil
}
