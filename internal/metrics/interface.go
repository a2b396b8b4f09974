// Quality metrics comparing a filtered buffer with its source
package metrics

import (
	"fmt"
	"math"
	"sort"

	"pixel-filter-engine/internal/pixel"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed *pixel.Buffer) (float64, error)

	GetName() string

	GetDescription() string

	// GetRange returns the practical value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate closer images
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("mse", NewMSE())
	e.Register("psnr", NewPSNR())
	e.Register("mae", NewMAE())
	e.Register("luma_shift", NewLumaShift())
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns registered metric names in sorted order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Evaluator) Calculate(name string, original, processed *pixel.Buffer) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(original, processed)
}

// CalculateAll calculates every registered metric, skipping failures.
func (e *Evaluator) CalculateAll(original, processed *pixel.Buffer) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}
	return results
}

// EvaluateStep calculates the metrics reported for a single filter step
func (e *Evaluator) EvaluateStep(before, after *pixel.Buffer, stepName string) map[string]float64 {
	results := make(map[string]float64)

	if psnr, err := e.Calculate("psnr", before, after); err == nil {
		results["psnr"] = psnr
	}

	switch stepName {
	case "brightness", "contrast", "grayscale", "sepia":
		if shift, err := e.Calculate("luma_shift", before, after); err == nil {
			results["luma_shift"] = shift
		}
	case "blur", "sharpen", "edge":
		if mae, err := e.Calculate("mae", before, after); err == nil {
			results["mae"] = mae
		}
	}

	return results
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Range        [2]float64 `json:"range"`
	HigherBetter bool       `json:"higher_better"`
}

func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)
	for name, metric := range e.metrics {
		min, max := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{min, max},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

// Finite drops NaN and infinite values, which JSON cannot carry.
func Finite(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func checkPair(original, processed *pixel.Buffer) error {
	if err := original.Validate(); err != nil {
		return err
	}
	if err := processed.Validate(); err != nil {
		return err
	}
	if !original.SameSize(processed) {
		return fmt.Errorf("%w: image dimensions mismatch %dx%d vs %dx%d", pixel.ErrInvalidInput,
			original.Width, original.Height, processed.Width, processed.Height)
	}
	return nil
}
