// Request level orchestration: decode, filter, measure, encode
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"pixel-filter-engine/internal/algorithms"
	"pixel-filter-engine/internal/imageio"
	"pixel-filter-engine/internal/metrics"
	"pixel-filter-engine/internal/pixel"
)

// FilterSettings holds the tunable constants of the parameterised filters.
type FilterSettings struct {
	BrightnessFactor float64
	ContrastFactor   float64
	BlurRadius       int
	// Strict rejects unknown filter identifiers instead of using grayscale.
	Strict bool
}

func DefaultFilterSettings() FilterSettings {
	return FilterSettings{
		BrightnessFactor: algorithms.DefaultBrightnessFactor,
		ContrastFactor:   algorithms.DefaultContrastFactor,
		BlurRadius:       algorithms.DefaultBlurRadius,
	}
}

// ParamsFor returns the algorithm parameters for kind.
func (s FilterSettings) ParamsFor(kind algorithms.Kind) map[string]interface{} {
	switch kind {
	case algorithms.Brightness:
		return map[string]interface{}{"factor": s.BrightnessFactor}
	case algorithms.Contrast:
		return map[string]interface{}{"factor": s.ContrastFactor}
	case algorithms.Blur:
		return map[string]interface{}{"radius": float64(s.BlurRadius)}
	default:
		return map[string]interface{}{}
	}
}

// Result is the outcome of one Process call.
type Result struct {
	Data      []byte
	Format    string
	Requested string
	Kind      algorithms.Kind
	Fallback  bool
	Width     int
	Height    int
	Metrics   map[string]float64
	Elapsed   time.Duration
}

// Processor applies single filters to encoded images. It holds no per-call
// state and is safe for concurrent use.
type Processor struct {
	logger    logrus.FieldLogger
	loader    *imageio.ImageLoader
	evaluator *metrics.Evaluator
	stats     *Stats
	settings  FilterSettings
}

func NewProcessor(settings FilterSettings, loader *imageio.ImageLoader, logger logrus.FieldLogger) *Processor {
	return &Processor{
		logger:    logger,
		loader:    loader,
		evaluator: metrics.NewEvaluator(),
		stats:     NewStats(logger),
		settings:  settings,
	}
}

func (p *Processor) Settings() FilterSettings {
	return p.settings
}

func (p *Processor) Loader() *imageio.ImageLoader {
	return p.loader
}

func (p *Processor) Stats() *Stats {
	return p.stats
}

// ResolveFilter maps an identifier to a kind according to the strictness
// setting. fallback is true when an unknown identifier became grayscale.
func (p *Processor) ResolveFilter(id string) (kind algorithms.Kind, fallback bool, err error) {
	if p.settings.Strict {
		kind, err = algorithms.ParseKind(id)
		return kind, false, err
	}
	kind, fallback = algorithms.ResolveKind(id)
	if fallback {
		p.logger.WithField("filter", id).Warn("Unknown filter, applying grayscale")
	}
	return kind, fallback, nil
}

// ApplyBuffer runs kind with the configured parameters.
func (p *Processor) ApplyBuffer(buf *pixel.Buffer, kind algorithms.Kind) (*pixel.Buffer, error) {
	return algorithms.ApplyKind(kind, buf, p.settings.ParamsFor(kind))
}

// Process decodes r, applies the filter named by filterID and encodes the
// result as format (png when empty). Cancellation is honoured between
// phases; a cancelled call returns no result.
func (p *Processor) Process(ctx context.Context, r io.Reader, filterID, format string) (result *Result, err error) {
	start := time.Now()
	defer func() {
		name := statsKey(filterID)
		if result != nil {
			name = result.Kind.String()
		}
		p.stats.Record(name, time.Since(start), err)
	}()

	kind, fallback, err := p.ResolveFilter(filterID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input, inFormat, err := p.loader.Decode(r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output, err := p.ApplyBuffer(input, kind)
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", kind, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outFormat := imageio.NormalizeFormat(format)
	data, err := p.loader.EncodeBytes(output, outFormat)
	if err != nil {
		return nil, err
	}

	result = &Result{
		Data:      data,
		Format:    outFormat,
		Requested: filterID,
		Kind:      kind,
		Fallback:  fallback,
		Width:     output.Width,
		Height:    output.Height,
		Metrics:   p.evaluator.EvaluateStep(input, output, kind.String()),
		Elapsed:   time.Since(start),
	}

	p.logger.WithFields(logrus.Fields{
		"filter":        kind.String(),
		"requested":     filterID,
		"fallback":      fallback,
		"input_format":  inFormat,
		"output_format": outFormat,
		"width":         result.Width,
		"height":        result.Height,
		"duration_ms":   result.Elapsed.Milliseconds(),
	}).Info("Image processed")

	return result, nil
}
