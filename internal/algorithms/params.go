package algorithms

import (
	"fmt"
	"math"
)

// floatParam reads a numeric parameter, returning def when absent.
func floatParam(params map[string]interface{}, name string, def float64) (float64, error) {
	val, ok := params[name]
	if !ok || val == nil {
		return def, nil
	}
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidParams, name, val)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParams, name, f)
	}
	return f, nil
}

// intParam reads an integral parameter. Float values must have no fraction.
func intParam(params map[string]interface{}, name string, def int) (int, error) {
	v, err := floatParam(params, name, float64(def))
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidParams, name, v)
	}
	return int(v), nil
}

func checkRange(name string, v, min, max float64, minExclusive bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParams, name, v)
	}
	if minExclusive && v <= min {
		return fmt.Errorf("%w: %s must be greater than %g", ErrInvalidParams, name, min)
	}
	if v < min || v > max {
		return fmt.Errorf("%w: %s must be between %g and %g", ErrInvalidParams, name, min, max)
	}
	return nil
}

// round is half-up rounding, matching the browser canvas fallback.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
