// Filter engine registry and dispatch
package algorithms

import (
	"errors"
	"fmt"
	"sort"

	"pixel-filter-engine/internal/pixel"
)

var (
	// ErrUnknownFilter is returned for identifiers that map to no filter.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrInvalidParams is returned when a parameter is out of range or mistyped.
	ErrInvalidParams = errors.New("invalid filter parameters")
)

// Algorithm defines the interface for pixel filters.
// Apply never modifies input and never retains it after returning.
type Algorithm interface {
	Apply(input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for API and CLI listings
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
}

var algorithms = make(map[string]Algorithm)

func Register(name string, algorithm Algorithm) {
	algorithms[name] = algorithm
}

// Get looks up an algorithm by registered name, falling back to filter
// identifier synonyms.
func Get(name string) (Algorithm, bool) {
	if algorithm, exists := algorithms[name]; exists {
		return algorithm, true
	}
	kind, err := ParseKind(name)
	if err != nil {
		return nil, false
	}
	algorithm, exists := algorithms[kind.String()]
	return algorithm, exists
}

func Apply(name string, input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	algorithm, exists := Get(name)
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return algorithm.Apply(input, params)
}

// ApplyKind dispatches on the closed filter enumeration.
func ApplyKind(kind Kind, input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownFilter, int(kind))
	}
	return Apply(kind.String(), input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := Get(name)
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := Get(name)
	return exists
}

func GetAllAlgorithms() map[string]Algorithm {
	result := make(map[string]Algorithm)
	for name, algorithm := range algorithms {
		result[name] = algorithm
	}
	return result
}

// Names returns the registered names in sorted order.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetAlgorithmsByCategory() map[string][]string {
	return map[string][]string{
		"Point": {
			Grayscale.String(),
			Sepia.String(),
			Brightness.String(),
			Contrast.String(),
		},
		"Spatial": {
			Blur.String(),
			Sharpen.String(),
			EdgeDetect.String(),
		},
	}
}

func init() {
	Register(Grayscale.String(), NewGrayscaleFilter())
	Register(Sepia.String(), NewSepiaFilter())
	Register(Brightness.String(), NewBrightnessFilter())
	Register(Contrast.String(), NewContrastFilter())

	Register(Blur.String(), NewBoxBlurFilter())
	Register(Sharpen.String(), NewConvolutionFilter("Sharpen",
		"3x3 sharpening convolution", SharpenKernel))
	Register(EdgeDetect.String(), NewConvolutionFilter("Edge Detection",
		"3x3 Laplacian edge detection convolution", EdgeDetectKernel))
}
