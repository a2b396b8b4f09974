package algorithms

import (
	"fmt"
	"strings"
)

// Kind enumerates the supported filters.
type Kind int

const (
	Grayscale Kind = iota
	Sepia
	Brightness
	Contrast
	Blur
	Sharpen
	EdgeDetect
)

var kindNames = [...]string{
	Grayscale:  "grayscale",
	Sepia:      "sepia",
	Brightness: "brightness",
	Contrast:   "contrast",
	Blur:       "blur",
	Sharpen:    "sharpen",
	EdgeDetect: "edge",
}

var kindSynonyms = map[string]Kind{
	"greyscale":      Grayscale,
	"gray":           Grayscale,
	"grey":           Grayscale,
	"edges":          EdgeDetect,
	"edge-detect":    EdgeDetect,
	"edge_detect":    EdgeDetect,
	"edgedetect":     EdgeDetect,
	"edge-detection": EdgeDetect,
	"box-blur":       Blur,
}

// Kinds returns every filter kind in declaration order.
func Kinds() []Kind {
	return []Kind{Grayscale, Sepia, Brightness, Contrast, Blur, Sharpen, EdgeDetect}
}

func (k Kind) IsValid() bool {
	return k >= Grayscale && k <= EdgeDetect
}

// String returns the external identifier used by the HTTP API and CLI.
func (k Kind) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownFilter, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps an identifier or synonym to a Kind.
func ParseKind(s string) (Kind, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == id {
			return Kind(k), nil
		}
	}
	if k, ok := kindSynonyms[id]; ok {
		return k, nil
	}
	return Grayscale, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// ResolveKind is the lenient form of ParseKind: unrecognised identifiers
// resolve to Grayscale and fallback reports that the default was used.
func ResolveKind(s string) (kind Kind, fallback bool) {
	k, err := ParseKind(s)
	if err != nil {
		return Grayscale, true
	}
	return k, false
}
