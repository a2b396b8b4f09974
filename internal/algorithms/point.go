// Per-pixel colour filters
package algorithms

import (
	"pixel-filter-engine/internal/pixel"
)

const (
	DefaultBrightnessFactor = 1.5
	DefaultContrastFactor   = 2.0
	maxFactor               = 10.0
)

// mapRGB writes fn(r, g, b) of every input pixel into a fresh buffer.
// Alpha is copied through unchanged.
func mapRGB(input *pixel.Buffer, fn func(r, g, b uint8) (uint8, uint8, uint8)) *pixel.Buffer {
	out := input.NewLike()
	src, dst := input.Pix, out.Pix
	for i := 0; i < len(src); i += pixel.Channels {
		dst[i], dst[i+1], dst[i+2] = fn(src[i], src[i+1], src[i+2])
		dst[i+3] = src[i+3]
	}
	return out
}

// GrayscaleFilter implements ITU-R BT.601 luma grayscale
type GrayscaleFilter struct{}

func NewGrayscaleFilter() *GrayscaleFilter {
	return &GrayscaleFilter{}
}

func (f *GrayscaleFilter) Apply(input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return mapRGB(input, func(r, g, b uint8) (uint8, uint8, uint8) {
		gray := clampByte(round(float64(r)*0.299 + float64(g)*0.587 + float64(b)*0.114))
		return gray, gray, gray
	}), nil
}

func (f *GrayscaleFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (f *GrayscaleFilter) GetName() string {
	return "Grayscale"
}

func (f *GrayscaleFilter) GetDescription() string {
	return "Luma weighted grayscale (0.299R + 0.587G + 0.114B)"
}

func (f *GrayscaleFilter) Validate(params map[string]interface{}) error {
	return nil
}

func (f *GrayscaleFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{}
}

// SepiaFilter implements the classic sepia tone matrix
type SepiaFilter struct{}

func NewSepiaFilter() *SepiaFilter {
	return &SepiaFilter{}
}

func (f *SepiaFilter) Apply(input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return mapRGB(input, func(r, g, b uint8) (uint8, uint8, uint8) {
		fr, fg, fb := float64(r), float64(g), float64(b)
		return clampByte(round(fr*0.393 + fg*0.769 + fb*0.189)),
			clampByte(round(fr*0.349 + fg*0.686 + fb*0.168)),
			clampByte(round(fr*0.272 + fg*0.534 + fb*0.131))
	}), nil
}

func (f *SepiaFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (f *SepiaFilter) GetName() string {
	return "Sepia"
}

func (f *SepiaFilter) GetDescription() string {
	return "Warm brown sepia tone"
}

func (f *SepiaFilter) Validate(params map[string]interface{}) error {
	return nil
}

func (f *SepiaFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{}
}

// BrightnessFilter scales every colour channel by a constant factor
type BrightnessFilter struct{}

func NewBrightnessFilter() *BrightnessFilter {
	return &BrightnessFilter{}
}

func (f *BrightnessFilter) Apply(input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(params); err != nil {
		return nil, err
	}
	factor, _ := floatParam(params, "factor", DefaultBrightnessFactor)

	var lut [256]uint8
	for v := range lut {
		lut[v] = clampByte(round(float64(v) * factor))
	}
	return mapRGB(input, func(r, g, b uint8) (uint8, uint8, uint8) {
		return lut[r], lut[g], lut[b]
	}), nil
}

func (f *BrightnessFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"factor": DefaultBrightnessFactor,
	}
}

func (f *BrightnessFilter) GetName() string {
	return "Brightness"
}

func (f *BrightnessFilter) GetDescription() string {
	return "Multiplies each channel by a constant factor"
}

func (f *BrightnessFilter) Validate(params map[string]interface{}) error {
	factor, err := floatParam(params, "factor", DefaultBrightnessFactor)
	if err != nil {
		return err
	}
	return checkRange("factor", factor, 0, maxFactor, true)
}

func (f *BrightnessFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "factor",
			Type:        "float",
			Min:         0.0,
			Max:         maxFactor,
			Default:     DefaultBrightnessFactor,
			Description: "Channel multiplier (>1 brightens, <1 darkens)",
		},
	}
}

// ContrastFilter stretches channels away from the 128 midpoint
type ContrastFilter struct{}

func NewContrastFilter() *ContrastFilter {
	return &ContrastFilter{}
}

func (f *ContrastFilter) Apply(input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(params); err != nil {
		return nil, err
	}
	factor, _ := floatParam(params, "factor", DefaultContrastFactor)

	var lut [256]uint8
	for v := range lut {
		lut[v] = clampByte(round(factor*(float64(v)-128) + 128))
	}
	return mapRGB(input, func(r, g, b uint8) (uint8, uint8, uint8) {
		return lut[r], lut[g], lut[b]
	}), nil
}

func (f *ContrastFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"factor": DefaultContrastFactor,
	}
}

func (f *ContrastFilter) GetName() string {
	return "Contrast"
}

func (f *ContrastFilter) GetDescription() string {
	return "Scales channel distance from the midpoint 128"
}

func (f *ContrastFilter) Validate(params map[string]interface{}) error {
	factor, err := floatParam(params, "factor", DefaultContrastFactor)
	if err != nil {
		return err
	}
	return checkRange("factor", factor, 0, maxFactor, true)
}

func (f *ContrastFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "factor",
			Type:        "float",
			Min:         0.0,
			Max:         maxFactor,
			Default:     DefaultContrastFactor,
			Description: "Contrast multiplier around the midpoint",
		},
	}
}
