// Neighbourhood filters: box blur and kernel convolution
package algorithms

import (
	"fmt"

	"pixel-filter-engine/internal/pixel"
)

const (
	DefaultBlurRadius = 2
	maxBlurRadius     = 25
)

// Kernel is an immutable odd-sized square matrix of integer weights.
type Kernel struct {
	size    int
	weights []int
}

var (
	SharpenKernel = mustKernel(3,
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	)
	EdgeDetectKernel = mustKernel(3,
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	)
)

// NewKernel copies weights, given row-major, into a size x size kernel.
func NewKernel(size int, weights ...int) (Kernel, error) {
	if size <= 0 || size%2 == 0 {
		return Kernel{}, fmt.Errorf("%w: kernel size must be odd and positive, got %d", ErrInvalidParams, size)
	}
	if len(weights) != size*size {
		return Kernel{}, fmt.Errorf("%w: kernel of size %d needs %d weights, got %d",
			ErrInvalidParams, size, size*size, len(weights))
	}
	w := make([]int, len(weights))
	copy(w, weights)
	return Kernel{size: size, weights: w}, nil
}

func mustKernel(size int, weights ...int) Kernel {
	k, err := NewKernel(size, weights...)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Kernel) Size() int {
	return k.size
}

// At returns the weight at row ky, column kx.
func (k Kernel) At(ky, kx int) int {
	return k.weights[ky*k.size+kx]
}

func (k Kernel) Sum() int {
	sum := 0
	for _, w := range k.weights {
		sum += w
	}
	return sum
}

// Convolve applies k to every RGB channel of input. Taps that fall outside
// the image contribute nothing; they are neither clamped nor wrapped.
// input is only read, so every tap sees pre-filter values.
func Convolve(input *pixel.Buffer, k Kernel) (*pixel.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if k.size == 0 {
		return nil, fmt.Errorf("%w: empty kernel", ErrInvalidParams)
	}

	out := input.NewLike()
	src, dst := input.Pix, out.Pix
	w, h := input.Width, input.Height
	half := k.size / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b int
			for ky := 0; ky < k.size; ky++ {
				ny := y + ky - half
				if ny < 0 || ny >= h {
					continue
				}
				for kx := 0; kx < k.size; kx++ {
					nx := x + kx - half
					if nx < 0 || nx >= w {
						continue
					}
					weight := k.weights[ky*k.size+kx]
					idx := (ny*w + nx) * pixel.Channels
					r += int(src[idx]) * weight
					g += int(src[idx+1]) * weight
					b += int(src[idx+2]) * weight
				}
			}
			idx := (y*w + x) * pixel.Channels
			dst[idx] = clampInt(r)
			dst[idx+1] = clampInt(g)
			dst[idx+2] = clampInt(b)
			dst[idx+3] = src[idx+3]
		}
	}
	return out, nil
}

// BoxBlur averages each channel over the (2r+1)^2 window clipped to the
// image. Edge pixels divide by the number of in-bounds samples.
func BoxBlur(input *pixel.Buffer, radius int) (*pixel.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", ErrInvalidParams)
	}

	out := input.NewLike()
	src, dst := input.Pix, out.Pix
	w, h := input.Width, input.Height

	for y := 0; y < h; y++ {
		y0, y1 := max(y-radius, 0), min(y+radius, h-1)
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			var r, g, b int
			for ny := y0; ny <= y1; ny++ {
				idx := (ny*w + x0) * pixel.Channels
				for nx := x0; nx <= x1; nx++ {
					r += int(src[idx])
					g += int(src[idx+1])
					b += int(src[idx+2])
					idx += pixel.Channels
				}
			}
			count := float64((y1 - y0 + 1) * (x1 - x0 + 1))
			idx := (y*w + x) * pixel.Channels
			dst[idx] = clampByte(round(float64(r) / count))
			dst[idx+1] = clampByte(round(float64(g) / count))
			dst[idx+2] = clampByte(round(float64(b) / count))
			dst[idx+3] = src[idx+3]
		}
	}
	return out, nil
}

// BoxBlurFilter exposes BoxBlur through the Algorithm interface
type BoxBlurFilter struct{}

func NewBoxBlurFilter() *BoxBlurFilter {
	return &BoxBlurFilter{}
}

func (f *BoxBlurFilter) Apply(input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(params); err != nil {
		return nil, err
	}
	radius, _ := intParam(params, "radius", DefaultBlurRadius)
	return BoxBlur(input, radius)
}

func (f *BoxBlurFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"radius": float64(DefaultBlurRadius),
	}
}

func (f *BoxBlurFilter) GetName() string {
	return "Box Blur"
}

func (f *BoxBlurFilter) GetDescription() string {
	return "Mean of the surrounding square window, clipped at the borders"
}

func (f *BoxBlurFilter) Validate(params map[string]interface{}) error {
	radius, err := intParam(params, "radius", DefaultBlurRadius)
	if err != nil {
		return err
	}
	return checkRange("radius", float64(radius), 1, maxBlurRadius, false)
}

func (f *BoxBlurFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "radius",
			Type:        "int",
			Min:         1.0,
			Max:         float64(maxBlurRadius),
			Default:     float64(DefaultBlurRadius),
			Description: "Window radius in pixels",
		},
	}
}

// ConvolutionFilter applies a fixed kernel
type ConvolutionFilter struct {
	name        string
	description string
	kernel      Kernel
}

func NewConvolutionFilter(name, description string, kernel Kernel) *ConvolutionFilter {
	return &ConvolutionFilter{
		name:        name,
		description: description,
		kernel:      kernel,
	}
}

func (f *ConvolutionFilter) Apply(input *pixel.Buffer, params map[string]interface{}) (*pixel.Buffer, error) {
	return Convolve(input, f.kernel)
}

func (f *ConvolutionFilter) Kernel() Kernel {
	return f.kernel
}

func (f *ConvolutionFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (f *ConvolutionFilter) GetName() string {
	return f.name
}

func (f *ConvolutionFilter) GetDescription() string {
	return f.description
}

func (f *ConvolutionFilter) Validate(params map[string]interface{}) error {
	return nil
}

func (f *ConvolutionFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{}
}
