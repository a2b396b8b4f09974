// Concrete implementations of quality metrics
package metrics

import (
	"math"

	"pixel-filter-engine/internal/pixel"
)

// sumRGB folds fn over every RGB sample pair. Alpha is ignored.
func sumRGB(original, processed *pixel.Buffer, fn func(a, b float64) float64) float64 {
	total := 0.0
	for i := 0; i < len(original.Pix); i += pixel.Channels {
		for c := 0; c < 3; c++ {
			total += fn(float64(original.Pix[i+c]), float64(processed.Pix[i+c]))
		}
	}
	return total
}

func sampleCount(b *pixel.Buffer) float64 {
	return float64(b.Width * b.Height * 3)
}

// MSE implements mean squared error over RGB samples
type MSE struct{}

func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed *pixel.Buffer) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}
	sum := sumRGB(original, processed, func(a, b float64) float64 {
		d := a - b
		return d * d
	})
	return sum / sampleCount(original), nil
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error - average squared difference per sample"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 255 * 255
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct {
	mse MSE
}

func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed *pixel.Buffer) (float64, error) {
	mse, err := p.mse.Calculate(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio - measures image quality"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100 // Practical range, can go higher
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// MAE implements mean absolute error over RGB samples
type MAE struct{}

func NewMAE() *MAE {
	return &MAE{}
}

func (m *MAE) Calculate(original, processed *pixel.Buffer) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}
	sum := sumRGB(original, processed, func(a, b float64) float64 {
		return math.Abs(a - b)
	})
	return sum / sampleCount(original), nil
}

func (m *MAE) GetName() string {
	return "MAE"
}

func (m *MAE) GetDescription() string {
	return "Mean Absolute Error - average absolute difference per sample"
}

func (m *MAE) GetRange() (float64, float64) {
	return 0, 255
}

func (m *MAE) IsHigherBetter() bool {
	return false
}

// LumaShift is the change in mean luma, processed minus original
type LumaShift struct{}

func NewLumaShift() *LumaShift {
	return &LumaShift{}
}

func (l *LumaShift) Calculate(original, processed *pixel.Buffer) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}
	return meanLuma(processed) - meanLuma(original), nil
}

func meanLuma(b *pixel.Buffer) float64 {
	total := 0.0
	for i := 0; i < len(b.Pix); i += pixel.Channels {
		total += 0.299*float64(b.Pix[i]) + 0.587*float64(b.Pix[i+1]) + 0.114*float64(b.Pix[i+2])
	}
	return total / float64(b.Width*b.Height)
}

func (l *LumaShift) GetName() string {
	return "Luma Shift"
}

func (l *LumaShift) GetDescription() string {
	return "Mean luma difference; positive when the result is brighter"
}

func (l *LumaShift) GetRange() (float64, float64) {
	return -255, 255
}

func (l *LumaShift) IsHigherBetter() bool {
	return false
}
