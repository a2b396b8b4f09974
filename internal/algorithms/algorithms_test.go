package algorithms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-filter-engine/internal/pixel"
)

func solid(t *testing.T, w, h int, r, g, b, a uint8) *pixel.Buffer {
	t.Helper()
	buf, err := pixel.New(w, h)
	require.NoError(t, err)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = r, g, b, a
	}
	return buf
}

// pattern fills a buffer with varied colour and alpha values.
func pattern(t *testing.T, w, h int) *pixel.Buffer {
	t.Helper()
	buf, err := pixel.New(w, h)
	require.NoError(t, err)
	for i := range buf.Pix {
		buf.Pix[i] = uint8((i*37 + i/4*11) % 256)
	}
	return buf
}

func rgba(buf *pixel.Buffer, x, y int) [4]uint8 {
	i := buf.Offset(x, y)
	return [4]uint8{buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3]}
}

func TestGrayscaleLumaWeights(t *testing.T) {
	in := solid(t, 1, 1, 100, 150, 200, 255)

	out, err := ApplyKind(Grayscale, in, nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{141, 141, 141, 255}, rgba(out, 0, 0))
}

func TestGrayscaleIsIdempotent(t *testing.T) {
	in := pattern(t, 7, 5)

	once, err := ApplyKind(Grayscale, in, nil)
	require.NoError(t, err)
	twice, err := ApplyKind(Grayscale, once, nil)
	require.NoError(t, err)

	assert.Equal(t, once.Pix, twice.Pix)
}

func TestSepiaMatrix(t *testing.T) {
	out, err := ApplyKind(Sepia, solid(t, 1, 1, 100, 100, 100, 255), nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{135, 120, 94, 255}, rgba(out, 0, 0))

	out, err = ApplyKind(Sepia, solid(t, 1, 1, 255, 255, 255, 7), nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 255, 239, 7}, rgba(out, 0, 0))
}

func TestBrightnessFactor(t *testing.T) {
	in := solid(t, 1, 1, 100, 200, 0, 255)

	out, err := ApplyKind(Brightness, in, nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{150, 255, 0, 255}, rgba(out, 0, 0))

	out, err = ApplyKind(Brightness, in, map[string]interface{}{"factor": 1.3})
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{130, 255, 0, 255}, rgba(out, 0, 0))

	out, err = ApplyKind(Brightness, in, map[string]interface{}{"factor": 0.5})
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{50, 100, 0, 255}, rgba(out, 0, 0))
}

func TestContrastMidpointIsFixed(t *testing.T) {
	in := solid(t, 2, 2, 128, 128, 128, 200)
	for _, factor := range []float64{0.5, 1.5, 2.0, 3.0} {
		out, err := ApplyKind(Contrast, in, map[string]interface{}{"factor": factor})
		require.NoError(t, err)
		assert.Equal(t, in.Pix, out.Pix, "factor %v", factor)
	}
}

func TestContrastSaturates(t *testing.T) {
	params := map[string]interface{}{"factor": 2.0}

	out, err := ApplyKind(Contrast, solid(t, 1, 1, 255, 0, 100, 255), params)
	require.NoError(t, err)
	// 2*(100-128)+128 = 72
	assert.Equal(t, [4]uint8{255, 0, 72, 255}, rgba(out, 0, 0))
}

func TestBoxBlurDividesByInBoundsSamples(t *testing.T) {
	in, err := pixel.FromPix([]uint8{
		0, 0, 0, 255,
		90, 90, 90, 128,
		180, 180, 180, 0,
	}, 3, 1)
	require.NoError(t, err)

	out, err := ApplyKind(Blur, in, map[string]interface{}{"radius": 1})
	require.NoError(t, err)
	assert.Equal(t, []uint8{
		45, 45, 45, 255,
		90, 90, 90, 128,
		135, 135, 135, 0,
	}, out.Pix)
}

func TestBoxBlurRoundsHalfUp(t *testing.T) {
	in, err := pixel.FromPix([]uint8{
		0, 0, 0, 255,
		1, 1, 1, 255,
	}, 2, 1)
	require.NoError(t, err)

	out, err := BoxBlur(in, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), out.Pix[0])
}

func TestSinglePixelNeighbourhoods(t *testing.T) {
	in := solid(t, 1, 1, 40, 20, 10, 99)

	blurred, err := ApplyKind(Blur, in, nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{40, 20, 10, 99}, rgba(blurred, 0, 0))

	sharpened, err := ApplyKind(Sharpen, in, nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{200, 100, 50, 99}, rgba(sharpened, 0, 0))

	edges, err := ApplyKind(EdgeDetect, in, nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 160, 80, 99}, rgba(edges, 0, 0))
}

func TestEdgeDetectUniformImage(t *testing.T) {
	in := solid(t, 3, 3, 10, 10, 10, 255)

	out, err := ApplyKind(EdgeDetect, in, nil)
	require.NoError(t, err)

	assert.Equal(t, [4]uint8{0, 0, 0, 255}, rgba(out, 1, 1))
	// missing taps at the border are omitted, not padded
	assert.Equal(t, [4]uint8{50, 50, 50, 255}, rgba(out, 0, 0))
	assert.Equal(t, [4]uint8{30, 30, 30, 255}, rgba(out, 1, 0))
}

func TestEdgeDetectUniformInteriorIsZero(t *testing.T) {
	in := solid(t, 6, 5, 77, 140, 33, 255)

	out, err := ApplyKind(EdgeDetect, in, nil)
	require.NoError(t, err)
	for y := 1; y < 4; y++ {
		for x := 1; x < 5; x++ {
			assert.Equal(t, [4]uint8{0, 0, 0, 255}, rgba(out, x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestSharpenSaturatesInsteadOfWrapping(t *testing.T) {
	bright := solid(t, 3, 3, 0, 0, 0, 255)
	copy(bright.Pix[bright.Offset(1, 1):], []uint8{255, 255, 255, 255})
	out, err := ApplyKind(Sharpen, bright, nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, rgba(out, 1, 1))

	dark := solid(t, 3, 3, 255, 255, 255, 255)
	copy(dark.Pix[dark.Offset(1, 1):], []uint8{0, 0, 0, 255})
	out, err = ApplyKind(Sharpen, dark, nil)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, rgba(out, 1, 1))
}

func TestConvolveIdentityKernel(t *testing.T) {
	identity, err := NewKernel(3, 0, 0, 0, 0, 1, 0, 0, 0, 0)
	require.NoError(t, err)
	in := pattern(t, 4, 3)

	out, err := Convolve(in, identity)
	require.NoError(t, err)
	assert.Equal(t, in.Pix, out.Pix)
}

func TestEveryFilterPreservesAlphaAndDimensions(t *testing.T) {
	in := pattern(t, 9, 6)
	snapshot := in.Clone()

	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			out, err := ApplyKind(kind, in, nil)
			require.NoError(t, err)
			require.Len(t, out.Pix, len(in.Pix))
			assert.Equal(t, in.Width, out.Width)
			assert.Equal(t, in.Height, out.Height)
			for i := 3; i < len(in.Pix); i += 4 {
				if !assert.Equal(t, in.Pix[i], out.Pix[i], "alpha at %d", i) {
					return
				}
			}
			assert.Equal(t, snapshot.Pix, in.Pix, "input must not be modified")
		})
	}
}

func TestEveryFilterHandlesExtremes(t *testing.T) {
	for _, v := range []uint8{0, 255} {
		in := solid(t, 4, 4, v, v, v, v)
		for _, kind := range Kinds() {
			out, err := ApplyKind(kind, in, map[string]interface{}{})
			require.NoError(t, err, kind.String())
			assert.Len(t, out.Pix, len(in.Pix))
		}
	}

	out, err := ApplyKind(Contrast, solid(t, 2, 2, 255, 255, 255, 255), map[string]interface{}{"factor": 2.0})
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, rgba(out, 1, 1))
}

func TestInvalidBufferIsRejected(t *testing.T) {
	bad := &pixel.Buffer{Pix: make([]uint8, 10), Width: 2, Height: 2}
	for _, kind := range Kinds() {
		_, err := ApplyKind(kind, bad, nil)
		assert.ErrorIs(t, err, pixel.ErrInvalidInput, kind.String())
	}
}

func TestParameterValidation(t *testing.T) {
	in := solid(t, 1, 1, 1, 2, 3, 4)

	_, err := ApplyKind(Brightness, in, map[string]interface{}{"factor": 0.0})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = ApplyKind(Contrast, in, map[string]interface{}{"factor": "high"})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = ApplyKind(Blur, in, map[string]interface{}{"radius": 1.5})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = ApplyKind(Blur, in, map[string]interface{}{"radius": 0})
	assert.ErrorIs(t, err, ErrInvalidParams)

	assert.NoError(t, ValidateParameters("blur", map[string]interface{}{"radius": 3.0}))
	assert.ErrorIs(t, ValidateParameters("emboss", nil), ErrUnknownFilter)
}

func TestNonFiniteParametersAreRejected(t *testing.T) {
	in := solid(t, 1, 1, 1, 2, 3, 4)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ApplyKind(Brightness, in, map[string]interface{}{"factor": v})
		assert.ErrorIs(t, err, ErrInvalidParams, "brightness factor %v", v)

		_, err = ApplyKind(Contrast, in, map[string]interface{}{"factor": v})
		assert.ErrorIs(t, err, ErrInvalidParams, "contrast factor %v", v)

		_, err = ApplyKind(Blur, in, map[string]interface{}{"radius": v})
		assert.ErrorIs(t, err, ErrInvalidParams, "blur radius %v", v)
	}

	assert.ErrorIs(t, checkRange("factor", math.NaN(), 0, 10, true), ErrInvalidParams)
}

func TestNewKernelValidatesAndCopies(t *testing.T) {
	_, err := NewKernel(2, 1, 1, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewKernel(3, 1, 2, 3)
	assert.ErrorIs(t, err, ErrInvalidParams)

	weights := []int{0, 0, 0, 0, 1, 0, 0, 0, 0}
	k, err := NewKernel(3, weights...)
	require.NoError(t, err)
	weights[4] = 9
	assert.Equal(t, 1, k.At(1, 1))

	assert.Equal(t, 0, EdgeDetectKernel.Sum())
	assert.Equal(t, 1, SharpenKernel.Sum())
	assert.Equal(t, 3, SharpenKernel.Size())
}

func TestRegistry(t *testing.T) {
	for _, kind := range Kinds() {
		assert.True(t, IsValidAlgorithm(kind.String()), kind.String())
	}
	assert.True(t, IsValidAlgorithm("Edge-Detect"))
	assert.False(t, IsValidAlgorithm("emboss"))
	assert.Len(t, Names(), len(Kinds()))

	total := 0
	for _, names := range GetAlgorithmsByCategory() {
		total += len(names)
	}
	assert.Equal(t, len(Kinds()), total)

	_, err := Apply("emboss", solid(t, 1, 1, 0, 0, 0, 0), nil)
	assert.ErrorIs(t, err, ErrUnknownFilter)

	_, err = ApplyKind(Kind(42), solid(t, 1, 1, 0, 0, 0, 0), nil)
	assert.ErrorIs(t, err, ErrUnknownFilter)
}
