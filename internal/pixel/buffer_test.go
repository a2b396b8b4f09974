package pixel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsMismatchedLength(t *testing.T) {
	_, err := FromPix(make([]uint8, 15), 2, 2)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = FromPix(make([]uint8, 16), 2, 2)
	require.NoError(t, err)
}

func TestValidateRejectsBadDimensions(t *testing.T) {
	for _, tc := range []struct {
		name   string
		w, h   int
		length int
	}{
		{"zero width", 0, 3, 0},
		{"negative height", 3, -1, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := &Buffer{Pix: make([]uint8, tc.length), Width: tc.w, Height: tc.h}
			assert.ErrorIs(t, b.Validate(), ErrInvalidInput)
		})
	}

	var nilBuf *Buffer
	assert.ErrorIs(t, nilBuf.Validate(), ErrInvalidInput)
}

func TestValidateAcceptsWideBuffers(t *testing.T) {
	b := &Buffer{Pix: make([]uint8, (MaxDimension+1)*Channels), Width: MaxDimension + 1, Height: 1}
	assert.NoError(t, b.Validate())
}

func TestCloneIsIndependent(t *testing.T) {
	b, err := New(2, 1)
	require.NoError(t, err)
	b.Pix[0] = 10

	c := b.Clone()
	c.Pix[0] = 99

	assert.Equal(t, uint8(10), b.Pix[0])
	assert.True(t, b.SameSize(c))
	assert.Equal(t, 4, b.Offset(1, 0))
}

func TestFromImageConvertsAndRebasesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{R: 100, G: 150, B: 200, A: 255})
	src.Set(6, 5, color.RGBA{R: 0, G: 0, B: 0, A: 0})

	b, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Width)
	assert.Equal(t, 1, b.Height)
	assert.Equal(t, []uint8{100, 150, 200, 255, 0, 0, 0, 0}, b.Pix)
}

func TestFromImageUnpremultipliesAlpha(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	// premultiplied 200 at half alpha
	src.Pix = []uint8{100, 0, 0, 128}

	b, err := FromImage(src)
	require.NoError(t, err)
	assert.InDelta(t, 199, int(b.Pix[0]), 1)
	assert.Equal(t, uint8(128), b.Pix[3])
}

func TestToImageDoesNotShareMemory(t *testing.T) {
	b, err := FromPix([]uint8{1, 2, 3, 4}, 1, 1)
	require.NoError(t, err)

	img := b.ToImage()
	img.Pix[0] = 42

	assert.Equal(t, uint8(1), b.Pix[0])
	assert.Equal(t, color.NRGBA{R: 42, G: 2, B: 3, A: 4}, img.NRGBAAt(0, 0))
}
