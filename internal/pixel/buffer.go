// Raster pixel buffer shared by the filter engine, metrics and codecs
package pixel

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Channels is the number of interleaved samples per pixel (R, G, B, A).
const Channels = 4

// MaxDimension bounds width and height of decoded images. In-memory buffers
// are only checked for a consistent sample count.
const MaxDimension = 16384

// ErrInvalidInput is returned when a buffer does not describe a valid raster.
var ErrInvalidInput = errors.New("invalid pixel buffer")

// Buffer is a dense row-major RGBA raster with 8 bits per channel.
// Samples are non-premultiplied.
type Buffer struct {
	Pix    []uint8
	Width  int
	Height int
}

// New allocates a zeroed buffer of the given dimensions.
func New(width, height int) (*Buffer, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	return &Buffer{
		Pix:    make([]uint8, width*height*Channels),
		Width:  width,
		Height: height,
	}, nil
}

// FromPix wraps caller-owned samples. The slice is not copied.
func FromPix(pix []uint8, width, height int) (*Buffer, error) {
	b := &Buffer{Pix: pix, Width: width, Height: height}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the sample count matches width*height*4.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}
	if err := checkDimensions(b.Width, b.Height); err != nil {
		return err
	}
	if want := b.Width * b.Height * Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: %d samples for %dx%d (want %d)",
			ErrInvalidInput, len(b.Pix), b.Width, b.Height, want)
	}
	return nil
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidInput, width, height)
	}
	return nil
}

// Offset returns the index of the red sample of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * Channels
}

// SameSize reports whether both buffers share dimensions.
func (b *Buffer) SameSize(other *Buffer) bool {
	return other != nil && b.Width == other.Width && b.Height == other.Height
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Pix: pix, Width: b.Width, Height: b.Height}
}

// NewLike allocates an empty buffer with the same dimensions as b.
func (b *Buffer) NewLike() *Buffer {
	return &Buffer{
		Pix:    make([]uint8, len(b.Pix)),
		Width:  b.Width,
		Height: b.Height,
	}
}

// FromImage converts any decoded image into a buffer anchored at (0, 0).
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	bounds := img.Bounds()
	out, err := New(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	if src, ok := img.(*image.NRGBA); ok && src.Stride == bounds.Dx()*Channels {
		start := src.PixOffset(bounds.Min.X, bounds.Min.Y)
		copy(out.Pix, src.Pix[start:start+len(out.Pix)])
		return out, nil
	}

	dst := &image.NRGBA{
		Pix:    out.Pix,
		Stride: out.Width * Channels,
		Rect:   image.Rect(0, 0, out.Width, out.Height),
	}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return out, nil
}

// ToImage copies the buffer into a new *image.NRGBA.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}
