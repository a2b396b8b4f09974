// Image decoding and encoding around pixel buffers
package imageio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pixel-filter-engine/internal/pixel"
)

var (
	// ErrDecode wraps failures of the underlying codecs to produce pixels.
	ErrDecode = errors.New("image decode failed")
	// ErrUnsupportedFormat is returned for formats with no registered codec.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

const DefaultJPEGQuality = 90

// decodeExtensions lists file extensions accepted by LoadImage.
var decodeExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif", ".webp"}

// encodeFormats lists formats Encode can produce.
var encodeFormats = []string{"png", "jpeg", "gif", "bmp", "tiff"}

// ImageLoader handles image decode, encode and file operations
type ImageLoader struct {
	logger      logrus.FieldLogger
	jpegQuality int
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger:      logger,
		jpegQuality: DefaultJPEGQuality,
	}
}

// Decode reads an encoded image and returns its pixels and format name.
// Dimensions are checked from the header before pixels are allocated.
func (il *ImageLoader) Decode(r io.Reader) (*pixel.Buffer, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading input: %v", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrDecode)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width > pixel.MaxDimension || cfg.Height > pixel.MaxDimension {
		return nil, "", fmt.Errorf("%w: image too large: %dx%d (max: %d)",
			pixel.ErrInvalidInput, cfg.Width, cfg.Height, pixel.MaxDimension)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	buf, err := pixel.FromImage(img)
	if err != nil {
		return nil, "", err
	}

	il.logger.WithFields(logrus.Fields{
		"format": format,
		"width":  buf.Width,
		"height": buf.Height,
		"bytes":  len(data),
	}).Debug("Image decoded")

	return buf, format, nil
}

// Encode writes buf in the requested format.
func (il *ImageLoader) Encode(w io.Writer, buf *pixel.Buffer, format string) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	img := buf.ToImage()

	var err error
	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(w, img)
	case "jpeg", "jpg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: il.jpegQuality})
	case "gif":
		err = gif.Encode(w, img, &gif.Options{NumColors: 256})
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff", "tif":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh byte slice.
func (il *ImageLoader) EncodeBytes(buf *pixel.Buffer, format string) ([]byte, error) {
	var out bytes.Buffer
	if err := il.Encode(&out, buf, format); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (il *ImageLoader) LoadImage(path string) (*pixel.Buffer, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !il.IsSupportedImageFormat(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	defer f.Close()

	buf, format, err := il.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"format":   format,
		"width":    buf.Width,
		"height":   buf.Height,
	}).Info("Image loaded successfully")

	return buf, nil
}

// SaveImage encodes buf using the format implied by the file extension.
func (il *ImageLoader) SaveImage(buf *pixel.Buffer, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	format := FormatFromPath(path)
	if !il.canEncode(format) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := il.EncodeBytes(buf, format)
	if err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    buf.Width,
		"height":   buf.Height,
	}).Info("Image saved successfully")

	return nil
}

func (il *ImageLoader) ValidateImageFile(path string) error {
	if !il.IsSupportedImageFormat(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("%w: invalid or corrupted image file: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: invalid image dimensions", pixel.ErrInvalidInput)
	}
	return nil
}

func (il *ImageLoader) IsSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range decodeExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

func (il *ImageLoader) canEncode(format string) bool {
	for _, f := range encodeFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (il *ImageLoader) GetSupportedFormats() []string {
	formats := make([]string, 0, len(decodeExtensions))
	for _, ext := range decodeExtensions {
		formats = append(formats, strings.ToUpper(strings.TrimPrefix(ext, ".")))
	}
	return formats
}

// NormalizeFormat maps an output format request to an encodable format.
// Unknown or empty requests fall back to png.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "jpg", "jpeg":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	case "png", "gif", "bmp":
		return f
	default:
		return "png"
	}
}

// FormatFromPath derives a normalised format from a file extension.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return ""
	}
	if n := NormalizeFormat(ext); n != "png" || ext == "png" {
		return n
	}
	return ext
}

// DataURL renders encoded bytes as a data URL.
func DataURL(format string, data []byte) string {
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}
