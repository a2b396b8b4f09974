package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func readPixel(t *testing.T, path string) color.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA)
}

func TestFiltersCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"filters"}, &stdout, &stderr))

	out := stdout.String()
	for _, id := range []string{"grayscale", "sepia", "brightness", "contrast", "blur", "sharpen", "edge"} {
		assert.Contains(t, out, id)
	}
}

func TestApplyCommandChainsFilters(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writePNG(t, in, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	var stdout, stderr bytes.Buffer
	args := []string{"apply", "-in", in, "-out", out, "-filter", "grayscale,brightness"}
	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	// luma 200*.299+100*.587+50*.114 = 124.2 -> 124, then 124*1.5 = 186
	assert.Equal(t, color.NRGBA{R: 186, G: 186, B: 186, A: 255}, readPixel(t, out))
}

func TestBatchCommand(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	writePNG(t, filepath.Join(inDir, "a.png"), color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	writePNG(t, filepath.Join(inDir, "b.png"), color.NRGBA{R: 90, G: 90, B: 90, A: 128})
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("skip"), 0o644))

	var stdout, stderr bytes.Buffer
	args := []string{"batch", "-in", inDir, "-out", outDir, "-filter", "sepia", "-workers", "2"}
	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	assert.FileExists(t, filepath.Join(outDir, "a.png"))
	assert.FileExists(t, filepath.Join(outDir, "b.png"))
	assert.NoFileExists(t, filepath.Join(outDir, "notes.txt"))
	assert.Equal(t, uint8(128), readPixel(t, filepath.Join(outDir, "b.png")).A)
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"resize"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "unknown command")
}

func TestApplyRequiresPaths(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"apply", "-filter", "blur"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
}
