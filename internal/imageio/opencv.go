//go:build opencv

// OpenCV backed decoders for containers the pure Go codecs do not cover
package imageio

import (
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"
)

func init() {
	image.RegisterFormat("jp2", "\x00\x00\x00\x0cjP  \r\n\x87\n", decodeOpenCV, decodeConfigOpenCV)
	image.RegisterFormat("exr", "\x76\x2f\x31\x01", decodeOpenCV, decodeConfigOpenCV)
	decodeExtensions = append(decodeExtensions, ".jp2", ".exr")
}

func readMat(r io.Reader) (gocv.Mat, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return gocv.NewMat(), err
	}
	// IMReadColor converts to 8-bit BGR, which Mat.ToImage understands
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), err
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("opencv could not decode image")
	}
	return mat, nil
}

func decodeOpenCV(r io.Reader) (image.Image, error) {
	mat, err := readMat(r)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	return mat.ToImage()
}

func decodeConfigOpenCV(r io.Reader) (image.Config, error) {
	mat, err := readMat(r)
	if err != nil {
		return image.Config{}, err
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: img.ColorModel(),
		Width:      mat.Cols(),
		Height:     mat.Rows(),
	}, nil
}
