package output

import (
	"errors"
	"image"
	"image/png"
	"os"

	"github.com/samber/lo"
)

// ErrPNGDimensions is returned when the heatmap data doesn't fill a
// width×height grid.
var ErrPNGDimensions = errors.New("dimensions don't match the amount of data")

// SavePNG normalises data linearly into an 8-bit grayscale heatmap and
// writes it to path. width×height must equal len(data).
//
// Min/max are found with samber/lo's Min/Max, the same reduction helper the
// teacher pack reaches for over sensor-reading bounds in qa.go, here applied
// to a surface-area raster instead of a ping's beam count domain.
func SavePNG(data []float32, width, height uint32, path string) error {
	if uint32(len(data)) != width*height {
		return ErrPNGDimensions
	}

	min := lo.Min(data)
	max := lo.Max(data)
	valueRange := max - min
	if valueRange == 0 {
		valueRange = 1
	}

	pixels := make([]uint8, len(data))
	for i, v := range data {
		normalised := (v - min) / valueRange * 255.0
		pixels[i] = clampByte(normalised)
	}

	img := &image.Gray{
		Pix:    pixels,
		Stride: int(width),
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
