// Package features extracts the pixel statistics the composition pipeline
// consumes from an input image.
package features

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/soundcanvas/soundcanvas-api/internal/models"
)

// maxSamplesPerAxis bounds the scan cost for large images; statistics are
// computed on a downsampled grid.
const maxSamplesPerAxis = 256

// ExtractFromFile decodes a JPEG or PNG at path and computes its feature
// vector.
func ExtractFromFile(path string) (models.ImageFeatures, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ImageFeatures{}, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return models.ImageFeatures{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return Extract(img), nil
}

// Extract computes average color, brightness, hue, saturation, colorfulness
// and contrast over a downsampled pixel grid. Channel averages and brightness
// are normalized to [0,1]; colorfulness is a small raw opponent-channel
// variance; contrast is a scaled luminance deviation.
func Extract(img image.Image) models.ImageFeatures {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return models.ImageFeatures{}
	}

	stepX := 1 + (w-1)/maxSamplesPerAxis
	stepY := 1 + (h-1)/maxSamplesPerAxis

	var sumR, sumG, sumB float64
	var sumLum, sumLumSq float64
	var sumRG, sumRGSq, sumYB, sumYBSq float64
	n := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			r := float64(pr) / 65535.0
			g := float64(pg) / 65535.0
			b := float64(pb) / 65535.0

			sumR += r
			sumG += g
			sumB += b

			lum := (r + g + b) / 3.0
			sumLum += lum
			sumLumSq += lum * lum

			// Opponent channels for colorfulness.
			rg := r - g
			yb := (r+g)/2.0 - b
			sumRG += rg
			sumRGSq += rg * rg
			sumYB += yb
			sumYBSq += yb * yb

			n++
		}
	}

	fn := float64(n)
	avgR := sumR / fn
	avgG := sumG / fn
	avgB := sumB / fn

	feats := models.ImageFeatures{
		AvgR:       avgR,
		AvgG:       avgG,
		AvgB:       avgB,
		Brightness: (avgR + avgG + avgB) / 3.0,
	}

	feats.Hue, feats.Saturation = hueSaturation(avgR, avgG, avgB)

	varRG := sumRGSq/fn - (sumRG/fn)*(sumRG/fn)
	varYB := sumYBSq/fn - (sumYB/fn)*(sumYB/fn)
	feats.Colorfulness = (varRG + varYB) / 2.0

	varLum := sumLumSq/fn - (sumLum/fn)*(sumLum/fn)
	feats.Contrast = math.Min(1.0, 4.0*math.Sqrt(math.Max(0, varLum)))

	return feats
}

// hueSaturation converts an average RGB color to HSV hue (0-1 around the
// wheel) and saturation.
func hueSaturation(r, g, b float64) (hue, sat float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	if maxC > 0 {
		sat = delta / maxC
	}
	if delta == 0 {
		return 0, sat
	}

	switch maxC {
	case r:
		hue = math.Mod((g-b)/delta, 6.0)
	case g:
		hue = (b-r)/delta + 2.0
	default:
		hue = (r-g)/delta + 4.0
	}
	hue /= 6.0
	if hue < 0 {
		hue += 1.0
	}
	return hue, sat
}
