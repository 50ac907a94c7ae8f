package freshness

import (
	"FreshMart-Backend/domain"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

type (
	RGB struct {
		R float64 `json:"r"`
		G float64 `json:"g"`
		B float64 `json:"b"`
	}

	// ImageStats summarizes an image on a 0-255 channel scale.
	ImageStats struct {
		DominantColor RGB     `json:"dominant_color"`
		Brightness    float64 `json:"brightness"`
		Saturation    float64 `json:"saturation"`
		Width         int     `json:"width"`
		Height        int     `json:"height"`
	}

	ImageStatsProvider interface {
		Stats(buf []byte) (*ImageStats, error)
	}

	imageStatsProvider struct{}
)

func NewImageStatsProvider() ImageStatsProvider {
	return &imageStatsProvider{}
}

func (p *imageStatsProvider) Stats(buf []byte) (*ImageStats, error) {
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisUnavailable, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrAnalysisUnavailable)
	}

	// Subsample large images; channel means do not need every pixel.
	stepX := width / 64
	if stepX < 1 {
		stepX = 1
	}
	stepY := height / 64
	if stepY < 1 {
		stepY = 1
	}

	var sumR, sumG, sumB, sumSat float64
	var count int

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			fr := float64(r >> 8)
			fg := float64(g >> 8)
			fb := float64(b >> 8)

			sumR += fr
			sumG += fg
			sumB += fb

			max := fr
			if fg > max {
				max = fg
			}
			if fb > max {
				max = fb
			}
			min := fr
			if fg < min {
				min = fg
			}
			if fb < min {
				min = fb
			}
			if max > 0 {
				sumSat += (max - min) / max
			}

			count++
		}
	}

	n := float64(count)
	stats := &ImageStats{
		DominantColor: RGB{R: sumR / n, G: sumG / n, B: sumB / n},
		Saturation:    sumSat / n,
		Width:         width,
		Height:        height,
	}
	stats.Brightness = (stats.DominantColor.R + stats.DominantColor.G + stats.DominantColor.B) / 3

	return stats, nil
}
