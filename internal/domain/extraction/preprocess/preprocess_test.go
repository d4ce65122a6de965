package preprocess

import (
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestBasicPreprocessor(t *testing.T) {
	p := &BasicPreprocessor{}

	t.Run("binarizes to pure black and white", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 1))
		img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		img.Set(1, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})
		img.Set(2, 0, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		img.Set(3, 0, color.RGBA{R: 50, G: 50, B: 50, A: 255})

		out, ok := p.Process(img).(*image.Gray)
		require.True(t, ok)
		assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
		assert.Equal(t, uint8(0), out.GrayAt(1, 0).Y)
		assert.Equal(t, uint8(255), out.GrayAt(2, 0).Y)
		assert.Equal(t, uint8(0), out.GrayAt(3, 0).Y)
	})

	t.Run("luma weights favor green", func(t *testing.T) {
		// Pure green has luma 0.59*255 = 150, above the threshold; pure blue
		// has 0.11*255 = 28, below it.
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.Set(0, 0, color.RGBA{G: 255, A: 255})
		img.Set(1, 0, color.RGBA{B: 255, A: 255})

		out := p.Process(img).(*image.Gray)
		assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
		assert.Equal(t, uint8(0), out.GrayAt(1, 0).Y)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		img := solidImage(16, 16, color.RGBA{R: 120, G: 130, B: 140, A: 255})
		first := p.Process(img).(*image.Gray)
		second := p.Process(img).(*image.Gray)
		assert.Equal(t, first.Pix, second.Pix)
	})
}

func TestEnhancedPreprocessor(t *testing.T) {
	p := &EnhancedPreprocessor{logger: slog.Default()}

	t.Run("produces binary output", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 32, 32))
		for y := 0; y < 32; y++ {
			for x := 0; x < 32; x++ {
				img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
		// A dark horizontal bar of text-like pixels.
		for x := 4; x < 28; x++ {
			img.Set(x, 15, color.RGBA{A: 255})
			img.Set(x, 16, color.RGBA{A: 255})
		}

		out, ok := p.Process(img).(*image.Gray)
		require.True(t, ok)
		for _, pix := range out.Pix {
			assert.Contains(t, []uint8{0, 255}, pix)
		}
	})

	t.Run("nil input returned unchanged", func(t *testing.T) {
		assert.Nil(t, p.Process(nil))
	})

	t.Run("blank page passes through without deskew", func(t *testing.T) {
		img := solidImage(20, 20, color.White)
		out := p.Process(img)
		require.NotNil(t, out)
		gray, ok := out.(*image.Gray)
		require.True(t, ok)
		assert.Equal(t, uint8(255), gray.GrayAt(10, 10).Y)
	})
}

func TestDetectSkew(t *testing.T) {
	p := &EnhancedPreprocessor{logger: slog.Default()}

	t.Run("axis-aligned bar is below deskew floor", func(t *testing.T) {
		gray := image.NewGray(image.Rect(0, 0, 60, 60))
		for i := range gray.Pix {
			gray.Pix[i] = 255
		}
		for x := 5; x < 55; x++ {
			for y := 28; y < 32; y++ {
				gray.SetGray(x, y, color.Gray{Y: 0})
			}
		}
		_, ok := p.detectSkew(gray)
		assert.False(t, ok)
	})

	t.Run("tilted bar detected", func(t *testing.T) {
		gray := image.NewGray(image.Rect(0, 0, 100, 100))
		for i := range gray.Pix {
			gray.Pix[i] = 255
		}
		// A thick bar tilted roughly 5 degrees.
		for x := 10; x < 90; x++ {
			yc := 50 + int(float64(x-50)*0.0875)
			for dy := -2; dy <= 2; dy++ {
				gray.SetGray(x, yc+dy, color.Gray{Y: 0})
			}
		}
		angle, ok := p.detectSkew(gray)
		require.True(t, ok)
		assert.InDelta(t, 5.0, mathAbs(angle), 2.0)
	})
}

func TestNew(t *testing.T) {
	assert.IsType(t, &BasicPreprocessor{}, New(false, nil))
	assert.IsType(t, &EnhancedPreprocessor{}, New(true, slog.Default()))
}

func mathAbs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
