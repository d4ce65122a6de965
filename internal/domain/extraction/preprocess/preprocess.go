// Package preprocess normalizes rasterized statement pages before OCR.
// Two implementations are provided: a basic bit-reproducible grayscale +
// fixed-threshold pass, and an enhanced pass that additionally deskews the
// page and applies adaptive thresholding. Both never fail: any internal error
// returns the input image unchanged.
package preprocess

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"sort"
)

// Preprocessor prepares a page image for OCR.
type Preprocessor interface {
	Process(img image.Image) image.Image
}

// New selects a preprocessor. Enhanced processing is optional; when disabled
// the basic pass keeps the pipeline fully deterministic.
func New(enhanced bool, logger *slog.Logger) Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	if enhanced {
		return &EnhancedPreprocessor{logger: logger}
	}
	return &BasicPreprocessor{}
}

// BasicPreprocessor converts to grayscale (luma 0.30R + 0.59G + 0.11B) and
// applies a fixed threshold at 128. Given identical input pixels the output is
// bit-identical across runs.
type BasicPreprocessor struct{}

func (p *BasicPreprocessor) Process(img image.Image) image.Image {
	if img == nil {
		return img
	}
	gray := grayscale(img)
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if gray.GrayAt(x, y).Y > 128 {
				gray.SetGray(x, y, color.Gray{Y: 255})
			} else {
				gray.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return gray
}

// EnhancedPreprocessor deskews the page, smooths noise with a median blur and
// binarizes with adaptive Gaussian thresholding (block size 11, constant 2).
type EnhancedPreprocessor struct {
	logger *slog.Logger
}

const (
	minDeskewAngle  = 0.5
	maxDeskewAngle  = 45.0
	minContourArea  = 100
	adaptiveBlock   = 11
	adaptiveC       = 2
	medianBlurKsize = 3
)

func (p *EnhancedPreprocessor) Process(img image.Image) (out image.Image) {
	if img == nil {
		return img
	}
	// The enhanced path must never take the page down with it.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("image preprocessing failed, using original", slog.Any("panic", r))
			out = img
		}
	}()

	gray := grayscale(img)

	if angle, ok := p.detectSkew(gray); ok {
		gray = rotate(gray, -angle)
	}

	gray = medianBlur(gray, medianBlurKsize)
	return adaptiveThreshold(gray, adaptiveBlock, adaptiveC)
}

// detectSkew estimates the page rotation as the median orientation angle of
// foreground contours above a minimum area. Angles outside (0.5°, 45°) are
// treated as noise and not applied.
func (p *EnhancedPreprocessor) detectSkew(gray *image.Gray) (float64, bool) {
	angles := contourAngles(gray, minContourArea)
	if len(angles) == 0 {
		return 0, false
	}

	sort.Float64s(angles)
	median := angles[len(angles)/2]

	abs := math.Abs(median)
	if abs < minDeskewAngle || abs > maxDeskewAngle {
		return 0, false
	}
	return median, true
}

// grayscale converts any image to 8-bit gray using luma 0.30/0.59/0.11.
func grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA components are 16-bit; scale down after weighting.
			luma := (30*r + 59*g + 11*b) / 100
			gray.SetGray(x, y, color.Gray{Y: uint8(luma >> 8)})
		}
	}
	return gray
}

// contourAngles labels dark connected components and returns the orientation
// angle (degrees) of each component above the area cutoff, via second-order
// central moments.
func contourAngles(gray *image.Gray, minArea int) []float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)

	isForeground := func(x, y int) bool {
		return gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y < 128
	}

	var angles []float64
	stack := make([][2]int, 0, 1024)

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			idx := sy*w + sx
			if visited[idx] || !isForeground(sx, sy) {
				continue
			}

			// Flood fill one component, accumulating moments.
			var count int
			var sumX, sumY, sumXX, sumYY, sumXY float64
			stack = stack[:0]
			stack = append(stack, [2]int{sx, sy})
			visited[idx] = true

			for len(stack) > 0 {
				pt := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				x, y := pt[0], pt[1]

				count++
				fx, fy := float64(x), float64(y)
				sumX += fx
				sumY += fy
				sumXX += fx * fx
				sumYY += fy * fy
				sumXY += fx * fy

				for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := x+d[0], y+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if !visited[nidx] && isForeground(nx, ny) {
						visited[nidx] = true
						stack = append(stack, [2]int{nx, ny})
					}
				}
			}

			if count < minArea {
				continue
			}

			n := float64(count)
			meanX, meanY := sumX/n, sumY/n
			mu20 := sumXX/n - meanX*meanX
			mu02 := sumYY/n - meanY*meanY
			mu11 := sumXY/n - meanX*meanY

			if mu20 == mu02 && mu11 == 0 {
				continue
			}
			theta := 0.5 * math.Atan2(2*mu11, mu20-mu02)
			angles = append(angles, theta*180/math.Pi)
		}
	}

	return angles
}

// rotate rotates the image by angle degrees about its center, filling exposed
// corners with white.
func rotate(gray *image.Gray, angleDeg float64) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := float64(w)/2, float64(h)/2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Inverse mapping back to the source pixel.
			dx, dy := float64(x)-cx, float64(y)-cy
			srcX := int(math.Round(cx + dx*cos + dy*sin))
			srcY := int(math.Round(cy - dx*sin + dy*cos))

			if srcX < 0 || srcY < 0 || srcX >= w || srcY >= h {
				out.SetGray(x, y, color.Gray{Y: 255})
				continue
			}
			out.SetGray(x, y, gray.GrayAt(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return out
}

// medianBlur applies a k x k median filter.
func medianBlur(gray *image.Gray, k int) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	half := k / 2
	window := make([]int, 0, k*k)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -half; dy <= half; dy++ {
				for dx := -half; dx <= half; dx++ {
					nx, ny := clamp(x+dx, 0, w-1), clamp(y+dy, 0, h-1)
					window = append(window, int(gray.GrayAt(bounds.Min.X+nx, bounds.Min.Y+ny).Y))
				}
			}
			sort.Ints(window)
			out.SetGray(x, y, color.Gray{Y: uint8(window[len(window)/2])})
		}
	}
	return out
}

// adaptiveThreshold binarizes using a Gaussian-weighted local mean over a
// block x block neighborhood minus constant c.
func adaptiveThreshold(gray *image.Gray, block, c int) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	half := block / 2

	kernel := gaussianKernel(block)

	// Separable pass: horizontal then vertical.
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i := -half; i <= half; i++ {
				nx := clamp(x+i, 0, w-1)
				acc += kernel[i+half] * float64(gray.GrayAt(bounds.Min.X+nx, bounds.Min.Y+y).Y)
			}
			tmp[y*w+x] = acc
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for i := -half; i <= half; i++ {
				ny := clamp(y+i, 0, h-1)
				acc += kernel[i+half] * tmp[ny*w+x]
			}
			mean := acc - float64(c)
			if float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) > mean {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

func gaussianKernel(size int) []float64 {
	// Sigma convention matches the usual 0.3*((size-1)*0.5 - 1) + 0.8.
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	kernel := make([]float64, size)
	var sum float64
	for i := -half; i <= half; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+half] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
