// Package raster renders PDF pages to images for OCR via the external
// pdftoppm binary from poppler-utils.
package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	pdflib "github.com/ledongthuc/pdf"
)

// Default pdftoppm resolution is 72 dpi; scale multiplies it.
const baseDPI = 72

// Rasterizer turns a PDF file into one image per page.
type Rasterizer interface {
	Render(ctx context.Context, pdfPath string) ([]image.Image, error)
	PageCount(pdfPath string) (int, error)
	Available() bool
}

// PdftoppmRasterizer shells out to pdftoppm and reads the resulting PNGs.
type PdftoppmRasterizer struct {
	binary string
	scale  float64
	logger *slog.Logger
}

// NewPdftoppmRasterizer creates a rasterizer. An empty binary defaults to
// "pdftoppm"; a non-positive scale defaults to 2.0, which renders at 144 dpi
// and keeps small statement print legible to OCR.
func NewPdftoppmRasterizer(binary string, scale float64, logger *slog.Logger) *PdftoppmRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if scale <= 0 {
		scale = 2.0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PdftoppmRasterizer{binary: binary, scale: scale, logger: logger}
}

// Available probes for the pdftoppm binary on PATH.
func (r *PdftoppmRasterizer) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// PageCount reads the PDF page tree without rendering anything.
func (r *PdftoppmRasterizer) PageCount(pdfPath string) (int, error) {
	f, reader, err := pdflib.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("raster: open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// Render rasterizes every page of the PDF to a PNG at the configured scale and
// decodes them in page order.
func (r *PdftoppmRasterizer) Render(ctx context.Context, pdfPath string) ([]image.Image, error) {
	dir, err := os.MkdirTemp("", "raster-*")
	if err != nil {
		return nil, fmt.Errorf("raster: create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	dpi := strconv.Itoa(int(baseDPI * r.scale))
	outPrefix := filepath.Join(dir, "page")

	cmd := exec.CommandContext(ctx, r.binary, "-png", "-r", dpi, pdfPath, outPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		r.logger.Error("pdftoppm failed",
			slog.String("output", string(out)),
			slog.Any("error", err))
		return nil, fmt.Errorf("raster: pdftoppm: %w", err)
	}

	paths, err := filepath.Glob(outPrefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("raster: list pages: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("raster: pdftoppm produced no pages for %s", pdfPath)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(paths)

	images := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := decodePNG(p)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open page image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster: decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
