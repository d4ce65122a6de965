// Package ocr wraps the external tesseract binary behind a small interface so
// the extraction pipeline can be tested without it installed.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Engine recognizes text on a single page image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	// Available reports whether the underlying OCR backend can run on this
	// host.
	Available() bool
}

// TesseractEngine shells out to the tesseract CLI.
type TesseractEngine struct {
	binary   string
	language string
	logger   *slog.Logger
}

// NewTesseractEngine creates an engine for the given binary path ("tesseract"
// when empty) and recognition language ("eng" when empty).
func NewTesseractEngine(binary, language string, logger *slog.Logger) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractEngine{binary: binary, language: language, logger: logger}
}

// Available probes for the tesseract binary on PATH.
func (e *TesseractEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Recognize writes the image to a temporary PNG and runs tesseract over it,
// returning the recognized text.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("ocr: nil image")
	}

	dir, err := os.MkdirTemp("", "ocr-page-*")
	if err != nil {
		return "", fmt.Errorf("ocr: create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "page.png")
	f, err := os.Create(inputPath)
	if err != nil {
		return "", fmt.Errorf("ocr: create input file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("ocr: encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ocr: close input file: %w", err)
	}

	// "stdout" as the output base makes tesseract print the text directly.
	cmd := exec.CommandContext(ctx, e.binary, inputPath, "stdout", "-l", e.language)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.Error("tesseract failed",
			slog.String("stderr", strings.TrimSpace(stderr.String())),
			slog.Any("error", err))
		return "", fmt.Errorf("ocr: tesseract: %w", err)
	}

	return stdout.String(), nil
}
