package output

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

const DefaultQuality = 90

// Format is an encoder choice after normalization.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ResolveFormat maps a requested format name onto an encoder and file
// extension. webp has no pure-Go encoder and falls back to png, as does
// anything unknown.
func ResolveFormat(name string) (Format, string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpg":
		return FormatJPEG, "jpg"
	case "jpeg":
		return FormatJPEG, "jpeg"
	default:
		return FormatPNG, "png"
	}
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch format {
	case FormatJPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultQuality
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	}
	return nil
}
