// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging decodes photo dimensions and generates small JPEG
// thumbnails for the admin console listing. Decoders for JPEG, PNG, and
// WebP are registered via blank imports.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80
)

// Dimensions probes the pixel size of an encoded image without a full
// decode. Returns an error for undecodable data; callers treat missing
// dimensions as non-critical metadata.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Thumbnail creates a JPEG thumbnail constrained to maxWidth while
// preserving aspect ratio. Returns nil when the image is already smaller
// than maxWidth.
func Thumbnail(data []byte, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Check for image bombs before the full decode.
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}

	// Skip thumbnail if image is already small enough.
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Calculate thumbnail dimensions preserving aspect ratio.
	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newWidth := maxWidth
	newHeight := int(float64(bounds.Dy()) * ratio)

	// Resize using CatmullRom (high quality).
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}
