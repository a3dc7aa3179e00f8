package monitor

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// normalizeImage re-encodes raw clipboard image bytes as PNG with any
// transparency flattened onto a white background, and returns the
// encoded bytes plus a "WxH" dimension string. Flattening keeps image
// entries renderable by consumers that don't composite alpha.
func normalizeImage(data []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(flat, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, "", fmt.Errorf("encoding png: %w", err)
	}

	dimensions := fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy())
	return buf.Bytes(), dimensions, nil
}
