package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decode-only; webp covers re-encode as jpeg
)

const (
	maxDimension = 800
	targetBytes  = 100 * 1024
	startQuality = 20
	floorQuality = 10
	qualityStep  = 5
)

// Compress decodes, shrinks to maxDimension on the long edge, and re-encodes
// small. PNG input stays PNG when the resize alone gets it under the target;
// everything else (and oversized PNG) comes out as low-quality JPEG, stepping
// the quality down until the payload fits or the floor is hit. The result is
// never larger than the input.
func Compress(data []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	img = shrink(img)

	if format == "png" {
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err == nil && buf.Len() <= targetBytes {
			return clamp(buf.Bytes(), data), "image/png", nil
		}
	}

	var buf bytes.Buffer
	for q := startQuality; ; q -= qualityStep {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		if buf.Len() <= targetBytes || q <= floorQuality {
			break
		}
	}
	return clamp(buf.Bytes(), data), "image/jpeg", nil
}

// shrink scales the image down so neither dimension exceeds maxDimension,
// preserving aspect ratio. Smaller images pass through untouched.
func shrink(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDimension && h <= maxDimension {
		return img
	}

	if w >= h {
		h = h * maxDimension / w
		w = maxDimension
	} else {
		w = w * maxDimension / h
		h = maxDimension
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// clamp guards the "compressed is never bigger" contract: pathological inputs
// (tiny already-optimized files) fall back to the original bytes.
func clamp(compressed, original []byte) []byte {
	if len(compressed) >= len(original) {
		return original
	}
	return compressed
}
