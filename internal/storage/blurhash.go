package storage

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the longest edge of the thumbnail the hash is computed from.
const blurHashSize = 64

// ComputeBlurHash decodes an image and returns its BlurHash placeholder using
// 4x3 components.
func ComputeBlurHash(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img down with nearest-neighbour sampling so that neither
// edge exceeds blurHashSize.
func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	dw, dh := blurHashSize, blurHashSize
	if w > h {
		dh = max(h*blurHashSize/w, 1)
	} else {
		dw = max(w*blurHashSize/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := range dh {
		for x := range dw {
			dst.Set(x, y, img.At(b.Min.X+x*w/dw, b.Min.Y+y*h/dh))
		}
	}
	return dst
}
