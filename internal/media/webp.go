package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	MaxUploadBytes = 2 << 20
	MaxWidth       = 1280
	Quality        = 80

	ContentType = "image/webp"
	Extension   = ".webp"
)

var (
	ErrTooLarge    = errors.New("image exceeds 2MB")
	ErrUnsupported = errors.New("unsupported image format")
)

// FitWidth scales (w, h) down so w <= maxWidth, keeping the aspect ratio.
// Images already within bounds are returned unchanged.
func FitWidth(w, h, maxWidth int) (int, int) {
	if w <= maxWidth || w <= 0 {
		return w, h
	}
	nh := h * maxWidth / w
	if nh < 1 {
		nh = 1
	}
	return maxWidth, nh
}

// ToWebP decodes a JPEG or PNG upload, shrinks it to MaxWidth and encodes it as WebP.
func ToWebP(raw []byte) ([]byte, error) {
	if len(raw) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrUnsupported
	}
	if format != "jpeg" && format != "png" {
		return nil, ErrUnsupported
	}

	b := src.Bounds()
	w, h := FitWidth(b.Dx(), b.Dy(), MaxWidth)

	img := src
	if w != b.Dx() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
