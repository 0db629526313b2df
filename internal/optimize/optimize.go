// Package optimize transcodes uploaded raster images to width-capped WebP.
package optimize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	// MaxWidth is the widest image stored after optimization.
	MaxWidth = 1920
	// Quality is the lossy WebP quality.
	Quality = 80
	// ContentType of every optimized image.
	ContentType = "image/webp"
	// Extension of every optimized image key.
	Extension = ".webp"
)

var optimizable = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// IsOptimizable reports whether uploads of contentType are transcoded.
func IsOptimizable(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return optimizable[ct]
}

// Result is an encoded image and its final dimensions.
type Result struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

// Image decodes data honoring EXIF orientation, shrinks it to MaxWidth
// keeping the aspect ratio, and encodes it as WebP. Narrower images keep
// their size.
func Image(data []byte) (Result, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: Quality}); err != nil {
		return Result{}, fmt.Errorf("encode webp: %w", err)
	}
	b := img.Bounds()
	return Result{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy(), ContentType: ContentType}, nil
}
