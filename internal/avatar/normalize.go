package avatar

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

// Size is the edge length of the stored avatar in pixels.
const Size = 250

// Normalize decodes an uploaded image, center-crops it square and scales it
// to Size x Size, returning JPEG bytes. Undecodable input is a validation
// error, not a crash.
func Normalize(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported or corrupt image", httpx.ErrValidation)
	}

	crop := centerSquare(src.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("avatar: encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

func centerSquare(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := w
	if h < side {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
