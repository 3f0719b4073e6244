package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contactdesk/contactdesk/internal/platform/httpx"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeProducesFixedSizeJPEG(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"landscape", 640, 480},
		{"portrait", 300, 900},
		{"already square", 250, 250},
		{"smaller than target", 40, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Normalize(encodePNG(t, tc.w, tc.h))
			require.NoError(t, err)

			decoded, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			require.Equal(t, "jpeg", format)
			require.Equal(t, Size, decoded.Bounds().Dx())
			require.Equal(t, Size, decoded.Bounds().Dy())
		})
	}
}

func TestNormalizeAcceptsJPEGInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 200))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := Normalize(buf.Bytes())
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, Size, decoded.Bounds().Dx())
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"))
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = Normalize(nil)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCenterSquare(t *testing.T) {
	require.Equal(t, image.Rect(80, 0, 560, 480), centerSquare(image.Rect(0, 0, 640, 480)))
	require.Equal(t, image.Rect(0, 300, 300, 600), centerSquare(image.Rect(0, 0, 300, 900)))
	require.Equal(t, image.Rect(0, 0, 100, 100), centerSquare(image.Rect(0, 0, 100, 100)))
}
