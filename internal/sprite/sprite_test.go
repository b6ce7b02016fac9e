package sprite

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square returns a size x size transparent image with an opaque block
// covering [lo, hi) on both axes.
func square(size, lo, hi int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	assert.Equal(t, image.Rect(2, 2, 6, 6), Crop(square(8, 2, 6)))

	empty := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Equal(t, empty.Bounds(), Crop(empty))
}

func TestRenderDimensions(t *testing.T) {
	art := Render(square(8, 2, 6), 10, 5)

	lines := strings.Split(art, "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, art, "▀")
}

func TestRenderFillsCroppedSquare(t *testing.T) {
	// A cropped square scaled into a square canvas covers every cell.
	art := Render(square(8, 2, 6), 4, 2)
	assert.NotContains(t, art, " ")
}

func TestRenderKeepsAspect(t *testing.T) {
	// A wide bar only fills the middle rows.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 2))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.NRGBA{G: 255, A: 255})
		img.Set(x, 1, color.NRGBA{G: 255, A: 255})
	}

	lines := strings.Split(Render(img, 8, 4), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Repeat(" ", 8), lines[0])
	assert.Equal(t, strings.Repeat(" ", 8), lines[3])
}

func TestRenderInvalid(t *testing.T) {
	assert.Empty(t, Render(nil, 10, 5))
	assert.Empty(t, Render(square(4, 0, 4), 0, 5))
}

func TestPlaceholder(t *testing.T) {
	art := Placeholder(12, 6)

	lines := strings.Split(art, "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.ContainsAny(art, "▀▄"), "glyph should draw something")
	assert.Empty(t, Placeholder(0, 0))
}

func TestCache(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("u", 4, 2)
	assert.False(t, ok)

	c.Put("u", 4, 2, "art")
	art, ok := c.Get("u", 4, 2)
	assert.True(t, ok)
	assert.Equal(t, "art", art)

	_, ok = c.Get("u", 8, 4)
	assert.False(t, ok, "size is part of the key")
}
