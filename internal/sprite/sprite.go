// Package sprite renders Pokémon sprites as colored half-block art.
package sprite

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// alphaThreshold is the minimum alpha for a pixel to count as visible.
const alphaThreshold = 0x40

// Render draws img into cols x rows terminal cells. Each cell holds two
// vertical pixels using ▀/▄ with foreground and background colors.
// Transparent margins are cropped and the aspect ratio is kept.
func Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}

	scaled := fit(img, Crop(img), cols, rows*2)
	return toHalfBlocks(scaled, cols, rows)
}

// Placeholder renders a "?" glyph for entries without a sprite.
func Placeholder(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}

	face := basicfont.Face7x13
	src := image.NewNRGBA(image.Rect(0, 0, 11, 15))

	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}),
		Face: face,
		Dot:  fixed.P(2, 1+face.Ascent),
	}
	d.DrawString("?")

	scaled := fit(src, src.Bounds(), cols, rows*2)
	return toHalfBlocks(scaled, cols, rows)
}

// Crop returns the bounding box of the visible pixels of img. A fully
// transparent image returns its own bounds.
func Crop(img image.Image) image.Rectangle {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !visible(img.At(x, y)) {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x+1)
			maxY = max(maxY, y+1)
		}
	}

	if minX >= maxX || minY >= maxY {
		return b
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// fit scales the src region of img into a width x height canvas, centered,
// keeping aspect ratio. Nearest-neighbor keeps pixel art crisp.
func fit(img image.Image, src image.Rectangle, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}

	w, h := width, height
	if sw*height > sh*width {
		h = sh * width / sw
	} else {
		w = sw * height / sh
	}
	w, h = max(w, 1), max(h, 1)

	x0 := (width - w) / 2
	y0 := (height - h) / 2
	draw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), img, src, draw.Over, nil)
	return dst
}

// toHalfBlocks converts an image of cols x rows*2 pixels to cell art.
func toHalfBlocks(img *image.NRGBA, cols, rows int) string {
	var result strings.Builder

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := img.NRGBAAt(col, row*2)
			bottom := img.NRGBAAt(col, row*2+1)
			topOn := top.A >= alphaThreshold
			bottomOn := bottom.A >= alphaThreshold

			switch {
			case topOn && bottomOn:
				result.WriteString(lipgloss.NewStyle().
					Foreground(hex(top)).
					Background(hex(bottom)).
					Render("▀"))
			case topOn:
				result.WriteString(lipgloss.NewStyle().Foreground(hex(top)).Render("▀"))
			case bottomOn:
				result.WriteString(lipgloss.NewStyle().Foreground(hex(bottom)).Render("▄"))
			default:
				result.WriteRune(' ')
			}
		}
		if row < rows-1 {
			result.WriteRune('\n')
		}
	}

	return result.String()
}

func visible(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a>>8 >= alphaThreshold
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// Cache memoizes rendered art per sprite URL and size for the session.
type Cache struct {
	mu sync.Mutex
	m  map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]string)}
}

// Key identifies a rendering of url at a given size.
func Key(url string, cols, rows int) string {
	return fmt.Sprintf("%s@%dx%d", url, cols, rows)
}

// Get returns cached art.
func (c *Cache) Get(url string, cols, rows int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	art, ok := c.m[Key(url, cols, rows)]
	return art, ok
}

// Put stores rendered art.
func (c *Cache) Put(url string, cols, rows int, art string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[Key(url, cols, rows)] = art
}
