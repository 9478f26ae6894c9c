// Package pixelimg provides an immutable 2-D view over an RGB pixel grid.
//
// The rest of the compiler never touches image.Image directly once a source
// or key file has been decoded: everything downstream (tile, keydict, lexer)
// works against a Buffer, which is a thin, read-only wrapper around a flat
// pixel slice.
package pixelimg

import (
	"fmt"
	"image"
)

// Color is an exact RGB triple. Two colors are equal iff every channel
// matches; there is no tolerance or palette-nearest-match.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Buffer is an immutable row-major view over RGB pixels.
type Buffer struct {
	width, height int
	pixels        []Color // row-major, len == width*height
}

// New wraps an existing row-major pixel slice. It does not copy; callers
// must not mutate pixels afterwards.
func New(width, height int, pixels []Color) *Buffer {
	if len(pixels) != width*height {
		panic(fmt.Sprintf("pixelimg: buffer size mismatch: got %d pixels for %dx%d", len(pixels), width, height))
	}
	return &Buffer{width: width, height: height, pixels: pixels}
}

// FromImage converts a decoded image.Image into a Buffer, truncating alpha.
// This is the thin adapter at the system's external-collaborator boundary:
// the decoder itself (png.Decode et al.) is assumed to have already done the
// real work of turning file bytes into 8-bit-per-channel samples.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]Color, w*h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels[i] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
			i++
		}
	}
	return New(w, h, pixels)
}

// Width returns the buffer's width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer's height in pixels.
func (b *Buffer) Height() int { return b.height }

// In reports whether (x, y) is within bounds.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// At returns the pixel at (x, y) and whether it was in bounds. Out-of-bounds
// reads return the zero Color and false rather than panicking, since the
// lexer routinely probes near image edges while building candidate tiles.
func (b *Buffer) At(x, y int) (Color, bool) {
	if !b.In(x, y) {
		return Color{}, false
	}
	return b.pixels[y*b.width+x], true
}

// Row returns the row-major slice of y's pixels, or nil if y is out of
// bounds. The returned slice aliases the buffer and must not be mutated.
func (b *Buffer) Row(y int) []Color {
	if y < 0 || y >= b.height {
		return nil
	}
	return b.pixels[y*b.width : (y+1)*b.width]
}

// Rows returns a row-of-rows view of the whole buffer. It is recomputed on
// every call rather than cached: callers need both the flat and the 2-D
// shape at different call sites, and keeping only one backing slice around
// is simpler than maintaining a second, persistent representation in sync
// with it.
func (b *Buffer) Rows() [][]Color {
	rows := make([][]Color, b.height)
	for y := 0; y < b.height; y++ {
		rows[y] = b.Row(y)
	}
	return rows
}

// Pixels returns the flat row-major pixel slice backing the buffer. The
// returned slice aliases the buffer and must not be mutated.
func (b *Buffer) Pixels() []Color {
	return b.pixels
}
