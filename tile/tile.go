// Package tile implements the axis-aligned rectangle primitive shared by the
// key dictionary and the lexer: overlap testing, same-color pixel counting,
// and the "flood rectangle" scope-boundary detector.
package tile

import "pixelc/pixelimg"

// Tile is an axis-aligned rectangle with a top-left origin.
type Tile struct {
	X, Y          int
	Width, Height int
}

// FromFlat converts a 1-D index into a pixel buffer of the given row width
// into a Tile anchored at that position with the given width/height.
func FromFlat(pos, rowWidth, width, height int) Tile {
	return Tile{
		X:      pos % rowWidth,
		Y:      pos / rowWidth,
		Width:  width,
		Height: height,
	}
}

// Overlap reports whether the closed rectangles a and b share any point.
// Tiles that only touch along a boundary count as overlapping.
func Overlap(a, b Tile) bool {
	return a.X+a.Width >= b.X && b.X+b.Width >= a.X &&
		a.Y+a.Height >= b.Y && b.Y+b.Height >= a.Y
}

// CountPixels counts the pixels inside t ∩ buf that equal colour. Parts of
// t that fall outside buf simply do not contribute to the count, which is
// how a shape whose bounding box would extend past the image boundary is
// prevented from ever matching: the missing pixels can never be counted.
func CountPixels(t Tile, colour pixelimg.Color, buf *pixelimg.Buffer) int {
	count := 0
	for y := 0; y < t.Height; y++ {
		py := t.Y + y
		if py < 0 || py >= buf.Height() {
			continue
		}
		for x := 0; x < t.Width; x++ {
			px := t.X + x
			if px < 0 || px >= buf.Width() {
				continue
			}
			if c, _ := buf.At(px, py); c == colour {
				count++
			}
		}
	}
	return count
}

// DetectSolidRectangle returns the axis-aligned rectangle (start.X, start.Y,
// w, h) where w is the length of the longest horizontal run of start's color
// beginning at start, and h is the length of the longest vertical run
// beginning at start. This is intentionally not a connected-component flood
// fill: scopes are drawn as filled rectangles, so measuring the horizontal
// and vertical extents from the top-left corner is enough. Runs that reach
// the image boundary saturate at the image size.
func DetectSolidRectangle(startX, startY int, buf *pixelimg.Buffer) Tile {
	region, ok := buf.At(startX, startY)
	if !ok {
		return Tile{X: startX, Y: startY}
	}

	width := buf.Width() - startX
	for x := startX; x < buf.Width(); x++ {
		c, _ := buf.At(x, startY)
		if c != region {
			width = x - startX
			break
		}
	}

	height := buf.Height() - startY
	for y := startY; y < buf.Height(); y++ {
		c, _ := buf.At(startX, y)
		if c != region {
			height = y - startY
			break
		}
	}

	return Tile{X: startX, Y: startY, Width: width, Height: height}
}
