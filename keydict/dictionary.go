// Package keydict induces a token dictionary from a 4x4-grid key image and
// answers shape-matching queries against it for the lexer. It also owns the
// checksum-keyed text cache described in cache.go.
package keydict

import (
	"fmt"

	"pixelc/pixelimg"
	"pixelc/tile"
)

// keyImageW x keyImageH is the fixed key image resolution: a 4x4 grid of
// 64x64 cells.
const (
	cellSize  = 64
	gridCols  = 4
	gridRows  = 4
	keyImageW = cellSize * gridCols
	keyImageH = cellSize * gridRows
)

// Dictionary is the induced token alphabet: seven fixed static descriptors
// plus a growable list of identifier descriptors, and the two palette
// colors (background, grid) needed to tell shape pixels from filler.
type Dictionary struct {
	statics     [staticTokenCount]Descriptor
	identifiers []Descriptor

	Background pixelimg.Color
	Grid       pixelimg.Color
	hasGrid    bool
}

// New returns an empty dictionary ready for BuildFromKeyImage or loading
// from cache.
func New() *Dictionary {
	return &Dictionary{}
}

// HasGrid reports whether a lattice color was detected in the key image.
func (d *Dictionary) HasGrid() bool { return d.hasGrid }

// isIgnored reports whether c is the background or (if present) the grid
// color - the two colors that carry no shape information.
func (d *Dictionary) isIgnored(c pixelimg.Color) bool {
	return c == d.Background || (d.hasGrid && c == d.Grid)
}

// BuildFromKeyImage induces a fresh Dictionary from a decoded key image. The
// image must logically be a 4x4 grid of 64x64 cells (256x256 total); tiles
// 0..6 map to the seven static tokens in ordinal order, tiles 7..15 are
// reserved and currently unused.
func BuildFromKeyImage(buf *pixelimg.Buffer) (*Dictionary, error) {
	if buf.Width() != keyImageW || buf.Height() != keyImageH {
		return nil, fmt.Errorf("keydict: key image must be %dx%d, got %dx%d", keyImageW, keyImageH, buf.Width(), buf.Height())
	}

	d := New()
	d.identifyBackground(buf)

	full := tile.DetectSolidRectangle(0, 0, buf)
	if full.Width == buf.Width() && full.Height == buf.Height() {
		topLeft, _ := buf.At(0, 0)
		d.Grid = topLeft
		d.hasGrid = true
	}

	for i := 0; i < staticTokenCount; i++ {
		col := i % gridCols
		row := i / gridCols
		cellTile := tile.Tile{X: col * cellSize, Y: row * cellSize, Width: cellSize, Height: cellSize}
		desc, err := d.outlineKey(cellTile, TokenKind(i), buf)
		if err != nil {
			return nil, fmt.Errorf("keydict: outlining token %s: %w", TokenKind(i), err)
		}
		d.statics[i] = desc
	}

	return d, nil
}

// identifyBackground computes the pixel color histogram and records the
// argmax as the background color, breaking ties by first-seen color. An
// empty image degenerates to black.
func (d *Dictionary) identifyBackground(buf *pixelimg.Buffer) {
	counts := make(map[pixelimg.Color]int)
	order := make([]pixelimg.Color, 0)
	for _, c := range buf.Pixels() {
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}

	if len(order) == 0 {
		d.Background = pixelimg.Color{}
		return
	}

	best := order[0]
	bestCount := counts[best]
	for _, c := range order[1:] {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	d.Background = best
}

// outlineKey extracts the shape at region using the dictionary's own
// background/grid colors as the ignored set.
func (d *Dictionary) outlineKey(region tile.Tile, kind TokenKind, buf *pixelimg.Buffer) (Descriptor, error) {
	return OutlineShape(buf, region, d.Background, d.Grid, d.hasGrid, kind)
}

// OutlineShape extracts the five-number shape signature plus color for the
// shape found in region, built from two reference points: the anchor is
// the first non-ignored pixel scanned row-major; the leftmost is
// the non-ignored pixel with the smallest x (ties broken by smallest y).
// Offsets are measured from those two points so that, later, encountering a
// shape's anchor color at a pixel lets the lexer reconstruct the full
// bounding box in both directions even when the anchor isn't the leftmost
// pixel of the shape.
//
// Pixels outside buf's bounds are treated the same as background - this is
// what lets the lexer outline an inline identifier window that hangs off
// the image edge without needing to materialize a padded copy.
//
// Exported so the lexer can reuse it for identifier declarations, whose
// ignored set is the *current* scope background rather than a fixed
// dictionary-wide one.
func OutlineShape(buf *pixelimg.Buffer, region tile.Tile, background, grid pixelimg.Color, hasGrid bool, kind TokenKind) (Descriptor, error) {
	ignored := func(c pixelimg.Color) bool {
		return c == background || (hasGrid && c == grid)
	}

	var anchor, leftmost struct{ x, y int }
	haveAnchor, haveLeftmost := false, false
	rowsWithContent := 0
	maxRowSpan := 0
	amount := 0

	for y := 0; y < region.Height; y++ {
		rowFirst, rowLast := -1, -1
		for x := 0; x < region.Width; x++ {
			c, ok := buf.At(region.X+x, region.Y+y)
			if !ok || ignored(c) {
				continue
			}
			if rowFirst == -1 {
				rowFirst = x
			}
			rowLast = x
			amount++

			if !haveAnchor {
				anchor.x, anchor.y = x, y
				haveAnchor = true
			}
			if !haveLeftmost || x < leftmost.x || (x == leftmost.x && y < leftmost.y) {
				leftmost.x, leftmost.y = x, y
				haveLeftmost = true
			}
		}
		if rowFirst != -1 {
			rowsWithContent++
			span := rowLast - rowFirst + 1
			if span > maxRowSpan {
				maxRowSpan = span
			}
		}
	}

	if !haveAnchor {
		return Descriptor{}, fmt.Errorf("no non-ignored pixels in region for token %s", kind)
	}

	colour, _ := buf.At(region.X+anchor.x, region.Y+anchor.y)

	anchorLeftmostDX := anchor.x - leftmost.x
	widthLeft := abs(anchorLeftmostDX)
	widthRight := abs(maxRowSpan - anchorLeftmostDX)
	heightUp := abs(leftmost.y - anchor.y)
	heightDown := rowsWithContent - heightUp

	return Descriptor{
		Kind:       kind,
		Colour:     colour,
		WidthLeft:  widthLeft,
		WidthRight: widthRight,
		HeightUp:   heightUp,
		HeightDown: heightDown,
		Amount:     amount,
	}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Data returns the seven static descriptors in ordinal order followed by
// the identifiers, in insertion order.
func (d *Dictionary) Data() []Descriptor {
	out := make([]Descriptor, 0, staticTokenCount+len(d.identifiers))
	out = append(out, d.statics[:]...)
	out = append(out, d.identifiers...)
	return out
}

// DataFromColour returns every descriptor (static or identifier) whose
// color equals c, stable in insertion order.
func (d *Dictionary) DataFromColour(c pixelimg.Color) []Descriptor {
	var out []Descriptor
	for _, desc := range d.Data() {
		if desc.Colour == c {
			out = append(out, desc)
		}
	}
	return out
}

// DataFromToken returns the static descriptor for k. It is only defined for
// the seven static ordinals (Zero..LineBreak); calling it with any other
// kind panics, since that would be a lexer bug, not a user-facing error.
func (d *Dictionary) DataFromToken(k TokenKind) Descriptor {
	if k < 0 || int(k) >= staticTokenCount {
		panic(fmt.Sprintf("keydict: DataFromToken called with non-static kind %s", k))
	}
	return d.statics[k]
}

// Largest returns the maximum width and maximum height across all
// descriptors, taken independently (the widest descriptor need not be the
// same one as the tallest). This defines the lexer's frame size.
func (d *Dictionary) Largest() (width, height int) {
	for _, desc := range d.Data() {
		if w := desc.Width(); w > width {
			width = w
		}
		if h := desc.Height(); h > height {
			height = h
		}
	}
	return
}

// AddIdentifier appends a dynamic Variable descriptor and returns its index
// in the identifier list. Identifiers are appended unconditionally; nothing
// here guards against redeclaring the same shape.
func (d *Dictionary) AddIdentifier(desc Descriptor) int {
	desc.Kind = Variable
	d.identifiers = append(d.identifiers, desc)
	return len(d.identifiers) - 1
}

// Identifier returns the identifier descriptor at index i.
func (d *Dictionary) Identifier(i int) Descriptor {
	return d.identifiers[i]
}

// IdentifierCount returns the number of identifiers declared so far.
func (d *Dictionary) IdentifierCount() int {
	return len(d.identifiers)
}

// IndexOfIdentifier returns the position of desc in the identifier list, or
// -1 if it is not present. Descriptors are compared field-by-field, not by
// pointer identity, since outlineKey produces fresh values on every call.
func (d *Dictionary) IndexOfIdentifier(desc Descriptor) int {
	for i, id := range d.identifiers {
		if id.Equal(desc) {
			return i
		}
	}
	return -1
}
