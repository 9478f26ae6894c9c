package keydict

import "pixelc/pixelimg"

// Descriptor is a shape signature: the five numbers plus color that let the
// lexer recognize one token by shape-matching. WidthLeft/WidthRight are
// measured from the anchor leftward/rightward; HeightUp/HeightDown are
// measured from the leftmost pixel upward/downward; Amount is the total
// non-ignored pixel count. See outlineKey for how these are derived.
type Descriptor struct {
	Kind       TokenKind
	Colour     pixelimg.Color
	WidthLeft  int
	WidthRight int
	HeightUp   int
	HeightDown int
	Amount     int
}

// Width is the descriptor's full horizontal extent.
func (d Descriptor) Width() int { return d.WidthLeft + d.WidthRight }

// Height is the descriptor's full vertical extent.
func (d Descriptor) Height() int { return d.HeightUp + d.HeightDown }

// Equal compares two descriptors field-by-field, used by the cache
// round-trip tests.
func (d Descriptor) Equal(o Descriptor) bool {
	return d.Kind == o.Kind &&
		d.Colour == o.Colour &&
		d.WidthLeft == o.WidthLeft &&
		d.WidthRight == o.WidthRight &&
		d.HeightUp == o.HeightUp &&
		d.HeightDown == o.HeightDown &&
		d.Amount == o.Amount
}
