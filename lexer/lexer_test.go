package lexer

import (
	"testing"

	"pixelc/keydict"
	"pixelc/pixelimg"
)

// buildTestDict induces a small dictionary from a synthetic 256x256 key
// image: every static token except Increment is a single isolated pixel: a
// single pixel spans exactly one row and one column of content, so its
// WidthRight/HeightDown both come out to 1, not 0 (see keydict.OutlineShape).
// Increment is a 5-pixel plus shape so its Amount is distinguishable from the
// single-pixel tokens.
//
// There are no real key or source images bundled with this module, so these
// tests build equivalent source buffers by hand instead of decoding shipped
// images.
func buildTestDict(t *testing.T) *keydict.Dictionary {
	t.Helper()
	const w, h = 256, 256
	bg := pixelimg.Color{R: 34, G: 32, B: 52}
	pixels := make([]pixelimg.Color, w*h)
	for i := range pixels {
		pixels[i] = bg
	}
	buf := pixelimg.New(w, h, pixels)
	set := func(x, y int, c pixelimg.Color) { pixels[y*w+x] = c }

	set(5, 5, pixelimg.Color{R: 10, G: 10, B: 10}) // Zero, tile 0

	inc := pixelimg.Color{R: 153, G: 229, B: 80} // Increment, tile 1 - plus shape
	set(64+17, 10, inc)
	set(64+16, 11, inc)
	set(64+17, 11, inc)
	set(64+18, 11, inc)
	set(64+17, 12, inc)

	set(64*2+5, 5, pixelimg.Color{R: 20, G: 20, B: 20}) // Decrement, tile 2
	set(64*3+5, 5, pixelimg.Color{R: 30, G: 30, B: 30})  // Access, tile 3
	set(5, 64+5, pixelimg.Color{R: 40, G: 40, B: 40})     // Repeat, tile 4
	set(64+5, 64+5, pixelimg.Color{R: 95, G: 205, B: 228}) // Quote, tile 5
	set(64*2+5, 64+5, pixelimg.Color{R: 200, G: 10, B: 10}) // LineBreak, tile 6

	d, err := keydict.BuildFromKeyImage(buf)
	if err != nil {
		t.Fatalf("BuildFromKeyImage: %v", err)
	}
	return d
}

func blankSource(w, h int, bg pixelimg.Color) ([]pixelimg.Color, *pixelimg.Buffer) {
	pixels := make([]pixelimg.Color, w*h)
	for i := range pixels {
		pixels[i] = bg
	}
	return pixels, pixelimg.New(w, h, pixels)
}

// TestAnalyseSimpleLine checks that a source image containing one Quote
// token followed by a LineBreak token on the same row sweeps to exactly
// [Token(Quote), Token(LineBreak)].
func TestAnalyseSimpleLine(t *testing.T) {
	d := buildTestDict(t)
	quote := d.DataFromToken(keydict.Quote).Colour
	lineBreak := d.DataFromToken(keydict.LineBreak).Colour

	pixels, buf := blankSource(40, 40, d.Background)
	set := func(x, y int, c pixelimg.Color) { pixels[y*40+x] = c }
	set(5, 5, quote)
	set(12, 5, lineBreak)

	lx := New(d, nil)
	got := lx.Analyse(buf)

	want := []Lexeme{Token(keydict.Quote), Token(keydict.LineBreak)}
	if len(got) != len(want) {
		t.Fatalf("Analyse() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Analyse()[%d] = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

// TestAnalyseEmptyImageProducesNoLexemes ensures a source image that is
// entirely background yields an empty stream rather than a spurious
// synthetic LineBreak.
func TestAnalyseEmptyImageProducesNoLexemes(t *testing.T) {
	d := buildTestDict(t)
	_, buf := blankSource(20, 20, d.Background)

	lx := New(d, nil)
	got := lx.Analyse(buf)
	if len(got) != 0 {
		t.Fatalf("Analyse() on blank image = %v, want empty", got)
	}
}

// TestAnalyseScope checks a solid rectangle larger than 64x64 in both
// dimensions, entered at (10,10) with size 80x80, containing two lines of
// tokens. The expected lexeme stream is ScopeStart, then the first line's
// tokens, then the second line's tokens, then ScopeEnd.
func TestAnalyseScope(t *testing.T) {
	d := buildTestDict(t)
	decrement := d.DataFromToken(keydict.Decrement).Colour
	quote := d.DataFromToken(keydict.Quote).Colour
	repeat := d.DataFromToken(keydict.Repeat).Colour
	lineBreak := d.DataFromToken(keydict.LineBreak).Colour
	scopeColour := pixelimg.Color{R: 0, G: 63, B: 35}

	const size = 150
	pixels, buf := blankSource(size, size, d.Background)
	set := func(x, y int, c pixelimg.Color) { pixels[y*size+x] = c }

	for y := 10; y < 90; y++ {
		for x := 10; x < 90; x++ {
			set(x, y, scopeColour)
		}
	}

	// Line 1, row 15: Decrement, Quote, Quote, LineBreak.
	set(15, 15, decrement)
	set(17, 15, quote)
	set(19, 15, quote)
	set(21, 15, lineBreak)

	// Line 2, row 25: Repeat, Decrement, LineBreak.
	set(15, 25, repeat)
	set(17, 25, decrement)
	set(19, 25, lineBreak)

	lx := New(d, nil)
	got := lx.Analyse(buf)

	want := []Lexeme{
		Token(keydict.ScopeStart),
		Token(keydict.Decrement),
		Token(keydict.Quote),
		Token(keydict.Quote),
		Token(keydict.LineBreak),
		Token(keydict.Repeat),
		Token(keydict.Decrement),
		Token(keydict.LineBreak),
		Token(keydict.ScopeEnd),
	}
	if len(got) != len(want) {
		t.Fatalf("Analyse() = %v (len %d), want %v (len %d)", got, len(got), want, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Analyse()[%d] = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

// TestAnalyseDeclaresIdentifierAfterAccess checks that a pixel immediately
// following an Access lexeme is outlined as a fresh identifier and referred
// to by index rather than matched against a static descriptor.
func TestAnalyseDeclaresIdentifierAfterAccess(t *testing.T) {
	d := buildTestDict(t)
	access := d.DataFromToken(keydict.Access).Colour
	identColour := pixelimg.Color{R: 250, G: 10, B: 250}

	pixels, buf := blankSource(40, 40, d.Background)
	set := func(x, y int, c pixelimg.Color) { pixels[y*40+x] = c }
	set(5, 20, access)
	set(7, 20, identColour)

	lx := New(d, nil)
	got := lx.Analyse(buf)

	if len(got) < 2 {
		t.Fatalf("Analyse() = %v, want at least [Access, Identifier(...)]", got)
	}
	if got[0].Kind != keydict.Access {
		t.Fatalf("Analyse()[0] = %v, want Access", got[0])
	}
	if !got[1].IsIdentifier() {
		t.Fatalf("Analyse()[1] = %v, want an identifier reference", got[1])
	}
	if d.IdentifierCount() != 1 {
		t.Fatalf("IdentifierCount() = %d, want 1", d.IdentifierCount())
	}
}
