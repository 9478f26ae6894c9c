package keydict

import (
	"os"
	"path/filepath"
	"testing"

	"pixelc/pixelimg"
)

// buildKeyImage paints the key image used across these tests. Increment is
// a small plus-shape entirely inside its cell, anchored at its top-left
// non-background pixel; every other static token (LineBreak included) is a
// single pixel so it always matches trivially wherever it's dropped.
func buildKeyImage() *pixelimg.Buffer {
	const w, h = keyImageW, keyImageH
	bg := pixelimg.Color{R: 34, G: 32, B: 52}
	pixels := make([]pixelimg.Color, w*h)
	for i := range pixels {
		pixels[i] = bg
	}
	buf := pixelimg.New(w, h, pixels)
	set := func(x, y int, c pixelimg.Color) { pixels[y*w+x] = c }

	// Zero: tile 0 (0,0)-(63,63), a single pixel.
	set(5, 5, pixelimg.Color{R: 10, G: 10, B: 10})

	// Increment: tile 1 (64,0)-(127,63), a plus shape.
	incColour := pixelimg.Color{R: 153, G: 229, B: 80}
	base := struct{ x, y int }{80, 10}
	set(base.x+1, base.y, incColour)
	set(base.x, base.y+1, incColour)
	set(base.x+1, base.y+1, incColour)
	set(base.x+2, base.y+1, incColour)
	set(base.x+1, base.y+2, incColour)

	// Decrement: tile 2.
	set(64*2+5, 5, pixelimg.Color{R: 20, G: 20, B: 20})
	// Access: tile 3.
	set(64*3+5, 5, pixelimg.Color{R: 30, G: 30, B: 30})
	// Repeat: tile 4 (row 1, col 0).
	set(5, 64+5, pixelimg.Color{R: 40, G: 40, B: 40})
	// Quote: tile 5.
	quoteColour := pixelimg.Color{R: 95, G: 205, B: 228}
	set(64+5, 64+5, quoteColour)
	// LineBreak: tile 6.
	lineBreakColour := pixelimg.Color{R: 200, G: 10, B: 10}
	set(64*2+5, 64+5, lineBreakColour)

	return buf
}

func TestBuildFromKeyImageStaticShapes(t *testing.T) {
	buf := buildKeyImage()
	d, err := BuildFromKeyImage(buf)
	if err != nil {
		t.Fatalf("BuildFromKeyImage: %v", err)
	}

	wantBG := pixelimg.Color{R: 34, G: 32, B: 52}
	if d.Background != wantBG {
		t.Fatalf("Background = %v, want %v", d.Background, wantBG)
	}

	inc := d.DataFromToken(Increment)
	if inc.Amount != 5 {
		t.Fatalf("Increment.Amount = %d, want 5", inc.Amount)
	}
	if inc.Colour != (pixelimg.Color{R: 153, G: 229, B: 80}) {
		t.Fatalf("Increment.Colour = %v, want (153,229,80)", inc.Colour)
	}

	// A single isolated pixel spans exactly one row and one column, so
	// WidthRight/HeightDown come out to 1 (the pixel's own column/row), not 0.
	zero := d.DataFromToken(Zero)
	if zero.Amount != 1 || zero.WidthLeft != 0 || zero.Width() != 1 || zero.HeightUp != 0 || zero.Height() != 1 {
		t.Fatalf("Zero descriptor = %+v, want a single-pixel shape with Width()=Height()=1", zero)
	}
}

func TestBuildFromKeyImageRejectsWrongSize(t *testing.T) {
	buf := pixelimg.New(10, 10, make([]pixelimg.Color, 100))
	if _, err := BuildFromKeyImage(buf); err == nil {
		t.Fatal("expected error for wrong-size key image")
	}
}

func TestDeterminismAcrossRebuilds(t *testing.T) {
	buf := buildKeyImage()
	d1, err := BuildFromKeyImage(buf)
	if err != nil {
		t.Fatalf("BuildFromKeyImage: %v", err)
	}
	d2, err := BuildFromKeyImage(buf)
	if err != nil {
		t.Fatalf("BuildFromKeyImage: %v", err)
	}

	for i := 0; i < staticTokenCount; i++ {
		if !d1.statics[i].Equal(d2.statics[i]) {
			t.Fatalf("rebuild mismatch at ordinal %d: %+v != %+v", i, d1.statics[i], d2.statics[i])
		}
	}
}

func TestLargestIsIndependentPerDimension(t *testing.T) {
	buf := buildKeyImage()
	d, err := BuildFromKeyImage(buf)
	if err != nil {
		t.Fatalf("BuildFromKeyImage: %v", err)
	}

	w, h := d.Largest()
	if w <= 0 || h <= 0 {
		t.Fatalf("Largest() = (%d, %d), want positive dimensions", w, h)
	}

	// A tall, narrow identifier raises the height without touching the
	// width, which still comes from the 3-pixel-wide Increment plus.
	d.AddIdentifier(Descriptor{WidthRight: 1, HeightDown: 9, Amount: 9})
	if w, h := d.Largest(); w != 3 || h != 9 {
		t.Fatalf("Largest() = (%d, %d), want (3, 9)", w, h)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	buf := buildKeyImage()
	d, err := BuildFromKeyImage(buf)
	if err != nil {
		t.Fatalf("BuildFromKeyImage: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "key.log")
	if err := WriteCache(d, "deadbeef", path); err != nil {
		t.Fatalf("WriteCache: %v", err)
	}

	checksum, loaded, ok := ReadCache(path)
	if !ok {
		t.Fatal("ReadCache: ok = false, want true")
	}
	if checksum != "deadbeef" {
		t.Fatalf("checksum = %q, want %q", checksum, "deadbeef")
	}
	for i := 0; i < staticTokenCount; i++ {
		if !d.statics[i].Equal(loaded.statics[i]) {
			t.Fatalf("round-trip mismatch at ordinal %d: %+v != %+v", i, d.statics[i], loaded.statics[i])
		}
	}
	if loaded.Background != d.Background {
		t.Fatalf("Background round-trip = %v, want %v", loaded.Background, d.Background)
	}
	if loaded.IdentifierCount() != 0 {
		t.Fatalf("identifiers after reload = %d, want 0", loaded.IdentifierCount())
	}
}

func TestReadCacheRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.log")
	if err := os.WriteFile(path, []byte("not a cache\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, _, ok := ReadCache(path); ok {
		t.Fatal("ReadCache: ok = true for malformed file, want false")
	}
}

func TestChecksumDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.png")
	if err := os.WriteFile(path, []byte("some bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sum1, err := Checksum(path)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	sum2, err := Checksum(path)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if sum1 != sum2 {
		t.Fatalf("Checksum not deterministic: %q != %q", sum1, sum2)
	}
	if len(sum1) != 64 {
		t.Fatalf("Checksum length = %d, want 64", len(sum1))
	}
}
