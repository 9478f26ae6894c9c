package keydict

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pixelc/pixelimg"
)

// cacheLineCount is 1 (checksum) + 7*8 (static descriptor fields) + 3 +
// 3 (background, grid) - the exact line count WriteCache emits and
// ReadCache requires.
const cacheLineCount = 1 + staticTokenCount*8 + 3 + 3

// Checksum returns the 64-char lowercase hex SHA-256 digest of the raw
// key-image file bytes at path. This is computed over the file on disk, not
// over decoded pixels, so it only reflects the exact bytes the cache was
// built from.
func Checksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("keydict: reading key image for checksum: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteCache serializes checksum and d to path as line-delimited text,
// truncating and rewriting the target path directly (failure propagates;
// there is no temp-file-then-rename step). The whole line-delimited body is
// built in memory first and written in a single os.WriteFile call; a write
// that fails partway can leave a truncated file at path.
func WriteCache(d *Dictionary, checksum, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, checksum)

	for i := 0; i < staticTokenCount; i++ {
		desc := d.statics[i]
		fmt.Fprintln(&buf, desc.Colour.R)
		fmt.Fprintln(&buf, desc.Colour.G)
		fmt.Fprintln(&buf, desc.Colour.B)
		fmt.Fprintln(&buf, desc.WidthLeft)
		fmt.Fprintln(&buf, desc.WidthRight)
		fmt.Fprintln(&buf, desc.HeightUp)
		fmt.Fprintln(&buf, desc.HeightDown)
		fmt.Fprintln(&buf, desc.Amount)
	}

	fmt.Fprintln(&buf, d.Background.R)
	fmt.Fprintln(&buf, d.Background.G)
	fmt.Fprintln(&buf, d.Background.B)
	fmt.Fprintln(&buf, d.Grid.R)
	fmt.Fprintln(&buf, d.Grid.G)
	fmt.Fprintln(&buf, d.Grid.B)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("keydict: writing cache %s: %w", path, err)
	}
	return nil
}

// ReadCache parses path as a previously-written cache. It returns ok=false
// on any I/O or parse failure (malformed integer, wrong line count) rather
// than an error: a broken or missing cache is meant to be silently rebuilt
// by the caller, not treated as fatal.
func ReadCache(path string) (checksum string, d *Dictionary, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, false
	}

	lines := make([]string, 0, cacheLineCount)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil || len(lines) != cacheLineCount {
		return "", nil, false
	}

	next := 0
	take := func() string {
		v := lines[next]
		next++
		return v
	}
	takeUint8 := func() (uint8, bool) {
		n, err := strconv.ParseUint(strings.TrimSpace(take()), 10, 8)
		return uint8(n), err == nil
	}
	takeInt := func() (int, bool) {
		n, err := strconv.ParseUint(strings.TrimSpace(take()), 10, 32)
		return int(n), err == nil
	}

	checksum = take()

	d = New()
	for i := 0; i < staticTokenCount; i++ {
		r, okR := takeUint8()
		g, okG := takeUint8()
		b, okB := takeUint8()
		wl, okWL := takeInt()
		wr, okWR := takeInt()
		hu, okHU := takeInt()
		hd, okHD := takeInt()
		am, okAm := takeInt()
		if !(okR && okG && okB && okWL && okWR && okHU && okHD && okAm) {
			return "", nil, false
		}
		d.statics[i] = Descriptor{
			Kind:       TokenKind(i),
			Colour:     pixelimg.Color{R: r, G: g, B: b},
			WidthLeft:  wl,
			WidthRight: wr,
			HeightUp:   hu,
			HeightDown: hd,
			Amount:     am,
		}
	}

	bgR, okBgR := takeUint8()
	bgG, okBgG := takeUint8()
	bgB, okBgB := takeUint8()
	grR, okGrR := takeUint8()
	grG, okGrG := takeUint8()
	grB, okGrB := takeUint8()
	if !(okBgR && okBgG && okBgB && okGrR && okGrG && okGrB) {
		return "", nil, false
	}
	d.Background = pixelimg.Color{R: bgR, G: bgG, B: bgB}
	d.Grid = pixelimg.Color{R: grR, G: grG, B: grB}
	d.hasGrid = true

	return checksum, d, true
}
