package lexer

import (
	"pixelc/internal/xlog"
	"pixelc/keydict"
	"pixelc/pixelimg"
	"pixelc/tile"
)

// identifierWindow is the fixed size of the window outlined when declaring
// an inline identifier shape.
const identifierWindow = 64

// scopeMinSize is the minimum width and height a detected solid rectangle
// must exceed, in both dimensions, to be treated as a scope rather than an
// oversized token shape.
const scopeMinSize = 64

// Lexer sweeps a decoded source image against a dictionary, producing a
// flat lexeme stream. A single Lexer is not meant to be reused concurrently
// across images; Analyse resets its internal state on every call.
type Lexer struct {
	dict   *keydict.Dictionary
	logger *xlog.Logger

	tokens          []Lexeme
	positions       []tile.Tile
	backgroundStack []pixelimg.Color
}

// New builds a Lexer over dict. If logger is nil, xlog.GetLogger() is used.
func New(dict *keydict.Dictionary, logger *xlog.Logger) *Lexer {
	if logger == nil {
		logger = xlog.GetLogger()
	}
	return &Lexer{dict: dict, logger: logger}
}

// Analyse runs the full top-level sweep over buf and returns the lexeme
// stream. The background stack is seeded with the dictionary's background
// color - by convention the source image shares its background with the
// key image it was declared against.
func (l *Lexer) Analyse(buf *pixelimg.Buffer) []Lexeme {
	l.tokens = nil
	l.positions = nil
	l.backgroundStack = []pixelimg.Color{l.dict.Background}

	region := tile.Tile{X: 0, Y: 0, Width: buf.Width(), Height: buf.Height()}
	l.frameSweep(region, l.dict.Background, buf, true)

	return l.tokens
}

// Positions returns, parallel to the slice returned by the most recent
// Analyse call, the source-image tile each lexeme was matched at. Lexemes
// with no discrete pixel match of their own (ScopeStart/ScopeEnd, and the
// synthetic LineBreak a line without one gets) carry a zero Tile. Meant for
// the debug visualizer, which needs to draw a box per recognized token;
// nothing in the compiler pipeline itself consults it.
func (l *Lexer) Positions() []tile.Tile {
	return l.positions
}

func (l *Lexer) emit(lex Lexeme) {
	l.emitAt(lex, tile.Tile{})
}

func (l *Lexer) emitAt(lex Lexeme, pos tile.Tile) {
	l.tokens = append(l.tokens, lex)
	l.positions = append(l.positions, pos)
}

func (l *Lexer) lastKind() (keydict.TokenKind, bool) {
	if len(l.tokens) == 0 {
		return 0, false
	}
	return l.tokens[len(l.tokens)-1].Kind, true
}

// firstDescriptor returns the descriptor of the first non-ignored pixel
// found in a column-major scan of bounds, matching the original
// implementation's consume_first: only the horizontal coordinate of the
// matched pixel seeds the candidate bounding box, the vertical coordinate
// is used as-is. It underlies both GetFirst and LineHeight.
func (l *Lexer) firstDescriptor(bounds tile.Tile, background pixelimg.Color, buf *pixelimg.Buffer) (keydict.Descriptor, bool) {
	maxX := bounds.X + bounds.Width
	if maxX > buf.Width() {
		maxX = buf.Width()
	}
	maxY := bounds.Y + bounds.Height
	if maxY > buf.Height() {
		maxY = buf.Height()
	}

	for x := bounds.X; x < maxX; x++ {
		for y := bounds.Y; y < maxY; y++ {
			c, ok := buf.At(x, y)
			if !ok || c == background {
				continue
			}
			for _, desc := range l.dict.DataFromColour(c) {
				tx := x - desc.WidthLeft
				if tx < 0 {
					tx = 0
				}
				candidate := tile.Tile{X: tx, Y: y, Width: desc.Width(), Height: desc.Height()}
				if tile.CountPixels(candidate, c, buf) == desc.Amount {
					return desc, true
				}
			}
		}
	}
	return keydict.Descriptor{}, false
}

// GetFirst returns the kind of the first recognized token found in a
// column-major scan of bounds, or LineBreak if bounds is empty of content.
func (l *Lexer) GetFirst(bounds tile.Tile, background pixelimg.Color, buf *pixelimg.Buffer) keydict.TokenKind {
	if desc, ok := l.firstDescriptor(bounds, background, buf); ok {
		return desc.Kind
	}
	return keydict.LineBreak
}

// LineHeight computes the height of the line starting at bounds: the
// height of the first recognized token on the row, widened by casting a
// ray along the middle of that token's bounding box and taking the tallest
// descriptor whose color is touched along the way. The ray stops early if
// it touches the dictionary's LineBreak color. Zero is returned when no
// content is found at all.
func (l *Lexer) LineHeight(bounds tile.Tile, background pixelimg.Color, buf *pixelimg.Buffer) int {
	first, ok := l.firstDescriptor(bounds, background, buf)
	maxHeight := 0
	if ok {
		maxHeight = first.Height()
	}

	middleRow := bounds.Y + maxHeight/2
	if buf.Height() > 0 && middleRow > buf.Height()-1 {
		middleRow = buf.Height() - 1
	}

	lineBreakColour := l.dict.DataFromToken(keydict.LineBreak).Colour

	maxX := bounds.X + bounds.Width
	if maxX > buf.Width() {
		maxX = buf.Width()
	}

	seen := make(map[pixelimg.Color]bool)
	for x := bounds.X; x < maxX; x++ {
		c, ok := buf.At(x, middleRow)
		if !ok || c == background || seen[c] {
			continue
		}
		seen[c] = true

		for _, desc := range l.dict.DataFromColour(c) {
			if h := desc.Height(); h > maxHeight {
				maxHeight = h
			}
		}
		if c == lineBreakColour {
			break
		}
	}

	return maxHeight
}

// frameSweep is the shared driver behind the top-level sweep and scope
// recursion, parameterized by the active rectangle and its background
// color so the two call sites don't duplicate the frame-stepping loop.
//
// subtractOneOnAdvance keeps an asymmetry between the two call sites: the
// top-level sweep subtracts one from the consumed line's width when
// advancing the frame cursor, so it looks again at the last column of the
// consumed line, while the scope-interior sweep advances by the full width.
func (l *Lexer) frameSweep(region tile.Tile, background pixelimg.Color, buf *pixelimg.Buffer, subtractOneOnAdvance bool) {
	frameW, frameH := l.dict.Largest()
	if frameW <= 0 {
		frameW = 1
	}
	if frameH <= 0 {
		frameH = 1
	}
	frame := tile.Tile{X: region.X, Y: region.Y, Width: frameW, Height: frameH}

	for frame.Y < region.Y+region.Height {
		frame.X = region.X
		for frame.X < region.X+region.Width {
		frameScan:
			for fx := 0; fx < frame.Width; fx++ {
				px := frame.X + fx
				if px >= buf.Width() {
					break
				}
				for fy := 0; fy < frame.Height; fy++ {
					py := frame.Y + fy
					if py >= buf.Height() {
						break
					}
					c, ok := buf.At(px, py)
					if !ok || c == background {
						continue
					}

					lineBounds := tile.Tile{
						X:      px,
						Y:      py,
						Width:  region.Width - fx,
						Height: region.Height - fy,
					}
					consumed := l.analyseLine(lineBounds, background, buf)

					advance := consumed.Width
					if subtractOneOnAdvance {
						advance--
					}
					frame.X += advance
					frame.Y += consumed.Height
					break frameScan
				}
			}
			frame.X += frame.Width
		}
		frame.Y += frame.Height
	}
}

// analyseScope pushes colour onto the background stack, sweeps the interior
// of tile as its own sub-image, and pops the stack back off, emitting
// ScopeStart/ScopeEnd around the recursion. A popped color that doesn't
// match colour indicates a lexer bug (the dictionary's exclusion or
// recursion bookkeeping let two scopes interleave), so it panics rather
// than silently continuing with a corrupted background stack.
func (l *Lexer) analyseScope(scope tile.Tile, colour pixelimg.Color, buf *pixelimg.Buffer) {
	l.backgroundStack = append(l.backgroundStack, colour)
	l.emit(Token(keydict.ScopeStart))

	l.frameSweep(scope, colour, buf, false)

	l.emit(Token(keydict.ScopeEnd))
	popped := l.backgroundStack[len(l.backgroundStack)-1]
	l.backgroundStack = l.backgroundStack[:len(l.backgroundStack)-1]
	if popped != colour {
		panic("lexer: scope background imbalance - popped color does not match the scope that was entered")
	}
}

// analyseLine is the core per-line sweep. bounds is refined to its actual
// height before anything else; a zero height means no content was found
// and the line is empty. It returns the tile actually consumed, which the
// frame sweep uses to advance its cursor; a line that opens a scope consumes
// everything down to the scope's bottom edge, so the scope is analysed once.
func (l *Lexer) analyseLine(bounds tile.Tile, background pixelimg.Color, buf *pixelimg.Buffer) tile.Tile {
	size := bounds
	size.Height = l.LineHeight(bounds, background, buf)
	if size.Height == 0 {
		return size
	}

	lineExclude := make(map[pixelimg.Color]tile.Tile)
	var scopeExclude *tile.Tile

	maxX := size.X + size.Width
	if maxX > buf.Width() {
		maxX = buf.Width()
	}
	maxY := size.Y + size.Height
	if maxY > buf.Height() {
		maxY = buf.Height()
	}

sweep:
	for x := size.X; x < maxX; x++ {
		for y := size.Y; y < maxY; y++ {
			c, ok := buf.At(x, y)
			if !ok || c == background || c == l.dict.Background {
				continue
			}

			point := tile.Tile{X: x, Y: y, Width: 0, Height: 0}
			if excl, found := lineExclude[c]; found && tile.Overlap(point, excl) {
				continue
			}
			if scopeExclude != nil && tile.Overlap(point, *scopeExclude) {
				continue
			}

			if kind, ok := l.lastKind(); ok && kind == keydict.Access {
				window := tile.Tile{X: x, Y: bounds.Y - 1, Width: identifierWindow, Height: identifierWindow}
				if desc, err := keydict.OutlineShape(buf, window, background, l.dict.Grid, l.dict.HasGrid(), keydict.Variable); err != nil {
					l.logger.Debug("lexer: identifier outline at (%d,%d) failed: %v", x, y, err)
				} else {
					l.dict.AddIdentifier(desc)
				}
			}

			if len(l.dict.DataFromColour(c)) == 0 {
				rect := tile.DetectSolidRectangle(x, y, buf)
				if rect.Width > scopeMinSize && rect.Height > scopeMinSize {
					l.analyseScope(rect, c, buf)
					scopeExclude = &rect
					if bottom := rect.Y + rect.Height - size.Y; bottom > size.Height {
						size.Height = bottom
					}
					continue
				}
			}

			for _, desc := range l.dict.DataFromColour(c) {
				ty := y
				if desc.HeightUp > ty {
					ty = desc.HeightUp
				}
				ty -= desc.HeightUp
				candidate := tile.Tile{X: x, Y: ty, Width: desc.Width(), Height: desc.Height()}

				if tile.CountPixels(candidate, c, buf) == desc.Amount {
					lex := Token(desc.Kind)
					if desc.Kind == keydict.Variable {
						lex = Identifier(l.dict.IndexOfIdentifier(desc))
					}
					l.emitAt(lex, candidate)

					if desc.Kind == keydict.LineBreak {
						size.Width = (x - size.X) + desc.WidthRight
						break sweep
					}
				}
				lineExclude[c] = candidate
			}
		}
	}

	if kind, ok := l.lastKind(); !ok || (kind != keydict.LineBreak && kind != keydict.ScopeEnd) {
		l.emit(Token(keydict.LineBreak))
	}

	return size
}
