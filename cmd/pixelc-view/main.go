// Command pixelc-view is a debug visualizer: it loads a key image and a
// source image, runs the same lexer the compiler does, and opens an SDL2
// window showing the source image with a translucent colored rectangle
// drawn over every matched token tile, labelled with the token's name.
//
// This is debugging tooling, not part of the compiler pipeline: it
// consumes the lexer's output and never feeds back into it.
package main

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"

	"pixelc/internal/settings"
	"pixelc/internal/xlog"
	"pixelc/keydict"
	"pixelc/lexer"
	"pixelc/pixelimg"
	"pixelc/tile"
)

const fontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf"

var log = xlog.GetLogger()

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: pixelc-view <key_image> <source_image>")
		os.Exit(2)
	}
	keyPath, sourcePath := os.Args[1], os.Args[2]

	cfg := settings.LoadSettings("pixelc.toml")
	log.SetLevel(cfg.Level())

	runtime.LockOSThread()

	if err := initSDL(); err != nil {
		log.Fatal("failed to initialize SDL: %v", err)
	}
	defer cleanupSDL()

	dict, err := buildDictionary(keyPath)
	if err != nil {
		log.Fatal("loading key image: %v", err)
	}

	sourceImg, sourceBuf, err := loadImage(sourcePath)
	if err != nil {
		log.Fatal("loading source image: %v", err)
	}

	lx := lexer.New(dict, log)
	lexemes := lx.Analyse(sourceBuf)
	positions := lx.Positions()
	log.Info("analysed %d lexemes from %s", len(lexemes), sourcePath)

	if err := runViewer(sourceImg, dict, cfg.Palette, lexemes, positions); err != nil {
		log.Fatal("viewer: %v", err)
	}
}

func initSDL() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl.Init: %w", err)
	}
	if err := ttf.Init(); err != nil {
		sdl.Quit()
		return fmt.Errorf("ttf.Init: %w", err)
	}
	return nil
}

func cleanupSDL() {
	ttf.Quit()
	sdl.Quit()
}

func buildDictionary(keyPath string) (*keydict.Dictionary, error) {
	_, keyBuf, err := loadImage(keyPath)
	if err != nil {
		return nil, err
	}
	return keydict.BuildFromKeyImage(keyBuf)
}

func loadImage(path string) (image.Image, *pixelimg.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, nil, err
	}
	return img, pixelimg.FromImage(img), nil
}

// imageToSurface converts a decoded image.Image into an SDL surface,
// expanding each 16-bit RGBA sample down to 8 bits per channel.
func imageToSurface(img image.Image) (*sdl.Surface, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	surface, err := sdl.CreateRGBSurfaceWithFormat(0, int32(w), int32(h), 32, uint32(sdl.PIXELFORMAT_ARGB8888))
	if err != nil {
		return nil, fmt.Errorf("creating surface: %w", err)
	}

	surface.Lock()
	pixels := surface.Pixels()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			offset := int32(y)*surface.Pitch + int32(x)*4
			if offset+3 < int32(len(pixels)) {
				pixels[offset+0] = uint8(b >> 8)
				pixels[offset+1] = uint8(g >> 8)
				pixels[offset+2] = uint8(r >> 8)
				pixels[offset+3] = uint8(a >> 8)
			}
		}
	}
	surface.Unlock()
	return surface, nil
}

// parseHexColor converts a "#RRGGBB" string to sdl.Color.
func parseHexColor(s string) (sdl.Color, error) {
	var c sdl.Color
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid hex color: %s", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return c, fmt.Errorf("invalid hex color %s: %w", s, err)
	}
	return sdl.Color{R: r, G: g, B: b, A: 255}, nil
}

func paletteColor(p settings.Palette, kind keydict.TokenKind) string {
	switch kind {
	case keydict.Zero:
		return p.Zero
	case keydict.Increment:
		return p.Increment
	case keydict.Decrement:
		return p.Decrement
	case keydict.Access:
		return p.Access
	case keydict.Repeat:
		return p.Repeat
	case keydict.Quote:
		return p.Quote
	case keydict.LineBreak:
		return p.LineBreak
	default:
		return "#ffffff"
	}
}

// view holds the pan/zoom state and SDL resources for the event loop.
type view struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	font     *ttf.Font

	imgW, imgH int
	panX, panY int32
	zoom       float64

	palette   settings.Palette
	lexemes   []lexer.Lexeme
	positions []tile.Tile
}

func runViewer(img image.Image, dict *keydict.Dictionary, palette settings.Palette, lexemes []lexer.Lexeme, positions []tile.Tile) error {
	surface, err := imageToSurface(img)
	if err != nil {
		return err
	}
	defer surface.Free()

	window, err := sdl.CreateWindow("pixelc-view", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		1024, 768, sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer renderer.Destroy()
	renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return fmt.Errorf("creating texture: %w", err)
	}
	defer texture.Destroy()

	font, err := ttf.OpenFont(fontPath, 14)
	if err != nil {
		log.Warn("could not open font %s: %v (labels disabled)", fontPath, err)
		font = nil
	}
	if font != nil {
		defer font.Close()
	}

	v := &view{
		window: window, renderer: renderer, texture: texture, font: font,
		imgW: img.Bounds().Dx(), imgH: img.Bounds().Dy(),
		zoom: 1.0, palette: palette, lexemes: lexemes, positions: positions,
	}

	for {
		quit, err := v.handleEvents()
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		v.draw()
		sdl.Delay(16)
	}
}

func (v *view) handleEvents() (quit bool, err error) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true, nil
		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			switch e.Keysym.Sym {
			case sdl.K_q, sdl.K_ESCAPE:
				return true, nil
			case sdl.K_LEFT:
				v.panX -= 20
			case sdl.K_RIGHT:
				v.panX += 20
			case sdl.K_UP:
				v.panY -= 20
			case sdl.K_DOWN:
				v.panY += 20
			case sdl.K_EQUALS, sdl.K_KP_PLUS:
				v.zoom *= 1.1
			case sdl.K_MINUS, sdl.K_KP_MINUS:
				v.zoom /= 1.1
				if v.zoom < 0.1 {
					v.zoom = 0.1
				}
			}
		}
	}
	return false, nil
}

func (v *view) draw() {
	v.renderer.SetDrawColor(20, 20, 24, 255)
	v.renderer.Clear()

	dst := sdl.Rect{
		X: -v.panX,
		Y: -v.panY,
		W: int32(float64(v.imgW) * v.zoom),
		H: int32(float64(v.imgH) * v.zoom),
	}
	v.renderer.Copy(v.texture, nil, &dst)

	for i, lex := range v.lexemes {
		if i >= len(v.positions) {
			break
		}
		t := v.positions[i]
		if t.Width == 0 && t.Height == 0 {
			continue
		}
		rect := sdl.Rect{
			X: int32(float64(t.X)*v.zoom) - v.panX,
			Y: int32(float64(t.Y)*v.zoom) - v.panY,
			W: int32(float64(t.Width) * v.zoom),
			H: int32(float64(t.Height) * v.zoom),
		}
		col, err := parseHexColor(paletteColor(v.palette, lex.Kind))
		if err != nil {
			continue
		}
		v.renderer.SetDrawColor(col.R, col.G, col.B, 90)
		v.renderer.FillRect(&rect)
		v.renderer.SetDrawColor(col.R, col.G, col.B, 220)
		v.renderer.DrawRect(&rect)

		if v.font != nil {
			v.drawLabel(lex.String(), rect.X, rect.Y-16, col)
		}
	}

	v.renderer.Present()
}

func (v *view) drawLabel(text string, x, y int32, col sdl.Color) {
	surface, err := v.font.RenderUTF8Blended(text, col)
	if err != nil {
		return
	}
	defer surface.Free()

	texture, err := v.renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return
	}
	defer texture.Destroy()

	rect := sdl.Rect{X: x, Y: y, W: surface.W, H: surface.H}
	v.renderer.Copy(texture, nil, &rect)
}
