// Command pixelc is the compiler front-end entry point: it decodes a key
// image and a source image, inducing or loading a cached token dictionary,
// sweeps the source into a lexeme stream, parses that stream into a
// Program, and writes a textual dump of the Program to the given output
// path as the hand-off point for code generation.
package main

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"pixelc/internal/settings"
	"pixelc/internal/xlog"
	"pixelc/keydict"
	"pixelc/lexer"
	"pixelc/parser"
	"pixelc/pixelimg"
)

const (
	exitOK = iota
	exitFatal
	exitUsage
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: pixelc <key_image> <source_image> <output_binary>")
		return exitUsage
	}
	keyPath, sourcePath, outputPath := args[0], args[1], args[2]

	cfg := settings.LoadSettings("pixelc.toml")
	log := xlog.GetLogger()
	log.SetLevel(cfg.Level())

	dict, err := loadDictionary(keyPath, cfg, log)
	if err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	sourceBuf, err := decodeImage(sourcePath)
	if err != nil {
		log.Error("reading source image: %v", err)
		return exitFatal
	}

	lx := lexer.New(dict, log)
	lexemes := lx.Analyse(sourceBuf)

	program, err := parser.Parse(lexemes)
	if err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	if err := writeProgram(outputPath, program); err != nil {
		log.Error("writing output: %v", err)
		return exitFatal
	}

	log.Info("lexemes=%d statements=%d", len(lexemes), len(program.Statements))
	return exitOK
}

// loadDictionary tries the configured cache first, keyed on the key
// image's checksum, and falls back to inducing a fresh dictionary from the
// key image on any cache miss, rebuilding the cache file afterward.
func loadDictionary(keyPath string, cfg settings.Settings, log *xlog.Logger) (*keydict.Dictionary, error) {
	checksum, err := keydict.Checksum(keyPath)
	if err != nil {
		return nil, fmt.Errorf("checksumming key image: %w", err)
	}

	if cached, dict, ok := keydict.ReadCache(cfg.CachePath); ok && cached == checksum {
		log.Info("loaded dictionary from cache %s", cfg.CachePath)
		return dict, nil
	}

	keyBuf, err := decodeImage(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading key image: %w", err)
	}

	dict, err := keydict.BuildFromKeyImage(keyBuf)
	if err != nil {
		return nil, fmt.Errorf("inducing dictionary: %w", err)
	}

	if dir := filepath.Dir(cfg.CachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("could not create cache directory %s: %v", dir, err)
		}
	}
	if err := keydict.WriteCache(dict, checksum, cfg.CachePath); err != nil {
		log.Warn("could not write dictionary cache: %v", err)
	}

	return dict, nil
}

func decodeImage(path string) (*pixelimg.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return pixelimg.FromImage(img), nil
}

// writeProgram dumps program as an indented textual tree: the intended
// hand-off shape for whatever downstream codegen consumes it, since actual
// code generation is out of scope.
func writeProgram(path string, program *parser.Program) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return parser.Dump(f, program)
}
