// Package settings loads the TOML configuration shared by every cmd/
// binary: cache path, log level, output directory, and the debug
// visualizer's token-to-color palette.
package settings

import (
	"os"

	"github.com/BurntSushi/toml"

	"pixelc/internal/xlog"
)

// Palette maps a static token's name (Zero, Increment, Decrement, Access,
// Repeat, Quote, LineBreak) to a hex highlight color used by
// cmd/pixelc-view and cmd/pixelc-explore.
type Palette struct {
	Zero      string `toml:"zero"`
	Increment string `toml:"increment"`
	Decrement string `toml:"decrement"`
	Access    string `toml:"access"`
	Repeat    string `toml:"repeat"`
	Quote     string `toml:"quote"`
	LineBreak string `toml:"line_break"`
}

// Settings is the full configuration surface for the pixelc toolchain.
type Settings struct {
	CachePath string  `toml:"cache_path"`
	LogLevel  string  `toml:"log_level"`
	OutputDir string  `toml:"output_dir"`
	Palette   Palette `toml:"palette"`
}

// DefaultSettings returns sensible defaults, used both as a starting point
// before decoding a config file over them and as the fallback if no config
// file is present or it fails to decode.
func DefaultSettings() Settings {
	return Settings{
		CachePath: "out/key.log",
		LogLevel:  "info",
		OutputDir: "out",
		Palette: Palette{
			Zero:      "#cd3131",
			Increment: "#0dbc79",
			Decrement: "#f14c4c",
			Access:    "#2472c8",
			Repeat:    "#bc3fbc",
			Quote:     "#e5e510",
			LineBreak: "#e5e5e5",
		},
	}
}

// LoadSettings starts from DefaultSettings and decodes path over it if the
// file exists, falling back to the defaults on any stat or decode error.
func LoadSettings(path string) Settings {
	s := DefaultSettings()
	log := xlog.GetLogger()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info("no config file found at %s, using defaults", path)
		return s
	}

	if _, err := toml.DecodeFile(path, &s); err != nil {
		log.Warn("failed to decode config file %s: %v, using defaults", path, err)
		return DefaultSettings()
	}

	log.Info("loaded settings from %s", path)
	return s
}

// Level parses the configured LogLevel into an xlog.Level, defaulting to
// InfoLevel for an empty or unrecognized value.
func (s Settings) Level() xlog.Level {
	switch s.LogLevel {
	case "debug":
		return xlog.DebugLevel
	case "warn":
		return xlog.WarnLevel
	case "error":
		return xlog.ErrorLevel
	default:
		return xlog.InfoLevel
	}
}
