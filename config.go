package s4c

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/bodgit/s4c/charmap"
	"github.com/bodgit/s4c/emit"
	"github.com/bodgit/s4c/palette"
)

// DefaultConfigFile is the configuration file read when none is given.
const DefaultConfigFile = "s4c.toml"

// SheetConfig holds the default spritesheet layout.
type SheetConfig struct {
	SpriteWidth  int `toml:"sprite_width"`
	SpriteHeight int `toml:"sprite_height"`
	Separator    int `toml:"separator"`
	StartX       int `toml:"start_x"`
	StartY       int `toml:"start_y"`
}

// OutputConfig holds the default conversion and output options.
type OutputConfig struct {
	Mode      string `toml:"mode"`
	Version   string `toml:"version"`
	Scope     string `toml:"scope"`
	Alphabet  string `toml:"alphabet"`
	MaxColors int    `toml:"max_colors"` // 0 fits the alphabet
	Palette   string `toml:"palette"`    // path to a .gpl file, optional
	S4CPath   string `toml:"s4c_path"`   // used by palette headers
}

// CacheConfig locates the conversion cache.
type CacheConfig struct {
	DB string `toml:"db"` // empty disables the cache
}

// Config is the contents of a configuration file.
type Config struct {
	Sheet  SheetConfig  `toml:"sheet"`
	Output OutputConfig `toml:"output"`
	Cache  CacheConfig  `toml:"cache"`
}

// DefaultConfig returns the configuration used when there is no file.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Mode:     emit.VersionedData.String(),
			Version:  emit.DefaultVersion,
			Scope:    SheetScope.String(),
			Alphabet: string(charmap.DefaultAlphabet),
			S4CPath:  ".",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SheetOptions returns the configured sheet layout.
func (c *Config) SheetOptions() SheetOptions {
	return SheetOptions{
		SpriteWidth:  c.Sheet.SpriteWidth,
		SpriteHeight: c.Sheet.SpriteHeight,
		Separator:    c.Sheet.Separator,
		StartX:       c.Sheet.StartX,
		StartY:       c.Sheet.StartY,
	}
}

// Options parses the configured output options, loading the palette file
// if one is set.
func (c *Config) Options() (Options, error) {
	mode, err := emit.ParseMode(c.Output.Mode)
	if err != nil {
		return Options{}, err
	}

	scope, err := ParseScope(c.Output.Scope)
	if err != nil {
		return Options{}, err
	}

	if c.Output.MaxColors < 0 || c.Output.MaxColors > palette.MaxColors {
		return Options{}, fmt.Errorf("%w: %d", palette.ErrInvalidColors, c.Output.MaxColors)
	}

	opt := Options{
		Mode:      mode,
		Version:   c.Output.Version,
		Scope:     scope,
		Alphabet:  charmap.Alphabet(c.Output.Alphabet),
		MaxColors: c.Output.MaxColors,
	}

	if c.Output.Palette != "" {
		if opt.Palette, err = LoadPalette(c.Output.Palette); err != nil {
			return Options{}, err
		}
	}

	return opt, nil
}
