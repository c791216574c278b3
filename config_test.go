package s4c

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/bodgit/s4c/charmap"
	"github.com/bodgit/s4c/emit"
	"github.com/bodgit/s4c/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultConfigFile))
	require.Nil(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	opt, err := cfg.Options()
	require.Nil(t, err)
	assert.Equal(t, Options{
		Mode:     emit.VersionedData,
		Version:  emit.DefaultVersion,
		Scope:    SheetScope,
		Alphabet: charmap.DefaultAlphabet,
	}, opt)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	pal := filepath.Join(dir, "mono.gpl")
	require.Nil(t, ioutil.WriteFile(pal, []byte("GIMP Palette\n0 0 0 black\n255 255 255 white\n"), 0644))

	file := filepath.Join(dir, DefaultConfigFile)
	require.Nil(t, ioutil.WriteFile(file, []byte(`
[sheet]
sprite_width = 16
sprite_height = 8
separator = 1
start_x = 1
start_y = 2

[output]
mode = "C-impl"
scope = "sprite"
max_colors = 16
palette = "`+filepath.ToSlash(pal)+`"

[cache]
db = "cache.db"
`), 0644))

	cfg, err := LoadConfig(file)
	require.Nil(t, err)
	assert.Equal(t, SheetOptions{SpriteWidth: 16, SpriteHeight: 8, Separator: 1, StartX: 1, StartY: 2}, cfg.SheetOptions())
	assert.Equal(t, "cache.db", cfg.Cache.DB)

	opt, err := cfg.Options()
	require.Nil(t, err)
	assert.Equal(t, emit.Implementation, opt.Mode)
	assert.Equal(t, SpriteScope, opt.Scope)
	assert.Equal(t, 16, opt.MaxColors)
	assert.Equal(t, emit.DefaultVersion, opt.Version)
	require.NotNil(t, opt.Palette)
	assert.Len(t, opt.Palette.Colors, 2)
}

func TestLoadConfigInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.Nil(t, ioutil.WriteFile(file, []byte("[sheet\n"), 0644))

	_, err := LoadConfig(file)
	assert.NotNil(t, err)
}

func TestConfigOptionsInvalid(t *testing.T) {
	tables := []struct {
		modify func(*Config)
		err    error
	}{
		{func(c *Config) { c.Output.Mode = "cfile" }, emit.ErrUnknownMode},
		{func(c *Config) { c.Output.Scope = "frame" }, ErrUnknownScope},
		{func(c *Config) { c.Output.MaxColors = -1 }, palette.ErrInvalidColors},
		{func(c *Config) { c.Output.MaxColors = 257 }, palette.ErrInvalidColors},
	}

	for _, table := range tables {
		cfg := DefaultConfig()
		table.modify(cfg)
		_, err := cfg.Options()
		assert.ErrorIs(t, err, table.err)
	}
}
