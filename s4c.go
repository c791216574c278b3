/*
Package s4c is a library for converting spritesheets and directories of
sprites into character arrays for the s4c terminal animation library.

Each pixel is reduced to a single printable character chosen by color. The
result is written either as a versioned s4c data file, a C header, or a C
implementation.
*/
package s4c

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/bodgit/s4c/charmap"
	"github.com/bodgit/s4c/emit"
	"github.com/bodgit/s4c/frame"
	"github.com/bodgit/s4c/gpl"
	"github.com/bodgit/s4c/palette"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
)

var (
	// ErrUnreadableImage is returned when an image cannot be read or
	// decoded.
	ErrUnreadableImage = errors.New("s4c: unreadable image")

	// ErrNoFrameNumber is returned when a sprite filename has no number
	// to order it by.
	ErrNoFrameNumber = errors.New("s4c: no frame number in filename")

	// ErrUnknownScope is returned by ParseScope.
	ErrUnknownScope = errors.New("s4c: unknown quantization scope")
)

// Scope controls how much of a spritesheet is quantized at once.
type Scope int

const (
	// SheetScope quantizes the whole sheet once so every sprite shares
	// the same palette
	SheetScope Scope = iota
	// SpriteScope quantizes each sprite on its own
	SpriteScope
)

func (s Scope) String() string {
	switch s {
	case SheetScope:
		return "sheet"
	case SpriteScope:
		return "sprite"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// ParseScope returns the Scope named s, either "sheet" or "sprite".
func ParseScope(s string) (Scope, error) {
	switch s {
	case "sheet":
		return SheetScope, nil
	case "sprite":
		return SpriteScope, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// Options control conversion and output.
type Options struct {
	Mode    emit.Mode
	Version string
	Scope   Scope
	// Alphabet defaults to charmap.DefaultAlphabet
	Alphabet charmap.Alphabet
	// MaxColors defaults to palette.MaxColors or the length of the
	// alphabet, whichever is smaller
	MaxColors int
	// Palette, if set, fixes the colors and their characters; any other
	// color is matched to the nearest palette color
	Palette *gpl.Palette
}

func (o Options) withDefaults() Options {
	if o.Version == "" {
		o.Version = emit.DefaultVersion
	}
	if o.Alphabet == "" {
		o.Alphabet = charmap.DefaultAlphabet
	}
	if o.MaxColors == 0 {
		o.MaxColors = min(palette.MaxColors, len(o.Alphabet))
	}
	return o
}

// The character map shared by every frame of one conversion
func (o Options) charMap() (*charmap.Map, error) {
	if err := o.Alphabet.Validate(); err != nil {
		return nil, err
	}
	if o.Palette != nil {
		return o.Palette.CharMap(o.Alphabet)
	}
	return charmap.New(o.Alphabet), nil
}

// Identifies everything other than the source image that changes the
// rendered frames
func (o Options) key(sheet SheetOptions) string {
	var p string
	if o.Palette != nil {
		p = fmt.Sprintf("%X", sha1.Sum([]byte(fmt.Sprint(o.Palette.Table()))))
	}
	return fmt.Sprintf("%dx%d+%d@%d,%d;scope=%v;colors=%d;alphabet=%q;palette=%s",
		sheet.SpriteWidth, sheet.SpriteHeight, sheet.Separator, sheet.StartX, sheet.StartY,
		o.Scope, o.MaxColors, o.Alphabet, p)
}

// S4C converts images, optionally caching the results.
type S4C struct {
	db     *SheetDB
	logger *log.Logger
}

// New returns an S4C. If file is not empty, it is used as the path to a
// cache database.
func New(file string, logger *log.Logger) (*S4C, error) {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	s := &S4C{
		logger: logger,
	}

	if file != "" {
		db, err := NewSheetDB(file)
		if err != nil {
			return nil, err
		}
		s.db = db
	}

	return s, nil
}

func (s *S4C) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PurgeCache empties the cache database, if any.
func (s *S4C) PurgeCache() error {
	if s.db == nil {
		return nil
	}
	return s.db.Purge()
}

func decodeImage(file string, r io.Reader) (image.Image, error) {
	m, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, file, err)
	}
	return m, nil
}

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	defer f.Close()

	return decodeImage(file, f)
}

// Nothing is written to w unless the whole output encodes successfully
func encode(w io.Writer, d emit.Descriptor, frames []*frame.Frame) error {
	b := new(bytes.Buffer)
	if err := emit.Encode(b, d, frames); err != nil {
		return err
	}
	_, err := b.WriteTo(w)
	return err
}
