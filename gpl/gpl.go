/*
Package gpl implements reading GIMP palette files and writing them as an
array of S4C_Color for the s4c library.

A palette file looks like:

	GIMP Palette
	Name: my-palette
	Columns: 8
	#
	  0   0   0	black-1
	255 255 255	white-2

Only the part of each color name before the first '-' is kept.
*/
package gpl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bodgit/s4c/charmap"
	"github.com/bodgit/s4c/emit"
	"github.com/bodgit/s4c/palette"
)

const magic = "GIMP Palette"

// ErrBadPalette is returned when the palette file cannot be parsed.
var ErrBadPalette = errors.New("gpl: invalid palette")

// Color is a single named palette entry.
type Color struct {
	palette.RGB
	Name string
}

// Palette is an ordered list of named colors.
type Palette struct {
	Name   string
	Colors []Color
}

func parseColor(line string) (Color, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Color{}, fmt.Errorf("%w: short color line %q", ErrBadPalette, line)
	}

	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrBadPalette, line, err)
		}
		rgb[i] = uint8(v)
	}

	var name string
	if len(fields) > 3 {
		name = strings.ToUpper(strings.SplitN(fields[3], "-", 2)[0])
	}

	return Color{
		RGB:  palette.RGB{R: rgb[0], G: rgb[1], B: rgb[2]},
		Name: name,
	}, nil
}

// Decode reads a GIMP palette from r.
func Decode(r io.Reader) (*Palette, error) {
	s := bufio.NewScanner(r)

	if !s.Scan() {
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty file", ErrBadPalette)
	}
	if strings.TrimSpace(s.Text()) != magic {
		return nil, fmt.Errorf("%w: missing %q header", ErrBadPalette, magic)
	}

	p := new(Palette)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"), strings.HasPrefix(line, "Columns:"):
			continue
		case strings.HasPrefix(line, "Name:"):
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		default:
			c, err := parseColor(line)
			if err != nil {
				return nil, err
			}
			p.Colors = append(p.Colors, c)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Palette) Table() palette.Table {
	t := make(palette.Table, len(p.Colors))
	for i, c := range p.Colors {
		t[i] = c.RGB
	}
	return t
}

// CharMap returns a frozen character map assigning characters from a to the
// colors of p in file order.
func (p *Palette) CharMap(a charmap.Alphabet) (*charmap.Map, error) {
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("%w: no colors", ErrBadPalette)
	}
	m := charmap.New(a)
	if err := m.Seed(p.Table()); err != nil {
		return nil, err
	}
	m.Freeze()
	return m, nil
}

// Encode writes p to w as either a C header or C implementation of an
// S4C_Color array called name. The header includes animate.h from below
// s4cPath.
func Encode(w io.Writer, mode emit.Mode, name, version, s4cPath string, p *Palette) error {
	b := bufio.NewWriter(w)
	n := len(p.Colors)

	switch mode {
	case emit.Header:
		macro := emit.MacroName(name)
		fmt.Fprintf(b, "#ifndef %s\n", macro)
		fmt.Fprintf(b, "#define %s\n", macro)
		fmt.Fprintf(b, "#include \"%s/sprites4curses/s4c-animate/animate.h\"\n\n", s4cPath)
		fmt.Fprintf(b, "#define %sVERSION \"%s\"\n", macro, version)
		fmt.Fprintf(b, "#define %sTOTCOLORS %d\n", macro, n)
		fmt.Fprintf(b, "\n")
		fmt.Fprintf(b, "/**\n")
		fmt.Fprintf(b, " * Declares S4C_Color array for %s.\n", name)
		fmt.Fprintf(b, " */\n")
		fmt.Fprintf(b, "extern S4C_Color %s[%d];\n", name, n+1)
		fmt.Fprintf(b, "\n#endif\n")
	case emit.Implementation:
		fmt.Fprintf(b, "#include \"%s.h\"\n\n", name)
		fmt.Fprintf(b, "S4C_Color %s[%d] = {\n", name, n+1)
		for _, c := range p.Colors {
			fmt.Fprintf(b, "    { %d, %d, %d, \"%s\" },\n", c.R, c.G, c.B, emit.Escape(c.Name))
		}
		fmt.Fprintf(b, "};\n")
	default:
		return fmt.Errorf("%w: %v is not supported for palettes", emit.ErrUnknownMode, mode)
	}

	return b.Flush()
}
