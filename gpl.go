package s4c

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bodgit/s4c/emit"
	"github.com/bodgit/s4c/gpl"
)

// LoadPalette reads a GIMP palette file.
func LoadPalette(file string) (*gpl.Palette, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := gpl.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	return p, nil
}

// ConvertPalette writes the GIMP palette file to w as a C header or
// implementation. The header includes the s4c animation header found below
// s4cPath.
func (s *S4C) ConvertPalette(w io.Writer, file, s4cPath string, opt Options) error {
	opt = opt.withDefaults()

	p, err := LoadPalette(file)
	if err != nil {
		return err
	}

	b := new(bytes.Buffer)
	if err := gpl.Encode(b, opt.Mode, emit.TargetName(file), opt.Version, s4cPath, p); err != nil {
		return err
	}

	s.logger.Printf("Converted %d colors from \"%s\"\n", len(p.Colors), file)

	_, err = b.WriteTo(w)
	return err
}
