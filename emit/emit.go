/*
Package emit writes rendered frames as a C character array.

Three formats are supported. The s4c data file starts with the file format
version followed by the array definition, the C header holds only an extern
declaration of the array, and the C implementation includes the header and
then defines the array.

Every dimension of the declared array is one larger than the content, the
extra cell is the terminator expected by the s4c animation library.
*/
package emit

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/s4c/frame"
)

// DefaultVersion is the s4c file format version written by default.
const DefaultVersion = "0.2.2"

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("emit: unknown mode")

// Mode selects the output format.
type Mode int

const (
	// VersionedData is the s4c data file format
	VersionedData Mode = iota
	// Header is a C header declaring the array
	Header
	// Implementation is a C source file defining the array
	Implementation
)

var modeNames = [...]string{
	VersionedData:  "s4c-file",
	Header:         "C-header",
	Implementation: "C-impl",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode returns the Mode named s, which is one of "s4c-file", "C-header"
// or "C-impl".
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if s == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// TargetName derives the C identifier from the base name of a file, less
// any extension.
func TargetName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if ext := filepath.Ext(base); ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return Identifier(base)
}

// Identifier replaces every character of s that cannot appear in a C
// identifier with '_'.
func Identifier(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// MacroName returns the include guard prefix for name.
func MacroName(name string) string {
	return strings.ToUpper(name) + "_S4C_H_"
}

// Escape makes s safe to use inside a C string literal. '?' is escaped to
// avoid trigraphs.
func Escape(s string) string {
	if !strings.ContainsAny(s, "?\\\"") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '?', '\\', '"':
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Descriptor describes the array being written.
type Descriptor struct {
	Mode    Mode
	Name    string
	Version string
	Frames  int
	Height  int
	Width   int
}

// Dimensions returns the declared size of the array.
func (d Descriptor) Dimensions() (int, int, int) {
	return d.Frames + 1, d.Height + 1, d.Width + 1
}

func (d Descriptor) declaration() string {
	f, h, w := d.Dimensions()
	return fmt.Sprintf("char %s[%d][%d][%d]", d.Name, f, h, w)
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) printf(format string, a ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

func (e *encoder) header(d Descriptor) {
	macro := MacroName(d.Name)
	e.printf("#ifndef %s\n", macro)
	e.printf("#define %s\n", macro)
	e.printf("#define %sVERSION \"%s\"\n", macro, d.Version)
	e.printf("\n")
	e.printf("/**\n")
	e.printf(" * Declares animation matrix vector for %s.\n", d.Name)
	e.printf(" */\n")
	e.printf("extern %s;\n", d.declaration())
	e.printf("\n#endif\n")
}

func (e *encoder) body(d Descriptor, frames []*frame.Frame) {
	e.printf("%s = {\n\n", d.declaration())
	for i, f := range frames {
		e.printf("\t//Sprite %d, index %d\n", i+1, i)
		e.printf("\t{\n")
		for _, row := range f.Rows {
			e.printf("\t\t\"%s\",\n", Escape(row))
		}
		e.printf("\t},\n\n")
	}
	e.printf("};\n")
}

// Encode writes frames to w in the format selected by d.Mode. Every frame is
// checked against d before anything is written.
func Encode(w io.Writer, d Descriptor, frames []*frame.Frame) error {
	if len(frames) != d.Frames {
		return fmt.Errorf("%w: %d frames, expected %d", frame.ErrMalformed, len(frames), d.Frames)
	}
	for _, f := range frames {
		if err := f.Validate(d.Width, d.Height); err != nil {
			return err
		}
	}

	e := encoder{w: w}

	switch d.Mode {
	case VersionedData:
		e.printf("%s\n", d.Version)
	case Header:
		e.header(d)
		return e.err
	case Implementation:
		e.printf("#include \"%s.h\"\n\n", d.Name)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownMode, d.Mode)
	}

	e.body(d, frames)

	return e.err
}
