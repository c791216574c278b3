// Package frame renders a quantized sprite as rows of characters.
package frame

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/bodgit/s4c/charmap"
	"github.com/bodgit/s4c/palette"
)

// ErrMalformed is returned when a frame does not match the expected size.
var ErrMalformed = errors.New("frame: malformed frame")

// Frame is one rendered sprite. Every row holds one character per pixel.
type Frame struct {
	// Index is the 1-based frame number
	Index int
	Rows  []string
}

func (f *Frame) Width() int {
	if len(f.Rows) == 0 {
		return 0
	}
	return len(f.Rows[0])
}

func (f *Frame) Height() int {
	return len(f.Rows)
}

// Validate checks f is exactly width by height characters.
func (f *Frame) Validate(width, height int) error {
	if len(f.Rows) != height {
		return fmt.Errorf("%w: frame %d has %d rows, expected %d", ErrMalformed, f.Index, len(f.Rows), height)
	}
	for y, row := range f.Rows {
		if len(row) != width {
			return fmt.Errorf("%w: frame %d row %d is %d wide, expected %d", ErrMalformed, f.Index, y, len(row), width)
		}
	}
	return nil
}

// Render converts every pixel of m to its character in cm, in row-major
// order. New colors are added to cm as they are encountered.
func Render(index int, m *image.Paletted, cm *charmap.Map) (*Frame, error) {
	b := m.Bounds()
	t := palette.TableOf(m.Palette)

	f := &Frame{
		Index: index,
		Rows:  make([]string, 0, b.Dy()),
	}

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sb.Reset()
		sb.Grow(b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			i := int(m.ColorIndexAt(x, y))
			if i >= len(t) {
				return nil, fmt.Errorf("%w: frame %d has palette index %d out of range", ErrMalformed, index, i)
			}
			ch, err := cm.Resolve(t[i])
			if err != nil {
				return nil, err
			}
			sb.WriteByte(ch)
		}
		f.Rows = append(f.Rows, sb.String())
	}

	return f, nil
}
