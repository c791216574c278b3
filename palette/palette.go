/*
Package palette reduces images to an indexed palette of at most 256 colors.

Alpha is discarded; every color is treated as opaque RGB. Images with no more
distinct colors than requested keep their exact colors, anything else is
reduced with a median cut quantizer. Palettes are sorted by RGB value so the
same image always produces the same palette.
*/
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/ericpauley/go-quantize/quantize"
)

// MaxColors is the largest palette Quantize will produce.
const MaxColors = 256

// ErrInvalidColors is returned when the requested palette size is out of
// range.
var ErrInvalidColors = errors.New("palette: invalid number of colors")

// RGB is an opaque 8-bit per channel color. It implements color.Color.
type RGB struct {
	R, G, B uint8
}

// FromColor discards the alpha channel of c.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}

func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = 0xffff
	return
}

// Distance2 returns the squared Euclidean distance between c and o.
func (c RGB) Distance2(o RGB) int {
	dr := int(c.R) - int(o.R)
	dg := int(c.G) - int(o.G)
	db := int(c.B) - int(o.B)
	return dr*dr + dg*dg + db*db
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) less(o RGB) bool {
	if c.R != o.R {
		return c.R < o.R
	}
	if c.G != o.G {
		return c.G < o.G
	}
	return c.B < o.B
}

// Table maps a palette index to its color.
type Table []RGB

// TableOf returns the colors of p as a Table.
func TableOf(p color.Palette) Table {
	t := make(Table, len(p))
	for i, c := range p {
		t[i] = FromColor(c)
	}
	return t
}

// Return an opaque copy of m
func flatten(m image.Image) *image.NRGBA {
	b := m.Bounds()
	dup := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := FromColor(m.At(x, y))
			dup.SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, 0xff})
		}
	}
	return dup
}

// Distinct colors in first-seen order, giving up once there are more than
// limit of them
func uniqueColors(m *image.NRGBA, limit int) color.Palette {
	seen := make(map[RGB]struct{})
	p := make(color.Palette, 0, limit)
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := FromColor(m.NRGBAAt(x, y))
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			p = append(p, c)
			if len(p) > limit {
				return p
			}
		}
	}
	return p
}

func sortPalette(p color.Palette) {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].(RGB).less(p[j].(RGB))
	})
}

// Quantize returns m reduced to a palette of no more than maxColors colors.
// The returned image has the same bounds as m.
func Quantize(m image.Image, maxColors int) (*image.Paletted, error) {
	if maxColors < 1 || maxColors > MaxColors {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColors, maxColors)
	}

	flat := flatten(m)
	b := flat.Bounds()

	p := uniqueColors(flat, maxColors)
	if len(p) > maxColors {
		q := quantize.MedianCutQuantizer{}
		p = p[:0]
		for _, c := range q.Quantize(make(color.Palette, 0, maxColors), flat) {
			p = append(p, FromColor(c))
		}
	}
	sortPalette(p)

	pm := image.NewPaletted(b, p)
	if len(p) > 0 {
		draw.Draw(pm, b, flat, b.Min, draw.Src)
	}

	return pm, nil
}

// Crop returns the area r of m as a new image with its top-left corner at
// (0, 0). Pixels of r outside of m are set to palette index 0.
func Crop(m *image.Paletted, r image.Rectangle) *image.Paletted {
	dst := image.NewPaletted(image.Rect(0, 0, r.Dx(), r.Dy()), m.Palette)
	src := r.Intersect(m.Bounds())
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			dst.SetColorIndex(x-r.Min.X, y-r.Min.Y, m.ColorIndexAt(x, y))
		}
	}
	return dst
}

// CropImage returns the area r of m as a new opaque image with its top-left
// corner at (0, 0). Pixels of r outside of m are black.
func CropImage(m image.Image, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	src := r.Intersect(m.Bounds())
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			c := FromColor(m.At(x, y))
			dst.SetNRGBA(x-r.Min.X, y-r.Min.Y, color.NRGBA{c.R, c.G, c.B, 0xff})
		}
	}
	return dst
}
