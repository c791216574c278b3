package palette

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = RGB{R: 0xff, G: 0x00, B: 0x00}
	blue = RGB{R: 0x00, G: 0x00, B: 0xff}
)

func checkerboard(w, h int, c1, c2 color.Color) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				m.Set(x, y, c1)
			} else {
				m.Set(x, y, c2)
			}
		}
	}
	return m
}

func gradient(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x ^ y), 0xff})
		}
	}
	return m
}

func TestRGB(t *testing.T) {
	assert.Equal(t, red, FromColor(color.RGBA{0xff, 0x00, 0x00, 0xff}))
	assert.Equal(t, RGB{}, FromColor(color.RGBA{}))
	assert.Equal(t, "#ff0000", red.String())
	assert.Equal(t, 2*0xff*0xff, red.Distance2(blue))
	assert.Equal(t, 0, red.Distance2(red))

	r, g, b, a := blue.RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff, 0xffff}, []uint32{r, g, b, a})
}

func TestQuantizeExact(t *testing.T) {
	m := checkerboard(4, 4, red, blue)

	pm, err := Quantize(m, MaxColors)
	require.Nil(t, err)
	assert.Equal(t, m.Bounds(), pm.Bounds())

	// Sorted by value, so blue comes first
	assert.Equal(t, Table{blue, red}, TableOf(pm.Palette))
	assert.Equal(t, uint8(1), pm.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), pm.ColorIndexAt(1, 0))
}

func TestQuantizeReduce(t *testing.T) {
	m := gradient(64, 64)

	pm, err := Quantize(m, 16)
	require.Nil(t, err)
	assert.LessOrEqual(t, len(pm.Palette), 16)
	assert.Greater(t, len(pm.Palette), 1)
}

func TestQuantizeDeterministic(t *testing.T) {
	m := gradient(32, 32)

	pm1, err := Quantize(m, 8)
	require.Nil(t, err)
	pm2, err := Quantize(m, 8)
	require.Nil(t, err)

	assert.Equal(t, TableOf(pm1.Palette), TableOf(pm2.Palette))
	assert.Equal(t, pm1.Pix, pm2.Pix)
}

func TestQuantizeTransparent(t *testing.T) {
	m := checkerboard(2, 2, color.NRGBA{0xff, 0x00, 0x00, 0x00}, color.NRGBA{})

	pm, err := Quantize(m, MaxColors)
	require.Nil(t, err)
	assert.Equal(t, Table{{}, red}, TableOf(pm.Palette))
}

func TestQuantizeInvalid(t *testing.T) {
	for _, n := range []int{0, -1, MaxColors + 1} {
		_, err := Quantize(image.NewNRGBA(image.Rect(0, 0, 1, 1)), n)
		assert.ErrorIs(t, err, ErrInvalidColors)
	}
}

func TestCrop(t *testing.T) {
	pm, err := Quantize(checkerboard(4, 4, red, blue), MaxColors)
	require.Nil(t, err)

	c := Crop(pm, image.Rect(1, 0, 3, 2))
	assert.Equal(t, image.Rect(0, 0, 2, 2), c.Bounds())
	assert.Equal(t, pm.ColorIndexAt(1, 0), c.ColorIndexAt(0, 0))
	assert.Equal(t, pm.ColorIndexAt(2, 1), c.ColorIndexAt(1, 1))

	// Partly outside of the source
	c = Crop(pm, image.Rect(3, 3, 5, 5))
	assert.Equal(t, pm.ColorIndexAt(3, 3), c.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), c.ColorIndexAt(1, 0))
	assert.Equal(t, uint8(0), c.ColorIndexAt(1, 1))
}

func TestCropImage(t *testing.T) {
	m := checkerboard(2, 2, red, blue)

	c := CropImage(m, image.Rect(1, 1, 3, 3))
	assert.Equal(t, image.Rect(0, 0, 2, 2), c.Bounds())
	assert.Equal(t, red, FromColor(c.At(0, 0)))
	assert.Equal(t, RGB{}, FromColor(c.At(1, 1)))
	assert.Equal(t, uint8(0xff), c.NRGBAAt(1, 1).A)
}
