/*
Package grid computes the positions of the sprites within a spritesheet.

A sheet is described by the size of each sprite, the thickness of the
separator between adjacent sprites and the coordinates of the top-left corner
of the first sprite. Sheets with no edge separator use a start of (0, 0).
*/
package grid

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidGeometry is returned when the sprite stride is not positive.
var ErrInvalidGeometry = errors.New("grid: invalid geometry")

// Spec describes the layout of a spritesheet.
type Spec struct {
	SheetWidth   int
	SheetHeight  int
	SpriteWidth  int
	SpriteHeight int
	Separator    int
	StartX       int
	StartY       int
}

// ForImage returns a Spec for a sheet with the bounds b.
func ForImage(b image.Rectangle, spriteWidth, spriteHeight, separator, startX, startY int) Spec {
	return Spec{
		SheetWidth:   b.Dx(),
		SheetHeight:  b.Dy(),
		SpriteWidth:  spriteWidth,
		SpriteHeight: spriteHeight,
		Separator:    separator,
		StartX:       startX,
		StartY:       startY,
	}
}

// Validate checks that s describes a usable grid.
func (s Spec) Validate() error {
	switch {
	case s.SpriteWidth <= 0 || s.SpriteHeight <= 0:
		return fmt.Errorf("%w: sprite size %dx%d", ErrInvalidGeometry, s.SpriteWidth, s.SpriteHeight)
	case s.SpriteWidth+s.Separator <= 0 || s.SpriteHeight+s.Separator <= 0:
		return fmt.Errorf("%w: non-positive stride", ErrInvalidGeometry)
	case s.Separator < 0 || s.StartX < 0 || s.StartY < 0 || s.SheetWidth < 0 || s.SheetHeight < 0:
		return fmt.Errorf("%w: negative dimension", ErrInvalidGeometry)
	}
	return nil
}

func count(size, start, separator, sprite int) int {
	n := (size - start + separator) / (sprite + separator)
	if n < 0 {
		return 0
	}
	return n
}

func (s Spec) SpritesPerRow() int {
	return count(s.SheetWidth, s.StartX, s.Separator, s.SpriteWidth)
}

func (s Spec) SpritesPerColumn() int {
	return count(s.SheetHeight, s.StartY, s.Separator, s.SpriteHeight)
}

// Region is the area of a single sprite within the sheet.
type Region struct {
	// Index is the 1-based frame number
	Index int
	image.Rectangle
}

// Resolve returns the sprite regions of s in frame order.
//
// The outer loop runs SpritesPerRow times and advances the Y coordinate, the
// inner loop runs SpritesPerColumn times and advances the X coordinate. This
// matches the frame numbering of existing s4c files so it must not be
// "fixed" even though non-square sheets can produce regions that extend past
// the sheet edge.
func Resolve(s Spec) ([]Region, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	rows, columns := s.SpritesPerRow(), s.SpritesPerColumn()
	regions := make([]Region, 0, rows*columns)

	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			x := s.StartX + c*(s.SpriteWidth+s.Separator)
			y := s.StartY + r*(s.SpriteHeight+s.Separator)
			regions = append(regions, Region{
				Index:     len(regions) + 1,
				Rectangle: image.Rect(x, y, x+s.SpriteWidth, y+s.SpriteHeight),
			})
		}
	}

	return regions, nil
}
