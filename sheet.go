package s4c

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/bodgit/s4c/charmap"
	"github.com/bodgit/s4c/emit"
	"github.com/bodgit/s4c/frame"
	"github.com/bodgit/s4c/grid"
	"github.com/bodgit/s4c/palette"
)

// SheetOptions describe the layout of a spritesheet.
type SheetOptions struct {
	SpriteWidth  int
	SpriteHeight int
	// Separator is the thickness in pixels between adjacent sprites
	Separator int
	// StartX and StartY locate the top-left corner of the first sprite
	StartX int
	StartY int
}

func (o SheetOptions) spec(b image.Rectangle) grid.Spec {
	return grid.ForImage(b, o.SpriteWidth, o.SpriteHeight, o.Separator, o.StartX, o.StartY)
}

func renderSheet(m image.Image, sheet SheetOptions, opt Options, cm *charmap.Map) ([]*frame.Frame, error) {
	b := m.Bounds()

	regions, err := grid.Resolve(sheet.spec(b))
	if err != nil {
		return nil, err
	}

	var pm *image.Paletted
	if opt.Scope == SheetScope {
		if pm, err = palette.Quantize(m, opt.MaxColors); err != nil {
			return nil, err
		}
	}

	frames := make([]*frame.Frame, 0, len(regions))
	for _, r := range regions {
		rect := r.Rectangle.Add(b.Min)

		var sprite *image.Paletted
		if pm != nil {
			sprite = palette.Crop(pm, rect)
		} else if sprite, err = palette.Quantize(palette.CropImage(m, rect), opt.MaxColors); err != nil {
			return nil, err
		}

		f, err := frame.Render(r.Index, sprite, cm)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frames, nil
}

// ConvertSheet splits the spritesheet file into sprites and writes them to
// w. Frames are numbered across each row of the grid, then down.
func (s *S4C) ConvertSheet(w io.Writer, file string, sheet SheetOptions, opt Options) error {
	opt = opt.withDefaults()

	// Catch bad geometry before doing anything expensive
	if err := sheet.spec(image.Rectangle{}).Validate(); err != nil {
		return err
	}

	cm, err := opt.charMap()
	if err != nil {
		return err
	}

	b, err := ioutil.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	sha := fmt.Sprintf("%X", sha1.Sum(b))
	key := opt.key(sheet)

	var frames []*frame.Frame
	var ok bool
	if s.db != nil {
		if frames, ok, err = s.db.FindFrames(sha, key); err != nil {
			return err
		}
	}

	if ok {
		s.logger.Printf("Using cached frames for \"%s\", with SHA1 \"%s\"\n", file, sha)
	} else {
		m, err := decodeImage(file, bytes.NewReader(b))
		if err != nil {
			return err
		}

		if frames, err = renderSheet(m, sheet, opt, cm); err != nil {
			return err
		}
		s.logger.Printf("Rendered %d frames from \"%s\" using %d colors\n", len(frames), file, cm.Len())

		if s.db != nil {
			if err := s.db.AddFrames(sha, key, frames); err != nil {
				return err
			}
		}
	}

	return encode(w, emit.Descriptor{
		Mode:    opt.Mode,
		Name:    emit.TargetName(file),
		Version: opt.Version,
		Frames:  len(frames),
		Height:  sheet.SpriteHeight,
		Width:   sheet.SpriteWidth,
	}, frames)
}

// CutFilename returns the name Cut uses for the sprite with the given
// frame index.
func CutFilename(index int) string {
	return fmt.Sprintf("image%d.png", index)
}

// Cut splits the spritesheet file into sprites and writes each one as a PNG
// into dir, named so that ConvertDirectory reads them back in the same
// order.
func (s *S4C) Cut(file, dir string, sheet SheetOptions) error {
	m, err := decodeFile(file)
	if err != nil {
		return err
	}
	b := m.Bounds()

	regions, err := grid.Resolve(sheet.spec(b))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, r := range regions {
		sprite := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(sprite, sprite.Bounds(), m, r.Min.Add(b.Min), draw.Src)

		if err := writePNG(filepath.Join(dir, CutFilename(r.Index)), sprite); err != nil {
			return err
		}
	}

	s.logger.Printf("Cut %d sprites from \"%s\" into \"%s\"\n", len(regions), file, dir)

	return nil
}

func writePNG(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := png.Encode(f, m); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
