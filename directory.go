package s4c

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/bodgit/s4c/emit"
	"github.com/bodgit/s4c/frame"
	"github.com/bodgit/s4c/palette"
)

var frameNumber = regexp.MustCompile(`\d+`)

type numberedFile struct {
	name   string
	number int
}

// ListFrames returns the PNG files in dir ordered by the first number in
// each filename, so "image2.png" sorts before "image10.png".
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []numberedFile
	for _, entry := range entries {
		// Ignore any hidden files and anything that isn't a normal file
		if entry.Name()[0] == '.' || !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".png" {
			continue
		}

		digits := frameNumber.FindString(entry.Name())
		if digits == "" {
			return nil, fmt.Errorf("%w: %s", ErrNoFrameNumber, entry.Name())
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoFrameNumber, entry.Name(), err)
		}

		files = append(files, numberedFile{entry.Name(), n})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].number != files[j].number {
			return files[i].number < files[j].number
		}
		return files[i].name < files[j].name
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(dir, f.name)
	}

	return paths, nil
}

// ConvertDirectory converts every PNG in dir, one frame per file, and
// writes them to w. Each file is quantized on its own but all of them share
// one character map. The frame size is taken from the first file and every
// other file must match it.
func (s *S4C) ConvertDirectory(w io.Writer, dir string, opt Options) error {
	opt = opt.withDefaults()

	cm, err := opt.charMap()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	files, err := ListFrames(abs)
	if err != nil {
		return err
	}

	var width, height int
	frames := make([]*frame.Frame, 0, len(files))
	for i, file := range files {
		m, err := decodeFile(file)
		if err != nil {
			return err
		}
		if i == 0 {
			width, height = m.Bounds().Dx(), m.Bounds().Dy()
		}

		pm, err := palette.Quantize(m, opt.MaxColors)
		if err != nil {
			return err
		}

		f, err := frame.Render(i+1, pm, cm)
		if err != nil {
			return err
		}
		if err := f.Validate(width, height); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		frames = append(frames, f)
	}

	s.logger.Printf("Rendered %d frames from \"%s\" using %d colors\n", len(frames), dir, cm.Len())

	return encode(w, emit.Descriptor{
		Mode:    opt.Mode,
		Name:    emit.Identifier(filepath.Base(abs)),
		Version: opt.Version,
		Frames:  len(frames),
		Height:  height,
		Width:   width,
	}, frames)
}
