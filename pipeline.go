package s4c

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	xdraw "golang.org/x/image/draw"
)

func (s *S4C) findImages(ctx context.Context, dir string) (<-chan string, <-chan error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, entry := range entries {
			// Ignore any hidden files, otherwise we end up fighting with things like Spotlight, etc.
			if entry.Name()[0] == '.' {
				continue
			}

			// Ignore anything that isn't a normal PNG file
			if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != ".png" {
				continue
			}

			select {
			case out <- filepath.Join(dir, entry.Name()):
			case <-ctx.Done():
				errc <- errors.New("scan cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

// Bounds of the pixels that aren't fully transparent, or all of m if there
// are none
func opaqueBounds(m image.Image) image.Rectangle {
	b := m.Bounds()
	r := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a != 0 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	if r.Empty() {
		return b
	}
	return r
}

func resizeImage(file string, width, height int) error {
	m, err := decodeFile(file)
	if err != nil {
		return err
	}

	// Flatten onto black, matching what conversion does with transparency
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), m, opaqueBounds(m), xdraw.Over, nil)

	return writePNG(file, dst)
}

func (s *S4C) resizeWorker(ctx context.Context, in <-chan string, width, height int) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := resizeImage(file, width, height); err != nil {
				errc <- err
				return
			}
			s.logger.Printf("Resized \"%s\" to %dx%d\n", file, width, height)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Resize crops every PNG in dir to the bounding box of its non-transparent
// pixels and scales it to width by height, overwriting the original.
func (s *S4C) Resize(ctx context.Context, dir string, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("s4c: invalid resize dimensions")
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := s.findImages(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < runtime.NumCPU(); i++ {
		errc, err := s.resizeWorker(ctx, files, width, height)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
