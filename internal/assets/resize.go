package assets

import (
	"image"
	"io"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Mode selects the resize policy for an uploaded image.
type Mode int

const (
	ModeNone Mode = iota
	// ModeLogo fits within 100x100.
	ModeLogo
	// ModeBackground targets 2560x1440 at near maximum quality.
	ModeBackground
	// ModeProductImage fits within 800x600.
	ModeProductImage
)

const (
	moderateQuality = 85
	highQuality     = 95

	// maxPixels bounds the decoded size of an upload.
	maxPixels = 50_000_000
)

// ErrImageTooLarge is returned for images above maxPixels.
var ErrImageTooLarge = errors.New("image too large")

type bounds struct{ w, h int }

var modeBounds = map[Mode]bounds{
	ModeLogo:         {100, 100},
	ModeBackground:   {2560, 1440},
	ModeProductImage: {800, 600},
}

// Resize rewrites the image at path in place according to mode. Images
// are only ever scaled down and keep their aspect ratio.
func Resize(path string, mode Mode) error {
	limit, ok := modeBounds[mode]
	if !ok {
		return nil
	}
	src, err := decode(path)
	if err != nil {
		return err
	}

	quality := moderateQuality
	if mode == ModeBackground {
		quality = highQuality
	}

	dst := src
	if w, h, scaled := fit(src.Bounds().Dx(), src.Bounds().Dy(), limit); scaled {
		dst = scale(src, w, h)
		if mode == ModeBackground {
			dst = flatten(dst)
		}
	}
	return encode(path, dst, quality)
}

// fit returns the largest size within limit that keeps the w:h ratio.
// scaled is false when the source already fits.
func fit(w, h int, limit bounds) (int, int, bool) {
	if w <= limit.w && h <= limit.h {
		return w, h, false
	}
	var nw, nh int
	if w*limit.h > h*limit.w {
		nw, nh = limit.w, h*limit.w/w
	} else {
		nw, nh = w*limit.h/h, limit.h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh, true
}

func scale(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// flatten drops the alpha channel by compositing over black.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)
	return dst
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, errors.Wrapf(ErrImageTooLarge, "%s is %dx%d", filepath.Base(path), cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind image")
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", filepath.Base(path))
	}
	return img, nil
}

// encode writes img next to path and renames it over path, so a failed
// encode leaves the original file untouched.
func encode(path string, img image.Image, quality int) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".resize-*"+filepath.Ext(path))
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return errors.Wrap(err, "chmod image")
	}
	if err := writeImage(f, path, img, quality); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "replace image")
	}
	return nil
}

func writeImage(f *os.File, path string, img image.Image, quality int) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		err = enc.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}
	return f.Close()
}
