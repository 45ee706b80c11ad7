package imagefile

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"

	// registers the BMP decoder with image.Decode
	_ "golang.org/x/image/bmp"
)

var fs = afero.NewOsFs()

// RasterExtensions lists the extensions accepted for background and still
// inputs, lower case with the leading dot.
var RasterExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// SnapshotExtensions lists the extensions a frame can be saved as.
var SnapshotExtensions = []string{".png", ".jpg", ".jpeg"}

const DefaultSnapshotExtension = ".png"

const jpegQuality = 95

var ErrUnsupportedFormat = xerror.New("unsupported image format")

func IsRaster(name string) bool {
	return hasExtension(name, RasterExtensions)
}

func hasExtension(name string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// Decode reads and decodes the image at path into a frame.
func Decode(path string) (videoframe.Frame, error) {
	f, err := fs.Open(path)
	if err != nil {
		return videoframe.Frame{}, xerror.Errorf("unable to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return videoframe.Frame{}, xerror.Errorf("unable to decode image %s: %w", path, err)
	}
	return videoframe.FromImage(img), nil
}

// ResolveSnapshotPath appends the default extension to a path without one.
func ResolveSnapshotPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + DefaultSnapshotExtension
	}
	return path
}

// Encode writes frame to path as PNG or JPEG depending on the extension.
func Encode(path string, frame videoframe.Frame) error {
	if !hasExtension(path, SnapshotExtensions) {
		return xerror.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, os.ModeDir|os.ModePerm); err != nil {
			return xerror.Errorf("unable to create directory %s: %w", dir, err)
		}
	}

	f, err := fs.Create(path)
	if err != nil {
		return xerror.Errorf("unable to create %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, frame.Image())
	default:
		err = jpeg.Encode(f, frame.Image(), &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		f.Close()
		return xerror.Errorf("unable to encode %s: %w", path, err)
	}
	return f.Close()
}

// ReadDir lists the directory entries names sorted by name.
func ReadDir(dir string) ([]os.FileInfo, error) {
	return afero.ReadDir(fs, dir)
}
