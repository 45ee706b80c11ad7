package segment

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

var ErrUnavailable = xerror.New("segmenter unavailable")

// Segmenter produces a foreground confidence mask matching the frame it
// is given. Implementations are deterministic for a fixed configuration.
type Segmenter interface {
	Segment(videoframe.Frame) (videoframe.Mask, error)
	Close() error
}

const (
	NameGeneral   = "general"
	NameLandscape = "landscape"
	NameChroma    = "chroma"
	NameFixed     = "fixed"
)

// Resolve maps a configured segmenter name onto an implementation.
func Resolve(name, modelPath string) (Segmenter, error) {
	switch strings.ToLower(name) {
	case NameGeneral, "":
		return NewOpenCVDNN(modelPath, ModelGeneral)
	case NameLandscape:
		return NewOpenCVDNN(modelPath, ModelLandscape)
	case NameChroma:
		return NewChromaKey(DefaultKeyColour, DefaultTolerance, DefaultSoftness), nil
	case NameFixed:
		return Fixed{Value: 1}, nil
	default:
		return nil, xerror.Errorf("%w: unknown segmenter %q", ErrUnavailable, name)
	}
}

// Fixed reports the same confidence for every pixel.
type Fixed struct {
	Value float32
}

func (f Fixed) Segment(frame videoframe.Frame) (videoframe.Mask, error) {
	return videoframe.UniformMask(frame.Dimensions(), f.Value), nil
}

func (f Fixed) Close() error { return nil }
