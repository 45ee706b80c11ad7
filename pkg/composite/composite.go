package composite

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

// DefaultThreshold biases ambiguous pixels towards the foreground subject.
const DefaultThreshold float32 = 0.8

// Composite selects, per pixel, the foreground sample where the mask is
// strictly above threshold and the background sample everywhere else.
// The background is resampled to the foreground's dimensions first.
func Composite(fg, bg videoframe.Frame, mask videoframe.Mask, threshold float32) (videoframe.Frame, error) {
	d := fg.Dimensions()
	if !d.Valid() {
		return videoframe.Frame{}, xerror.New("cannot composite onto an empty frame")
	}
	if mask.Dimensions() != d {
		md := mask.Dimensions()
		return videoframe.Frame{}, xerror.Errorf(
			"mask dimensions %dx%d do not match frame %dx%d", md.W, md.H, d.W, d.H,
		)
	}
	if bg.IsZero() {
		return videoframe.Frame{}, xerror.New("cannot composite without a background")
	}

	bg = FitBackground(bg, d)
	return videoframe.Build(d, func(dst *image.RGBA) {
		for y := 0; y < d.H; y++ {
			fr, br := fg.Row(y), bg.Row(y)
			out := dst.Pix[y*dst.Stride : y*dst.Stride+d.W*4]
			for x := 0; x < d.W; x++ {
				src := br
				if mask.At(x, y) > threshold {
					src = fr
				}
				copy(out[x*4:x*4+4], src[x*4:x*4+4])
			}
		}
	}), nil
}

// FitBackground resamples bg bilinearly to d, returning bg untouched if it
// already matches.
func FitBackground(bg videoframe.Frame, d videoframe.Dimensions) videoframe.Frame {
	if bg.Dimensions() == d {
		return bg
	}
	return videoframe.FromImage(resize.Resize(uint(d.W), uint(d.H), bg.Image(), resize.Bilinear))
}
