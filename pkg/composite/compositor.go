package composite

import (
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
)

type fitKey struct {
	index int
	dims  videoframe.Dimensions
}

// Compositor is Composite with the resampled backgrounds kept around, so a
// steady stream of equally sized frames resizes each background only once.
type Compositor struct {
	Threshold float32
	fitted    map[fitKey]videoframe.Frame
}

func New(threshold float32) *Compositor {
	return &Compositor{Threshold: threshold, fitted: map[fitKey]videoframe.Frame{}}
}

// Composite combines fg with the background identified by index.
func (c *Compositor) Composite(fg videoframe.Frame, index int, bg videoframe.Frame, mask videoframe.Mask) (videoframe.Frame, error) {
	d := fg.Dimensions()
	key := fitKey{index: index, dims: d}
	fitted, ok := c.fitted[key]
	if !ok {
		fitted = FitBackground(bg, d)
		c.fitted[key] = fitted
	}
	return Composite(fg, fitted, mask, c.Threshold)
}

// Reset drops every cached background.
func (c *Compositor) Reset() {
	c.fitted = map[fitKey]videoframe.Frame{}
}
