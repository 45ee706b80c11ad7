package segment

import (
	"image/color"
	"math"

	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
)

var DefaultKeyColour = color.RGBA{G: 255, A: 255}

const (
	DefaultTolerance = 100.0
	DefaultSoftness  = 40.0
)

// ChromaKey treats pixels close to the key colour as background. Pixels
// further than Tolerance+Softness away are fully foreground, with a linear
// ramp in between.
type ChromaKey struct {
	Key       color.RGBA
	Tolerance float64
	Softness  float64
}

func NewChromaKey(key color.RGBA, tolerance, softness float64) *ChromaKey {
	return &ChromaKey{Key: key, Tolerance: tolerance, Softness: softness}
}

func (c *ChromaKey) Segment(frame videoframe.Frame) (videoframe.Mask, error) {
	d := frame.Dimensions()
	values := make([]float32, 0, d.Area())
	for y := 0; y < d.H; y++ {
		row := frame.Row(y)
		for i := 0; i < len(row); i += 4 {
			values = append(values, c.confidence(row[i], row[i+1], row[i+2]))
		}
	}
	return videoframe.NewMask(d, values)
}

func (c *ChromaKey) confidence(r, g, b uint8) float32 {
	dr := float64(r) - float64(c.Key.R)
	dg := float64(g) - float64(c.Key.G)
	db := float64(b) - float64(c.Key.B)
	dist := math.Sqrt(dr*dr + dg*dg + db*db)

	switch {
	case dist <= c.Tolerance:
		return 0
	case c.Softness <= 0 || dist >= c.Tolerance+c.Softness:
		return 1
	default:
		return float32((dist - c.Tolerance) / c.Softness)
	}
}

func (c *ChromaKey) Close() error { return nil }
