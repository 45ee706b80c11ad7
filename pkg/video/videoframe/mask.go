package videoframe

import (
	"github.com/tauraamui/xerror"
)

// Mask holds per pixel foreground confidence in [0,1], row major.
type Mask struct {
	dims   Dimensions
	values []float32
}

func NewMask(d Dimensions, values []float32) (Mask, error) {
	if len(values) != d.Area() {
		return Mask{}, xerror.Errorf(
			"mask of %dx%d needs %d values, got %d", d.W, d.H, d.Area(), len(values),
		)
	}
	vs := make([]float32, len(values))
	for i, v := range values {
		vs[i] = clamp(v)
	}
	return Mask{dims: d, values: vs}, nil
}

func UniformMask(d Dimensions, v float32) Mask {
	vs := make([]float32, d.Area())
	v = clamp(v)
	for i := range vs {
		vs[i] = v
	}
	return Mask{dims: d, values: vs}
}

func clamp(v float32) float32 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (m Mask) Dimensions() Dimensions { return m.dims }

func (m Mask) At(x, y int) float32 {
	return m.values[y*m.dims.W+x]
}

// Resize resamples the mask bilinearly to d.
func (m Mask) Resize(d Dimensions) Mask {
	if m.dims == d {
		return m
	}
	out := make([]float32, d.Area())
	if m.dims.Area() == 0 {
		return Mask{dims: d, values: out}
	}
	sx := float32(m.dims.W) / float32(d.W)
	sy := float32(m.dims.H) / float32(d.H)
	for y := 0; y < d.H; y++ {
		fy := (float32(y)+0.5)*sy - 0.5
		y0, wy := split(fy, m.dims.H)
		y1 := minInt(y0+1, m.dims.H-1)
		for x := 0; x < d.W; x++ {
			fx := (float32(x)+0.5)*sx - 0.5
			x0, wx := split(fx, m.dims.W)
			x1 := minInt(x0+1, m.dims.W-1)
			top := lerp(m.At(x0, y0), m.At(x1, y0), wx)
			bottom := lerp(m.At(x0, y1), m.At(x1, y1), wx)
			out[y*d.W+x] = clamp(lerp(top, bottom, wy))
		}
	}
	return Mask{dims: d, values: out}
}

func lerp(a, b, w float32) float32 {
	return a + (b-a)*w
}

func split(f float32, limit int) (int, float32) {
	if f <= 0 {
		return 0, 0
	}
	i := int(f)
	if i >= limit-1 {
		return limit - 1, 0
	}
	return i, f - float32(i)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
