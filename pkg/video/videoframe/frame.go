package videoframe

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

type Dimensions struct {
	W, H int
}

func (d Dimensions) Area() int { return d.W * d.H }

func (d Dimensions) Valid() bool { return d.W > 0 && d.H > 0 }

// Frame is an immutable grid of colour samples. Alpha is always opaque,
// only the three colour channels carry data.
type Frame struct {
	img *image.RGBA
}

// FromImage copies any decoded image into a new frame anchored at the origin.
func FromImage(src image.Image) Frame {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	opaque(dst)
	return Frame{img: dst}
}

// Solid returns a frame filled with a single colour.
func Solid(d Dimensions, c color.RGBA) Frame {
	c.A = 0xff
	img := image.NewRGBA(image.Rect(0, 0, d.W, d.H))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return Frame{img: img}
}

// Build lets a producer fill a fresh canvas before it is sealed as a frame.
// The canvas must not be retained by fill.
func Build(d Dimensions, fill func(*image.RGBA)) Frame {
	img := image.NewRGBA(image.Rect(0, 0, d.W, d.H))
	fill(img)
	opaque(img)
	return Frame{img: img}
}

func opaque(img *image.RGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

func (f Frame) IsZero() bool { return f.img == nil }

func (f Frame) Dimensions() Dimensions {
	if f.img == nil {
		return Dimensions{}
	}
	b := f.img.Bounds()
	return Dimensions{W: b.Dx(), H: b.Dy()}
}

func (f Frame) At(x, y int) color.RGBA {
	return f.img.RGBAAt(x, y)
}

// Image exposes the frame for read only consumers such as encoders.
func (f Frame) Image() image.Image {
	return f.img
}

// Clone returns a mutable copy of the frame's pixels.
func (f Frame) Clone() *image.RGBA {
	dst := image.NewRGBA(f.img.Bounds())
	copy(dst.Pix, f.img.Pix)
	return dst
}

// Resize resamples the frame bilinearly. It returns f itself when the
// dimensions already match.
func (f Frame) Resize(d Dimensions) Frame {
	if f.Dimensions() == d {
		return f
	}
	dst := image.NewRGBA(image.Rect(0, 0, d.W, d.H))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), f.img, f.img.Bounds(), xdraw.Src, nil)
	return Frame{img: dst}
}

// Equal reports whether both frames hold bit identical pixels.
func (f Frame) Equal(o Frame) bool {
	if f.Dimensions() != o.Dimensions() {
		return false
	}
	if f.img == nil {
		return true
	}
	for y := 0; y < f.Dimensions().H; y++ {
		fr, or := f.Row(y), o.Row(y)
		for i := range fr {
			if fr[i] != or[i] {
				return false
			}
		}
	}
	return true
}

// Row is the read only pixel slice of row y, four bytes per sample.
func (f Frame) Row(y int) []uint8 {
	b := f.img.Bounds()
	return f.img.Pix[f.img.PixOffset(b.Min.X, b.Min.Y+y):][:b.Dx()*4]
}
