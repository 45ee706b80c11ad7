package videoframe

import (
	"image"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var (
	regularFont    *truetype.Font
	regularFontErr error
	parseFontOnce  sync.Once
)

func loadRegularFont() (*truetype.Font, error) {
	parseFontOnce.Do(func() {
		regularFont, regularFontErr = freetype.ParseFont(goregular.TTF)
	})
	return regularFont, regularFontErr
}

// DrawText renders white text onto canvas with its baseline centred on y.
func DrawText(canvas *image.RGBA, x, y int, size float64, text string) error {
	fontFace, err := loadRegularFont()
	if err != nil {
		return xerror.Errorf("unable to parse overlay font: %w", err)
	}

	fontDrawer := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(fontFace, &truetype.Options{
			Size:    size,
			Hinting: font.HintingFull,
		}),
	}
	textBounds, _ := fontDrawer.BoundString(text)
	textHeight := textBounds.Max.Y - textBounds.Min.Y
	yPosition := fixed.I((y)-textHeight.Ceil())/2 + fixed.I(textHeight.Ceil())
	fontDrawer.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: yPosition,
	}
	fontDrawer.DrawString(text)
	return nil
}
