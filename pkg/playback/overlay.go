package playback

import (
	"fmt"
	"image"
	"time"

	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
)

var now = time.Now

// fpsMeter tracks the smoothed rate the loop completes cycles at.
type fpsMeter struct {
	last time.Time
	rate float64
}

const fpsSmoothing = 0.9

func (m *fpsMeter) tick() float64 {
	t := now()
	if !m.last.IsZero() {
		if elapsed := t.Sub(m.last).Seconds(); elapsed > 0 {
			instant := 1 / elapsed
			if m.rate == 0 {
				m.rate = instant
			} else {
				m.rate = fpsSmoothing*m.rate + (1-fpsSmoothing)*instant
			}
		}
	}
	m.last = t
	return m.rate
}

// overlayFPS draws the rate onto a copy of frame, leaving frame untouched.
func overlayFPS(frame videoframe.Frame, fps float64) (videoframe.Frame, error) {
	var drawErr error
	out := videoframe.Build(frame.Dimensions(), func(canvas *image.RGBA) {
		for y := 0; y < frame.Dimensions().H; y++ {
			copy(canvas.Pix[canvas.PixOffset(0, y):], frame.Row(y))
		}
		drawErr = videoframe.DrawText(canvas, 10, 30, 24, fmt.Sprintf("FPS: %d", int(fps+0.5)))
	})
	if drawErr != nil {
		return videoframe.Frame{}, drawErr
	}
	return out, nil
}
