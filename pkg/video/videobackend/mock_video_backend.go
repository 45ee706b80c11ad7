package videobackend

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

// MockClipLength is how many frames a mock connection to a file yields
// before reporting the end of the clip. Device connections never end.
const MockClipLength = 150

// MockQuitKey is returned by a mock window asked to block for a key.
const MockQuitKey int = 'q'

// BlockingWaitDelay is the shortest WaitKey delay, in milliseconds, a mock
// window treats as waiting on the operator rather than polling.
const BlockingWaitDelay = 100

var mockCanvasDimensions = videoframe.Dimensions{W: 600, H: 400}

type mockVideoBackend struct{}

func (b *mockVideoBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	if err := cancel.Err(); err != nil {
		return nil, xerror.New("connection cancelled")
	}

	limit := -1
	if _, err := strconv.Atoi(addr); err != nil {
		if _, err := fs.Stat(addr); err != nil {
			return nil, xerror.Errorf("unable to open video capture %s: %w", addr, err)
		}
		limit = MockClipLength
	}
	return &mockVideoConnection{title: addr, limit: limit, isOpen: true}, nil
}

func (b *mockVideoBackend) NewWriter(path, codec string, fps float64, dims videoframe.Dimensions) (Writer, error) {
	if err := ensureDirectoryPathExists(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, xerror.Errorf("unable to open video writer for %s: %w", path, err)
	}
	return &mockVideoWriter{f: f, dims: dims}, nil
}

func (b *mockVideoBackend) NewWindow(title string) Window {
	return &mockWindow{}
}

type mockVideoConnection struct {
	uuid                    string
	title                   string
	limit                   int
	read                    int
	isOpen                  bool
	renderedBaseFrameCanvas bool
	baseFrameCanvas         *image.RGBA
}

func (mvc *mockVideoConnection) UUID() string {
	if len(mvc.uuid) == 0 {
		mvc.uuid = uuid.NewString()
	}
	return mvc.uuid
}

func (mvc *mockVideoConnection) Read() (videoframe.Frame, error) {
	if !mvc.isOpen {
		return videoframe.Frame{}, xerror.New("unable to read from closed video connection")
	}
	if mvc.limit >= 0 && mvc.read >= mvc.limit {
		return videoframe.Frame{}, xerror.New("unable to read from video connection")
	}

	if !mvc.renderedBaseFrameCanvas {
		mvc.baseFrameCanvas = renderBaseFrameCanvas()
		mvc.renderedBaseFrameCanvas = true
	}

	frame, err := drawTextLayerOntoBaseFrameClone(mvc.baseFrameCanvas, mvc.title, mvc.read)
	if err != nil {
		return videoframe.Frame{}, err
	}
	mvc.read++
	return frame, nil
}

func (mvc *mockVideoConnection) IsOpen() bool {
	return mvc.isOpen
}

// Close the video capture instance
func (mvc *mockVideoConnection) Close() error {
	mvc.isOpen = false
	mvc.renderedBaseFrameCanvas = false
	mvc.baseFrameCanvas = nil
	return nil
}

func drawTextLayerOntoBaseFrameClone(base *image.RGBA, title string, n int) (videoframe.Frame, error) {
	var drawErr error
	frame := videoframe.Build(mockCanvasDimensions, func(canvas *image.RGBA) {
		copy(canvas.Pix, base.Pix)
		for _, line := range []struct {
			y    int
			text string
		}{
			{50, "BGREPLACE_MOCK_STREAM"},
			{180, title},
			{310, fmt.Sprintf("#%d %s", n, time.Now().Format("15:04:05.000"))},
		} {
			if err := videoframe.DrawText(canvas, 5, line.y, 40, line.text); err != nil {
				drawErr = err
				return
			}
		}
	})
	if drawErr != nil {
		return videoframe.Frame{}, xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", drawErr)
	}
	return frame, nil
}

func renderBaseFrameCanvas() *image.RGBA {
	var w, h int = mockCanvasDimensions.W, mockCanvasDimensions.H
	var hw, hh float64 = float64(w / 2), float64(h / 2)
	r := 200.0
	θ := 2 * math.Pi / 3
	cr := &circle{hw - r*math.Sin(0), hh - r*math.Cos(0), 300}
	cg := &circle{hw - r*math.Sin(θ), hh - r*math.Cos(θ), 300}
	cb := &circle{hw - r*math.Sin(-θ), hh - r*math.Cos(-θ), 300}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.RGBA{
				cr.Brightness(float64(x), float64(y)),
				cg.Brightness(float64(x), float64(y)),
				cb.Brightness(float64(x), float64(y)),
				255,
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

type circle struct {
	X, Y, R float64
}

func (c *circle) Brightness(x, y float64) uint8 {
	var dx, dy float64 = c.X - x, c.Y - y
	d := math.Sqrt(dx*dx+dy*dy) / c.R
	if d > 1 {
		return 0
	}
	return 255
}

type mockVideoWriter struct {
	f      afero.File
	dims   videoframe.Dimensions
	frames int
}

func (w *mockVideoWriter) Write(frame videoframe.Frame) error {
	if frame.Dimensions() != w.dims {
		return xerror.Errorf(
			"frame of %dx%d does not fit writer opened for %dx%d",
			frame.Dimensions().W, frame.Dimensions().H, w.dims.W, w.dims.H,
		)
	}
	w.frames++
	return nil
}

func (w *mockVideoWriter) Close() error {
	return w.f.Close()
}

type mockWindow struct {
	shown int
}

func (w *mockWindow) Show(videoframe.Frame) error {
	w.shown++
	return nil
}

// WaitKey never sees a key press. Waits of zero or at least
// BlockingWaitDelay resolve to quit so a headless still session ends.
func (w *mockWindow) WaitKey(delay int) int {
	if delay <= 0 || delay >= BlockingWaitDelay {
		return MockQuitKey
	}
	return -1
}

func (w *mockWindow) Close() error { return nil }
