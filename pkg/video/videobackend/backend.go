package videobackend

import (
	"context"

	"github.com/spf13/afero"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
)

var fs = afero.NewOsFs()

// Connection is an open capture of a video file or device.
type Connection interface {
	UUID() string
	Read() (videoframe.Frame, error)
	IsOpen() bool
	Close() error
}

// Writer appends frames to an encoded video file.
type Writer interface {
	Write(videoframe.Frame) error
	Close() error
}

// Window is an on screen surface that also yields key presses.
type Window interface {
	Show(videoframe.Frame) error
	// WaitKey blocks for up to delay milliseconds, or forever when
	// delay is zero, and returns the pressed key code or -1.
	WaitKey(delay int) int
	Close() error
}

type Backend interface {
	Connect(context.Context, string) (Connection, error)
	NewWriter(path, codec string, fps float64, dims videoframe.Dimensions) (Writer, error)
	NewWindow(title string) Window
}

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func Mock() Backend {
	return &mockVideoBackend{}
}

func Resolve(t string) Backend {
	switch t {
	case "mock":
		return Mock()
	default:
		return Default()
	}
}
