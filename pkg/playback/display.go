package playback

import (
	"fmt"

	"github.com/tauraamui/bgreplace/pkg/source"
	"github.com/tauraamui/bgreplace/pkg/video/videobackend"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
)

// Display is the surface composited frames are shown on and the place
// operator commands come from.
type Display interface {
	Show(videoframe.Frame) error
	// Poll waits up to delay milliseconds for a single command.
	Poll(delay int) Command
	Close() error
}

// WindowTitle names the display window for a source kind, key hints included.
func WindowTitle(kind source.Kind) string {
	name := "Image Viewer"
	switch kind {
	case source.KindVideo:
		name = "Video Viewer"
	case source.KindCamera:
		name = "Webcam"
	}
	return fmt.Sprintf("%s - Press 'n' for next, 'p' for previous, 's' to save, 'q' to quit", name)
}

type windowDisplay struct {
	w    videobackend.Window
	keys KeyMap
}

// NewWindowDisplay adapts a backend window into a Display using keys.
func NewWindowDisplay(w videobackend.Window, keys KeyMap) Display {
	if keys == nil {
		keys = DefaultKeyMap
	}
	return &windowDisplay{w: w, keys: keys}
}

func (d *windowDisplay) Show(frame videoframe.Frame) error {
	return d.w.Show(frame)
}

func (d *windowDisplay) Poll(delay int) Command {
	if delay < 1 {
		delay = 1
	}
	return d.keys.Lookup(d.w.WaitKey(delay))
}

func (d *windowDisplay) Close() error {
	return d.w.Close()
}
