package playback_test

import (
	"context"
	"image/color"

	"github.com/tauraamui/bgreplace/pkg/playback"
	"github.com/tauraamui/bgreplace/pkg/source"
	"github.com/tauraamui/bgreplace/pkg/video/videobackend"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var vga = videoframe.Dimensions{W: 64, H: 48}

func solid(c color.RGBA) videoframe.Frame {
	return videoframe.Solid(vga, c)
}

type fakeSource struct {
	kind   source.Kind
	frames []videoframe.Frame
	nexts  int
	closed int
}

func (s *fakeSource) Next() (videoframe.Frame, error) {
	s.nexts++
	if len(s.frames) == 0 {
		return videoframe.Frame{}, source.ErrEndOfStream
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *fakeSource) Kind() source.Kind { return s.kind }

func (s *fakeSource) Close() error {
	s.closed++
	return nil
}

func newFakeSource(kind source.Kind, n int) *fakeSource {
	src := fakeSource{kind: kind}
	for i := 0; i < n; i++ {
		src.frames = append(src.frames, solid(color.RGBA{R: uint8(i * 40), G: 7}))
	}
	return &src
}

type fakeDisplay struct {
	shown  []videoframe.Frame
	script []playback.Command
	delays []int
	closed int
}

func (d *fakeDisplay) Show(f videoframe.Frame) error {
	d.shown = append(d.shown, f)
	return nil
}

func (d *fakeDisplay) Poll(delay int) playback.Command {
	d.delays = append(d.delays, delay)
	if len(d.script) == 0 {
		return playback.CmdNone
	}
	cmd := d.script[0]
	d.script = d.script[1:]
	return cmd
}

func (d *fakeDisplay) Close() error {
	d.closed++
	return nil
}

type fakeSegmenter struct {
	value  float32
	err    error
	dims   videoframe.Dimensions
	calls  int
	closed int
}

func (s *fakeSegmenter) Segment(f videoframe.Frame) (videoframe.Mask, error) {
	s.calls++
	if s.err != nil {
		return videoframe.Mask{}, s.err
	}
	dims := f.Dimensions()
	if s.dims.Area() > 0 {
		dims = s.dims
	}
	return videoframe.UniformMask(dims, s.value), nil
}

func (s *fakeSegmenter) Close() error {
	s.closed++
	return nil
}

type memWriter struct {
	frames  []videoframe.Frame
	failAt  int
	written int
	closed  int
}

func (w *memWriter) Write(f videoframe.Frame) error {
	w.written++
	if w.failAt > 0 && w.written >= w.failAt {
		return xerror.New("disk full")
	}
	w.frames = append(w.frames, f)
	return nil
}

func (w *memWriter) Close() error {
	w.closed++
	return nil
}

type writerBackend struct {
	w *memWriter
}

func (b *writerBackend) Connect(context.Context, string) (videobackend.Connection, error) {
	return nil, xerror.New("not supported")
}

func (b *writerBackend) NewWriter(string, string, float64, videoframe.Dimensions) (videobackend.Writer, error) {
	return b.w, nil
}

func (b *writerBackend) NewWindow(string) videobackend.Window { return nil }

type promptAnswers []string

func (p *promptAnswers) PromptSavePath() (string, error) {
	if len(*p) == 0 {
		return "", nil
	}
	answer := (*p)[0]
	*p = (*p)[1:]
	return answer, nil
}
