package playback_test

import (
	"context"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/require"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/bgreplace/pkg/background"
	"github.com/tauraamui/bgreplace/pkg/composite"
	"github.com/tauraamui/bgreplace/pkg/imagefile"
	"github.com/tauraamui/bgreplace/pkg/playback"
	"github.com/tauraamui/bgreplace/pkg/sink"
	"github.com/tauraamui/bgreplace/pkg/source"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var (
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

type harness struct {
	src     *fakeSource
	display *fakeDisplay
	seg     *fakeSegmenter
	writer  *memWriter
	session *playback.Session
}

func newHarness(t *testing.T, src *fakeSource, record bool, maskValue float32) *harness {
	bgs, err := background.FromFrames(solid(blue), solid(green))
	require.NoError(t, err)

	h := harness{
		src:     src,
		display: &fakeDisplay{},
		seg:     &fakeSegmenter{value: maskValue},
		writer:  &memWriter{},
	}
	h.session = &playback.Session{
		Source:      src,
		Backgrounds: bgs,
		Segmenter:   h.seg,
		Display:     h.display,
	}
	if record {
		rec, err := sink.Open(&writerBackend{w: h.writer}, sink.OutputTarget{
			Path: "/recordings/out.avi", Codec: sink.DefaultCodec, FPS: sink.DefaultFPS, Dimensions: vga,
		})
		require.NoError(t, err)
		h.session.Sink = rec
	}
	return &h
}

func (h *harness) assertTornDownOnce(is *is.I) {
	is.Equal(h.src.closed, 1)
	is.Equal(h.display.closed, 1)
	is.Equal(h.seg.closed, 1)
}

func silenceLogging() func() {
	existingLevel := logging.CurrentLoggingLevel
	logging.CurrentLoggingLevel = logging.SilentLevel
	return func() { logging.CurrentLoggingLevel = existingLevel }
}

func TestVideoOfFiveFramesRecordsFiveFramesInOrder(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	src := newFakeSource(source.KindVideo, 5)
	expected := append([]videoframe.Frame{}, src.frames...)
	h := newHarness(t, src, true, 1)

	c := playback.NewController(h.session, composite.DefaultThreshold, nil)
	stats, err := c.Run(context.Background())
	is.NoErr(err)

	is.Equal(stats.Frames, 5)
	is.Equal(stats.Recorded, 5)
	is.Equal(stats.Exit, playback.ExitEndOfStream)
	is.Equal(c.State(), playback.StateStopped)
	is.Equal(len(h.writer.frames), 5)
	for i := range expected {
		is.True(h.writer.frames[i].Equal(expected[i]))
	}
	is.Equal(h.writer.closed, 1)
	h.assertTornDownOnce(is)
}

func TestQuitMidStreamHaltsWithinOneCycleAndTearsDownOnce(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindVideo, 10), true, 1)
	h.display.script = []playback.Command{playback.CmdNone, playback.CmdNone, playback.CmdQuit}

	c := playback.NewController(h.session, composite.DefaultThreshold, nil)
	stats, err := c.Run(context.Background())
	is.NoErr(err)

	is.Equal(h.src.nexts, 3)
	is.Equal(stats.Frames, 3)
	is.Equal(stats.Recorded, 3)
	is.Equal(stats.Exit, playback.ExitQuit)
	is.Equal(h.writer.closed, 1)
	h.assertTornDownOnce(is)

	is.NoErr(h.session.Close())
	h.assertTornDownOnce(is)
}

func TestDisplayAndSinkObserveIdenticalFrames(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindVideo, 4), true, 0)
	h.display.script = []playback.Command{playback.CmdAdvance, playback.CmdNone, playback.CmdRetreat}

	c := playback.NewController(h.session, composite.DefaultThreshold, nil)
	stats, err := c.Run(context.Background())
	is.NoErr(err)

	is.Equal(stats.Switches, 2)
	is.Equal(len(h.display.shown), 4)
	is.Equal(len(h.writer.frames), 4)
	for i := range h.display.shown {
		is.True(h.display.shown[i].Equal(h.writer.frames[i]))
	}
	is.True(h.writer.frames[0].Equal(solid(blue)))
	is.True(h.writer.frames[1].Equal(solid(green)))
	is.True(h.writer.frames[2].Equal(solid(green)))
	is.True(h.writer.frames[3].Equal(solid(blue)))
}

func TestStreamPollingDoesNotBlock(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindVideo, 2), false, 1)
	_, err := playback.NewController(h.session, composite.DefaultThreshold, nil).Run(context.Background())
	is.NoErr(err)
	is.Equal(h.display.delays, []int{1, 1})
}

func TestStillModeReusesCachedFrameAndMask(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindStill, 1), false, 0)
	h.display.script = []playback.Command{
		playback.CmdNone, playback.CmdAdvance, playback.CmdNone, playback.CmdRetreat, playback.CmdQuit,
	}

	c := playback.NewController(h.session, composite.DefaultThreshold, nil)
	stats, err := c.Run(context.Background())
	is.NoErr(err)

	is.Equal(h.src.nexts, 1)
	is.Equal(h.seg.calls, 1)
	is.Equal(stats.Frames, 3)
	is.Equal(len(h.display.shown), 3)
	is.True(h.display.shown[0].Equal(solid(blue)))
	is.True(h.display.shown[1].Equal(solid(green)))
	is.True(h.display.shown[2].Equal(solid(blue)))
	// still mode waits on the display rather than spinning
	for _, delay := range h.display.delays {
		is.True(delay > 1)
	}
	h.assertTornDownOnce(is)
}

func TestSaveWritesCurrentFrameAndFailuresAreNonFatal(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()
	shots := t.TempDir()

	h := newHarness(t, newFakeSource(source.KindVideo, 5), false, 1)
	h.display.script = []playback.Command{
		playback.CmdSave, playback.CmdSave, playback.CmdSave,
	}
	answers := promptAnswers{filepath.Join(shots, "first"), "", filepath.Join(shots, "second.gif")}

	c := playback.NewController(h.session, composite.DefaultThreshold, &answers)
	stats, err := c.Run(context.Background())
	is.NoErr(err)

	is.Equal(stats.Frames, 5)
	is.Equal(stats.Snapshots, 1)
	is.Equal(stats.SnapshotFailures, 1)
	is.Equal(stats.Exit, playback.ExitEndOfStream)

	saved, err := imagefile.Decode(filepath.Join(shots, "first.png"))
	is.NoErr(err)
	is.True(saved.Equal(h.display.shown[0]))
}

func TestSaveWithoutPrompterIsNonFatal(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindVideo, 2), false, 1)
	h.display.script = []playback.Command{playback.CmdSave}

	stats, err := playback.NewController(h.session, composite.DefaultThreshold, nil).Run(context.Background())
	is.NoErr(err)
	is.Equal(stats.Frames, 2)
	is.Equal(stats.Snapshots, 0)
}

func TestSinkFailureDisablesRecordingButDisplayContinues(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindVideo, 5), true, 1)
	h.writer.failAt = 3

	stats, err := playback.NewController(h.session, composite.DefaultThreshold, nil).Run(context.Background())
	is.NoErr(err)

	is.Equal(stats.Frames, 5)
	is.Equal(len(h.display.shown), 5)
	is.Equal(stats.Recorded, 2)
	is.Equal(stats.SinkFailures, 1)
	is.Equal(h.writer.written, 3)
	is.Equal(h.writer.closed, 1)
	is.True(h.session.Sink == nil)
}

func TestSegmentationFailureShowsAndRecordsRawFrame(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	src := newFakeSource(source.KindVideo, 2)
	raw := src.frames[0]
	h := newHarness(t, src, true, 0)
	h.seg.err = xerror.New("model exploded")

	stats, err := playback.NewController(h.session, composite.DefaultThreshold, nil).Run(context.Background())
	is.NoErr(err)
	is.Equal(stats.SegmentFailures, 2)
	is.Equal(stats.CompositeFailures, 0)
	is.True(h.display.shown[0].Equal(raw))
	is.True(h.writer.frames[0].Equal(raw))
}

func TestCompositeFailureIsCountedApartFromSegmentation(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	src := newFakeSource(source.KindVideo, 2)
	raw := src.frames[0]
	h := newHarness(t, src, true, 0)
	h.seg.dims = videoframe.Dimensions{W: 1, H: 1}

	stats, err := playback.NewController(h.session, composite.DefaultThreshold, nil).Run(context.Background())
	is.NoErr(err)
	is.Equal(stats.CompositeFailures, 2)
	is.Equal(stats.SegmentFailures, 0)
	is.True(h.display.shown[0].Equal(raw))
	is.True(h.writer.frames[0].Equal(raw))
}

func TestCancelledContextStopsAtPollPoint(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindVideo, 10), true, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := playback.NewController(h.session, composite.DefaultThreshold, nil).Run(ctx)
	is.NoErr(err)
	is.Equal(stats.Frames, 1)
	is.Equal(stats.Exit, playback.ExitCancelled)
	h.assertTornDownOnce(is)
}

func TestCancelledContextEndsStillWait(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	h := newHarness(t, newFakeSource(source.KindStill, 1), false, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := playback.NewController(h.session, composite.DefaultThreshold, nil).Run(ctx)
	is.NoErr(err)
	is.Equal(stats.Exit, playback.ExitCancelled)
}

func TestCameraOverlayNeverReachesSink(t *testing.T) {
	is := is.New(t)
	defer silenceLogging()()

	src := newFakeSource(source.KindCamera, 3)
	expected := append([]videoframe.Frame{}, src.frames...)
	h := newHarness(t, src, true, 1)

	c := playback.NewController(h.session, composite.DefaultThreshold, nil)
	stats, err := c.Run(context.Background())
	is.NoErr(err)
	is.Equal(stats.Exit, playback.ExitSourceLost)

	for i := range expected {
		is.True(h.writer.frames[i].Equal(expected[i]))
		is.True(!h.display.shown[i].Equal(expected[i]))
	}
	is.True(c.Current().Equal(expected[2]))
}
