package playback

import (
	"context"
	"errors"
	"time"

	"github.com/tauraamui/bgreplace/pkg/composite"
	"github.com/tauraamui/bgreplace/pkg/imagefile"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/source"
	"github.com/tauraamui/bgreplace/pkg/video/videobackend"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
)

type State int

const (
	StateRunning State = iota
	StateAwaitingCommand
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaitingCommand:
		return "awaiting command"
	}
	return "stopped"
}

type ExitReason int

const (
	ExitQuit ExitReason = iota
	ExitEndOfStream
	ExitCancelled
	ExitSourceLost
)

func (r ExitReason) String() string {
	switch r {
	case ExitEndOfStream:
		return "end of stream"
	case ExitCancelled:
		return "cancelled"
	case ExitSourceLost:
		return "source lost"
	}
	return "quit"
}

// Stats summarises a finished run.
type Stats struct {
	Frames            int
	Recorded          int
	Snapshots         int
	SnapshotFailures  int
	Switches          int
	SegmentFailures   int
	CompositeFailures int
	SinkFailures      int
	Exit              ExitReason
	Duration          time.Duration
}

const (
	// streamPollDelay keeps polling effectively non-blocking for streams.
	streamPollDelay = 1
	// stillPollDelay bounds each wait for a still image command so
	// cancellation is still observed.
	stillPollDelay = videobackend.BlockingWaitDelay
)

// Controller drives a session: pull, segment, composite, show, record,
// then act on at most one command per cycle.
type Controller struct {
	session    *Session
	compositor *composite.Compositor
	prompter   PathPrompter
	state      State
	fps        fpsMeter

	still     bool
	cached    videoframe.Frame
	cachedMsk videoframe.Mask
	current   videoframe.Frame

	stats Stats
}

func NewController(s *Session, threshold float32, prompter PathPrompter) *Controller {
	return &Controller{
		session:    s,
		compositor: composite.New(threshold),
		prompter:   prompter,
		state:      StateRunning,
		still:      s.Source.Kind() == source.KindStill,
	}
}

func (c *Controller) State() State { return c.state }

// Current is the most recent composited frame, without any overlay.
func (c *Controller) Current() videoframe.Frame { return c.current }

// Run loops until the operator quits, ctx is cancelled or the source ends.
// The session is torn down before Run returns, whatever the outcome.
func (c *Controller) Run(ctx context.Context) (Stats, error) {
	started := now()
	defer func() {
		c.state = StateStopped
		c.session.Close()
		c.compositor.Reset()
	}()

	for c.state != StateStopped {
		frame, mask, err := c.acquire()
		if err != nil {
			c.state = StateStopped
			c.stats.Duration = now().Sub(started)
			if errors.Is(err, source.ErrEndOfStream) {
				if c.session.Source.Kind() == source.KindCamera {
					log.Warn("Camera stream lost: %v", err)
					c.stats.Exit = ExitSourceLost
				} else {
					c.stats.Exit = ExitEndOfStream
				}
				return c.stats, nil
			}
			c.stats.Exit = ExitSourceLost
			return c.stats, err
		}

		c.current = c.composite(frame, mask)
		c.stats.Frames++
		c.show()
		c.record()

		c.state = StateAwaitingCommand
		c.handle(ctx, c.poll(ctx))
		if c.state == StateAwaitingCommand {
			c.state = StateRunning
		}
	}

	c.stats.Duration = now().Sub(started)
	return c.stats, nil
}

func (c *Controller) acquire() (videoframe.Frame, videoframe.Mask, error) {
	if c.still && !c.cached.IsZero() {
		return c.cached, c.cachedMsk, nil
	}

	frame, err := c.session.Source.Next()
	if err != nil {
		return videoframe.Frame{}, videoframe.Mask{}, err
	}

	mask, err := c.session.Segmenter.Segment(frame)
	if err != nil {
		log.Error("Unable to segment frame, showing it unchanged: %v", err)
		c.stats.SegmentFailures++
		mask = videoframe.UniformMask(frame.Dimensions(), 1)
	}

	if c.still {
		c.cached, c.cachedMsk = frame, mask
	}
	return frame, mask, nil
}

func (c *Controller) composite(frame videoframe.Frame, mask videoframe.Mask) videoframe.Frame {
	bgs := c.session.Backgrounds
	out, err := c.compositor.Composite(frame, bgs.Index(), bgs.Current(), mask)
	if err != nil {
		log.Error("Unable to composite frame, showing it unchanged: %v", err)
		c.stats.CompositeFailures++
		return frame
	}
	return out
}

func (c *Controller) show() {
	shown := c.current
	if c.session.Source.Kind() == source.KindCamera {
		withFPS, err := overlayFPS(c.current, c.fps.tick())
		if err != nil {
			log.Debug("Unable to draw FPS overlay: %v", err)
		} else {
			shown = withFPS
		}
	}
	if err := c.session.Display.Show(shown); err != nil {
		log.Error("Unable to show frame: %v", err)
	}
}

func (c *Controller) record() {
	rec := c.session.Sink
	if rec == nil {
		return
	}
	if err := rec.Append(c.current); err != nil {
		log.Error("Recording stopped: %v", err)
		c.stats.SinkFailures++
		c.session.disableSink()
		return
	}
	c.stats.Recorded++
}

func (c *Controller) poll(ctx context.Context) Command {
	if !c.still {
		if ctx.Err() != nil {
			return CmdQuit
		}
		return c.session.Display.Poll(streamPollDelay)
	}

	for {
		if ctx.Err() != nil {
			return CmdQuit
		}
		if cmd := c.session.Display.Poll(stillPollDelay); cmd != CmdNone {
			return cmd
		}
	}
}

func (c *Controller) handle(ctx context.Context, cmd Command) {
	switch cmd {
	case CmdAdvance:
		c.session.Backgrounds.Advance()
		c.stats.Switches++
		log.Debug("Switched to background %d", c.session.Backgrounds.Index())
	case CmdRetreat:
		c.session.Backgrounds.Retreat()
		c.stats.Switches++
		log.Debug("Switched to background %d", c.session.Backgrounds.Index())
	case CmdSave:
		c.save()
	case CmdQuit:
		c.state = StateStopped
		c.stats.Exit = ExitQuit
		if ctx.Err() != nil {
			c.stats.Exit = ExitCancelled
		}
	}
}

func (c *Controller) save() {
	if c.prompter == nil {
		log.Warn("No save path available, frame not saved")
		return
	}

	path, err := c.prompter.PromptSavePath()
	if err != nil {
		log.Warn("Unable to read save path, frame not saved: %v", err)
		return
	}
	if len(path) == 0 {
		log.Warn("No save path given, frame not saved")
		return
	}

	path = imagefile.ResolveSnapshotPath(path)
	if err := imagefile.Encode(path, c.current); err != nil {
		log.Error("Unable to save frame: %v", err)
		c.stats.SnapshotFailures++
		return
	}
	c.stats.Snapshots++
	log.Info("Frame saved to %s", path)
}
