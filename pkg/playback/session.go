package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/tauraamui/bgreplace/pkg/background"
	"github.com/tauraamui/bgreplace/pkg/configdef"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/segment"
	"github.com/tauraamui/bgreplace/pkg/sink"
	"github.com/tauraamui/bgreplace/pkg/source"
	"github.com/tauraamui/bgreplace/pkg/video/videobackend"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var ErrMissingOutputPath = xerror.New("recording requested without an output path")

// Options is everything needed to set a session up, fixed for its lifetime.
type Options struct {
	Kind          source.Kind
	Input         string
	CameraIndex   int
	BackgroundDir string
	Record        bool
	Output        sink.OutputTarget
	Dimensions    videoframe.Dimensions
	Segmenter     string
	ModelPath     string
	Backend       videobackend.Backend
	KeyMap        KeyMap
}

// Session exclusively owns the resources of one playback run.
type Session struct {
	Source      source.FrameSource
	Backgrounds *background.Set
	// Sink is nil when the session does not record.
	Sink      *sink.Recorder
	Segmenter segment.Segmenter
	Display   Display

	closeOnce sync.Once
	closeErr  error
}

// Open acquires the session's resources in order: source, backgrounds,
// sink, segmenter, display. A failure at any step releases what was
// already acquired.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Backend == nil {
		opts.Backend = videobackend.Default()
	}
	if !opts.Dimensions.Valid() {
		opts.Dimensions = source.DefaultDimensions
	}

	s := Session{}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	src, err := openSource(ctx, opts)
	if err != nil {
		return nil, err
	}
	s.Source = src

	s.Backgrounds, err = background.Load(opts.BackgroundDir)
	if err != nil {
		return nil, err
	}

	if opts.Record {
		if opts.Kind == source.KindStill {
			log.Warn("Recording is not available for still images, ignoring")
		} else {
			rec, err := openSink(opts)
			if err != nil {
				return nil, err
			}
			s.Sink = rec
		}
	}

	s.Segmenter, err = segment.Resolve(opts.Segmenter, opts.ModelPath)
	if err != nil {
		return nil, err
	}

	s.Display = NewWindowDisplay(opts.Backend.NewWindow(WindowTitle(opts.Kind)), opts.KeyMap)

	ok = true
	return &s, nil
}

func openSource(ctx context.Context, opts Options) (source.FrameSource, error) {
	switch opts.Kind {
	case source.KindStill:
		return source.OpenStill(opts.Input, opts.Dimensions)
	case source.KindVideo:
		return source.OpenVideo(ctx, opts.Backend, opts.Input, opts.Dimensions)
	case source.KindCamera:
		return source.OpenCamera(ctx, opts.Backend, opts.CameraIndex, opts.Dimensions)
	}
	return nil, xerror.Errorf("%w: unknown source kind %d", source.ErrSourceUnavailable, opts.Kind)
}

func openSink(opts Options) (*sink.Recorder, error) {
	target := opts.Output
	if len(target.Path) == 0 {
		return nil, ErrMissingOutputPath
	}
	if len(target.Codec) == 0 {
		target.Codec = sink.DefaultCodec
	}
	if target.FPS == 0 {
		target.FPS = sink.DefaultFPS
	}
	target.Dimensions = opts.Dimensions
	return sink.Open(opts.Backend, target)
}

// Close releases every held resource exactly once and returns the first
// failure encountered.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.release()
	})
	return s.closeErr
}

func (s *Session) release() error {
	var first error
	keep := func(what string, err error) {
		if err == nil {
			return
		}
		log.Error("Unable to close %s: %v", what, err)
		if first == nil {
			first = err
		}
	}

	if s.Source != nil {
		log.Debug("Releasing %s source...", s.Source.Kind())
		keep("source", s.Source.Close())
	}
	if s.Sink != nil {
		keep("output recording", s.Sink.Close())
	}
	if s.Display != nil {
		keep("display", s.Display.Close())
	}
	if s.Segmenter != nil {
		keep("segmenter", s.Segmenter.Close())
	}
	return first
}

// disableSink stops recording for the rest of the session.
func (s *Session) disableSink() {
	if s.Sink == nil {
		return
	}
	if err := s.Sink.Close(); err != nil {
		log.Error("Unable to close output recording: %v", err)
	}
	s.Sink = nil
}

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindSourceUnavailable
	KindSinkWriteFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindSourceUnavailable:
		return "source unavailable"
	case KindSinkWriteFailure:
		return "sink write failure"
	}
	return "unknown error"
}

// Classify sorts a setup or run error into the kind reported to the operator.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, source.ErrSourceUnavailable):
		return KindSourceUnavailable
	case errors.Is(err, sink.ErrSinkWrite):
		return KindSinkWriteFailure
	case errors.Is(err, background.ErrEmptySet),
		errors.Is(err, sink.ErrInvalidTarget),
		errors.Is(err, segment.ErrUnavailable),
		errors.Is(err, ErrMissingOutputPath),
		errors.Is(err, source.ErrUnreadableInput),
		errors.Is(err, configdef.ErrInvalidConfig):
		return KindConfiguration
	}
	return KindUnknown
}
