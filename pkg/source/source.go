package source

import (
	"context"
	"strconv"
	"sync"

	"github.com/tauraamui/bgreplace/pkg/imagefile"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/video/videobackend"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var (
	ErrEndOfStream       = xerror.New("end of stream")
	ErrSourceUnavailable = xerror.New("source unavailable")
	ErrUnreadableInput   = xerror.New("unreadable input path")
)

// DefaultDimensions is the resolution every source normalises frames to.
var DefaultDimensions = videoframe.Dimensions{W: 640, H: 480}

// CameraReadAttempts is how many reads in a row may fail before a camera
// is considered disconnected.
const CameraReadAttempts = 3

type Kind int

const (
	KindStill Kind = iota
	KindVideo
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindStill:
		return "image"
	case KindVideo:
		return "video"
	case KindCamera:
		return "camera"
	}
	return "unknown"
}

// FrameSource produces normalised frames until it reports ErrEndOfStream.
type FrameSource interface {
	Next() (videoframe.Frame, error)
	Kind() Kind
	Close() error
}

// Still yields its single image once.
type Still struct {
	frame  videoframe.Frame
	served bool
}

func OpenStill(path string, dims videoframe.Dimensions) (*Still, error) {
	frame, err := imagefile.Decode(path)
	if err != nil {
		return nil, xerror.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	return &Still{frame: frame.Resize(dims)}, nil
}

func (s *Still) Next() (videoframe.Frame, error) {
	if s.served {
		return videoframe.Frame{}, ErrEndOfStream
	}
	s.served = true
	return s.frame, nil
}

func (s *Still) Kind() Kind { return KindStill }

func (s *Still) Close() error { return nil }

// Stream pulls frames from a backend connection to a file or device.
type Stream struct {
	kind      Kind
	conn      videobackend.Connection
	dims      videoframe.Dimensions
	attempts  int
	closeOnce sync.Once
	closeErr  error
	ended     bool
}

// OpenVideo connects to a video file. The first failed read ends the stream.
func OpenVideo(ctx context.Context, backend videobackend.Backend, path string, dims videoframe.Dimensions) (*Stream, error) {
	return openStream(ctx, backend, KindVideo, path, dims, 1)
}

// OpenCamera connects to a capture device by index. Only repeated read
// failures or a dropped connection end the stream.
func OpenCamera(ctx context.Context, backend videobackend.Backend, index int, dims videoframe.Dimensions) (*Stream, error) {
	if index < 0 {
		return nil, xerror.Errorf("%w: invalid camera index %d", ErrSourceUnavailable, index)
	}
	return openStream(ctx, backend, KindCamera, strconv.Itoa(index), dims, CameraReadAttempts)
}

func openStream(
	ctx context.Context, backend videobackend.Backend, kind Kind, addr string, dims videoframe.Dimensions, attempts int,
) (*Stream, error) {
	conn, err := backend.Connect(ctx, addr)
	if err != nil {
		return nil, xerror.Errorf("%w: unable to open %s %s: %v", ErrSourceUnavailable, kind, addr, err)
	}
	log.Debug("Opened %s source %s [%s]", kind, addr, conn.UUID())
	return &Stream{kind: kind, conn: conn, dims: dims, attempts: attempts}, nil
}

func (s *Stream) Next() (videoframe.Frame, error) {
	if s.ended {
		return videoframe.Frame{}, ErrEndOfStream
	}

	var lastErr error
	for failed := 0; failed < s.attempts; failed++ {
		frame, err := s.conn.Read()
		if err == nil {
			return frame.Resize(s.dims), nil
		}
		lastErr = err
		if !s.conn.IsOpen() {
			break
		}
		log.Debug("Read from %s source [%s] failed: %v", s.kind, s.conn.UUID(), err)
	}

	s.ended = true
	return videoframe.Frame{}, xerror.Errorf("%w: %v", ErrEndOfStream, lastErr)
}

func (s *Stream) Kind() Kind { return s.kind }

// Close releases the connection. Repeated calls return the first result.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.ended = true
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
