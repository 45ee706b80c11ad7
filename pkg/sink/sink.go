package sink

import (
	"path/filepath"
	"sync"

	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/video/videobackend"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var (
	ErrSinkWrite     = xerror.New("unable to write output")
	ErrInvalidTarget = xerror.New("invalid output target")
)

const (
	DefaultCodec     = "XVID"
	DefaultFPS       = 20.0
	DefaultExtension = ".avi"
)

// ResolvePath appends the default container extension to a path without one.
func ResolvePath(path string) string {
	if len(path) > 0 && filepath.Ext(path) == "" {
		return path + DefaultExtension
	}
	return path
}

// OutputTarget describes where and how a session's output is encoded.
type OutputTarget struct {
	Path       string
	Codec      string
	FPS        float64
	Dimensions videoframe.Dimensions
}

func (t OutputTarget) validate() error {
	switch {
	case len(t.Path) == 0:
		return xerror.Errorf("%w: no output path", ErrInvalidTarget)
	case len(t.Codec) != 4:
		return xerror.Errorf("%w: codec %q is not a FourCC", ErrInvalidTarget, t.Codec)
	case t.FPS <= 0:
		return xerror.Errorf("%w: fps must be positive, got %v", ErrInvalidTarget, t.FPS)
	case !t.Dimensions.Valid():
		return xerror.Errorf("%w: dimensions %dx%d", ErrInvalidTarget, t.Dimensions.W, t.Dimensions.H)
	}
	return nil
}

// Recorder appends frames to a single output file for one session.
type Recorder struct {
	target    OutputTarget
	w         videobackend.Writer
	frames    int
	closeOnce sync.Once
	closeErr  error
	closed    bool
}

func Open(backend videobackend.Backend, target OutputTarget) (*Recorder, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	w, err := backend.NewWriter(target.Path, target.Codec, target.FPS, target.Dimensions)
	if err != nil {
		return nil, xerror.Errorf("%w: %v", ErrSinkWrite, err)
	}
	log.Info("Recording to %s (%s, %.1f fps, %dx%d)",
		target.Path, target.Codec, target.FPS, target.Dimensions.W, target.Dimensions.H,
	)
	return &Recorder{target: target, w: w}, nil
}

func (r *Recorder) Target() OutputTarget { return r.target }

// Frames is the number of frames successfully appended.
func (r *Recorder) Frames() int { return r.frames }

func (r *Recorder) Append(frame videoframe.Frame) error {
	if r.closed {
		return xerror.Errorf("%w: recorder for %s is closed", ErrSinkWrite, r.target.Path)
	}
	if err := r.w.Write(frame); err != nil {
		return xerror.Errorf("%w: %s: %v", ErrSinkWrite, r.target.Path, err)
	}
	r.frames++
	return nil
}

// Close flushes and releases the writer. Later calls return the first result.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.closed = true
		if err := r.w.Close(); err != nil {
			r.closeErr = xerror.Errorf("%w: closing %s: %v", ErrSinkWrite, r.target.Path, err)
			return
		}
		log.Info("Recorded %d frames to %s", r.frames, r.target.Path)
	})
	return r.closeErr
}
