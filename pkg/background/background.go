package background

import (
	"path/filepath"

	"github.com/tauraamui/bgreplace/pkg/imagefile"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var ErrEmptySet = xerror.New("no usable background images found")

// Diagnostic records a directory entry that looked like an image but
// could not be decoded.
type Diagnostic struct {
	Name string
	Err  error
}

// Set is an ordered, cyclable, never empty collection of backgrounds.
// It is never mutated after Load apart from the current index.
type Set struct {
	frames  []videoframe.Frame
	names   []string
	index   int
	skipped []Diagnostic
}

// Load decodes every raster image directly inside dir, in name order.
// Entries that fail to decode are skipped and reported.
func Load(dir string) (*Set, error) {
	entries, err := imagefile.ReadDir(dir)
	if err != nil {
		return nil, xerror.Errorf("%w: unable to read background directory %s: %v", ErrEmptySet, dir, err)
	}

	set := Set{}
	for _, entry := range entries {
		if entry.IsDir() || !imagefile.IsRaster(entry.Name()) {
			continue
		}

		frame, err := imagefile.Decode(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warn("Could not load background image %s: %v", entry.Name(), err)
			set.skipped = append(set.skipped, Diagnostic{Name: entry.Name(), Err: err})
			continue
		}
		set.frames = append(set.frames, frame)
		set.names = append(set.names, entry.Name())
	}

	if len(set.frames) == 0 {
		return nil, xerror.Errorf("%w in %s", ErrEmptySet, dir)
	}

	log.Info("Loaded %d background images from %s", len(set.frames), dir)
	return &set, nil
}

// FromFrames builds a set from frames already in memory.
func FromFrames(frames ...videoframe.Frame) (*Set, error) {
	if len(frames) == 0 {
		return nil, ErrEmptySet
	}
	set := Set{frames: append([]videoframe.Frame{}, frames...)}
	set.names = make([]string, len(frames))
	return &set, nil
}

func (s *Set) Len() int { return len(s.frames) }

func (s *Set) Index() int { return s.index }

// Name of the current background, empty for in memory sets.
func (s *Set) Name() string { return s.names[s.index] }

func (s *Set) Skipped() []Diagnostic { return s.skipped }

func (s *Set) Current() videoframe.Frame {
	return s.frames[s.index]
}

func (s *Set) Advance() videoframe.Frame {
	s.index = (s.index + 1) % len(s.frames)
	return s.Current()
}

func (s *Set) Retreat() videoframe.Frame {
	s.index = (s.index - 1 + len(s.frames)) % len(s.frames)
	return s.Current()
}
