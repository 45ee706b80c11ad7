package background_test

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/bgreplace/pkg/background"
	"github.com/tauraamui/bgreplace/pkg/imagefile"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
)

func overloadWarnLog(overload func(string, ...interface{})) func() {
	logWarnRef := log.Warn
	log.Warn = overload
	return func() { log.Warn = logWarnRef }
}

func setupBackgroundsDir(t *testing.T) (string, func()) {
	dir := filepath.Join(t.TempDir(), "backgrounds")
	require.NoError(t, os.MkdirAll(dir, os.ModeDir|os.ModePerm))

	existingLevel := logging.CurrentLoggingLevel
	logging.CurrentLoggingLevel = logging.SilentLevel
	return dir, func() {
		logging.CurrentLoggingLevel = existingLevel
	}
}

func writeImage(t *testing.T, dir, name string, c color.RGBA) {
	frame := videoframe.Solid(videoframe.Dimensions{W: 8, H: 6}, c)
	require.NoError(t, imagefile.Encode(filepath.Join(dir, name), frame))
}

func writeRaw(t *testing.T, dir, name, content string) {
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadThreeValidTwoCorruptYieldsThreeWithTwoDiagnostics(t *testing.T) {
	is := is.New(t)
	dir, teardown := setupBackgroundsDir(t)
	defer teardown()

	var warnings []string
	resetWarn := overloadWarnLog(func(format string, a ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, a...))
	})
	defer resetWarn()

	writeImage(t, dir, "a.png", color.RGBA{R: 255})
	writeImage(t, dir, "b.jpg", color.RGBA{G: 255})
	writeImage(t, dir, "c.PNG", color.RGBA{B: 255})
	writeRaw(t, dir, "d.png", "definitely not a png")
	writeRaw(t, dir, "e.bmp", "BMnope")
	writeRaw(t, dir, "readme.txt", "ignored, wrong extension")

	set, err := background.Load(dir)
	is.NoErr(err)
	is.Equal(set.Len(), 3)
	is.Equal(len(set.Skipped()), 2)
	is.Equal(len(warnings), 2)
	is.True(strings.Contains(warnings[0], "d.png"))
	is.True(strings.Contains(warnings[1], "e.bmp"))
}

func TestLoadOrdersByName(t *testing.T) {
	is := is.New(t)
	dir, teardown := setupBackgroundsDir(t)
	defer teardown()

	writeImage(t, dir, "2-green.png", color.RGBA{G: 255})
	writeImage(t, dir, "1-red.png", color.RGBA{R: 255})

	set, err := background.Load(dir)
	is.NoErr(err)
	is.Equal(set.Name(), "1-red.png")
	is.Equal(set.Current().At(0, 0), color.RGBA{R: 255, A: 255})
	set.Advance()
	is.Equal(set.Name(), "2-green.png")
}

func TestLoadIgnoresSubdirectories(t *testing.T) {
	is := is.New(t)
	dir, teardown := setupBackgroundsDir(t)
	defer teardown()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.png"), os.ModeDir|os.ModePerm))
	writeImage(t, dir, "only.png", color.RGBA{R: 1})

	set, err := background.Load(dir)
	is.NoErr(err)
	is.Equal(set.Len(), 1)
}

func TestLoadWithNoDecodableImagesFails(t *testing.T) {
	is := is.New(t)
	dir, teardown := setupBackgroundsDir(t)
	defer teardown()

	writeRaw(t, dir, "broken.jpg", "nope")
	writeRaw(t, dir, "notes.txt", "nope")

	set, err := background.Load(dir)
	is.True(set == nil)
	is.True(errors.Is(err, background.ErrEmptySet))
}

func TestLoadEmptyDirectoryFails(t *testing.T) {
	is := is.New(t)
	dir, teardown := setupBackgroundsDir(t)
	defer teardown()

	_, err := background.Load(dir)
	is.True(errors.Is(err, background.ErrEmptySet))
}

func TestLoadMissingDirectoryFails(t *testing.T) {
	is := is.New(t)
	dir, teardown := setupBackgroundsDir(t)
	defer teardown()

	_, err := background.Load(filepath.Join(dir, "does-not-exist"))
	is.True(errors.Is(err, background.ErrEmptySet))
}

func testSet(t *testing.T, n int) *background.Set {
	frames := make([]videoframe.Frame, n)
	for i := range frames {
		frames[i] = videoframe.Solid(videoframe.Dimensions{W: 1, H: 1}, color.RGBA{R: uint8(i)})
	}
	set, err := background.FromFrames(frames...)
	require.NoError(t, err)
	return set
}

func TestAdvanceNTimesReturnsToStart(t *testing.T) {
	is := is.New(t)
	for _, n := range []int{1, 2, 5} {
		set := testSet(t, n)
		start := set.Current()
		for i := 0; i < n; i++ {
			set.Advance()
		}
		is.True(set.Current().Equal(start))
		is.Equal(set.Index(), 0)
	}
}

func TestRetreatNTimesReturnsToStart(t *testing.T) {
	is := is.New(t)
	for _, n := range []int{1, 3, 4} {
		set := testSet(t, n)
		start := set.Current()
		for i := 0; i < n; i++ {
			set.Retreat()
		}
		is.True(set.Current().Equal(start))
	}
}

func TestAdvanceThenRetreatIsIdentity(t *testing.T) {
	is := is.New(t)
	set := testSet(t, 3)
	set.Advance()
	before := set.Index()
	set.Advance()
	set.Retreat()
	is.Equal(set.Index(), before)
}

func TestRetreatFromFirstWrapsToLast(t *testing.T) {
	is := is.New(t)
	set := testSet(t, 4)
	set.Retreat()
	is.Equal(set.Index(), 3)
}

func TestFromFramesRejectsEmpty(t *testing.T) {
	is := is.New(t)
	_, err := background.FromFrames()
	is.True(errors.Is(err, background.ErrEmptySet))
}
