package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/tacusci/logging/v2"
)

var (
	mirrorMu sync.Mutex
	mirror   io.Writer
)

var Debug = func(format string, a ...interface{}) {
	logging.Debug(format, a...) //nolint
	writeMirror("DEBUG", format, a...)
}

var Info = func(format string, a ...interface{}) {
	logging.Info(format, a...) //nolint
	writeMirror("INFO", format, a...)
}

var Warn = func(format string, a ...interface{}) {
	logging.Warn(format, a...) //nolint
	writeMirror("WARN", format, a...)
}

var Error = func(format string, a ...interface{}) {
	logging.Error(format, a...) //nolint
	writeMirror("ERROR", format, a...)
}

var Fatal = func(format string, a ...interface{}) {
	writeMirror("FATAL", format, a...)
	logging.Fatal(format, a...) //nolint
}

// MirrorToFile tees every log line that passes the current level into a
// size rotated file at path. Closing the returned closer stops mirroring.
func MirrorToFile(path string) io.Closer {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     7, // days
		Compress:   true,
	}
	setMirror(lj)
	return closerFunc(func() error {
		setMirror(nil)
		return lj.Close()
	})
}

// MirrorTo is MirrorToFile for an arbitrary writer.
func MirrorTo(w io.Writer) func() {
	setMirror(w)
	return func() { setMirror(nil) }
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func setMirror(w io.Writer) {
	mirrorMu.Lock()
	defer mirrorMu.Unlock()
	mirror = w
}

func writeMirror(label, format string, a ...interface{}) {
	mirrorMu.Lock()
	defer mirrorMu.Unlock()
	if mirror == nil || !enabled(label) {
		return
	}
	fmt.Fprintf(
		mirror, "%s [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05"), label, fmt.Sprintf(format, a...),
	)
}

// follows the ordering tacusci/logging applies to console output
func enabled(label string) bool {
	current := logging.CurrentLoggingLevel
	switch label {
	case "DEBUG":
		return current == logging.DebugLevel
	case "WARN":
		return current == logging.DebugLevel || current == logging.WarnLevel
	}
	return current != logging.SilentLevel
}
