package videobackend

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type openCVBackend struct{}

func (b *openCVBackend) Connect(cancel context.Context, addr string) (Connection, error) {
	conn := openCVConnection{}
	err := conn.connect(cancel, addr)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (b *openCVBackend) NewWriter(path, codec string, fps float64, dims videoframe.Dimensions) (Writer, error) {
	if err := ensureDirectoryPathExists(filepath.Dir(path)); err != nil {
		return nil, err
	}

	vw, err := openVideoWriter(path, codec, fps, dims.W, dims.H, true)
	if err != nil {
		return nil, xerror.Errorf("unable to open video writer for %s: %w", path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, xerror.Errorf("video writer for %s did not open with codec %s", path, codec)
	}
	return &openCVWriter{vw: vw, dims: dims}, nil
}

func (b *openCVBackend) NewWindow(title string) Window {
	return &openCVWindow{w: gocv.NewWindow(title)}
}

var openVideoWriter = func(filename, codec string, fps float64, width, height int, isColor bool) (*gocv.VideoWriter, error) {
	return gocv.VideoWriterFile(filename, codec, fps, width, height, isColor)
}

func ensureDirectoryPathExists(path string) error {
	err := fs.MkdirAll(path, os.ModePerm|os.ModeDir)
	if err == nil || os.IsExist(err) {
		return nil
	}
	return err
}

type openCVWriter struct {
	vw   *gocv.VideoWriter
	dims videoframe.Dimensions
}

func (w *openCVWriter) Write(frame videoframe.Frame) error {
	if frame.Dimensions() != w.dims {
		return xerror.Errorf(
			"frame of %dx%d does not fit writer opened for %dx%d",
			frame.Dimensions().W, frame.Dimensions().H, w.dims.W, w.dims.H,
		)
	}
	mat, err := gocv.ImageToMatRGB(frame.Image())
	if err != nil {
		return xerror.Errorf("unable to convert frame into OpenCV mat: %w", err)
	}
	defer mat.Close()
	return w.vw.Write(mat)
}

func (w *openCVWriter) Close() error {
	return w.vw.Close()
}

type openCVWindow struct {
	w *gocv.Window
}

func (w *openCVWindow) Show(frame videoframe.Frame) error {
	mat, err := gocv.ImageToMatRGB(frame.Image())
	if err != nil {
		return xerror.Errorf("unable to convert frame into OpenCV mat: %w", err)
	}
	defer mat.Close()
	w.w.IMShow(mat)
	return nil
}

func (w *openCVWindow) WaitKey(delay int) int {
	return w.w.WaitKey(delay)
}

func (w *openCVWindow) Close() error {
	return w.w.Close()
}

type openCVConnection struct {
	uuid   string
	mu     sync.Mutex
	isOpen bool
	vc     *gocv.VideoCapture
}

func (c *openCVConnection) connect(cancel context.Context, addr string) error {
	connAndError := make(chan openVideoStreamResult, 1)
	go openVideoStream(addr, connAndError)
	select {
	case r := <-connAndError:
		if r.err != nil {
			return r.err
		}
		c.vc = r.vc
		c.isOpen = true
		return nil
	case <-cancel.Done():
		go closeLateCapture(connAndError)
		return xerror.New("connection cancelled")
	}
}

// closeLateCapture waits out an abandoned open and releases whatever it
// managed to open.
func closeLateCapture(connAndError <-chan openVideoStreamResult) {
	if r := <-connAndError; r.vc != nil {
		if err := closeVideoCapture(r.vc); err != nil {
			log.Warn("Unable to close abandoned video capture: %v", err)
		}
	}
}

type openVideoStreamResult struct {
	vc  *gocv.VideoCapture
	err error
}

func openVideoStream(addr string, d chan openVideoStreamResult) {
	vc, err := openVideoCapture(addr)
	if err == nil && !videoCaptureIsOpen(vc) {
		closeVideoCapture(vc)
		vc, err = nil, xerror.Errorf("unable to open video capture %s", addr)
	}
	d <- openVideoStreamResult{vc: vc, err: err}
}

// numeric addresses open capture devices, anything else a file or stream
var openVideoCapture = func(addr string) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(addr)
}

var videoCaptureIsOpen = func(vc *gocv.VideoCapture) bool {
	return vc.IsOpened()
}

var closeVideoCapture = func(vc *gocv.VideoCapture) error {
	return vc.Close()
}

var readFromVideoConnection = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

func (c *openCVConnection) UUID() string {
	if len(c.uuid) == 0 {
		c.uuid = uuid.NewString()
	}
	return c.uuid
}

func (c *openCVConnection) Read() (videoframe.Frame, error) {
	mat := gocv.NewMat()
	defer mat.Close()

	c.mu.Lock()
	ok := readFromVideoConnection(c.vc, &mat)
	c.mu.Unlock()
	if !ok || mat.Empty() {
		return videoframe.Frame{}, xerror.New("unable to read from video connection")
	}

	img, err := mat.ToImage()
	if err != nil {
		return videoframe.Frame{}, xerror.Errorf("unable to convert OpenCV mat into image: %w", err)
	}
	return videoframe.FromImage(img), nil
}

func (c *openCVConnection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isOpen {
		return c.vc.IsOpened()
	}
	return false
}

func (c *openCVConnection) Close() error {
	c.mu.Lock()
	c.isOpen = false
	c.mu.Unlock()
	return c.vc.Close()
}
