package segment

import (
	"image"

	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// Model picks which selfie segmentation network variant is loaded.
type Model int

const (
	ModelGeneral Model = iota
	ModelLandscape
)

func (m Model) String() string {
	if m == ModelLandscape {
		return NameLandscape
	}
	return NameGeneral
}

// InputSize is the resolution the network expects its input blob at.
func (m Model) InputSize() videoframe.Dimensions {
	if m == ModelLandscape {
		return videoframe.Dimensions{W: 256, H: 144}
	}
	return videoframe.Dimensions{W: 256, H: 256}
}

// ErrUnexpectedOutput reports a network whose output is not a single channel
// mask at its input resolution.
var ErrUnexpectedOutput = xerror.New("unexpected network output")

// OpenCVDNN runs a selfie segmentation network through OpenCV's dnn module.
// The model must take an NCHW float blob of 1x3xHxW RGB in [0,1] at the
// model's InputSize and produce one confidence value per input pixel.
// NHWC exports (the stock mediapipe tflite conversions) need transposing
// to NCHW before use.
type OpenCVDNN struct {
	model Model
	net   gocv.Net
}

func NewOpenCVDNN(modelPath string, model Model) (*OpenCVDNN, error) {
	if len(modelPath) == 0 {
		return nil, xerror.Errorf("%w: no %s model path configured", ErrUnavailable, model)
	}
	if _, err := fs.Stat(modelPath); err != nil {
		return nil, xerror.Errorf("%w: unable to find %s model: %v", ErrUnavailable, model, err)
	}

	net, err := readNet(modelPath)
	if err != nil {
		return nil, xerror.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.Debug("Loaded %s segmentation model from %s", model, modelPath)
	return &OpenCVDNN{model: model, net: net}, nil
}

var readNet = func(path string) (gocv.Net, error) {
	net := gocv.ReadNet(path, "")
	if net.Empty() {
		return net, xerror.Errorf("unable to read network from %s", path)
	}
	return net, nil
}

func (s *OpenCVDNN) Model() Model { return s.model }

func (s *OpenCVDNN) Segment(frame videoframe.Frame) (videoframe.Mask, error) {
	img, err := gocv.ImageToMatRGB(frame.Image())
	if err != nil {
		return videoframe.Mask{}, xerror.Errorf("unable to convert frame into OpenCV mat: %w", err)
	}
	defer img.Close()

	in := s.model.InputSize()
	blob := gocv.BlobFromImage(
		img, 1.0/255.0, image.Pt(in.W, in.H), gocv.NewScalar(0, 0, 0, 0), true, false,
	)
	defer blob.Close()

	s.net.SetInput(blob, "")
	out := s.net.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return videoframe.Mask{}, xerror.Errorf("unable to read network output: %w", err)
	}
	return maskFromOutput(data, in, frame.Dimensions())
}

// maskFromOutput copies the network's single channel output and resamples
// it up to the frame's resolution.
func maskFromOutput(data []float32, in, frame videoframe.Dimensions) (videoframe.Mask, error) {
	if len(data) != in.Area() {
		return videoframe.Mask{}, xerror.Errorf(
			"%w: got %d values, want %d for a %dx%d mask (is the model NCHW with one output channel?)",
			ErrUnexpectedOutput, len(data), in.Area(), in.W, in.H,
		)
	}
	mask, err := videoframe.NewMask(in, data)
	if err != nil {
		return videoframe.Mask{}, xerror.Errorf("%w: %v", ErrUnexpectedOutput, err)
	}
	return mask.Resize(frame), nil
}

func (s *OpenCVDNN) Close() error {
	return s.net.Close()
}
