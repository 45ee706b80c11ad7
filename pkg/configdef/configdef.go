package configdef

import (
	"fmt"
	"strings"

	"github.com/tauraamui/xerror"
	"gopkg.in/dealancer/validate.v2"
)

var ErrInvalidConfig = xerror.New("invalid configuration")

type Recording struct {
	Enabled    bool    `json:"enabled"`
	OutputPath string  `json:"output_path"`
	Codec      string  `json:"codec" validate:"empty=false"`
	FPS        float64 `json:"fps" validate:"gt=0 & lte=120"`
}

type Values struct {
	Debug         bool      `json:"debug"`
	BackgroundDir string    `json:"background_dir"`
	Threshold     float64   `json:"threshold" validate:"gte=0 & lte=1"`
	OutputWidth   int       `json:"output_width" validate:"gte=16 & lte=7680"`
	OutputHeight  int       `json:"output_height" validate:"gte=16 & lte=4320"`
	CameraIndex   int       `json:"camera_index" validate:"gte=0"`
	Segmenter     string    `json:"segmenter" validate:"one_of=general,landscape,chroma,fixed"`
	// ModelPath points at an ONNX selfie segmentation model taking NCHW input.
	ModelPath     string    `json:"model_path"`
	VideoBackend  string    `json:"video_backend"`
	LogFile       string    `json:"log_file"`
	Recording     Recording `json:"recording"`
}

func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if needsModel(v.Segmenter) && len(v.ModelPath) == 0 {
		return fmt.Errorf(validationErrorHeader, xerror.Errorf("%s segmenter requires a model_path", v.Segmenter))
	}
	if len(v.Recording.Codec) != 4 {
		return fmt.Errorf(validationErrorHeader, xerror.Errorf("recording codec %q must be a FourCC", v.Recording.Codec))
	}
	return nil
}

func needsModel(segmenter string) bool {
	s := strings.ToLower(segmenter)
	return s == "general" || s == "landscape"
}
