package config

import "github.com/tauraamui/bgreplace/pkg/configdef"

type defaultSettingKey uint

const (
	BACKGROUNDDIR defaultSettingKey = 0x0
	THRESHOLD     defaultSettingKey = 0x1
	OUTPUTWIDTH   defaultSettingKey = 0x2
	OUTPUTHEIGHT  defaultSettingKey = 0x3
	SEGMENTER     defaultSettingKey = 0x4
	MODELPATH     defaultSettingKey = 0x5
	CODEC         defaultSettingKey = 0x6
	FPS           defaultSettingKey = 0x7
)

var defaultSettings = map[defaultSettingKey]interface{}{
	BACKGROUNDDIR: "backgrounds",
	THRESHOLD:     0.8,
	OUTPUTWIDTH:   640,
	OUTPUTHEIGHT:  480,
	SEGMENTER:     "general",
	MODELPATH:     "models/selfie_segmentation.onnx",
	CODEC:         "XVID",
	FPS:           20.0,
}

func defaultValues() configdef.Values {
	return configdef.Values{
		BackgroundDir: defaultSettings[BACKGROUNDDIR].(string),
		Threshold:     defaultSettings[THRESHOLD].(float64),
		OutputWidth:   defaultSettings[OUTPUTWIDTH].(int),
		OutputHeight:  defaultSettings[OUTPUTHEIGHT].(int),
		Segmenter:     defaultSettings[SEGMENTER].(string),
		ModelPath:     defaultSettings[MODELPATH].(string),
		Recording: configdef.Recording{
			Codec: defaultSettings[CODEC].(string),
			FPS:   defaultSettings[FPS].(float64),
		},
	}
}

// DefaultValues is the configuration used when no file has been set up.
func DefaultValues() configdef.Values {
	values := defaultValues()
	applyEnvOverrides(&values)
	return values
}
