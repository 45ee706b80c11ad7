package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/tauraamui/bgreplace/pkg/configdef"
	data "github.com/tauraamui/bgreplace/pkg/database"
	"github.com/tauraamui/bgreplace/pkg/database/models"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/playback"
	"github.com/tauraamui/bgreplace/pkg/sink"
	"github.com/tauraamui/bgreplace/pkg/source"
	"github.com/tauraamui/bgreplace/pkg/video/videobackend"
	"github.com/tauraamui/bgreplace/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var errUsage = xerror.New("invalid arguments")

type request struct {
	kind          source.Kind
	input         string
	cameraIndex   int
	backgroundDir string
	segmenter     string
	record        bool
	recordPath    string
}

func parseRequest(command string, args []string, cfg configdef.Values) (request, error) {
	req := request{
		cameraIndex:   cfg.CameraIndex,
		backgroundDir: cfg.BackgroundDir,
		segmenter:     cfg.Segmenter,
		record:        cfg.Recording.Enabled,
		recordPath:    cfg.Recording.OutputPath,
	}

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	recordPath := flags.String("record", "", "record the composited output to this path")
	segmenter := flags.String("segmenter", "", "segmenter to use, overrides config")
	if err := flags.Parse(args); err != nil {
		return request{}, xerror.Errorf("%w: %v", errUsage, err)
	}
	if len(*recordPath) > 0 {
		req.record = true
		req.recordPath = *recordPath
	}
	if len(*segmenter) > 0 {
		req.segmenter = *segmenter
	}

	positional := flags.Args()
	switch command {
	case "image", "video":
		req.kind = source.KindVideo
		if command == "image" {
			req.kind = source.KindStill
		}
		if len(positional) == 0 {
			return request{}, xerror.Errorf("%w: %s needs an input path", errUsage, command)
		}
		req.input, positional = positional[0], positional[1:]
	case "camera":
		req.kind = source.KindCamera
		if len(positional) > 0 {
			if index, err := strconv.Atoi(positional[0]); err == nil {
				req.cameraIndex, positional = index, positional[1:]
			}
		}
	default:
		return request{}, xerror.Errorf("%w: unknown mode %s", errUsage, command)
	}

	if len(positional) > 0 {
		req.backgroundDir, positional = positional[0], positional[1:]
	}
	if len(positional) > 0 {
		return request{}, xerror.Errorf("%w: unexpected %v", errUsage, positional)
	}
	req.recordPath = sink.ResolvePath(req.recordPath)

	return req, nil
}

func buildOptions(req request, cfg configdef.Values) playback.Options {
	return playback.Options{
		Kind:          req.kind,
		Input:         req.input,
		CameraIndex:   req.cameraIndex,
		BackgroundDir: req.backgroundDir,
		Record:        req.record,
		Output: sink.OutputTarget{
			Path:  req.recordPath,
			Codec: cfg.Recording.Codec,
			FPS:   cfg.Recording.FPS,
		},
		Dimensions: videoframe.Dimensions{W: cfg.OutputWidth, H: cfg.OutputHeight},
		Segmenter:  req.segmenter,
		ModelPath:  cfg.ModelPath,
		Backend:    videobackend.Resolve(cfg.VideoBackend),
		KeyMap:     playback.DefaultKeyMap,
	}
}

func runPlayback(ctx context.Context, req request, cfg configdef.Values) (playback.Stats, error) {
	session, err := playback.Open(ctx, buildOptions(req, cfg))
	if err != nil {
		recordHistory(req, 0, playback.Stats{}, err)
		return playback.Stats{}, err
	}
	backgrounds := session.Backgrounds.Len()

	controller := playback.NewController(session, float32(cfg.Threshold), newPathPrompter())
	stats, err := controller.Run(ctx)
	recordHistory(req, backgrounds, stats, err)
	return stats, err
}

func recordHistory(req request, backgrounds int, stats playback.Stats, runErr error) {
	session := models.Session{
		Mode:          req.kind.String(),
		Input:         req.input,
		BackgroundDir: req.backgroundDir,
		Backgrounds:   backgrounds,
		Frames:        stats.Frames,
		Recorded:      stats.Recorded,
		Snapshots:     stats.Snapshots,
		Switches:      stats.Switches,
		ExitReason:    stats.Exit.String(),
		DurationMS:    stats.Duration.Milliseconds(),
	}
	if req.kind == source.KindCamera {
		session.Input = strconv.Itoa(req.cameraIndex)
	}
	if runErr != nil {
		session.ExitReason = "failed"
		session.ErrorKind = playback.Classify(runErr).String()
	}

	if err := data.RecordSession(&session); err != nil {
		if errors.Is(err, data.ErrDBNotSetup) {
			log.Debug("Session not stored: %v", err)
			return
		}
		log.Warn("Unable to store session history: %v", err)
	}
}

func summarise(stats playback.Stats) string {
	return fmt.Sprintf(
		"Finished (%s) after %d frames in %s: %d recorded, %d saved, %d background switches",
		stats.Exit, stats.Frames, stats.Duration.Round(time.Millisecond), stats.Recorded, stats.Snapshots, stats.Switches,
	)
}

func reportFailure(err error) {
	if errors.Is(err, errUsage) {
		color.New(color.FgRed).Fprintf(os.Stderr, "%v\n\n%s\n", err, usage)
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "%s: ", playback.Classify(err))
	fmt.Fprintln(os.Stderr, err)
}
