package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/tacusci/logging/v2"
	"github.com/tauraamui/bgreplace/pkg/config"
	"github.com/tauraamui/bgreplace/pkg/configdef"
	data "github.com/tauraamui/bgreplace/pkg/database"
	"github.com/tauraamui/bgreplace/pkg/log"
)

const usage = `Usage: bgreplace setup | remove-setup | history
       bgreplace image  [-segmenter name] <image path> [background dir]
       bgreplace video  [-record path] [-segmenter name] <video path> [background dir]
       bgreplace camera [-record path] [-segmenter name] [index] [background dir]`

const historyLimit = 20

func setup() (string, error) {
	log.Info("Setting up bgreplace...")

	err := config.DefaultCreator().Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	err = data.Setup()
	if err != nil {
		if !errors.Is(err, data.ErrDBAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	return "Setup successful...", nil
}

func removeSetup() (string, error) {
	log.Info("Removing setup for bgreplace...")
	if err := data.Destroy(); err != nil {
		log.Error("unable to delete database file: %s", err.Error())
	}
	if err := config.DefaultDestroyer().Destroy(); err != nil {
		log.Error("unable to delete config file: %s", err.Error())
	}

	return "Removing setup successful...", nil
}

func history() (string, error) {
	sessions, err := data.RecentSessions(historyLimit)
	if err != nil {
		return "", err
	}
	printHistory(color.Output, sessions)
	return "", nil
}

func manage(args []string) (string, error) {
	if len(args) == 0 {
		return usage, nil
	}

	command := args[0]
	switch command {
	case "setup":
		return setup()
	case "remove-setup":
		return removeSetup()
	case "history":
		return history()
	case "image", "video", "camera":
		return play(command, args[1:])
	default:
		return usage, nil
	}
}

func play(command string, args []string) (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}

	if cfg.Debug {
		logging.CurrentLoggingLevel = logging.DebugLevel
	}
	if len(cfg.LogFile) > 0 {
		mirror := log.MirrorToFile(cfg.LogFile)
		defer mirror.Close()
	}

	req, err := parseRequest(command, args, cfg)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			fmt.Print("\r")
			log.Warn("Received signal: %s", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	stats, err := runPlayback(ctx, req, cfg)
	if err != nil {
		return "", err
	}
	return summarise(stats), nil
}

func loadConfig() (configdef.Values, error) {
	values, err := config.DefaultResolver().Resolve()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("No config file found, using defaults (run 'bgreplace setup' to create one)")
			return config.DefaultValues(), nil
		}
		return configdef.Values{}, err
	}
	return values, nil
}

func configureLogging() {
	logging.CallbackLabelLevel = 5
	logging.ColorLogLevelLabelOnly = true
	loggingLevel := os.Getenv("BGREPLACE_LOGGING_LEVEL")

	switch strings.ToLower(loggingLevel) {
	case "info":
		logging.CurrentLoggingLevel = logging.InfoLevel
	case "warn":
		logging.CurrentLoggingLevel = logging.WarnLevel
	case "debug":
		logging.CurrentLoggingLevel = logging.DebugLevel
		logging.CallbackLabel = true
	default:
		logging.CurrentLoggingLevel = logging.WarnLevel
	}
}

func main() {
	envErr := godotenv.Load()
	configureLogging()
	if envErr != nil {
		log.Debug("No .env file loaded: %v", envErr)
	}

	status, err := manage(os.Args[1:])
	if err != nil {
		reportFailure(err)
		os.Exit(1)
	}

	if len(status) > 0 {
		fmt.Fprintln(color.Output, status)
	}
}
