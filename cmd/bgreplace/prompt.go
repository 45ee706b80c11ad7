package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/bgreplace/pkg/playback"
	"golang.org/x/term"
)

const savePrompt = "Save frame as (.png or .jpg, blank to cancel)"

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

type stdinPathPrompter struct {
	readFrom *bufio.Reader
	out      io.Writer
}

func (s stdinPathPrompter) PromptSavePath() (string, error) {
	fmt.Fprintf(s.out, "%s: ", savePrompt)
	value, err := s.readFrom.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(value) > 0) {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// newPathPrompter only offers saving when someone is at the terminal to answer.
func newPathPrompter() playback.PathPrompter {
	if !stdinIsTerminal() {
		log.Warn("Standard input is not a terminal, saving frames is disabled")
		return nil
	}
	return stdinPathPrompter{readFrom: bufio.NewReader(os.Stdin), out: os.Stdout}
}
