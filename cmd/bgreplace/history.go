package main

import (
	"io"

	"github.com/fatih/color"
	"github.com/tauraamui/bgreplace/pkg/database/models"
)

const historyRowFormat = "%-19s  %-6s  %6v  %8v  %-13s  %s\n"

func printHistory(w io.Writer, sessions []models.Session) {
	if len(sessions) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No sessions recorded yet")
		return
	}

	color.New(color.FgCyan, color.Bold).Fprintf(
		w, historyRowFormat, "STARTED", "MODE", "FRAMES", "RECORDED", "EXIT", "INPUT",
	)
	for _, s := range sessions {
		exit := s.ExitReason
		paint := color.New(color.FgGreen)
		switch {
		case len(s.ErrorKind) > 0:
			exit = s.ErrorKind
			paint = color.New(color.FgRed)
		case s.ExitReason == "cancelled" || s.ExitReason == "source lost":
			paint = color.New(color.FgYellow)
		}
		paint.Fprintf(
			w, historyRowFormat,
			s.CreatedAt.Format("2006-01-02 15:04:05"), s.Mode, s.Frames, s.Recorded, exit, s.Input,
		)
	}
}
