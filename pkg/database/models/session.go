package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&Session{})
}

// Session is one finished playback run.
type Session struct {
	gorm.Model
	UUID          string `gorm:"uniqueIndex"`
	Mode          string
	Input         string
	BackgroundDir string
	Backgrounds   int
	Frames        int
	Recorded      int
	Snapshots     int
	Switches      int
	ExitReason    string
	ErrorKind     string
	DurationMS    int64
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if len(s.UUID) == 0 {
		s.UUID = uuid.NewString()
	}
	return nil
}

func (s Session) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}
