package model

import "time"

// Session records one run of the scanner. Detection results are not stored.
type Session struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	DisplayMode string    `json:"display_mode"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"` // zero while running
	Frames      int       `json:"frames"`
	Faces       int       `json:"faces"`
	Detections  int       `json:"detections"`
	StopReason  string    `json:"stop_reason"`
}

// Running reports whether the session has not been finished yet.
func (s *Session) Running() bool {
	return s.EndedAt.IsZero()
}

// Duration is the elapsed run time, measured up to now for running sessions.
func (s *Session) Duration() time.Duration {
	if s.Running() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}
