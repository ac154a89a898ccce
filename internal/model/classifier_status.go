package model

// ClassifierStatus is the load outcome of one cascade at session start.
type ClassifierStatus struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Feature   string `json:"feature"`
	Resource  string `json:"resource"`
	Loaded    bool   `json:"loaded"`
	Error     string `json:"error,omitempty"`
}
