package app

import "time"

// State is the single source of truth for UI mode. Exactly one state is
// active at a time and only the controller mutates it, which makes the
// illegal flag combinations of ad-hoc booleans unrepresentable.
type State int

const (
	StateViewfinder State = iota
	StateCapturing
	StateSending
	StateViewing
	StateBrowsing
	StateErrorDisplay
)

// String returns the state name used in log records.
func (s State) String() string {
	switch s {
	case StateViewfinder:
		return "viewfinder"
	case StateCapturing:
		return "capturing"
	case StateSending:
		return "sending"
	case StateViewing:
		return "viewing"
	case StateBrowsing:
		return "browsing"
	case StateErrorDisplay:
		return "error_display"
	default:
		return "invalid"
	}
}

// CapturedImage describes one stored capture. It is read-only once created;
// later captures supersede it without deleting the file.
type CapturedImage struct {
	Path       string
	SizeBytes  int64
	CapturedAt time.Time
}
