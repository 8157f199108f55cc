package bridge

// Status is what the window and tray show.
type Status int

const (
	StatusReady Status = iota
	StatusStarted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusStarted:
		return "Started"
	case StatusError:
		return "Error"
	default:
		return "Ready"
	}
}
