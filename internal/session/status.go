package session

// Status is the derived state of one session as shown in the tray.
type Status string

const (
	StatusWorking Status = "working" // processing a prompt or running tools
	StatusWaiting Status = "waiting" // back at the prompt, or needs approval
	StatusActive  Status = "active"  // started, no prompt yet
	StatusIdle    Status = "idle"
	StatusUnknown Status = "unknown"
)

// ParseStatus maps a stored status string back to the enum. Values written
// by other versions that this build does not know become StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusWorking, StatusWaiting, StatusActive, StatusIdle, StatusUnknown:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// UnmarshalText normalizes unknown values while decoding the store.
func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}

// Priority orders statuses by how much attention they need:
// working > waiting > active > idle > unknown.
func (s Status) Priority() int {
	switch s {
	case StatusWorking:
		return 4
	case StatusWaiting:
		return 3
	case StatusActive:
		return 2
	case StatusIdle:
		return 1
	default:
		return 0
	}
}

// Aggregate returns the highest-priority status among records, or
// StatusIdle when there are none.
func Aggregate(records Sessions) Status {
	if len(records) == 0 {
		return StatusIdle
	}
	best := StatusUnknown
	for _, rec := range records {
		if rec.Status.Priority() > best.Priority() {
			best = rec.Status
		}
	}
	return best
}
