package session

import "time"

// DefaultStaleCutoff is how long a record may go without updates before
// readers treat its producer as gone.
const DefaultStaleCutoff = time.Hour

// IsAlive reports whether rec was updated less than cutoff before now.
// A record exactly cutoff old is dead. A non-positive cutoff disables expiry.
func IsAlive(rec Record, now time.Time, cutoff time.Duration) bool {
	if cutoff <= 0 {
		return true
	}
	return now.Sub(rec.UpdatedAt) < cutoff
}

// Partition splits s into alive and stale records. s is not modified.
func Partition(s Sessions, now time.Time, cutoff time.Duration) (alive, stale Sessions) {
	alive = make(Sessions, len(s))
	stale = Sessions{}
	for id, rec := range s {
		if IsAlive(rec, now, cutoff) {
			alive[id] = rec
		} else {
			stale[id] = rec
		}
	}
	return alive, stale
}

// PruneStale returns a commit transform deleting every record that is stale
// at now. It re-checks under the store lock, so a record refreshed after the
// caller's last read survives.
func PruneStale(now time.Time, cutoff time.Duration) func(Sessions) Sessions {
	return func(s Sessions) Sessions {
		if s == nil {
			return Sessions{}
		}
		for id, rec := range s {
			if !IsAlive(rec, now, cutoff) {
				delete(s, id)
			}
		}
		return s
	}
}
