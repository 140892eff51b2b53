package classifications

import "time"

// Layer bounds for a classification's access tier.
const (
	MinLayer = 0
	MaxLayer = 4
)

// Classification is one permission layer granted to one user for an
// externally assigned classification id. The pair (ID, UserID) is unique
// within the store. ModificationDate is stamped by the store on write and is
// zero until first persisted.
type Classification struct {
	ID               int       `json:"id"`
	Layer            int       `json:"layer"`
	UserID           string    `json:"user"`
	ModificationDate time.Time `json:"modificationDate"`
}

// State describes a user's stored classification set at read time. It is
// computed, never persisted.
type State int

const (
	// StateAbsent means no rows are stored for the user.
	StateAbsent State = iota
	// StateFresh means rows exist and none exceed the expiration threshold.
	StateFresh
	// StateStale means rows exist and at least one exceeds the threshold.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}
