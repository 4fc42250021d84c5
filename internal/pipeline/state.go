package pipeline

// State is the coordinator lifecycle phase
type State int

const (
	StateUninitialized State = iota
	StateAwaitingPermission
	StateBuilding
	StateActive
	StatePaused
	// StateIdle means no pipeline: a build or camera start failed
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingPermission:
		return "awaiting_permission"
	case StateBuilding:
		return "building"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of the coordinator
type Snapshot struct {
	State      State
	Generation uint64
	Config     ConfigID
	InstanceID string

	Rebuilds     uint64
	StaleDropped uint64
}
