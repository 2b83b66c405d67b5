package invalidation

type Status int

const (
	StatusNotReady Status = iota
	StatusReady
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return "not_ready"
	}
}
