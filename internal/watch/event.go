package watch

// Op is the kind of change observed for a marker file.
type Op int

const (
	Add Op = iota + 1
	Change
	Remove
)

func (o Op) String() string {
	switch o {
	case Add:
		return "add"
	case Change:
		return "change"
	case Remove:
		return "remove"
	}
	return "unknown"
}

// Event is a qualifying change to a marker file.
type Event struct {
	Op   Op
	Path string
}

// Source delivers marker events until closed.
type Source interface {
	// Events is closed when the source stops.
	Events() <-chan Event
	// Errors reports watch failures that did not stop the source.
	Errors() <-chan error
	Close() error
}
