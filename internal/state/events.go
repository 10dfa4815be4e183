package state

import "time"

// Event is an outbound notification for the render layer.
type Event interface {
	isEvent()
}

type CardFlipped struct {
	ID     string
	Visual Visual
}

type PhaseChanged struct {
	Phase Phase
}

type TimeUpdated struct {
	Seconds int
}

type HintCountChanged struct {
	Remaining int
}

type ComboBonusFired struct {
	Text    string
	Seconds int
}

// PairResolved reports the outcome of a two-card check.
type PairResolved struct {
	PairKey string
	Matched bool
}

func (CardFlipped) isEvent()      {}
func (PhaseChanged) isEvent()     {}
func (TimeUpdated) isEvent()      {}
func (HintCountChanged) isEvent() {}
func (ComboBonusFired) isEvent()  {}
func (PairResolved) isEvent()     {}

// Task is work a transition asks the owner to run after a delay.
type Task int

const (
	TaskSettle Task = iota + 1
	TaskEndReveal
)

func (t Task) String() string {
	switch t {
	case TaskSettle:
		return "settle"
	case TaskEndReveal:
		return "endReveal"
	default:
		return "unknown"
	}
}

type Deferred struct {
	Task  Task
	Delay time.Duration
}

// Effects is the result of a transition: notifications to publish and
// tasks to schedule.
type Effects struct {
	Events   []Event
	Deferred []Deferred
}

func (fx *Effects) emit(e Event) {
	fx.Events = append(fx.Events, e)
}

func (fx *Effects) after(task Task, delay time.Duration) {
	fx.Deferred = append(fx.Deferred, Deferred{Task: task, Delay: delay})
}

// Empty reports whether the transition changed nothing observable.
func (fx Effects) Empty() bool {
	return len(fx.Events) == 0 && len(fx.Deferred) == 0
}
