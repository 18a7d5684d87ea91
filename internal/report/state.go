package report

import (
	"fmt"

	"github.com/pfrederiksen/dfbnet-assist/internal/referee"
)

// State is a step in adding one referee.
type State int

const (
	StateIdle State = iota
	StateOpeningForm
	StateFilling
	StateConfirming
	StateDone
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpeningForm:
		return "opening-form"
	case StateFilling:
		return "filling"
	case StateConfirming:
		return "confirming"
	case StateDone:
		return "done"
	case StateSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether s ends a referee's sequence.
func (s State) Terminal() bool {
	return s == StateDone || s == StateSkipped
}

// Outcome is the result of adding one referee.
type Outcome struct {
	Referee referee.Name
	// State is StateDone or StateSkipped.
	State State
	// FailedIn is the state whose step failed; only set when skipped.
	FailedIn State
	Err      error
}

func (o Outcome) String() string {
	name := o.Referee.First() + " " + o.Referee.Last()
	if o.State == StateSkipped {
		return fmt.Sprintf("%s: skipped in %s (%v)", name, o.FailedIn, o.Err)
	}
	return fmt.Sprintf("%s: %s", name, o.State)
}

// Report summarizes the processing of one match-report page.
type Report struct {
	Outcomes []Outcome
	// Abandoned is set when the page never reached the referee loop.
	Abandoned error
	// FollowUp is set when the Mannschaften sequence failed.
	FollowUp error
}

// Filled counts referees that reached StateDone.
func (r Report) Filled() int {
	return r.count(StateDone)
}

// Skipped counts referees that ended in StateSkipped.
func (r Report) Skipped() int {
	return r.count(StateSkipped)
}

func (r Report) count(s State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == s {
			n++
		}
	}
	return n
}
