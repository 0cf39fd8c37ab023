package workflow

import "time"

// RunState is the mutable state of one signup run. The engine owns it
// for the lifetime of the run, nothing else writes to it.
type RunState struct {
	Account Account
	Step    Step
	Gates   Gates

	Progress          int
	ConsecutiveErrors int
	TotalActions      int

	Done       bool
	Success    bool
	ErrMessage string

	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunState starts a run at the init milestone.
func NewRunState(acc Account) *RunState {
	return &RunState{
		Account:   acc,
		Step:      StepInit,
		Progress:  StepInit.Progress(),
		StartedAt: time.Now(),
	}
}

// setProgress raises the progress milestone. Smaller values are
// ignored so progress never moves backwards.
func (st *RunState) setProgress(p int) {
	if p > st.Progress {
		st.Progress = p
	}
}

// enterStep moves the run to a new step and applies its milestone.
func (st *RunState) enterStep(s Step) {
	st.Step = s
	st.setProgress(s.Progress())
}

// Summary is the final report of a run.
type Summary struct {
	Success      bool
	Progress     int
	Step         Step
	ErrorMessage string
	TotalActions int
	Duration     time.Duration
	AccountEmail string
}

func (st *RunState) summary() Summary {
	return Summary{
		Success:      st.Success,
		Progress:     st.Progress,
		Step:         st.Step,
		ErrorMessage: st.ErrMessage,
		TotalActions: st.TotalActions,
		Duration:     st.FinishedAt.Sub(st.StartedAt),
		AccountEmail: st.Account.Email,
	}
}
