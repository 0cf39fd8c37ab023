package workflow

// Machine applies evaluated outcomes to the run state. It only ever
// satisfies the earliest pending gate of the current step, signals for
// later gates are ignored until their turn comes.
type Machine struct{}

// gateSignals maps each gate to the signals a successful outcome must
// carry for that gate to count as satisfied.
var gateSignals = map[string][]Signal{
	"email_typed":                {SignalTyped, SignalFieldEmail},
	"password_typed":             {SignalTyped, SignalFieldPassword},
	"details_day_selected":       {SignalClicked, SignalFieldDay},
	"details_day_value_selected": {SignalOption, SignalFieldDay},
	"details_month_selected":     {SignalClicked, SignalFieldMonth},
	"details_month_value_selected": {SignalOption, SignalFieldMonth},
	"details_year_typed":         {SignalTyped, SignalFieldYear},
	"first_name_typed":           {SignalTyped, SignalFieldFirstName},
	"last_name_typed":            {SignalTyped, SignalFieldLastName},
}

// Advance consumes one successful outcome. Failed outcomes never move
// the machine, the engine handles those through the controller.
// Reaching the inbox completes the run from any step.
func (m *Machine) Advance(st *RunState, out Outcome) {
	if !out.Success {
		return
	}
	if out.Signals.Has(SignalInbox) {
		m.markSuccess(st)
		return
	}

	switch st.Step {
	case StepWelcome:
		if out.Signals.Has(SignalClicked) {
			st.setProgress(welcomeActionProgress)
			st.enterStep(StepEmail)
		}

	case StepEmail, StepPassword, StepDetails, StepName:
		m.advanceGated(st, out)

	case StepCaptcha:
		if out.Signals.Has(SignalLongPressed) {
			st.enterStep(StepAuthWait)
		}

	case StepAuthWait:
		st.enterStep(StepPostAuth)

	case StepPostAuth:
		st.enterStep(StepVerify)

	case StepVerify:
		m.markSuccess(st)
	}
}

// advanceGated satisfies the next pending gate when the outcome's
// signals match it, and moves to the next step on a Next click once
// the checklist is complete. A duplicate satisfying outcome is a
// no-op, the gate stays set.
func (m *Machine) advanceGated(st *RunState, out Outcome) {
	pending := st.Gates.NextPending(st.Step)
	if pending != "" {
		if signalsMatch(out.Signals, gateSignals[pending]) {
			st.Gates.SatisfyNext(st.Step)
		}
		return
	}
	// Checklist done, only a Next/continue click leaves the screen.
	if out.Signals.Has(SignalClicked) && out.Signals.Has(SignalNext) {
		st.enterStep(st.Step.Next())
	}
}

func signalsMatch(have SignalSet, want []Signal) bool {
	if len(want) == 0 {
		return false
	}
	for _, s := range want {
		if !have.Has(s) {
			return false
		}
	}
	return true
}

// ForceSkip vacuously satisfies the rest of the current screen's
// checklist and moves on. Used when the advisor decides the screen is
// not worth fighting.
func (m *Machine) ForceSkip(st *RunState) {
	if st.Step.Terminal() {
		return
	}
	st.Gates.SatisfyAll(st.Step)
	if st.Step == StepVerify {
		m.markSuccess(st)
		return
	}
	st.enterStep(st.Step.Next())
	if st.Step == StepCleanup {
		m.markSuccess(st)
	}
}

func (m *Machine) markSuccess(st *RunState) {
	st.enterStep(StepCleanup)
	st.Done = true
	st.Success = true
}

// MarkError moves the run to the error terminal, keeping whatever
// progress it earned.
func (m *Machine) MarkError(st *RunState, msg string) {
	st.Step = StepError
	st.Done = true
	st.Success = false
	st.ErrMessage = msg
}
