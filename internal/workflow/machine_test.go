package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcomeFor(desc string) Outcome {
	return Evaluate(desc)
}

func TestAdvanceIgnoresFailedOutcomes(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepEmail)

	m.Advance(st, outcomeFor("mobile_ui type FAILED: element not found: email field"))

	assert.Equal(t, StepEmail, st.Step)
	assert.False(t, st.Gates.Email.Typed)
}

func TestLaterStepGatesNeverSetWhileEarlierStepCurrent(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepEmail)

	// Signals for the name screen arrive while email is current.
	m.Advance(st, outcomeFor("mobile_ui type SUCCESS: typed into first name field"))

	assert.False(t, st.Gates.Name.FirstTyped)
	assert.False(t, st.Gates.Name.LastTyped)
	assert.Equal(t, StepEmail, st.Step)
}

func TestEmailTwoPhaseTypeThenNext(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepEmail)

	m.Advance(st, outcomeFor("mobile_ui type SUCCESS: typed into email field"))
	require.True(t, st.Gates.Email.Typed)
	// Typing never advances the step on the same cycle.
	require.Equal(t, StepEmail, st.Step)

	m.Advance(st, outcomeFor("mobile_ui click SUCCESS: clicked Next button after email"))
	assert.Equal(t, StepPassword, st.Step)
	assert.Equal(t, 35, st.Progress)
}

func TestDuplicateTypedOutcomeIsIdempotent(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepEmail)

	m.Advance(st, outcomeFor("mobile_ui type SUCCESS: typed into email field"))
	m.Advance(st, outcomeFor("mobile_ui type SUCCESS: typed into email field"))

	assert.True(t, st.Gates.Email.Typed)
	assert.Equal(t, StepEmail, st.Step)
}

func TestDetailsGatesSatisfiedInDeclaredOrder(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepDetails)

	// A year outcome cannot satisfy anything while the day gate is pending.
	m.Advance(st, outcomeFor("mobile_ui type SUCCESS: typed into year field"))
	assert.False(t, st.Gates.Details.YearTyped)
	assert.Equal(t, "details_day_selected", st.Gates.NextPending(StepDetails))

	m.Advance(st, outcomeFor("mobile_ui click SUCCESS: clicked day dropdown"))
	m.Advance(st, outcomeFor("mobile_ui click SUCCESS: selected option day option 15"))
	m.Advance(st, outcomeFor("mobile_ui click SUCCESS: clicked month dropdown"))
	m.Advance(st, outcomeFor("mobile_ui click SUCCESS: selected option month option January"))
	m.Advance(st, outcomeFor("mobile_ui type SUCCESS: typed into year field"))
	require.True(t, st.Gates.Satisfied(StepDetails))
	require.Equal(t, StepDetails, st.Step)

	m.Advance(st, outcomeFor("mobile_ui click SUCCESS: clicked Next button after details"))
	assert.Equal(t, StepName, st.Step)
	assert.Equal(t, 65, st.Progress)
}

func TestInboxShortCircuitFromDetails(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepDetails)

	m.Advance(st, outcomeFor("navigator post_auth_nav SUCCESS: inbox reached after 0 dialogs dismissed"))

	assert.True(t, st.Done)
	assert.True(t, st.Success)
	assert.Equal(t, StepCleanup, st.Step)
	assert.Equal(t, 100, st.Progress)
}

func TestAuthWaitTimeoutStillAdvances(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepAuthWait)

	out := outcomeFor("mobile_ui wait_auth SUCCESS: timeout_exhausted, continuing anyway")
	require.True(t, out.Success)
	require.True(t, out.Signals.Has(SignalTimeout))

	m.Advance(st, out)
	assert.Equal(t, StepPostAuth, st.Step)
	assert.Equal(t, 90, st.Progress)
}

func TestVerifyTimeoutCompletesWithoutInboxSighting(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepVerify)

	out := outcomeFor("mobile_ui verify_inbox SUCCESS: timeout_exhausted, treating signup as complete")
	require.True(t, out.Success)
	require.False(t, out.Signals.Has(SignalInbox))

	m.Advance(st, out)
	assert.True(t, st.Done)
	assert.True(t, st.Success)
	assert.Equal(t, StepCleanup, st.Step)
}

func TestProgressIsMonotonic(t *testing.T) {
	st := NewRunState(DemoAccount())
	st.enterStep(StepName)
	require.Equal(t, 65, st.Progress)

	// Re-entering an earlier milestone must not lower progress.
	st.setProgress(25)
	assert.Equal(t, 65, st.Progress)

	seen := st.Progress
	for _, s := range []Step{StepCaptcha, StepAuthWait, StepPostAuth, StepVerify, StepCleanup} {
		st.enterStep(s)
		assert.GreaterOrEqual(t, st.Progress, seen)
		seen = st.Progress
	}
}

func TestForceSkipAdvancesWithVacuousGates(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepDetails)

	m.ForceSkip(st)

	assert.True(t, st.Gates.Satisfied(StepDetails))
	assert.Equal(t, StepName, st.Step)
	assert.False(t, st.Done)
}

func TestForceSkipOnVerifyEndsRun(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepVerify)

	m.ForceSkip(st)

	assert.True(t, st.Done)
	assert.True(t, st.Success)
}

func TestMarkErrorKeepsProgress(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepPassword)

	m.MarkError(st, "too many consecutive failures")

	assert.True(t, st.Done)
	assert.False(t, st.Success)
	assert.Equal(t, StepError, st.Step)
	assert.Equal(t, 35, st.Progress)
	assert.Equal(t, "too many consecutive failures", st.ErrMessage)
}

func TestWelcomeClickAdvancesToEmail(t *testing.T) {
	m := &Machine{}
	st := NewRunState(DemoAccount())
	st.enterStep(StepWelcome)
	require.Equal(t, 10, st.Progress)

	m.Advance(st, outcomeFor("mobile_ui click SUCCESS: clicked create account button"))

	assert.Equal(t, StepEmail, st.Step)
	assert.Equal(t, 25, st.Progress)
}
