package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keremvatan/go-mobile-signup-agent/internal/driver"
)

type fakeElement struct {
	displayed bool
}

func (f *fakeElement) Click(ctx context.Context) error                  { return nil }
func (f *fakeElement) TypeText(ctx context.Context, text string) error  { return nil }
func (f *fakeElement) ClearText(ctx context.Context) error              { return nil }
func (f *fakeElement) LongPress(ctx context.Context, holdMs int) error  { return nil }
func (f *fakeElement) IsDisplayed(ctx context.Context) (bool, error)    { return f.displayed, nil }

type fakeSession struct {
	find     func(loc driver.Locator) ([]driver.Element, error)
	tapErr   error
	pressErr error
	sizeErr  error
	quits    int
}

func (f *fakeSession) FindElements(ctx context.Context, loc driver.Locator) ([]driver.Element, error) {
	if f.find == nil {
		return nil, nil
	}
	return f.find(loc)
}

func (f *fakeSession) Tap(ctx context.Context, x, y int) error { return f.tapErr }

func (f *fakeSession) LongPressAt(ctx context.Context, x, y, holdMs int) error { return f.pressErr }

func (f *fakeSession) ScreenSize(ctx context.Context) (driver.Size, error) {
	if f.sizeErr != nil {
		return driver.Size{}, f.sizeErr
	}
	return driver.Size{Width: 1080, Height: 2400}, nil
}

func (f *fakeSession) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }

func (f *fakeSession) Quit() error {
	f.quits++
	return nil
}

// compliantSession finds a displayed element for every lookup except
// the auth progress bar, so the scripted flow walks straight through.
func compliantSession() *fakeSession {
	return &fakeSession{
		find: func(loc driver.Locator) ([]driver.Element, error) {
			if loc.Value == "android.widget.ProgressBar" {
				return nil, nil
			}
			return []driver.Element{&fakeElement{displayed: true}}, nil
		},
	}
}

// emptySession never finds anything and rejects coordinate fallbacks.
func emptySession() *fakeSession {
	return &fakeSession{
		tapErr:   errors.New("tap rejected"),
		pressErr: errors.New("press rejected"),
	}
}

type countingAssessor struct {
	calls int
}

func (c *countingAssessor) CaptureAndRead(ctx context.Context) (Reading, error) {
	c.calls++
	return Reading{Text: "Create account screen", Confidence: 0.9}, nil
}

type countingRecorder struct {
	calls int
}

func (c *countingRecorder) RecordAction(step Step, verb Verb, out Outcome) error {
	c.calls++
	return nil
}

func newTestEngine(s driver.Session, maxActions int, advisor Advisor, rec ActionRecorder) *Engine {
	exec := NewExecutor(s, nil)
	exec.settle = time.Millisecond
	exec.retryDelay = time.Millisecond
	exec.captchaRest = time.Millisecond
	exec.authWait = 10 * time.Millisecond
	exec.authPoll = time.Millisecond
	exec.authSettle = time.Millisecond
	exec.postAuth = 10 * time.Millisecond
	exec.poll = time.Millisecond
	exec.verifyMax = 10 * time.Millisecond

	eng := NewEngine(s, exec, NewController(maxActions, advisor), NewQuietReporter(), rec)
	eng.pacing = time.Millisecond
	return eng
}

func TestRunWalksFullFlowToSuccess(t *testing.T) {
	session := compliantSession()
	rec := &countingRecorder{}
	eng := newTestEngine(session, 40, nil, rec)

	sum, err := eng.Run(context.Background(), NewRunState(DemoAccount()))

	require.NoError(t, err)
	assert.True(t, sum.Success)
	assert.Equal(t, StepCleanup, sum.Step)
	assert.Equal(t, 100, sum.Progress)
	assert.Equal(t, sum.TotalActions, rec.calls)
	assert.Equal(t, 1, session.quits)
}

func TestRunAbortsAfterFiveConsecutiveFailures(t *testing.T) {
	session := emptySession()
	eng := newTestEngine(session, 40, nil, nil)
	st := NewRunState(DemoAccount())

	sum, err := eng.Run(context.Background(), st)

	require.ErrorIs(t, err, ErrTooManyFailures)
	assert.False(t, sum.Success)
	assert.Equal(t, StepError, sum.Step)
	assert.Equal(t, 5, st.ConsecutiveErrors)
	assert.Equal(t, 5, sum.TotalActions)
	assert.Equal(t, 1, session.quits)
}

func TestRunAbortsOnBudgetDespiteSuccesses(t *testing.T) {
	session := compliantSession()
	eng := newTestEngine(session, 3, nil, nil)

	sum, err := eng.Run(context.Background(), NewRunState(DemoAccount()))

	require.ErrorIs(t, err, ErrBudgetExhausted)
	assert.False(t, sum.Success)
	assert.Equal(t, 3, sum.TotalActions)
}

func TestRunSessionSetupFailureConsumesNoBudget(t *testing.T) {
	session := &fakeSession{sizeErr: errors.New("connection refused")}
	eng := newTestEngine(session, 40, nil, nil)

	sum, err := eng.Run(context.Background(), NewRunState(DemoAccount()))

	require.ErrorIs(t, err, ErrSessionSetup)
	assert.Equal(t, 0, sum.TotalActions)
	assert.Equal(t, StepError, sum.Step)
	assert.Equal(t, 1, session.quits)
}

func TestRunReassessesScreenWhenStuckWithoutAdvisor(t *testing.T) {
	session := emptySession()
	assessor := &countingAssessor{}
	eng := newTestEngine(session, 8, nil, nil)
	eng.exec.assessor = assessor

	sum, err := eng.Run(context.Background(), NewRunState(DemoAccount()))

	// Two failures trigger a reassessment, its success resets the
	// failure counter, so this run spends its budget instead of dying
	// on consecutive failures.
	require.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, 2, assessor.calls)
	assert.Equal(t, 8, sum.TotalActions)
}

func TestRunAbortAdviceEndsRun(t *testing.T) {
	adv := &stubAdvisor{advice: Advice{Action: AdviceAbort, Rationale: "app crashed"}}
	eng := newTestEngine(emptySession(), 40, adv, nil)

	sum, err := eng.Run(context.Background(), NewRunState(DemoAccount()))

	require.ErrorIs(t, err, ErrTooManyFailures)
	assert.Contains(t, sum.ErrorMessage, "aborted on advice")
	assert.Equal(t, 1, adv.calls)
}

func TestRunSkipAdviceWalksPastBrokenScreens(t *testing.T) {
	adv := &stubAdvisor{advice: Advice{Action: AdviceSkip, Rationale: "screen optional"}}
	eng := newTestEngine(emptySession(), 40, adv, nil)

	sum, err := eng.Run(context.Background(), NewRunState(DemoAccount()))

	require.NoError(t, err)
	assert.True(t, sum.Success)
	assert.Equal(t, 100, sum.Progress)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := compliantSession()
	eng := newTestEngine(session, 40, nil, nil)

	sum, err := eng.Run(ctx, NewRunState(DemoAccount()))

	require.ErrorIs(t, err, ErrInterrupted)
	assert.False(t, sum.Success)
	assert.Equal(t, 1, session.quits)
}
