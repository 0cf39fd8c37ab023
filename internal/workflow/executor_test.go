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

type trackElement struct {
	id        string
	displayed bool
	clicked   *string
	typed     *string
	cleared   *bool
}

func (e *trackElement) Click(ctx context.Context) error {
	if e.clicked != nil {
		*e.clicked = e.id
	}
	return nil
}

func (e *trackElement) TypeText(ctx context.Context, text string) error {
	if e.typed != nil {
		*e.typed = text
	}
	return nil
}

func (e *trackElement) ClearText(ctx context.Context) error {
	if e.cleared != nil {
		*e.cleared = true
	}
	return nil
}

func (e *trackElement) LongPress(ctx context.Context, holdMs int) error { return nil }

func (e *trackElement) IsDisplayed(ctx context.Context) (bool, error) { return e.displayed, nil }

func fastExecutor(s driver.Session) *Executor {
	e := NewExecutor(s, nil)
	e.settle = time.Millisecond
	e.retryDelay = time.Millisecond
	e.captchaRest = time.Millisecond
	return e
}

func TestExecuteClickFallsBackToCoordinateTap(t *testing.T) {
	session := &fakeSession{}
	e := fastExecutor(session)

	desc, err := e.Execute(context.Background(), ActionRequest{
		Tool:   "mobile_ui",
		Verb:   VerbClick,
		Target: createAccountButton(),
		TapAt:  &TapPoint{X: 0.5, Y: 0.75},
	})
	require.NoError(t, err)

	assert.Contains(t, desc, "via coordinate tap")
	assert.Contains(t, desc, "(540,1800)")
	assert.True(t, Evaluate(desc).Success)
}

func TestExecuteClickFailsWhenNoFallback(t *testing.T) {
	session := emptySession()
	e := fastExecutor(session)

	desc, err := e.Execute(context.Background(), ActionRequest{
		Tool:   "mobile_ui",
		Verb:   VerbClick,
		Target: nextButton("email"),
	})
	require.NoError(t, err)

	assert.Contains(t, desc, "FAILED")
	assert.Contains(t, desc, "element not found")
	assert.False(t, Evaluate(desc).Success)
}

func TestExecuteTypeClearsBeforeTyping(t *testing.T) {
	var typed string
	var cleared bool
	session := &fakeSession{
		find: func(loc driver.Locator) ([]driver.Element, error) {
			return []driver.Element{&trackElement{
				id: "field", displayed: true, typed: &typed, cleared: &cleared,
			}}, nil
		},
	}
	e := fastExecutor(session)

	desc, err := e.Execute(context.Background(), ActionRequest{
		Tool:   "mobile_ui",
		Verb:   VerbType,
		Target: emailField(),
		Text:   "mary123smith456@outlook.com",
	})
	require.NoError(t, err)

	assert.True(t, cleared)
	assert.Equal(t, "mary123smith456@outlook.com", typed)
	assert.Contains(t, desc, "typed into email field")
}

func TestFindDisplayedNegativeIndexPicksLastMatch(t *testing.T) {
	var clicked string
	session := &fakeSession{
		find: func(loc driver.Locator) ([]driver.Element, error) {
			if loc.Strategy != driver.ByClass {
				return nil, errors.New("unsupported strategy")
			}
			return []driver.Element{
				&trackElement{id: "first", displayed: true, clicked: &clicked},
				&trackElement{id: "second", displayed: true, clicked: &clicked},
				&trackElement{id: "third", displayed: true, clicked: &clicked},
			}, nil
		},
	}
	e := fastExecutor(session)

	// The year field is the last text input on the details screen.
	el, err := e.findDisplayed(context.Background(), yearField())
	require.NoError(t, err)
	require.NoError(t, el.Click(context.Background()))

	assert.Equal(t, "third", clicked)
}

func TestFindDisplayedSkipsHiddenElements(t *testing.T) {
	var clicked string
	session := &fakeSession{
		find: func(loc driver.Locator) ([]driver.Element, error) {
			if loc.Strategy != driver.ByClass {
				return nil, nil
			}
			return []driver.Element{
				&trackElement{id: "hidden", displayed: false, clicked: &clicked},
				&trackElement{id: "shown", displayed: true, clicked: &clicked},
			}, nil
		},
	}
	e := fastExecutor(session)

	el, err := e.findDisplayed(context.Background(), emailField())
	require.NoError(t, err)
	require.NoError(t, el.Click(context.Background()))

	assert.Equal(t, "shown", clicked)
}

func TestExecuteReportsDuration(t *testing.T) {
	session := compliantSession()
	e := fastExecutor(session)

	desc, err := e.Execute(context.Background(), ActionRequest{
		Tool:   "mobile_ui",
		Verb:   VerbClick,
		Target: createAccountButton(),
	})
	require.NoError(t, err)

	assert.Regexp(t, `in \d+ms$`, desc)
}

func TestExecuteAssessWithoutAssessor(t *testing.T) {
	e := fastExecutor(compliantSession())

	desc, err := e.Execute(context.Background(), ActionRequest{Tool: "ocr", Verb: VerbAssess})
	require.NoError(t, err)

	assert.False(t, Evaluate(desc).Success)
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := fastExecutor(compliantSession())

	_, err := e.Execute(ctx, ActionRequest{Tool: "mobile_ui", Verb: VerbClick, Target: createAccountButton()})
	assert.Error(t, err)
}
