package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/keremvatan/go-mobile-signup-agent/internal/driver"
)

// Interaction timings. The settle delays are deliberate minimums, the
// app animates between screens and acting too early hits stale views.
const (
	defaultSettle    = 800 * time.Millisecond
	captchaHoldMs    = 15000
	captchaSettle    = 4 * time.Second
	findRetryDelay   = 500 * time.Millisecond
)

// Assessor reads the current screen when no scripted action applies.
type Assessor interface {
	CaptureAndRead(ctx context.Context) (Reading, error)
}

// Reading is what the assessor saw on screen.
type Reading struct {
	Text       string
	Confidence float64
}

// Executor performs planned actions against a driver session and
// reports each outcome as a human readable description. The evaluator
// classifies those descriptions, so the embedded keywords (SUCCESS,
// FAILED, clicked, typed, the target name) are load bearing.
type Executor struct {
	session     driver.Session
	assessor    Assessor
	settle      time.Duration
	captchaRest time.Duration
	retryDelay  time.Duration
	authWait    time.Duration
	authPoll    time.Duration
	authSettle  time.Duration
	postAuth    time.Duration
	poll        time.Duration
	verifyMax   time.Duration
}

// NewExecutor wires an executor to a session. The assessor may be nil,
// assess requests then report a failure description.
func NewExecutor(session driver.Session, assessor Assessor) *Executor {
	return &Executor{
		session:     session,
		assessor:    assessor,
		settle:      defaultSettle,
		captchaRest: captchaSettle,
		retryDelay:  findRetryDelay,
	}
}

// SetTimings overrides the wait windows. Zero values keep the defaults.
func (e *Executor) SetTimings(settle, authWait, postAuth time.Duration) {
	if settle > 0 {
		e.settle = settle
	}
	if authWait > 0 {
		e.authWait = authWait
	}
	if postAuth > 0 {
		e.postAuth = postAuth
	}
}

// Execute runs one action request. Action failures are encoded in the
// returned description, an error return means the run context ended.
func (e *Executor) Execute(ctx context.Context, req ActionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	var desc string
	switch req.Verb {
	case VerbClick, VerbSelect:
		desc = e.click(ctx, req)
	case VerbType:
		desc = e.typeText(ctx, req)
	case VerbLongPress:
		desc = e.longPress(ctx, req)
	case VerbWaitAuth:
		desc = e.waitAuthentication(ctx)
	case VerbPostAuthNav:
		desc = e.postAuthNavigate(ctx)
	case VerbVerifyInbox:
		desc = e.verifyInbox(ctx)
	case VerbAssess:
		desc = e.assess(ctx)
	default:
		desc = fmt.Sprintf("%s %s FAILED: unknown action", req.Tool, req.Verb)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s in %dms", desc, time.Since(start).Milliseconds()), nil
}

// findDisplayed walks the target's locator ladder and returns the first
// displayed match. For Index >= 1 the n-th match of a rung is taken,
// Index -1 takes the last. One retry after a short delay covers screens
// that are still settling.
func (e *Executor) findDisplayed(ctx context.Context, t Target) (driver.Element, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		for _, loc := range t.Locators {
			els, err := e.session.FindElements(ctx, loc)
			if err != nil {
				lastErr = err
				continue
			}
			var visible []driver.Element
			for _, el := range els {
				shown, err := el.IsDisplayed(ctx)
				// A failed visibility check keeps the candidate, some
				// widgets reject the query while still being tappable.
				if err != nil || shown {
					visible = append(visible, el)
				}
			}
			if len(visible) == 0 {
				continue
			}
			idx := t.Index
			if idx < 0 {
				idx = len(visible) - 1
			}
			if idx < len(visible) {
				return visible[idx], nil
			}
		}
		if attempt == 0 {
			if err := e.pause(ctx, e.retryDelay); err != nil {
				return nil, err
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("element not found: %s (%v)", t.Name, lastErr)
	}
	return nil, fmt.Errorf("element not found: %s", t.Name)
}

func (e *Executor) click(ctx context.Context, req ActionRequest) string {
	verb := "clicked"
	if req.Verb == VerbSelect {
		verb = "selected option"
	}
	el, err := e.findDisplayed(ctx, req.Target)
	if err == nil {
		if cerr := el.Click(ctx); cerr == nil {
			e.wait(ctx)
			return fmt.Sprintf("%s click SUCCESS: %s %s", req.Tool, verb, req.Target.Name)
		} else {
			err = cerr
		}
	}
	if req.TapAt != nil {
		if desc, ok := e.tapFallback(ctx, req, verb); ok {
			return desc
		}
	}
	return fmt.Sprintf("%s click FAILED: %v", req.Tool, err)
}

// tapFallback converts the proportional coordinate into pixels and taps.
func (e *Executor) tapFallback(ctx context.Context, req ActionRequest, verb string) (string, bool) {
	size, err := e.session.ScreenSize(ctx)
	if err != nil {
		return "", false
	}
	x := int(float64(size.Width) * req.TapAt.X)
	y := int(float64(size.Height) * req.TapAt.Y)
	if err := e.session.Tap(ctx, x, y); err != nil {
		return "", false
	}
	e.wait(ctx)
	return fmt.Sprintf("%s click SUCCESS: %s %s via coordinate tap (%d,%d)",
		req.Tool, verb, req.Target.Name, x, y), true
}

func (e *Executor) typeText(ctx context.Context, req ActionRequest) string {
	el, err := e.findDisplayed(ctx, req.Target)
	if err != nil {
		return fmt.Sprintf("%s type FAILED: %v", req.Tool, err)
	}
	if err := el.Click(ctx); err == nil {
		e.wait(ctx)
	}
	_ = el.ClearText(ctx)
	if err := el.TypeText(ctx, req.Text); err != nil {
		return fmt.Sprintf("%s type FAILED: %s: %v", req.Tool, req.Target.Name, err)
	}
	e.wait(ctx)
	return fmt.Sprintf("%s type SUCCESS: typed into %s", req.Tool, req.Target.Name)
}

func (e *Executor) longPress(ctx context.Context, req ActionRequest) string {
	holdMs := req.HoldMs
	if holdMs == 0 {
		holdMs = captchaHoldMs
	}
	el, err := e.findDisplayed(ctx, req.Target)
	if err == nil {
		if perr := el.LongPress(ctx, holdMs); perr == nil {
			_ = e.pause(ctx, e.captchaRest)
			return fmt.Sprintf("%s long_press SUCCESS: held %s for %dms",
				req.Tool, req.Target.Name, holdMs)
		} else {
			err = perr
		}
	}
	if req.TapAt != nil {
		size, serr := e.session.ScreenSize(ctx)
		if serr == nil {
			x := int(float64(size.Width) * req.TapAt.X)
			y := int(float64(size.Height) * req.TapAt.Y)
			if e.session.LongPressAt(ctx, x, y, holdMs) == nil {
				_ = e.pause(ctx, e.captchaRest)
				return fmt.Sprintf("%s long_press SUCCESS: held %s at (%d,%d) for %dms",
					req.Tool, req.Target.Name, x, y, holdMs)
			}
		}
	}
	return fmt.Sprintf("%s long_press FAILED: %v", req.Tool, err)
}

func (e *Executor) assess(ctx context.Context) string {
	if e.assessor == nil {
		return "ocr assess FAILED: no screen assessor configured"
	}
	reading, err := e.assessor.CaptureAndRead(ctx)
	if err != nil {
		return fmt.Sprintf("ocr assess FAILED: %v", err)
	}
	return fmt.Sprintf("ocr assess SUCCESS: screen reads %q (confidence %.2f)",
		reading.Text, reading.Confidence)
}

// wait applies the standard settle delay after an interaction.
func (e *Executor) wait(ctx context.Context) {
	_ = e.pause(ctx, e.settle)
}

func (e *Executor) pause(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
