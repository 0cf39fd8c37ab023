package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromeConfig describes a local Chrome session used for the web
// rendition of the signup flow.
type ChromeConfig struct {
	StartURL string
	Headless bool
}

// ChromeSession drives a Chrome instance through the DevTools protocol.
// It implements the same Session contract as the Android backend so the
// workflow engine does not care which one it runs against.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewChromeSession launches Chrome and navigates to the start URL.
func NewChromeSession(ctx context.Context, cfg ChromeConfig) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	s := &ChromeSession{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel}
	if err := chromedp.Run(browserCtx, chromedp.Navigate(cfg.StartURL)); err != nil {
		s.close()
		return nil, fmt.Errorf("open %s: %w", cfg.StartURL, err)
	}
	return s, nil
}

func (s *ChromeSession) close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

func chromeQuery(loc Locator) (string, chromedp.QueryOption, error) {
	switch loc.Strategy {
	case ByXPath:
		return loc.Value, chromedp.BySearch, nil
	case ByCSS:
		return loc.Value, chromedp.ByQueryAll, nil
	case ByID:
		return "#" + loc.Value, chromedp.ByQueryAll, nil
	case ByClass:
		return "." + loc.Value, chromedp.ByQueryAll, nil
	}
	return "", nil, fmt.Errorf("strategy %q is not usable against a browser", loc.Strategy)
}

// FindElements resolves the locator against the current page. The lookup
// itself does not wait, missing elements return an empty slice.
func (s *ChromeSession) FindElements(ctx context.Context, loc Locator) ([]Element, error) {
	sel, by, err := chromeQuery(loc)
	if err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	err = chromedp.Run(s.ctx, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("find elements %s=%s: %w", loc.Strategy, loc.Value, err)
	}
	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{session: s, node: n})
	}
	return els, nil
}

// Tap dispatches a click at page coordinates.
func (s *ChromeSession) Tap(ctx context.Context, x, y int) error {
	return s.press(ctx, x, y, 50)
}

// LongPressAt holds the pointer down for holdMs milliseconds.
func (s *ChromeSession) LongPressAt(ctx context.Context, x, y, holdMs int) error {
	return s.press(ctx, x, y, holdMs)
}

func (s *ChromeSession) press(ctx context.Context, x, y, holdMs int) error {
	fx, fy := float64(x), float64(y)
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		down := input.DispatchMouseEvent(input.MousePressed, fx, fy).
			WithButton(input.Left).
			WithClickCount(1)
		if err := down.Do(ctx); err != nil {
			return err
		}
		select {
		case <-time.After(time.Duration(holdMs) * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
		up := input.DispatchMouseEvent(input.MouseReleased, fx, fy).
			WithButton(input.Left).
			WithClickCount(1)
		return up.Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("press at (%d,%d): %w", x, y, err)
	}
	return nil
}

// ScreenSize reports the viewport size.
func (s *ChromeSession) ScreenSize(ctx context.Context) (Size, error) {
	var dims [2]int
	err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`[window.innerWidth, window.innerHeight]`, &dims),
	)
	if err != nil {
		return Size{}, fmt.Errorf("screen size: %w", err)
	}
	return Size{Width: dims[0], Height: dims[1]}, nil
}

// Screenshot captures the viewport as PNG bytes.
func (s *ChromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// Quit closes the browser.
func (s *ChromeSession) Quit() error {
	s.close()
	return nil
}

type chromeElement struct {
	session *ChromeSession
	node    *cdp.Node
}

func (e *chromeElement) Click(ctx context.Context) error {
	err := chromedp.Run(e.session.ctx, chromedp.MouseClickNode(e.node))
	if err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *chromeElement) TypeText(ctx context.Context, text string) error {
	err := chromedp.Run(e.session.ctx,
		chromedp.SendKeys(e.node.FullXPath(), text, chromedp.BySearch),
	)
	if err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

func (e *chromeElement) ClearText(ctx context.Context) error {
	err := e.callOnNode(`function() {
		this.value = "";
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`)
	if err != nil {
		return fmt.Errorf("clear text: %w", err)
	}
	return nil
}

func (e *chromeElement) LongPress(ctx context.Context, holdMs int) error {
	var box []float64
	err := chromedp.Run(e.session.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		model, err := dom.GetBoxModel().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		box = model.Content
		return nil
	}))
	if err != nil {
		return fmt.Errorf("long press box model: %w", err)
	}
	cx, cy, err := boxCenter(box)
	if err != nil {
		return fmt.Errorf("long press box model: %w", err)
	}
	return e.session.LongPressAt(ctx, cx, cy, holdMs)
}

// boxCenter returns the center of a DOM content quad. The protocol
// returns the quad as x1,y1,...,x4,y4, so anything shorter is a
// malformed box rather than a transport error.
func boxCenter(box []float64) (int, int, error) {
	if len(box) < 8 {
		return 0, 0, fmt.Errorf("got %d quad coordinates, need 8", len(box))
	}
	return int((box[0] + box[4]) / 2), int((box[1] + box[5]) / 2), nil
}

func (e *chromeElement) IsDisplayed(ctx context.Context) (bool, error) {
	var visible bool
	err := chromedp.Run(e.session.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		if obj == nil || obj.ObjectID == "" {
			return fmt.Errorf("object id is empty (node might be detached)")
		}
		res, _, err := runtime.CallFunctionOn(`function() {
			const r = this.getBoundingClientRect();
			const style = window.getComputedStyle(this);
			return r.width > 0 && r.height > 0 &&
				style.visibility !== "hidden" && style.display !== "none";
		}`).WithObjectID(obj.ObjectID).WithReturnByValue(true).Do(ctx)
		if err != nil {
			return err
		}
		if res != nil && string(res.Value) == "true" {
			visible = true
		}
		return nil
	}))
	if err != nil {
		return false, fmt.Errorf("displayed: %w", err)
	}
	return visible, nil
}

func (e *chromeElement) callOnNode(script string) error {
	return chromedp.Run(e.session.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		if obj == nil || obj.ObjectID == "" {
			return fmt.Errorf("object id is empty (node might be detached)")
		}
		_, _, err = runtime.CallFunctionOn(script).WithObjectID(obj.ObjectID).Do(ctx)
		return err
	}))
}
