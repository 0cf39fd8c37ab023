package driver

import "context"

// Strategy is a locator strategy understood by the session backends.
type Strategy string

const (
	ByXPath       Strategy = "xpath"
	ByID          Strategy = "id"
	ByClass       Strategy = "class"
	ByUIAutomator Strategy = "uiautomator"
	ByCSS         Strategy = "css"
)

// Locator addresses one or more elements on the current screen.
type Locator struct {
	Strategy Strategy
	Value    string
}

// Size is the device screen size in pixels.
type Size struct {
	Width  int
	Height int
}

// Element is a handle to a UI element found on the current screen.
// Handles go stale when the screen changes, callers should re-find
// instead of caching them across interactions.
type Element interface {
	Click(ctx context.Context) error
	TypeText(ctx context.Context, text string) error
	ClearText(ctx context.Context) error
	LongPress(ctx context.Context, holdMs int) error
	IsDisplayed(ctx context.Context) (bool, error)
}

// Session is a live automation session against a device or browser.
type Session interface {
	FindElements(ctx context.Context, loc Locator) ([]Element, error)
	Tap(ctx context.Context, x, y int) error
	LongPressAt(ctx context.Context, x, y, holdMs int) error
	ScreenSize(ctx context.Context) (Size, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Quit() error
}
