package driver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// w3cElementKey is the element identifier key in W3C WebDriver responses.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// UiAutoConfig describes the Appium / UiAutomator2 server connection.
type UiAutoConfig struct {
	ServerURL   string
	AppPackage  string
	AppActivity string
	NewCommandTimeoutSec int
}

// UiAutoSession drives an Android device through a UiAutomator2 server
// speaking the W3C WebDriver protocol.
type UiAutoSession struct {
	base      string
	sessionID string
	http      *http.Client
}

// NewUiAutoSession creates a session on the remote server and launches the app.
func NewUiAutoSession(ctx context.Context, cfg UiAutoConfig) (*UiAutoSession, error) {
	s := &UiAutoSession{
		base: cfg.ServerURL,
		http: &http.Client{Timeout: 60 * time.Second},
	}
	timeout := cfg.NewCommandTimeoutSec
	if timeout == 0 {
		timeout = 300
	}
	caps := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{
				"platformName":              "Android",
				"appium:automationName":     "UiAutomator2",
				"appium:appPackage":         cfg.AppPackage,
				"appium:appActivity":        cfg.AppActivity,
				"appium:noReset":            false,
				"appium:newCommandTimeout":  timeout,
				"appium:autoGrantPermissions": true,
			},
		},
	}
	var resp struct {
		Value struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, "/session", caps, &resp); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if resp.Value.SessionID == "" {
		return nil, fmt.Errorf("create session: server returned empty session id")
	}
	s.sessionID = resp.Value.SessionID
	return s, nil
}

func strategyName(st Strategy) (string, error) {
	switch st {
	case ByXPath:
		return "xpath", nil
	case ByID:
		return "id", nil
	case ByClass:
		return "class name", nil
	case ByUIAutomator:
		return "-android uiautomator", nil
	case ByCSS:
		return "css selector", nil
	}
	return "", fmt.Errorf("unsupported locator strategy %q", st)
}

// FindElements returns all elements matching the locator on the current screen.
func (s *UiAutoSession) FindElements(ctx context.Context, loc Locator) ([]Element, error) {
	using, err := strategyName(loc.Strategy)
	if err != nil {
		return nil, err
	}
	body := map[string]string{"using": using, "value": loc.Value}
	var resp struct {
		Value []map[string]string `json:"value"`
	}
	if err := s.do(ctx, http.MethodPost, s.path("/elements"), body, &resp); err != nil {
		return nil, fmt.Errorf("find elements %s=%s: %w", loc.Strategy, loc.Value, err)
	}
	els := make([]Element, 0, len(resp.Value))
	for _, raw := range resp.Value {
		if id := raw[w3cElementKey]; id != "" {
			els = append(els, &uiAutoElement{session: s, id: id})
		}
	}
	return els, nil
}

// Tap performs a single pointer tap at absolute screen coordinates.
func (s *UiAutoSession) Tap(ctx context.Context, x, y int) error {
	return s.pointerAction(ctx, x, y, 100)
}

// LongPressAt holds a pointer down at the coordinates for holdMs milliseconds.
func (s *UiAutoSession) LongPressAt(ctx context.Context, x, y, holdMs int) error {
	return s.pointerAction(ctx, x, y, holdMs)
}

func (s *UiAutoSession) pointerAction(ctx context.Context, x, y, holdMs int) error {
	body := map[string]any{
		"actions": []map[string]any{{
			"type": "pointer",
			"id":   "finger1",
			"parameters": map[string]string{"pointerType": "touch"},
			"actions": []map[string]any{
				{"type": "pointerMove", "duration": 0, "x": x, "y": y},
				{"type": "pointerDown", "button": 0},
				{"type": "pause", "duration": holdMs},
				{"type": "pointerUp", "button": 0},
			},
		}},
	}
	if err := s.do(ctx, http.MethodPost, s.path("/actions"), body, nil); err != nil {
		return fmt.Errorf("pointer action at (%d,%d): %w", x, y, err)
	}
	return nil
}

// ScreenSize returns the device window size.
func (s *UiAutoSession) ScreenSize(ctx context.Context) (Size, error) {
	var resp struct {
		Value struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"value"`
	}
	if err := s.do(ctx, http.MethodGet, s.path("/window/rect"), nil, &resp); err != nil {
		return Size{}, fmt.Errorf("screen size: %w", err)
	}
	return Size{Width: resp.Value.Width, Height: resp.Value.Height}, nil
}

// Screenshot captures the current screen as PNG bytes.
func (s *UiAutoSession) Screenshot(ctx context.Context) ([]byte, error) {
	var resp struct {
		Value string `json:"value"`
	}
	if err := s.do(ctx, http.MethodGet, s.path("/screenshot"), nil, &resp); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Value)
	if err != nil {
		return nil, fmt.Errorf("screenshot decode: %w", err)
	}
	return data, nil
}

// Quit terminates the remote session. Safe to call once per session.
func (s *UiAutoSession) Quit() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.do(ctx, http.MethodDelete, s.path(""), nil, nil); err != nil {
		return fmt.Errorf("quit session: %w", err)
	}
	return nil
}

func (s *UiAutoSession) path(suffix string) string {
	return "/session/" + s.sessionID + suffix
}

func (s *UiAutoSession) do(ctx context.Context, method, p string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base+p, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var werr struct {
			Value struct {
				Error   string `json:"error"`
				Message string `json:"message"`
			} `json:"value"`
		}
		if json.Unmarshal(raw, &werr) == nil && werr.Value.Error != "" {
			return fmt.Errorf("%s: %s", werr.Value.Error, werr.Value.Message)
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

type uiAutoElement struct {
	session *UiAutoSession
	id      string
}

func (e *uiAutoElement) elPath(suffix string) string {
	return e.session.path("/element/" + e.id + suffix)
}

func (e *uiAutoElement) Click(ctx context.Context) error {
	if err := e.session.do(ctx, http.MethodPost, e.elPath("/click"), map[string]any{}, nil); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *uiAutoElement) TypeText(ctx context.Context, text string) error {
	body := map[string]string{"text": text}
	if err := e.session.do(ctx, http.MethodPost, e.elPath("/value"), body, nil); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

func (e *uiAutoElement) ClearText(ctx context.Context) error {
	if err := e.session.do(ctx, http.MethodPost, e.elPath("/clear"), map[string]any{}, nil); err != nil {
		return fmt.Errorf("clear text: %w", err)
	}
	return nil
}

func (e *uiAutoElement) LongPress(ctx context.Context, holdMs int) error {
	var resp struct {
		Value struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"value"`
	}
	if err := e.session.do(ctx, http.MethodGet, e.elPath("/rect"), nil, &resp); err != nil {
		return fmt.Errorf("long press rect: %w", err)
	}
	cx := resp.Value.X + resp.Value.Width/2
	cy := resp.Value.Y + resp.Value.Height/2
	return e.session.LongPressAt(ctx, cx, cy, holdMs)
}

func (e *uiAutoElement) IsDisplayed(ctx context.Context) (bool, error) {
	var resp struct {
		Value bool `json:"value"`
	}
	if err := e.session.do(ctx, http.MethodGet, e.elPath("/displayed"), nil, &resp); err != nil {
		return false, fmt.Errorf("displayed: %w", err)
	}
	return resp.Value, nil
}
