// Package devicetest provides an in-memory device backend for tests.
package devicetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"phoneclaw/internal/device"
)

// Fake records every call and answers from configurable fields.
type Fake struct {
	mu    sync.Mutex
	calls []string

	Fail          map[string]error
	ScreenText    string
	UITree        string
	Screenshot    string
	CurrentApp    string
	Active        bool
	Notifications []device.Notification
	KnownTexts    []string
	KnownViewIDs  []string
	KnownApps     []string
}

// New returns a Fake reporting an active service.
func New() *Fake {
	return &Fake{Active: true, Fail: map[string]error{}}
}

// Calls returns the recorded calls, formatted as "op arg arg".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) record(op string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := []string{op}
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	f.calls = append(f.calls, strings.Join(parts, " "))
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func (f *Fake) Tap(_ context.Context, x, y int) error       { return f.record("tap", x, y) }
func (f *Fake) LongPress(_ context.Context, x, y int) error { return f.record("longPress", x, y) }
func (f *Fake) DoubleTap(_ context.Context, x, y int) error { return f.record("doubleTap", x, y) }

func (f *Fake) Swipe(_ context.Context, x1, y1, x2, y2 int, d time.Duration) error {
	return f.record("swipe", x1, y1, x2, y2, d.Milliseconds())
}

func (f *Fake) TypeText(_ context.Context, text string) error { return f.record("typeText", text) }
func (f *Fake) ClearText(context.Context) error               { return f.record("clearText") }

func (f *Fake) ClickByVisibleText(_ context.Context, text string) error {
	if err := f.record("clickByText", text); err != nil {
		return err
	}
	if !contains(f.KnownTexts, text) {
		return device.ErrNotFound
	}
	return nil
}

func (f *Fake) ClickByElementID(_ context.Context, id string) error {
	if err := f.record("clickByViewId", id); err != nil {
		return err
	}
	if !contains(f.KnownViewIDs, id) {
		return device.ErrNotFound
	}
	return nil
}

func (f *Fake) PressBack(context.Context) error             { return f.record("pressBack") }
func (f *Fake) PressHome(context.Context) error             { return f.record("pressHome") }
func (f *Fake) OpenRecents(context.Context) error           { return f.record("openRecents") }
func (f *Fake) OpenNotificationShade(context.Context) error { return f.record("openNotifications") }
func (f *Fake) ScrollUp(context.Context) error              { return f.record("scrollUp") }
func (f *Fake) ScrollDown(context.Context) error            { return f.record("scrollDown") }

func (f *Fake) ReadAllVisibleText(context.Context) (string, error) {
	return f.ScreenText, f.record("getScreenText")
}

func (f *Fake) ReadUITree(context.Context) (string, error) {
	return f.UITree, f.record("getUITree")
}

func (f *Fake) CaptureScreenshot(context.Context) (string, error) {
	return f.Screenshot, f.record("takeScreenshot")
}

func (f *Fake) LaunchApp(_ context.Context, pkg string) error {
	if err := f.record("launchApp", pkg); err != nil {
		return err
	}
	if len(f.KnownApps) > 0 && !contains(f.KnownApps, pkg) {
		return device.ErrNotFound
	}
	return nil
}

func (f *Fake) ForegroundApp(context.Context) (string, error) {
	return f.CurrentApp, f.record("getCurrentApp")
}

func (f *Fake) ServiceActive(context.Context) (bool, error) {
	return f.Active, f.record("isServiceRunning")
}

func (f *Fake) RecentNotifications(_ context.Context, limit int) ([]device.Notification, error) {
	return f.Notifications, f.record("getNotifications", limit)
}

func (f *Fake) ClickNotification(_ context.Context, key string) error {
	return f.record("clickNotification", key)
}

func (f *Fake) ClearNotifications(context.Context) error {
	return f.record("clearNotifications")
}

var _ device.Backend = (*Fake)(nil)
