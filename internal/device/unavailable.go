package device

import (
	"context"
	"time"
)

// Unavailable is the backend used where no automation service exists.
type Unavailable struct{}

func (Unavailable) Tap(context.Context, int, int) error       { return ErrUnavailable }
func (Unavailable) LongPress(context.Context, int, int) error { return ErrUnavailable }
func (Unavailable) DoubleTap(context.Context, int, int) error { return ErrUnavailable }

func (Unavailable) Swipe(context.Context, int, int, int, int, time.Duration) error {
	return ErrUnavailable
}

func (Unavailable) TypeText(context.Context, string) error           { return ErrUnavailable }
func (Unavailable) ClearText(context.Context) error                  { return ErrUnavailable }
func (Unavailable) ClickByVisibleText(context.Context, string) error { return ErrUnavailable }
func (Unavailable) ClickByElementID(context.Context, string) error   { return ErrUnavailable }

func (Unavailable) PressBack(context.Context) error             { return ErrUnavailable }
func (Unavailable) PressHome(context.Context) error             { return ErrUnavailable }
func (Unavailable) OpenRecents(context.Context) error           { return ErrUnavailable }
func (Unavailable) OpenNotificationShade(context.Context) error { return ErrUnavailable }
func (Unavailable) ScrollUp(context.Context) error              { return ErrUnavailable }
func (Unavailable) ScrollDown(context.Context) error            { return ErrUnavailable }

func (Unavailable) ReadAllVisibleText(context.Context) (string, error) { return "", ErrUnavailable }
func (Unavailable) ReadUITree(context.Context) (string, error)         { return "", ErrUnavailable }
func (Unavailable) CaptureScreenshot(context.Context) (string, error)  { return "", ErrUnavailable }

func (Unavailable) LaunchApp(context.Context, string) error         { return ErrUnavailable }
func (Unavailable) ForegroundApp(context.Context) (string, error)   { return "", ErrUnavailable }
func (Unavailable) ServiceActive(context.Context) (bool, error)     { return false, nil }
func (Unavailable) ClickNotification(context.Context, string) error { return ErrUnavailable }
func (Unavailable) ClearNotifications(context.Context) error        { return ErrUnavailable }

func (Unavailable) RecentNotifications(context.Context, int) ([]Notification, error) {
	return nil, ErrUnavailable
}
