package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ErrUnavailable reports that no automation backend is reachable.
var ErrUnavailable = errors.New("device automation unavailable")

// ErrUnsupported reports an operation the backend cannot perform.
var ErrUnsupported = errors.New("operation not supported by backend")

// ErrNotFound reports that a targeted element does not exist on screen.
var ErrNotFound = errors.New("element not found")

// Notification is a posted status-bar notification.
type Notification struct {
	Key         string
	PackageName string
	Title       string
	Text        string
	PostTime    time.Time
}

// Backend performs device automation. Implementations return errors freely;
// Client converts them into neutral defaults.
type Backend interface {
	Tap(ctx context.Context, x, y int) error
	LongPress(ctx context.Context, x, y int) error
	Swipe(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) error
	DoubleTap(ctx context.Context, x, y int) error

	TypeText(ctx context.Context, text string) error
	ClearText(ctx context.Context) error

	ClickByVisibleText(ctx context.Context, text string) error
	ClickByElementID(ctx context.Context, viewID string) error

	PressBack(ctx context.Context) error
	PressHome(ctx context.Context) error
	OpenRecents(ctx context.Context) error
	OpenNotificationShade(ctx context.Context) error

	ScrollUp(ctx context.Context) error
	ScrollDown(ctx context.Context) error

	ReadAllVisibleText(ctx context.Context) (string, error)
	ReadUITree(ctx context.Context) (string, error)
	CaptureScreenshot(ctx context.Context) (string, error)

	LaunchApp(ctx context.Context, packageID string) error
	ForegroundApp(ctx context.Context) (string, error)
	ServiceActive(ctx context.Context) (bool, error)

	RecentNotifications(ctx context.Context, limit int) ([]Notification, error)
	ClickNotification(ctx context.Context, key string) error
	ClearNotifications(ctx context.Context) error
}

// Client is the boundary the tool catalog talks to. No call ever returns an
// error or panics: failures become false, "", "{}" or an empty list.
type Client struct {
	backend Backend
	logger  *slog.Logger
}

// NewClient wraps a backend. A nil backend behaves like Unavailable.
func NewClient(backend Backend, logger *slog.Logger) *Client {
	if backend == nil {
		backend = Unavailable{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{backend: backend, logger: logger}
}

func (c *Client) Tap(ctx context.Context, x, y int) bool {
	return c.act(ctx, "tap", func() error { return c.backend.Tap(ctx, x, y) })
}

func (c *Client) LongPress(ctx context.Context, x, y int) bool {
	return c.act(ctx, "longPress", func() error { return c.backend.LongPress(ctx, x, y) })
}

func (c *Client) Swipe(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) bool {
	return c.act(ctx, "swipe", func() error { return c.backend.Swipe(ctx, x1, y1, x2, y2, duration) })
}

func (c *Client) DoubleTap(ctx context.Context, x, y int) bool {
	return c.act(ctx, "doubleTap", func() error { return c.backend.DoubleTap(ctx, x, y) })
}

func (c *Client) TypeText(ctx context.Context, text string) bool {
	return c.act(ctx, "typeText", func() error { return c.backend.TypeText(ctx, text) })
}

func (c *Client) ClearText(ctx context.Context) bool {
	return c.act(ctx, "clearText", func() error { return c.backend.ClearText(ctx) })
}

func (c *Client) ClickByVisibleText(ctx context.Context, text string) bool {
	return c.act(ctx, "clickByText", func() error { return c.backend.ClickByVisibleText(ctx, text) })
}

func (c *Client) ClickByElementID(ctx context.Context, viewID string) bool {
	return c.act(ctx, "clickByViewId", func() error { return c.backend.ClickByElementID(ctx, viewID) })
}

func (c *Client) PressBack(ctx context.Context) bool {
	return c.act(ctx, "pressBack", func() error { return c.backend.PressBack(ctx) })
}

func (c *Client) PressHome(ctx context.Context) bool {
	return c.act(ctx, "pressHome", func() error { return c.backend.PressHome(ctx) })
}

func (c *Client) OpenRecents(ctx context.Context) bool {
	return c.act(ctx, "openRecents", func() error { return c.backend.OpenRecents(ctx) })
}

func (c *Client) OpenNotificationShade(ctx context.Context) bool {
	return c.act(ctx, "openNotifications", func() error { return c.backend.OpenNotificationShade(ctx) })
}

func (c *Client) ScrollUp(ctx context.Context) bool {
	return c.act(ctx, "scrollUp", func() error { return c.backend.ScrollUp(ctx) })
}

func (c *Client) ScrollDown(ctx context.Context) bool {
	return c.act(ctx, "scrollDown", func() error { return c.backend.ScrollDown(ctx) })
}

func (c *Client) ReadAllVisibleText(ctx context.Context) string {
	return c.read(ctx, "getScreenText", "", c.backend.ReadAllVisibleText)
}

func (c *Client) ReadUITree(ctx context.Context) string {
	return c.read(ctx, "getUITree", "{}", c.backend.ReadUITree)
}

func (c *Client) CaptureScreenshot(ctx context.Context) string {
	return c.read(ctx, "takeScreenshot", "", c.backend.CaptureScreenshot)
}

func (c *Client) LaunchApp(ctx context.Context, packageID string) bool {
	return c.act(ctx, "launchApp", func() error { return c.backend.LaunchApp(ctx, packageID) })
}

func (c *Client) ForegroundApp(ctx context.Context) string {
	return c.read(ctx, "getCurrentApp", "", c.backend.ForegroundApp)
}

func (c *Client) ServiceActive(ctx context.Context) bool {
	active := false
	ok := c.act(ctx, "isServiceRunning", func() error {
		value, err := c.backend.ServiceActive(ctx)
		active = value
		return err
	})
	return ok && active
}

func (c *Client) RecentNotifications(ctx context.Context, limit int) []Notification {
	var list []Notification
	ok := c.act(ctx, "get_recent_notifications", func() error {
		value, err := c.backend.RecentNotifications(ctx, limit)
		list = value
		return err
	})
	if !ok {
		return nil
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (c *Client) ClickNotification(ctx context.Context, key string) bool {
	return c.act(ctx, "click_notification", func() error { return c.backend.ClickNotification(ctx, key) })
}

func (c *Client) ClearNotifications(ctx context.Context) bool {
	return c.act(ctx, "clear_notifications", func() error { return c.backend.ClearNotifications(ctx) })
}

// act runs fn and reports success; errors and panics both count as failure.
func (c *Client) act(ctx context.Context, op string, fn func() error) (ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			c.logger.DebugContext(ctx, "device backend panic", "op", op, "panic", fmt.Sprint(recovered))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		c.logger.DebugContext(ctx, "device operation failed", "op", op, "err", err)
		return false
	}
	return true
}

// read runs fn and falls back to def on any failure.
func (c *Client) read(ctx context.Context, op, def string, fn func(context.Context) (string, error)) string {
	value := def
	ok := c.act(ctx, op, func() error {
		out, err := fn(ctx)
		if err != nil {
			return err
		}
		value = out
		return nil
	})
	if !ok {
		return def
	}
	return value
}
