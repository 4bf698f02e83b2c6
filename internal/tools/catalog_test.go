package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"phoneclaw/internal/device"
	"phoneclaw/internal/device/devicetest"
)

func newCatalogRegistry(t *testing.T, fake *devicetest.Fake) *Registry {
	t.Helper()
	registry, err := NewDeviceRegistry(device.NewClient(fake, nil), CatalogOptions{LaunchSettle: -1})
	if err != nil {
		t.Fatalf("new device registry: %v", err)
	}
	return registry
}

func TestDeviceCatalogOrder(t *testing.T) {
	registry := newCatalogRegistry(t, devicetest.New())
	var names []string
	for _, desc := range registry.Describe() {
		names = append(names, desc.Name)
	}
	want := "tap,longPress,swipe,doubleTap," +
		"pressBack,pressHome,openRecents,openNotifications,scrollUp,scrollDown," +
		"getScreenText,getUITree,takeScreenshot,isServiceRunning," +
		"typeText,clearText,clickByText,clickByViewId," +
		"launchApp,getCurrentApp," +
		"capture_screen," +
		"get_recent_notifications,click_notification,clear_notifications"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("unexpected catalog\n got: %s\nwant: %s", got, want)
	}
}

func TestSwipeDefaultsDuration(t *testing.T) {
	fake := devicetest.New()
	registry := newCatalogRegistry(t, fake)
	args, _ := ParseArgs(`{"x1":1,"y1":2,"x2":3,"y2":4}`)
	result := registry.Execute(context.Background(), "swipe", args)
	if result.Output != "true" {
		t.Fatalf("unexpected output %q", result.Output)
	}
	calls := fake.Calls()
	if len(calls) != 1 || calls[0] != "swipe 1 2 3 4 300" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestTapMissingCoordinateIsToolError(t *testing.T) {
	fake := devicetest.New()
	registry := newCatalogRegistry(t, fake)
	result := registry.Execute(context.Background(), "tap", Args{})
	if result.Output != "Error: x is required" {
		t.Fatalf("unexpected output %q", result.Output)
	}
	if len(fake.Calls()) != 0 {
		t.Fatalf("expected no device calls")
	}
}

func TestClickByTextReportsMiss(t *testing.T) {
	fake := devicetest.New()
	fake.KnownTexts = []string{"Send"}
	registry := newCatalogRegistry(t, fake)
	hit, _ := ParseArgs(`{"text":"Send"}`)
	miss, _ := ParseArgs(`{"text":"Cancel"}`)
	if got := registry.Execute(context.Background(), "clickByText", hit).Output; got != "true" {
		t.Fatalf("expected hit, got %q", got)
	}
	if got := registry.Execute(context.Background(), "clickByText", miss).Output; got != "false" {
		t.Fatalf("expected miss, got %q", got)
	}
}

func TestScreenshotToolsProduceImages(t *testing.T) {
	fake := devicetest.New()
	fake.Screenshot = "iVBORw0KGgo="
	registry := newCatalogRegistry(t, fake)
	for _, name := range []string{"takeScreenshot", "capture_screen"} {
		result := registry.Execute(context.Background(), name, nil)
		if !result.IsImage || result.Output != fake.Screenshot {
			t.Fatalf("%s: expected image result, got %+v", name, result)
		}
	}
}

func TestScreenshotFailureIsNotImage(t *testing.T) {
	registry := newCatalogRegistry(t, devicetest.New())
	result := registry.Execute(context.Background(), "capture_screen", nil)
	if result.IsImage || result.Output != "Error: failed to take screenshot" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestLaunchAppWaitsForSettle(t *testing.T) {
	fake := devicetest.New()
	registry, err := NewDeviceRegistry(device.NewClient(fake, nil), CatalogOptions{LaunchSettle: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	args, _ := ParseArgs(`{"packageName":"com.whatsapp"}`)
	result := registry.Execute(context.Background(), "launchApp", args)
	if result.Output != "true" {
		t.Fatalf("unexpected output %q", result.Output)
	}
	if result.Duration < 20*time.Millisecond {
		t.Fatalf("expected settle delay, took %v", result.Duration)
	}
}

func TestLaunchAppSettleHonorsCancellation(t *testing.T) {
	fake := devicetest.New()
	registry, err := NewDeviceRegistry(device.NewClient(fake, nil), CatalogOptions{LaunchSettle: time.Hour})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	args, _ := ParseArgs(`{"packageName":"com.whatsapp"}`)
	result := registry.Execute(ctx, "launchApp", args)
	if result.Error == "" {
		t.Fatalf("expected cancellation error")
	}
}

func TestRecentNotificationsRendering(t *testing.T) {
	fake := devicetest.New()
	registry := newCatalogRegistry(t, fake)
	if got := registry.Execute(context.Background(), "get_recent_notifications", nil).Output; got != "No recent notifications found." {
		t.Fatalf("unexpected empty output %q", got)
	}
	fake.Notifications = []device.Notification{{
		Key:         "0|com.whatsapp|1",
		PackageName: "com.whatsapp",
		Title:       "Alice",
		Text:        "See you",
	}}
	out := registry.Execute(context.Background(), "get_recent_notifications", nil).Output
	var views []map[string]string
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(views) != 1 || views[0]["app"] != "com.whatsapp" || views[0]["message"] != "See you" || views[0]["id"] != "0|com.whatsapp|1" {
		t.Fatalf("unexpected views %+v", views)
	}
	calls := fake.Calls()
	if calls[len(calls)-1] != "getNotifications 10" {
		t.Fatalf("expected default limit 10, got %v", calls)
	}
}

func TestNotificationActionsReportOutcome(t *testing.T) {
	fake := devicetest.New()
	fake.Fail["clearNotifications"] = device.ErrUnsupported
	registry := newCatalogRegistry(t, fake)
	args, _ := ParseArgs(`{"id":"k"}`)
	if got := registry.Execute(context.Background(), "click_notification", args).Output; got != "Clicked notification." {
		t.Fatalf("unexpected click output %q", got)
	}
	if got := registry.Execute(context.Background(), "clear_notifications", nil).Output; got != "Failed to clear some notifications." {
		t.Fatalf("unexpected clear output %q", got)
	}
}
