package device

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

type scriptedRunner struct {
	calls     []string
	responses map[string]string
}

func (r *scriptedRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	line := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, line)
	for prefix, out := range r.responses {
		if strings.Contains(line, prefix) {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func newScriptedADB(responses map[string]string) (*ADB, *scriptedRunner) {
	runner := &scriptedRunner{responses: responses}
	adb := NewADB("", "emulator-5554")
	adb.Run = runner.run
	return adb, runner
}

func TestADBTapUsesSerial(t *testing.T) {
	adb, runner := newScriptedADB(nil)
	if err := adb.Tap(context.Background(), 10, 20); err != nil {
		t.Fatalf("tap: %v", err)
	}
	want := "adb -s emulator-5554 shell input tap 10 20"
	if len(runner.calls) != 1 || runner.calls[0] != want {
		t.Fatalf("unexpected calls %v", runner.calls)
	}
}

func TestADBSwipeDuration(t *testing.T) {
	adb, runner := newScriptedADB(nil)
	if err := adb.Swipe(context.Background(), 1, 2, 3, 4, 300*time.Millisecond); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if !strings.HasSuffix(runner.calls[0], "input swipe 1 2 3 4 300") {
		t.Fatalf("unexpected call %q", runner.calls[0])
	}
}

func TestADBClickByTextTapsClickableAncestor(t *testing.T) {
	adb, runner := newScriptedADB(map[string]string{"uiautomator dump": sampleDump})
	if err := adb.ClickByVisibleText(context.Background(), "Mom"); err != nil {
		t.Fatalf("click: %v", err)
	}
	last := runner.calls[len(runner.calls)-1]
	if !strings.HasSuffix(last, "input tap 540 300") {
		t.Fatalf("unexpected tap %q", last)
	}
}

func TestADBClickByTextMissing(t *testing.T) {
	adb, _ := newScriptedADB(map[string]string{"uiautomator dump": sampleDump})
	err := adb.ClickByVisibleText(context.Background(), "Dad")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestADBClearTextDeletesFocusedContent(t *testing.T) {
	adb, runner := newScriptedADB(map[string]string{"uiautomator dump": sampleDump})
	if err := adb.ClearText(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	last := runner.calls[len(runner.calls)-1]
	if strings.Count(last, " 67") != len("hi there") {
		t.Fatalf("expected one delete per rune, got %q", last)
	}
}

func TestADBScrollDownUsesScreenSize(t *testing.T) {
	adb, runner := newScriptedADB(map[string]string{
		"wm size": "Physical size: 1080x2400\nOverride size: 720x1600\n",
	})
	if err := adb.ScrollDown(context.Background()); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	last := runner.calls[len(runner.calls)-1]
	if !strings.HasSuffix(last, "input swipe 360 1120 360 480 300") {
		t.Fatalf("unexpected swipe %q", last)
	}
}

func TestADBScreenshotIsBase64(t *testing.T) {
	adb, _ := newScriptedADB(map[string]string{"screencap": "\x89PNG"})
	got, err := adb.CaptureScreenshot(context.Background())
	if err != nil {
		t.Fatalf("screenshot: %v", err)
	}
	if got != base64.StdEncoding.EncodeToString([]byte("\x89PNG")) {
		t.Fatalf("unexpected encoding %q", got)
	}
}

func TestADBForegroundApp(t *testing.T) {
	adb, _ := newScriptedADB(map[string]string{
		"dumpsys window": "  mCurrentFocus=Window{1a2b3c u0 com.whatsapp/.HomeActivity}\n",
	})
	got, err := adb.ForegroundApp(context.Background())
	if err != nil {
		t.Fatalf("foreground: %v", err)
	}
	if got != "com.whatsapp/com.whatsapp.HomeActivity" {
		t.Fatalf("unexpected app %q", got)
	}
}

func TestADBLaunchAppMissing(t *testing.T) {
	adb, _ := newScriptedADB(map[string]string{
		"monkey": "** No activities found to run, monkey aborted.",
	})
	if err := adb.LaunchApp(context.Background(), "com.nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseNotifications(t *testing.T) {
	dump := strings.Join([]string{
		"  NotificationRecord(0x0a1b2c3d: pkg=com.whatsapp user=UserHandle{0} id=1 tag=null importance=4 key=0|com.whatsapp|1|null|10123: Notification(channel=msg)",
		"      when=1700000000000",
		"        android.title=String (Alice)",
		"        android.text=String (See you at 5)",
		"  NotificationRecord(0x0d0e0f10: pkg=com.android.systemui user=UserHandle{0} id=7 tag=null importance=2 key=0|com.android.systemui|7|null|10010: Notification(channel=battery)",
		"        android.title=String (Battery low)",
	}, "\n")
	list := ParseNotifications(dump)
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	first := list[0]
	if first.PackageName != "com.whatsapp" || first.Title != "Alice" || first.Text != "See you at 5" {
		t.Fatalf("unexpected first notification %+v", first)
	}
	if first.Key != "0|com.whatsapp|1|null|10123" {
		t.Fatalf("unexpected key %q", first.Key)
	}
	if first.PostTime.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected post time %v", first.PostTime)
	}
	if list[1].Text != "" || list[1].Title != "Battery low" {
		t.Fatalf("unexpected second notification %+v", list[1])
	}
}

func TestEscapeInputText(t *testing.T) {
	if got := escapeInputText("I'll be late & sorry"); got != `I\'ll%sbe%slate%s\&%ssorry` {
		t.Fatalf("unexpected escape %q", got)
	}
}
