package device

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	keycodeHome    = 3
	keycodeBack    = 4
	keycodeDel     = 67
	keycodeMoveEnd = 123
	keycodeRecents = 187

	longPressDuration = 500 * time.Millisecond
	scrollDuration    = 300 * time.Millisecond
	doubleTapGap      = 80 * time.Millisecond
)

// CommandRunner executes a host command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// ADB drives an Android device through the adb command-line bridge.
type ADB struct {
	Path   string
	Serial string
	Run    CommandRunner
}

// NewADB builds a backend using the adb binary at path.
func NewADB(path, serial string) *ADB {
	if strings.TrimSpace(path) == "" {
		path = "adb"
	}
	return &ADB{Path: path, Serial: serial, Run: ExecRunner}
}

func (a *ADB) exec(ctx context.Context, args ...string) ([]byte, error) {
	full := make([]string, 0, len(args)+2)
	if a.Serial != "" {
		full = append(full, "-s", a.Serial)
	}
	full = append(full, args...)
	run := a.Run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, a.Path, full...)
}

func (a *ADB) shell(ctx context.Context, args ...string) ([]byte, error) {
	return a.exec(ctx, append([]string{"shell"}, args...)...)
}

func (a *ADB) input(ctx context.Context, args ...string) error {
	_, err := a.shell(ctx, append([]string{"input"}, args...)...)
	return err
}

func (a *ADB) keyevent(ctx context.Context, codes ...int) error {
	args := []string{"keyevent"}
	for _, code := range codes {
		args = append(args, strconv.Itoa(code))
	}
	return a.input(ctx, args...)
}

func (a *ADB) Tap(ctx context.Context, x, y int) error {
	return a.input(ctx, "tap", strconv.Itoa(x), strconv.Itoa(y))
}

func (a *ADB) LongPress(ctx context.Context, x, y int) error {
	return a.Swipe(ctx, x, y, x, y, longPressDuration)
}

func (a *ADB) Swipe(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) error {
	return a.input(ctx, "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1), strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.FormatInt(duration.Milliseconds(), 10))
}

func (a *ADB) DoubleTap(ctx context.Context, x, y int) error {
	if err := a.Tap(ctx, x, y); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(doubleTapGap):
	}
	return a.Tap(ctx, x, y)
}

func (a *ADB) TypeText(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	return a.input(ctx, "text", escapeInputText(text))
}

// ClearText deletes the contents of the focused input field.
func (a *ADB) ClearText(ctx context.Context) error {
	root, err := a.hierarchy(ctx)
	if err != nil {
		return err
	}
	field := root.FocusedInput()
	if field == nil {
		return fmt.Errorf("clear text: %w", ErrNotFound)
	}
	count := len([]rune(field.Text))
	if count == 0 {
		return nil
	}
	if err := a.keyevent(ctx, keycodeMoveEnd); err != nil {
		return err
	}
	codes := make([]int, count)
	for i := range codes {
		codes[i] = keycodeDel
	}
	return a.keyevent(ctx, codes...)
}

func (a *ADB) ClickByVisibleText(ctx context.Context, text string) error {
	root, err := a.hierarchy(ctx)
	if err != nil {
		return err
	}
	node := root.FindByText(text)
	if node == nil {
		return fmt.Errorf("text %q: %w", text, ErrNotFound)
	}
	x, y := node.ClickTarget().Bounds.Center()
	return a.Tap(ctx, x, y)
}

func (a *ADB) ClickByElementID(ctx context.Context, viewID string) error {
	root, err := a.hierarchy(ctx)
	if err != nil {
		return err
	}
	node := root.FindByViewID(viewID)
	if node == nil {
		return fmt.Errorf("view id %q: %w", viewID, ErrNotFound)
	}
	x, y := node.ClickTarget().Bounds.Center()
	return a.Tap(ctx, x, y)
}

func (a *ADB) PressBack(ctx context.Context) error   { return a.keyevent(ctx, keycodeBack) }
func (a *ADB) PressHome(ctx context.Context) error   { return a.keyevent(ctx, keycodeHome) }
func (a *ADB) OpenRecents(ctx context.Context) error { return a.keyevent(ctx, keycodeRecents) }

func (a *ADB) OpenNotificationShade(ctx context.Context) error {
	_, err := a.shell(ctx, "cmd", "statusbar", "expand-notifications")
	return err
}

// ScrollUp reveals content above the viewport.
func (a *ADB) ScrollUp(ctx context.Context) error {
	w, h, err := a.screenSize(ctx)
	if err != nil {
		return err
	}
	return a.Swipe(ctx, w/2, h*3/10, w/2, h*7/10, scrollDuration)
}

// ScrollDown reveals content below the viewport.
func (a *ADB) ScrollDown(ctx context.Context) error {
	w, h, err := a.screenSize(ctx)
	if err != nil {
		return err
	}
	return a.Swipe(ctx, w/2, h*7/10, w/2, h*3/10, scrollDuration)
}

func (a *ADB) ReadAllVisibleText(ctx context.Context) (string, error) {
	root, err := a.hierarchy(ctx)
	if err != nil {
		return "", err
	}
	return root.VisibleText(), nil
}

func (a *ADB) ReadUITree(ctx context.Context) (string, error) {
	root, err := a.hierarchy(ctx)
	if err != nil {
		return "", err
	}
	return root.JSON()
}

func (a *ADB) CaptureScreenshot(ctx context.Context) (string, error) {
	out, err := a.exec(ctx, "exec-out", "screencap", "-p")
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", fmt.Errorf("screencap: empty output")
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func (a *ADB) LaunchApp(ctx context.Context, packageID string) error {
	out, err := a.shell(ctx, "monkey", "-p", packageID, "-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return err
	}
	if strings.Contains(string(out), "No activities found") {
		return fmt.Errorf("launch %s: %w", packageID, ErrNotFound)
	}
	return nil
}

var focusPattern = regexp.MustCompile(`(?:mCurrentFocus|mFocusedApp)=.*?\s([A-Za-z0-9_.]+)/([A-Za-z0-9_.$]+)`)

// ForegroundApp reports "package/activity" for the focused window.
func (a *ADB) ForegroundApp(ctx context.Context) (string, error) {
	out, err := a.shell(ctx, "dumpsys", "window")
	if err != nil {
		return "", err
	}
	match := focusPattern.FindStringSubmatch(string(out))
	if match == nil {
		return "", fmt.Errorf("foreground app: %w", ErrNotFound)
	}
	activity := match[2]
	if strings.HasPrefix(activity, ".") {
		activity = match[1] + activity
	}
	return match[1] + "/" + activity, nil
}

func (a *ADB) ServiceActive(ctx context.Context) (bool, error) {
	out, err := a.exec(ctx, "get-state")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) == "device", nil
}

func (a *ADB) RecentNotifications(ctx context.Context, limit int) ([]Notification, error) {
	out, err := a.shell(ctx, "dumpsys", "notification", "--noredact")
	if err != nil {
		return nil, err
	}
	list := ParseNotifications(string(out))
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ClickNotification is not reachable through adb without an on-device helper.
func (a *ADB) ClickNotification(context.Context, string) error {
	return ErrUnsupported
}

func (a *ADB) ClearNotifications(context.Context) error {
	return ErrUnsupported
}

func (a *ADB) hierarchy(ctx context.Context) (*UINode, error) {
	out, err := a.exec(ctx, "exec-out", "uiautomator", "dump", "/dev/tty")
	if err != nil {
		return nil, err
	}
	return ParseHierarchy(string(out))
}

var sizePattern = regexp.MustCompile(`(\d+)x(\d+)`)

func (a *ADB) screenSize(ctx context.Context) (int, int, error) {
	out, err := a.shell(ctx, "wm", "size")
	if err != nil {
		return 0, 0, err
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	// An "Override size" line, when present, comes last and wins.
	for i := len(lines) - 1; i >= 0; i-- {
		match := sizePattern.FindStringSubmatch(lines[i])
		if match == nil {
			continue
		}
		w, _ := strconv.Atoi(match[1])
		h, _ := strconv.Atoi(match[2])
		return w, h, nil
	}
	return 0, 0, fmt.Errorf("wm size: unexpected output %q", strings.TrimSpace(string(out)))
}

var (
	recordPattern = regexp.MustCompile(`NotificationRecord\(0x[0-9a-f]+: pkg=(\S+)`)
	keyPattern    = regexp.MustCompile(`\bkey=(\S+?):?\s`)
	titlePattern  = regexp.MustCompile(`android\.title=\w+ \((.*)\)`)
	textPattern   = regexp.MustCompile(`android\.text=\w+ \((.*)\)`)
	whenPattern   = regexp.MustCompile(`\bwhen=(\d{10,})`)
)

// ParseNotifications extracts posted notifications from `dumpsys notification`
// output, in the order they appear.
func ParseNotifications(dump string) []Notification {
	var list []Notification
	var current *Notification
	flush := func() {
		if current != nil {
			list = append(list, *current)
		}
		current = nil
	}
	for _, line := range strings.Split(dump, "\n") {
		if match := recordPattern.FindStringSubmatch(line); match != nil {
			flush()
			current = &Notification{PackageName: match[1]}
			if key := keyPattern.FindStringSubmatch(line + " "); key != nil {
				current.Key = key[1]
			}
			continue
		}
		if current == nil {
			continue
		}
		if match := titlePattern.FindStringSubmatch(line); match != nil && current.Title == "" {
			current.Title = match[1]
		} else if match := textPattern.FindStringSubmatch(line); match != nil && current.Text == "" {
			current.Text = match[1]
		} else if match := whenPattern.FindStringSubmatch(line); match != nil && current.PostTime.IsZero() {
			if ms, err := strconv.ParseInt(match[1], 10, 64); err == nil {
				current.PostTime = time.UnixMilli(ms)
			}
		}
	}
	flush()
	return list
}

var inputEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`'`, `\'`,
	"`", "\\`",
	"$", `\$`,
	"&", `\&`,
	"|", `\|`,
	";", `\;`,
	"<", `\<`,
	">", `\>`,
	"(", `\(`,
	")", `\)`,
	"*", `\*`,
	"~", `\~`,
	"?", `\?`,
	"%", `\%`,
	" ", "%s",
)

// escapeInputText prepares text for `input text`, which splits on spaces and
// runs through the device shell.
func escapeInputText(text string) string {
	return inputEscaper.Replace(text)
}
