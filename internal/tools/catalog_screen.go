package tools

import (
	"context"
	"errors"

	"phoneclaw/internal/device"
)

var errNoScreenshot = errors.New("failed to take screenshot")

func screenTools(client *device.Client) []Definition {
	return []Definition{
		{
			Name:        "getScreenText",
			Description: "Read all visible text on the current screen. Returns a concatenated string of all text and content descriptions.",
			Execute: func(ctx context.Context, _ Args) (any, error) {
				return client.ReadAllVisibleText(ctx), nil
			},
		},
		{
			Name:        "getUITree",
			Description: "Get the full UI accessibility tree as structured JSON. Each node includes: class, text, contentDescription, bounds, clickable, scrollable, editable, focused, viewId, children.",
			Execute: func(ctx context.Context, _ Args) (any, error) {
				return client.ReadUITree(ctx), nil
			},
		},
		{
			Name:          "takeScreenshot",
			Description:   "Take a screenshot of the current screen and return the base64-encoded image",
			Execute:       screenshotExecutor(client),
			ProducesImage: true,
		},
		{
			Name:        "isServiceRunning",
			Description: "Check if the PhoneClaw automation service is currently enabled and connected",
			Execute: func(ctx context.Context, _ Args) (any, error) {
				return client.ServiceActive(ctx), nil
			},
		},
	}
}

func visionTools(client *device.Client) []Definition {
	return []Definition{
		{
			Name:          "capture_screen",
			Description:   "Take a screenshot of the current screen to see what is displayed. Use this when you need to understand visual elements, icons, or layout that are not available in the UI tree. Returns a base64-encoded image.",
			Execute:       screenshotExecutor(client),
			ProducesImage: true,
		},
	}
}

func screenshotExecutor(client *device.Client) Executor {
	return func(ctx context.Context, _ Args) (any, error) {
		data := client.CaptureScreenshot(ctx)
		if data == "" {
			return nil, errNoScreenshot
		}
		return data, nil
	}
}
