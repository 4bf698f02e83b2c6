package tools

import (
	"context"

	"phoneclaw/internal/device"
)

func navigationTools(client *device.Client) []Definition {
	action := func(name, description string, fn func(context.Context) bool) Definition {
		return Definition{
			Name:        name,
			Description: description,
			Execute: func(ctx context.Context, _ Args) (any, error) {
				return fn(ctx), nil
			},
		}
	}
	return []Definition{
		action("pressBack", "Press the Android back button", client.PressBack),
		action("pressHome", "Press the Android home button to go to the home screen", client.PressHome),
		action("openRecents", "Open the recent apps / task switcher", client.OpenRecents),
		action("openNotifications", "Pull down the notification shade", client.OpenNotificationShade),
		action("scrollUp", "Scroll the current screen upward", client.ScrollUp),
		action("scrollDown", "Scroll the current screen downward", client.ScrollDown),
	}
}
