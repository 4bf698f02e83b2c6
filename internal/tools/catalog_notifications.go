package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"phoneclaw/internal/device"
)

type notificationView struct {
	App     string `json:"app"`
	Time    string `json:"time"`
	Title   string `json:"title"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

func notificationTools(client *device.Client) []Definition {
	return []Definition{
		{
			Name:        "get_recent_notifications",
			Description: "Get a list of recent notifications posted to the phone. Returns title, text, and package name for each.",
			Parameters: []Parameter{
				{Name: "limit", Type: ParamNumber, Description: "Maximum number of notifications to retrieve (default 10)"},
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				limit, ok, err := args.OptionalInt("limit")
				if err != nil {
					return nil, err
				}
				if !ok || limit <= 0 {
					limit = defaultNotificationLimit
				}
				return renderNotifications(client.RecentNotifications(ctx, limit))
			},
		},
		{
			Name:        "click_notification",
			Description: `Tap on a notification to open it. Requires the "id" from get_recent_notifications.`,
			Parameters: []Parameter{
				{Name: "id", Type: ParamString, Description: "The unique key/id of the notification to click", Required: true},
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				id, err := args.RequiredString("id")
				if err != nil {
					return nil, err
				}
				if client.ClickNotification(ctx, id) {
					return "Clicked notification.", nil
				}
				return "Failed to click notification (it might not be clickable or is gone).", nil
			},
		},
		{
			Name:        "clear_notifications",
			Description: "Clear all notifications from the list and try to dismiss them from the status bar.",
			Execute: func(ctx context.Context, _ Args) (any, error) {
				if client.ClearNotifications(ctx) {
					return "Notifications cleared.", nil
				}
				return "Failed to clear some notifications.", nil
			},
		},
	}
}

func renderNotifications(list []device.Notification) (string, error) {
	if len(list) == 0 {
		return "No recent notifications found.", nil
	}
	views := make([]notificationView, 0, len(list))
	for _, n := range list {
		view := notificationView{App: n.PackageName, Title: n.Title, Message: n.Text, ID: n.Key}
		if !n.PostTime.IsZero() {
			view.Time = n.PostTime.Format("15:04:05")
		}
		views = append(views, view)
	}
	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode notifications: %w", err)
	}
	return string(data), nil
}
