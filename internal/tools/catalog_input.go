package tools

import (
	"context"
	"fmt"

	"phoneclaw/internal/device"
)

func inputTools(client *device.Client) []Definition {
	return []Definition{
		{
			Name:        "typeText",
			Description: "Type text into the currently focused input field. The field must already be focused.",
			Parameters: []Parameter{
				{Name: "text", Type: ParamString, Description: "The text to type", Required: true},
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				text, ok, err := args.OptionalString("text")
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, fmt.Errorf("text is required")
				}
				return client.TypeText(ctx, text), nil
			},
		},
		{
			Name:        "clearText",
			Description: "Clear the text in the currently focused input field",
			Execute: func(ctx context.Context, _ Args) (any, error) {
				return client.ClearText(ctx), nil
			},
		},
		{
			Name:        "clickByText",
			Description: "Find and click the first clickable element containing the specified text",
			Parameters: []Parameter{
				{Name: "text", Type: ParamString, Description: "Text to search for on screen", Required: true},
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				text, err := args.RequiredString("text")
				if err != nil {
					return nil, err
				}
				return client.ClickByVisibleText(ctx, text), nil
			},
		},
		{
			Name:        "clickByViewId",
			Description: `Click an element by its resource ID (e.g., "com.whatsapp:id/send")`,
			Parameters: []Parameter{
				{Name: "viewId", Type: ParamString, Description: "Full resource ID of the element", Required: true},
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				viewID, err := args.RequiredString("viewId")
				if err != nil {
					return nil, err
				}
				return client.ClickByElementID(ctx, viewID), nil
			},
		},
	}
}
