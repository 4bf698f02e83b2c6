package tools

import (
	"context"
	"time"

	"phoneclaw/internal/device"
)

func touchTools(client *device.Client) []Definition {
	return []Definition{
		{
			Name:        "tap",
			Description: "Tap at specific screen coordinates (x, y)",
			Parameters: []Parameter{
				coord("x", "X coordinate in pixels"),
				coord("y", "Y coordinate in pixels"),
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				x, y, err := point(args, "x", "y")
				if err != nil {
					return nil, err
				}
				return client.Tap(ctx, x, y), nil
			},
		},
		{
			Name:        "longPress",
			Description: "Long press at specific screen coordinates (x, y) for 500ms",
			Parameters: []Parameter{
				coord("x", "X coordinate in pixels"),
				coord("y", "Y coordinate in pixels"),
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				x, y, err := point(args, "x", "y")
				if err != nil {
					return nil, err
				}
				return client.LongPress(ctx, x, y), nil
			},
		},
		{
			Name:        "swipe",
			Description: "Swipe from (x1, y1) to (x2, y2) over a given duration in ms",
			Parameters: []Parameter{
				coord("x1", "Start X coordinate"),
				coord("y1", "Start Y coordinate"),
				coord("x2", "End X coordinate"),
				coord("y2", "End Y coordinate"),
				{Name: "duration", Type: ParamNumber, Description: "Duration in milliseconds (default: 300)"},
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				x1, y1, err := point(args, "x1", "y1")
				if err != nil {
					return nil, err
				}
				x2, y2, err := point(args, "x2", "y2")
				if err != nil {
					return nil, err
				}
				duration := defaultSwipeDuration
				ms, ok, err := args.OptionalInt("duration")
				if err != nil {
					return nil, err
				}
				if ok && ms > 0 {
					duration = time.Duration(ms) * time.Millisecond
				}
				return client.Swipe(ctx, x1, y1, x2, y2, duration), nil
			},
		},
		{
			Name:        "doubleTap",
			Description: "Double tap at specific screen coordinates (x, y)",
			Parameters: []Parameter{
				coord("x", "X coordinate in pixels"),
				coord("y", "Y coordinate in pixels"),
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				x, y, err := point(args, "x", "y")
				if err != nil {
					return nil, err
				}
				return client.DoubleTap(ctx, x, y), nil
			},
		},
	}
}

func point(args Args, xKey, yKey string) (int, int, error) {
	x, err := args.RequiredInt(xKey)
	if err != nil {
		return 0, 0, err
	}
	y, err := args.RequiredInt(yKey)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
