package tools

import (
	"context"

	"phoneclaw/internal/device"
)

func appTools(client *device.Client, opts CatalogOptions) []Definition {
	settle := opts.launchSettle()
	return []Definition{
		{
			Name:        "launchApp",
			Description: `Launch an app by its package name (e.g., "com.whatsapp")`,
			Parameters: []Parameter{
				{Name: "packageName", Type: ParamString, Description: "Package name of the app to launch", Required: true},
			},
			Execute: func(ctx context.Context, args Args) (any, error) {
				pkg, err := args.RequiredString("packageName")
				if err != nil {
					return nil, err
				}
				launched := client.LaunchApp(ctx, pkg)
				// Give the app time to draw before the next inspection.
				if err := sleep(ctx, settle); err != nil {
					return nil, err
				}
				return launched, nil
			},
		},
		{
			Name:        "getCurrentApp",
			Description: "Get the package name and activity of the currently active app",
			Execute: func(ctx context.Context, _ Args) (any, error) {
				return client.ForegroundApp(ctx), nil
			},
		},
	}
}
