package tools

import (
	"context"
	"time"

	"phoneclaw/internal/device"
)

const (
	defaultSwipeDuration     = 300 * time.Millisecond
	defaultLaunchSettle      = 2 * time.Second
	defaultNotificationLimit = 10
)

// CatalogOptions tunes device tool behavior.
type CatalogOptions struct {
	// LaunchSettle is how long launchApp waits for the app to draw. Zero
	// uses the default; a negative value disables the wait.
	LaunchSettle time.Duration
}

func (o CatalogOptions) launchSettle() time.Duration {
	switch {
	case o.LaunchSettle < 0:
		return 0
	case o.LaunchSettle == 0:
		return defaultLaunchSettle
	default:
		return o.LaunchSettle
	}
}

// DeviceCatalog returns every device tool, grouped touch, navigation, screen,
// input, app, vision then notifications.
func DeviceCatalog(client *device.Client, opts CatalogOptions) []Definition {
	var defs []Definition
	defs = append(defs, touchTools(client)...)
	defs = append(defs, navigationTools(client)...)
	defs = append(defs, screenTools(client)...)
	defs = append(defs, inputTools(client)...)
	defs = append(defs, appTools(client, opts)...)
	defs = append(defs, visionTools(client)...)
	defs = append(defs, notificationTools(client)...)
	return defs
}

// NewDeviceRegistry builds a registry holding DeviceCatalog.
func NewDeviceRegistry(client *device.Client, opts CatalogOptions) (*Registry, error) {
	return NewRegistry(DeviceCatalog(client, opts)...)
}

func coord(name, description string) Parameter {
	return Parameter{Name: name, Type: ParamNumber, Description: description, Required: true}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
