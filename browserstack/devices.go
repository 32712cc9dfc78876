package browserstack

import (
	"context"

	"github.com/pkg/errors"
)

const listDevicesPath = "app-automate/devices.json"

// DeviceEntry is one device as listed by the farm.
type DeviceEntry struct {
	Device    string `json:"device"`
	OSVersion string `json:"os_version"`
	OS        string `json:"os"`
}

// ListDevices returns the farm's available devices, filtered to the
// supported platform.
func (c *Client) ListDevices(ctx context.Context) ([]DeviceEntry, error) {
	var entries []DeviceEntry
	if err := c.getJSON(ctx, listDevicesPath, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}
	android := entries[:0]
	for _, e := range entries {
		if e.OS == "android" {
			android = append(android, e)
		}
	}
	return android, nil
}
