// Package catalog resolves human device names against the farm's live
// device listing and picks concrete device sets for API-level requests.
package catalog

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog"

	"github.com/bsrun/bsrun/browserstack"
	"github.com/bsrun/bsrun/model"
)

// AllLevels is every API level the farm is known to carry, newest first.
var AllLevels = []int{34, 33, 32, 31, 30, 29, 28, 27, 26, 25, 24, 23, 22, 21}

// Source lists the devices currently available on the farm.
type Source interface {
	ListDevices(ctx context.Context) ([]browserstack.DeviceEntry, error)
}

// Catalog is the pool of known devices, bucketed by API level.
type Catalog struct {
	logger  zerolog.Logger
	byLevel map[int][]model.Device
}

// New builds a catalog from the farm's device listing. Devices with an
// unrecognized brand or OS version are dropped rather than failing the
// whole catalog, since the farm adds entries the brand enumeration may not
// know yet.
func New(ctx context.Context, logger zerolog.Logger, source Source) (*Catalog, error) {
	entries, err := source.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		logger:  logger,
		byLevel: make(map[int][]model.Device),
	}
	for _, entry := range entries {
		device, err := model.NewDevice(entry.Device, entry.OSVersion)
		if err != nil {
			if errors.Is(err, model.ErrUnknownBrand) {
				logger.Debug().Str("device", entry.Device).Msg("Skipping device with unknown brand")
				continue
			}
			return nil, err
		}
		c.byLevel[device.API] = append(c.byLevel[device.API], device)
	}
	return c, nil
}

// RandomForLevels picks one device uniformly at random per requested API
// level, skipping levels with an empty pool. The result may be empty; the
// caller must check.
func (c *Catalog) RandomForLevels(levels []int) []model.Device {
	var picked []model.Device
	for _, level := range levels {
		pool := c.byLevel[level]
		if len(pool) == 0 {
			c.logger.Debug().Int("api", level).Msg("No devices available for API level")
			continue
		}
		picked = append(picked, pool[rand.IntN(len(pool))])
	}
	return model.DedupeDevices(picked)
}

// Find returns the catalog's canonical entry for a device, matched by
// normalized name, or false if the farm does not carry it.
func (c *Catalog) Find(device model.Device) (model.Device, bool) {
	for _, d := range c.byLevel[device.API] {
		if d.Equal(device) {
			return d, true
		}
	}
	return model.Device{}, false
}

// Levels returns the API levels with at least one device, descending.
func (c *Catalog) Levels() []int {
	levels := make([]int, 0, len(c.byLevel))
	for level := range c.byLevel {
		levels = append(levels, level)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	return levels
}

// DevicesFor returns the pool for one API level.
func (c *Catalog) DevicesFor(level int) []model.Device {
	return c.byLevel[level]
}
