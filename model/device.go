package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBrand is returned when a device name does not start with a
// recognized manufacturer.
var ErrUnknownBrand = errors.New("unknown device brand")

// Brand is a device manufacturer recognized by the device farm.
type Brand string

const (
	BrandSamsung  Brand = "Samsung"
	BrandGoogle   Brand = "Google"
	BrandOnePlus  Brand = "OnePlus"
	BrandXiaomi   Brand = "Xiaomi"
	BrandVivo     Brand = "Vivo"
	BrandOppo     Brand = "Oppo"
	BrandMotorola Brand = "Motorola"
	BrandHuawei   Brand = "Huawei"
)

var brands = []Brand{
	BrandSamsung,
	BrandGoogle,
	BrandOnePlus,
	BrandXiaomi,
	BrandVivo,
	BrandOppo,
	BrandMotorola,
	BrandHuawei,
}

// apiLevels maps Android OS version strings to API levels. Versions not
// listed resolve to 0 (unrecognized).
var apiLevels = map[string]int{
	"14.0":  34,
	"13.0":  33,
	"12.0":  31,
	"11.0":  30,
	"10.0":  29,
	"9.0":   28,
	"8.1":   27,
	"8.0":   26,
	"7.1":   25,
	"7.1.1": 25,
	"7.0":   24,
	"6.0":   23,
	"5.1":   22,
	"5.0":   21,
}

// APILevel returns the Android API level for an OS version string, or 0 if
// the version is not recognized.
func APILevel(osVersion string) int {
	return apiLevels[osVersion]
}

// Device identifies one target device on the farm. The normalized Name
// (brand + model + OS version) is the sole identity: two Device values with
// the same Name are interchangeable, so Device is usable as a map key by
// name alone.
type Device struct {
	Name  string `json:"name"`
	Brand Brand  `json:"brand"`
	API   int    `json:"api"`
}

// NewDevice builds a Device from a raw device name and an optional OS
// version. When version is empty it is derived from the trailing
// "-<version>" suffix of the name (e.g. "Google Pixel 8 Pro-14.0");
// otherwise the version is appended to the name to normalize it.
func NewDevice(name, version string) (Device, error) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return Device{}, fmt.Errorf("%w: empty device name", ErrUnknownBrand)
	}
	brand, ok := parseBrand(fields[0])
	if !ok {
		return Device{}, fmt.Errorf("%w: %q", ErrUnknownBrand, fields[0])
	}

	osVersion := version
	if osVersion == "" {
		last := fields[len(fields)-1]
		if i := strings.LastIndex(last, "-"); i >= 0 {
			osVersion = last[i+1:]
		}
	}

	d := Device{
		Name:  name,
		Brand: brand,
		API:   APILevel(osVersion),
	}
	if version != "" {
		d.Name += "-" + version
	}
	return d, nil
}

func parseBrand(s string) (Brand, bool) {
	for _, b := range brands {
		if s == string(b) {
			return b, true
		}
	}
	return "", false
}

func (d Device) String() string {
	return d.Name
}

// Equal reports whether two devices refer to the same farm entry, by
// normalized name only.
func (d Device) Equal(other Device) bool {
	return d.Name == other.Name
}

// DeviceNames returns the normalized names of a device list, in order.
func DeviceNames(devices []Device) []string {
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	return names
}

// DedupeDevices removes devices that share a normalized name, keeping the
// first occurrence.
func DedupeDevices(devices []Device) []Device {
	seen := make(map[string]struct{}, len(devices))
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		out = append(out, d)
	}
	return out
}
