package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewDevice(t *testing.T) {
	tests := []struct {
		name      string
		device    string
		version   string
		wantName  string
		wantBrand Brand
		wantAPI   int
		wantErr   error
	}{
		{
			name:      "name with trailing version",
			device:    "Google Pixel 8 Pro-14.0",
			wantName:  "Google Pixel 8 Pro-14.0",
			wantBrand: BrandGoogle,
			wantAPI:   34,
		},
		{
			name:      "separate version appended to name",
			device:    "Samsung Galaxy S22",
			version:   "12.0",
			wantName:  "Samsung Galaxy S22-12.0",
			wantBrand: BrandSamsung,
			wantAPI:   31,
		},
		{
			name:      "unrecognized os version maps to api 0",
			device:    "OnePlus 9",
			version:   "4.4",
			wantName:  "OnePlus 9-4.4",
			wantBrand: BrandOnePlus,
			wantAPI:   0,
		},
		{
			name:      "no version suffix at all",
			device:    "Motorola Edge",
			wantName:  "Motorola Edge",
			wantBrand: BrandMotorola,
			wantAPI:   0,
		},
		{
			name:    "unknown brand",
			device:  "Nokia 3310-9.0",
			wantErr: ErrUnknownBrand,
		},
		{
			name:    "empty name",
			device:  "",
			wantErr: ErrUnknownBrand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDevice(tt.device, tt.version)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewDevice() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDevice() unexpected error: %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Brand != tt.wantBrand {
				t.Errorf("Brand = %q, want %q", got.Brand, tt.wantBrand)
			}
			if got.API != tt.wantAPI {
				t.Errorf("API = %d, want %d", got.API, tt.wantAPI)
			}
		})
	}
}

func TestDeviceEqualByName(t *testing.T) {
	a, err := NewDevice("Google Pixel 8 Pro-14.0", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewDevice("Google Pixel 8 Pro", "14.0")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("devices with the same normalized name should be equal: %q vs %q", a.Name, b.Name)
	}
}

func TestDedupeDevices(t *testing.T) {
	x, _ := NewDevice("Google Pixel 8 Pro-14.0", "")
	y, _ := NewDevice("Google Pixel 8 Pro", "14.0")
	z, _ := NewDevice("Samsung Galaxy S22-12.0", "")

	got := DedupeDevices([]Device{x, y, z, z})
	if len(got) != 2 {
		t.Fatalf("DedupeDevices() kept %d devices, want 2", len(got))
	}
	if !reflect.DeepEqual(DeviceNames(got), []string{"Google Pixel 8 Pro-14.0", "Samsung Galaxy S22-12.0"}) {
		t.Errorf("DedupeDevices() = %v", DeviceNames(got))
	}
}
