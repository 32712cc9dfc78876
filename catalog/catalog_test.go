package catalog

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bsrun/bsrun/browserstack"
	"github.com/bsrun/bsrun/model"
)

type staticSource []browserstack.DeviceEntry

func (s staticSource) ListDevices(context.Context) ([]browserstack.DeviceEntry, error) {
	return s, nil
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := New(context.Background(), zerolog.Nop(), staticSource{
		{Device: "Google Pixel 8 Pro", OSVersion: "14.0", OS: "android"},
		{Device: "Samsung Galaxy S23", OSVersion: "14.0", OS: "android"},
		{Device: "Samsung Galaxy S22", OSVersion: "12.0", OS: "android"},
		// unknown brands in the listing are skipped, not fatal
		{Device: "Sony Xperia 5", OSVersion: "13.0", OS: "android"},
	})
	require.NoError(t, err)
	return cat
}

func TestRandomForLevelsSkipsEmptyPools(t *testing.T) {
	cat := testCatalog(t)

	devices := cat.RandomForLevels([]int{34, 31, 28})
	require.Len(t, devices, 2, "API 28 has no devices and is skipped")

	byAPI := map[int]bool{}
	for _, d := range devices {
		byAPI[d.API] = true
	}
	require.True(t, byAPI[34])
	require.True(t, byAPI[31])
}

func TestRandomForLevelsFullyEmptyRequest(t *testing.T) {
	cat := testCatalog(t)
	require.Empty(t, cat.RandomForLevels([]int{21, 22}))
	require.Empty(t, cat.RandomForLevels(nil))
}

func TestRandomForLevelsDeduplicatesRepeatedLevels(t *testing.T) {
	cat := testCatalog(t)
	devices := cat.RandomForLevels([]int{31, 31, 31})
	require.Len(t, devices, 1)
}

func TestFindExactEntry(t *testing.T) {
	cat := testCatalog(t)

	requested, err := model.NewDevice("Samsung Galaxy S22-12.0", "")
	require.NoError(t, err)

	found, ok := cat.Find(requested)
	require.True(t, ok)
	require.Equal(t, "Samsung Galaxy S22-12.0", found.Name)

	missing, err := model.NewDevice("Samsung Galaxy S9-9.0", "")
	require.NoError(t, err)
	_, ok = cat.Find(missing)
	require.False(t, ok)
}

func TestLevelsDescending(t *testing.T) {
	cat := testCatalog(t)
	require.Equal(t, []int{34, 31}, cat.Levels())
	require.Len(t, cat.DevicesFor(34), 2)
}
