package orchestrate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bsrun/bsrun/browserstack"
	"github.com/bsrun/bsrun/model"
)

func mustDevice(t *testing.T, name string) model.Device {
	t.Helper()
	d, err := model.NewDevice(name, "")
	require.NoError(t, err)
	return d
}

func session(id string, status model.State, started bool) model.Session {
	s := model.Session{ID: id, Status: status}
	if started {
		s.StartedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}
	return s
}

// fakeBuilds scripts the build endpoint: every submitted batch immediately
// reaches the state configured per device.
type fakeBuilds struct {
	submits    [][]string
	outcomes   map[string]model.State // device name -> session state
	started    map[string]bool        // device name -> has start time
	last       *model.BuildSnapshot
	submitErr  error
	statusErr  error
	statusHits int
}

func (f *fakeBuilds) Submit(_ context.Context, _, _ string, deviceNames []string, _ browserstack.SubmitOptions) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submits = append(f.submits, deviceNames)
	return fmt.Sprintf("build-%d", len(f.submits)), nil
}

func (f *fakeBuilds) Status(_ context.Context, buildID string) (model.BuildSnapshot, error) {
	f.statusHits++
	if f.statusErr != nil {
		return model.BuildSnapshot{}, f.statusErr
	}
	var idx int
	if _, err := fmt.Sscanf(buildID, "build-%d", &idx); err != nil {
		return model.BuildSnapshot{}, fmt.Errorf("unknown build %s", buildID)
	}
	snap := model.BuildSnapshot{ID: buildID, Status: model.StatePassed}
	for _, name := range f.submits[idx-1] {
		state, ok := f.outcomes[name]
		if !ok {
			state = model.StatePassed
		}
		started := true
		if f.started != nil {
			if v, ok := f.started[name]; ok {
				started = v
			}
		}
		device := model.Device{Name: name}
		snap.Devices = append(snap.Devices, model.BuildDevice{
			Device:   device,
			Sessions: []model.Session{session("s-"+name, state, started)},
		})
	}
	return snap, nil
}

func (f *fakeBuilds) Last(_ context.Context) (model.BuildSnapshot, bool, error) {
	if f.last == nil {
		return model.BuildSnapshot{}, false, nil
	}
	return *f.last, true, nil
}

type fakeReports struct {
	report string
	err    error
	calls  int
}

func (f *fakeReports) JUnitReport(context.Context, string, string) (string, error) {
	f.calls++
	return f.report, f.err
}

func testOptions() Options {
	return Options{
		MaxParallel:  1,
		PollInterval: time.Millisecond,
		MaxWait:      10 * time.Millisecond,
	}
}

func TestSplitBatches(t *testing.T) {
	for total := 0; total <= 7; total++ {
		for size := 1; size <= 4; size++ {
			var devices []model.Device
			for i := 0; i < total; i++ {
				devices = append(devices, model.Device{Name: fmt.Sprintf("Google Pixel %d-14.0", i)})
			}

			batches := splitBatches(devices, size)

			wantBatches := (total + size - 1) / size
			require.Len(t, batches, wantBatches, "total=%d size=%d", total, size)

			seen := map[string]int{}
			for _, batch := range batches {
				require.LessOrEqual(t, len(batch), size)
				for _, d := range batch {
					seen[d.Name]++
				}
			}
			require.Len(t, seen, total, "every device appears")
			for name, n := range seen {
				require.Equal(t, 1, n, "device %s appears exactly once", name)
			}
		}
	}
}

func TestRunSingleBatchCoversAllDevices(t *testing.T) {
	builds := &fakeBuilds{}
	orch := New(zerolog.Nop(), builds, &fakeReports{}, testOptions())

	devices := []model.Device{
		mustDevice(t, "Google Pixel 8 Pro-14.0"),
		mustDevice(t, "Samsung Galaxy S22-12.0"),
	}
	result, err := orch.Run(context.Background(), "app-ref", "suite-ref", devices)
	require.NoError(t, err)

	// batch size is 2x max-parallel, so both devices fit one build
	require.Len(t, builds.submits, 1)
	require.ElementsMatch(t, []string{"Google Pixel 8 Pro-14.0", "Samsung Galaxy S22-12.0"}, builds.submits[0])

	require.True(t, result.Success)
	require.Equal(t, 2, result.Total)
	require.Empty(t, result.Failed)
}

func TestRunAggregatesAcrossBatches(t *testing.T) {
	builds := &fakeBuilds{
		outcomes: map[string]model.State{
			"Samsung Galaxy S22-12.0": model.StateFailed,
			"OnePlus 9-11.0":          model.StateError,
		},
		started: map[string]bool{
			"OnePlus 9-11.0": false,
		},
	}
	orch := New(zerolog.Nop(), builds, &fakeReports{err: fmt.Errorf("no report")}, testOptions())

	devices := []model.Device{
		mustDevice(t, "Google Pixel 8 Pro-14.0"),
		mustDevice(t, "Samsung Galaxy S22-12.0"),
		mustDevice(t, "OnePlus 9-11.0"),
	}
	result, err := orch.Run(context.Background(), "app-ref", "suite-ref", devices)
	require.NoError(t, err)

	require.Len(t, builds.submits, 2, "three devices at batch size two")
	require.Equal(t, 3, result.Total)
	require.False(t, result.Success)
	require.Equal(t, []string{"Samsung Galaxy S22-12.0"}, model.DeviceNames(result.Failed))
	require.Equal(t, []string{"OnePlus 9-11.0"}, model.DeviceNames(result.NoStart))
}

func TestRunSubmitErrorAborts(t *testing.T) {
	builds := &fakeBuilds{submitErr: fmt.Errorf("authentication failed")}
	orch := New(zerolog.Nop(), builds, &fakeReports{}, testOptions())

	_, err := orch.Run(context.Background(), "app-ref", "suite-ref", []model.Device{
		mustDevice(t, "Google Pixel 8 Pro-14.0"),
	})
	require.ErrorContains(t, err, "authentication failed")
}

func TestRetryFailedFromLastBuild(t *testing.T) {
	z := mustDevice(t, "Xiaomi 13-13.0")
	passed := mustDevice(t, "Google Pixel 8 Pro-14.0")

	builds := &fakeBuilds{
		last: &model.BuildSnapshot{
			ID:     "build-previous",
			Status: model.StateFailed,
			Devices: []model.BuildDevice{
				{Device: passed, Sessions: []model.Session{session("s1", model.StatePassed, true)}},
				{Device: z, Sessions: []model.Session{session("s2", model.StateFailed, true)}},
			},
		},
	}
	orch := New(zerolog.Nop(), builds, &fakeReports{err: fmt.Errorf("unavailable")}, testOptions())

	failed, err := orch.FailedFromLastBuild(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Xiaomi 13-13.0"}, model.DeviceNames(failed))

	// the recovery run resubmits only the failed device
	_, err = orch.Run(context.Background(), "app-ref", "suite-ref", failed)
	require.NoError(t, err)
	require.Len(t, builds.submits, 1)
	require.Equal(t, []string{"Xiaomi 13-13.0"}, builds.submits[0])
}

func TestFailedFromLastBuildIncludesNoStart(t *testing.T) {
	y := mustDevice(t, "Vivo X90-13.0")
	builds := &fakeBuilds{
		last: &model.BuildSnapshot{
			ID:     "build-previous",
			Status: model.StateError,
			Devices: []model.BuildDevice{
				{Device: y, Sessions: []model.Session{session("s1", model.StateError, false)}},
			},
		},
	}
	orch := New(zerolog.Nop(), builds, &fakeReports{}, testOptions())

	failed, err := orch.FailedFromLastBuild(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Vivo X90-13.0"}, model.DeviceNames(failed))
}

func TestFailedFromLastBuildEmptyHistory(t *testing.T) {
	orch := New(zerolog.Nop(), &fakeBuilds{}, &fakeReports{}, testOptions())

	failed, err := orch.FailedFromLastBuild(context.Background())
	require.NoError(t, err)
	require.Empty(t, failed)
}

func TestDevicesFromLastBuild(t *testing.T) {
	x := mustDevice(t, "Google Pixel 8 Pro-14.0")
	y := mustDevice(t, "Oppo Find X6-13.0")
	builds := &fakeBuilds{
		last: &model.BuildSnapshot{
			ID:     "build-previous",
			Status: model.StatePassed,
			Devices: []model.BuildDevice{
				{Device: x, Sessions: []model.Session{session("s1", model.StatePassed, true)}},
				{Device: y, Sessions: []model.Session{session("s2", model.StatePassed, true)}},
			},
		},
	}
	orch := New(zerolog.Nop(), builds, &fakeReports{}, testOptions())

	devices, err := orch.DevicesFromLastBuild(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Google Pixel 8 Pro-14.0", "Oppo Find X6-13.0"}, model.DeviceNames(devices))
}
