package browserstack

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/bsrun/bsrun/model"
)

const (
	submitBuildPath = "app-automate/espresso/v2/build"
	buildPath       = "app-automate/espresso/v2/builds/"
	listBuildsPath  = "app-automate/espresso/v2/builds"
)

// ErrSubmissionRejected is returned when the farm accepts the request but
// refuses to start a build.
var ErrSubmissionRejected = errors.New("browserstack: build submission rejected")

// SubmitOptions are the per-build configuration flags.
type SubmitOptions struct {
	// Project tag attached to the build
	Project string
	// Capture device logs during the run
	DeviceLogs bool
}

type sessionWire struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type buildDeviceWire struct {
	Device    string        `json:"device"`
	OSVersion string        `json:"os_version"`
	Sessions  []sessionWire `json:"sessions"`
}

type buildWire struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Framework string            `json:"framework"`
	Duration  int               `json:"duration"`
	StartTime string            `json:"start_time"`
	Devices   []buildDeviceWire `json:"devices"`
}

// BuildService submits builds and queries their status.
type BuildService struct {
	client *Client
}

// Builds returns the build endpoint service.
func (c *Client) Builds() *BuildService {
	return &BuildService{client: c}
}

// Submit issues one espresso build over the given device names and returns
// the assigned build id. A rejection is a submission error, never folded
// into build status.
func (s *BuildService) Submit(ctx context.Context, appRef, suiteRef string, deviceNames []string, opts SubmitOptions) (string, error) {
	payload := map[string]any{
		"app":       appRef,
		"testSuite": suiteRef,
		"devices":   deviceNames,
	}
	if opts.Project != "" {
		payload["project"] = opts.Project
	}
	if opts.DeviceLogs {
		payload["deviceLogs"] = true
	}

	var res struct {
		BuildID string `json:"build_id"`
		Message string `json:"message"`
	}
	if err := s.client.postJSON(ctx, submitBuildPath, payload, &res); err != nil {
		return "", errors.Wrap(err, "failed to submit build")
	}
	if res.BuildID == "" {
		return "", errors.Wrapf(ErrSubmissionRejected, "%s", res.Message)
	}
	return res.BuildID, nil
}

// Status fetches the current snapshot of a build: its status plus every
// targeted device and its sessions.
func (s *BuildService) Status(ctx context.Context, buildID string) (model.BuildSnapshot, error) {
	var w buildWire
	if err := s.client.getJSON(ctx, buildPath+buildID, &w); err != nil {
		return model.BuildSnapshot{}, errors.Wrapf(err, "failed to get build %s", buildID)
	}
	return s.client.snapshotFromWire(w)
}

// ListRecent returns recent builds, most recent first.
func (s *BuildService) ListRecent(ctx context.Context) ([]model.BuildSnapshot, error) {
	var wires []buildWire
	if err := s.client.getJSON(ctx, listBuildsPath, &wires); err != nil {
		return nil, errors.Wrap(err, "failed to list recent builds")
	}
	builds := make([]model.BuildSnapshot, 0, len(wires))
	for _, w := range wires {
		b, err := s.client.snapshotFromWire(w)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, nil
}

// Last returns the most recent build, or false if there are none.
func (s *BuildService) Last(ctx context.Context) (model.BuildSnapshot, bool, error) {
	builds, err := s.ListRecent(ctx)
	if err != nil {
		return model.BuildSnapshot{}, false, err
	}
	if len(builds) == 0 {
		return model.BuildSnapshot{}, false, nil
	}
	return builds[0], true, nil
}

func (c *Client) snapshotFromWire(w buildWire) (model.BuildSnapshot, error) {
	status, err := model.ParseState(w.Status)
	if err != nil {
		return model.BuildSnapshot{}, errors.Wrapf(err, "build %s", w.ID)
	}
	snap := model.BuildSnapshot{
		ID:     w.ID,
		Status: status,
	}
	for _, dw := range w.Devices {
		device, err := model.NewDevice(dw.Device, dw.OSVersion)
		if err != nil {
			return model.BuildSnapshot{}, errors.Wrapf(err, "build %s", w.ID)
		}
		bd := model.BuildDevice{Device: device}
		for _, sw := range dw.Sessions {
			session, err := c.sessionFromWire(sw, device)
			if err != nil {
				return model.BuildSnapshot{}, errors.Wrapf(err, "build %s", w.ID)
			}
			bd.Sessions = append(bd.Sessions, session)
		}
		snap.Devices = append(snap.Devices, bd)
	}
	return snap, nil
}

func (c *Client) sessionFromWire(w sessionWire, device model.Device) (model.Session, error) {
	status, err := model.ParseState(w.Status)
	if err != nil {
		return model.Session{}, errors.Wrapf(err, "session %s", w.ID)
	}
	session := model.Session{
		ID:        w.ID,
		Status:    status,
		StartedAt: c.parseTime(w.StartTime),
		Duration:  time.Duration(w.Duration) * time.Second,
		Device:    device,
	}
	if w.Error != nil {
		session.Error = &model.SessionError{Message: w.Error.Message}
	}
	return session, nil
}
