package browserstack

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ErrArtifactNotFound is returned when no uploaded app or test suite
// matches a lookup.
var ErrArtifactNotFound = errors.New("browserstack: artifact not found")

const (
	uploadAppPath = "app-automate/espresso/v2/app"
	listAppsPath  = "app-automate/espresso/v2/apps"
	appPath       = "app-automate/espresso/v2/apps/"
)

// App is an uploaded application package. Its usable reference for build
// submission follows the precedence custom id > shareable id > raw URL.
type App struct {
	Name        string
	URL         string
	Version     string
	ID          string
	CustomID    string
	ShareableID string
	UploadedAt  time.Time
	Expiry      time.Time
}

// TestRef returns the reference to pass when submitting a build.
func (a App) TestRef() string {
	if a.CustomID != "" {
		return a.CustomID
	}
	if a.ShareableID != "" {
		return a.ShareableID
	}
	return a.URL
}

type appWire struct {
	AppName     string `json:"app_name"`
	AppURL      string `json:"app_url"`
	AppVersion  string `json:"app_version"`
	AppID       string `json:"app_id"`
	UploadedAt  string `json:"uploaded_at"`
	CustomID    string `json:"custom_id"`
	ShareableID string `json:"shareable_id"`
	Expiry      string `json:"expiry"`
}

func (c *Client) appFromWire(w appWire) App {
	return App{
		Name:        w.AppName,
		URL:         w.AppURL,
		Version:     w.AppVersion,
		ID:          w.AppID,
		CustomID:    w.CustomID,
		ShareableID: w.ShareableID,
		UploadedAt:  c.parseTime(w.UploadedAt),
		Expiry:      c.parseTime(w.Expiry),
	}
}

// AppService manages uploaded application packages.
type AppService struct {
	client *Client
}

// Apps returns the app endpoint service.
func (c *Client) Apps() *AppService {
	return &AppService{client: c}
}

// Upload uploads a local APK, optionally tagged with a custom id, and
// returns the freshly created reference.
func (s *AppService) Upload(ctx context.Context, file, customID string) (App, error) {
	var w appWire
	if err := s.client.uploadFile(ctx, uploadAppPath, file, customID, &w); err != nil {
		return App{}, errors.Wrap(err, "failed to upload app")
	}
	return s.client.appFromWire(w), nil
}

// List returns every uploaded app, most recently uploaded first.
func (s *AppService) List(ctx context.Context) ([]App, error) {
	var res struct {
		Apps []appWire `json:"apps"`
	}
	if err := s.client.getJSON(ctx, listAppsPath, &res); err != nil {
		return nil, errors.Wrap(err, "failed to list apps")
	}
	apps := make([]App, 0, len(res.Apps))
	for _, w := range res.Apps {
		apps = append(apps, s.client.appFromWire(w))
	}
	return apps, nil
}

// Last returns the most recently uploaded app, or ErrArtifactNotFound if
// none exist.
func (s *AppService) Last(ctx context.Context) (App, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return App{}, err
	}
	if len(apps) == 0 {
		return App{}, ErrArtifactNotFound
	}
	return apps[0], nil
}

// FindByCustomID returns the most recently uploaded app whose custom id
// matches exactly, or ErrArtifactNotFound when nothing matches.
func (s *AppService) FindByCustomID(ctx context.Context, customID string) (App, error) {
	apps, err := s.List(ctx)
	if err != nil {
		return App{}, err
	}
	var best *App
	for i := range apps {
		if apps[i].CustomID != customID {
			continue
		}
		if best == nil || apps[i].UploadedAt.After(best.UploadedAt) {
			best = &apps[i]
		}
	}
	if best == nil {
		return App{}, errors.Wrapf(ErrArtifactNotFound, "no app with custom id %q", customID)
	}
	return *best, nil
}

// Details fetches the full record for an app id.
func (s *AppService) Details(ctx context.Context, appID string) (App, error) {
	var res struct {
		App appWire `json:"app"`
	}
	if err := s.client.getJSON(ctx, appPath+appID, &res); err != nil {
		return App{}, errors.Wrapf(err, "failed to get app %s", appID)
	}
	return s.client.appFromWire(res.App), nil
}

// Delete removes an uploaded app. Failures are reported, not fatal.
func (s *AppService) Delete(ctx context.Context, appID string) bool {
	data, err := s.client.delete(ctx, appPath+appID)
	if err != nil {
		s.client.logger.Error().Err(err).Str("app_id", appID).Msg("Delete app failed")
		return false
	}
	var res struct {
		Success any `json:"success"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return false
	}
	return res.Success != nil
}

// DeleteRecent removes every uploaded app.
func (s *AppService) DeleteRecent(ctx context.Context) error {
	apps, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, app := range apps {
		ok := s.Delete(ctx, app.ID)
		s.client.logger.Info().Str("app_id", app.ID).Bool("deleted", ok).Msg("Delete recent app")
	}
	return nil
}
