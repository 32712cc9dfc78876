package browserstack

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const (
	uploadSuitePath = "app-automate/espresso/v2/test-suite"
	listSuitesPath  = "app-automate/espresso/v2/test-suites"
	suitePath       = "app-automate/espresso/v2/test-suites/"
)

// Suite is an uploaded test suite package. Reference precedence mirrors
// App: custom id > shareable id > raw URL.
type Suite struct {
	Name        string
	URL         string
	ID          string
	CustomID    string
	ShareableID string
	Framework   string
	UploadedAt  time.Time
	Expiry      time.Time
}

// TestRef returns the reference to pass when submitting a build.
func (s Suite) TestRef() string {
	if s.CustomID != "" {
		return s.CustomID
	}
	if s.ShareableID != "" {
		return s.ShareableID
	}
	return s.URL
}

type suiteWire struct {
	SuiteName   string `json:"test_suite_name"`
	SuiteURL    string `json:"test_suite_url"`
	SuiteID     string `json:"test_suite_id"`
	UploadedAt  string `json:"uploaded_at"`
	CustomID    string `json:"custom_id"`
	ShareableID string `json:"shareable_id"`
	Framework   string `json:"framework"`
	Expiry      string `json:"expiry"`
}

func (c *Client) suiteFromWire(w suiteWire) Suite {
	return Suite{
		Name:        w.SuiteName,
		URL:         w.SuiteURL,
		ID:          w.SuiteID,
		CustomID:    w.CustomID,
		ShareableID: w.ShareableID,
		Framework:   w.Framework,
		UploadedAt:  c.parseTime(w.UploadedAt),
		Expiry:      c.parseTime(w.Expiry),
	}
}

// SuiteService manages uploaded test suites.
type SuiteService struct {
	client *Client
}

// Suites returns the test suite endpoint service.
func (c *Client) Suites() *SuiteService {
	return &SuiteService{client: c}
}

// Upload uploads a local test suite, optionally tagged with a custom id.
func (s *SuiteService) Upload(ctx context.Context, file, customID string) (Suite, error) {
	var w suiteWire
	if err := s.client.uploadFile(ctx, uploadSuitePath, file, customID, &w); err != nil {
		return Suite{}, errors.Wrap(err, "failed to upload test suite")
	}
	return s.client.suiteFromWire(w), nil
}

// List returns every uploaded test suite, most recently uploaded first.
func (s *SuiteService) List(ctx context.Context) ([]Suite, error) {
	var res struct {
		Suites []suiteWire `json:"test_suites"`
	}
	if err := s.client.getJSON(ctx, listSuitesPath, &res); err != nil {
		return nil, errors.Wrap(err, "failed to list test suites")
	}
	suites := make([]Suite, 0, len(res.Suites))
	for _, w := range res.Suites {
		suites = append(suites, s.client.suiteFromWire(w))
	}
	return suites, nil
}

// Last returns the most recently uploaded test suite, or
// ErrArtifactNotFound if none exist.
func (s *SuiteService) Last(ctx context.Context) (Suite, error) {
	suites, err := s.List(ctx)
	if err != nil {
		return Suite{}, err
	}
	if len(suites) == 0 {
		return Suite{}, ErrArtifactNotFound
	}
	return suites[0], nil
}

// FindByCustomID returns the most recently uploaded suite whose custom id
// matches exactly, or ErrArtifactNotFound when nothing matches.
func (s *SuiteService) FindByCustomID(ctx context.Context, customID string) (Suite, error) {
	suites, err := s.List(ctx)
	if err != nil {
		return Suite{}, err
	}
	var best *Suite
	for i := range suites {
		if suites[i].CustomID != customID {
			continue
		}
		if best == nil || suites[i].UploadedAt.After(best.UploadedAt) {
			best = &suites[i]
		}
	}
	if best == nil {
		return Suite{}, errors.Wrapf(ErrArtifactNotFound, "no test suite with custom id %q", customID)
	}
	return *best, nil
}

// Details fetches the full record for a test suite id.
func (s *SuiteService) Details(ctx context.Context, suiteID string) (Suite, error) {
	var res struct {
		Suite suiteWire `json:"test_suite"`
	}
	if err := s.client.getJSON(ctx, suitePath+suiteID, &res); err != nil {
		return Suite{}, errors.Wrapf(err, "failed to get test suite %s", suiteID)
	}
	return s.client.suiteFromWire(res.Suite), nil
}

// Delete removes an uploaded test suite. Failures are reported, not fatal.
func (s *SuiteService) Delete(ctx context.Context, suiteID string) bool {
	data, err := s.client.delete(ctx, suitePath+suiteID)
	if err != nil {
		s.client.logger.Error().Err(err).Str("suite_id", suiteID).Msg("Delete test suite failed")
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

// DeleteRecent removes every uploaded test suite.
func (s *SuiteService) DeleteRecent(ctx context.Context) error {
	suites, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, suite := range suites {
		ok := s.Delete(ctx, suite.ID)
		s.client.logger.Info().Str("suite_id", suite.ID).Bool("deleted", ok).Msg("Delete recent test suite")
	}
	return nil
}
