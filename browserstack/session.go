package browserstack

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bsrun/bsrun/model"
)

// ErrReportUnavailable is returned when the farm has no junit report for a
// session.
var ErrReportUnavailable = errors.New("browserstack: session report unavailable")

// SessionService queries per-session details and reports.
type SessionService struct {
	client *Client
}

// Sessions returns the session endpoint service.
func (c *Client) Sessions() *SessionService {
	return &SessionService{client: c}
}

// Details fetches the current record of one session within a build.
func (s *SessionService) Details(ctx context.Context, buildID, sessionID string, device model.Device) (model.Session, error) {
	var w sessionWire
	if err := s.client.getJSON(ctx, buildPath+buildID+"/sessions/"+sessionID, &w); err != nil {
		return model.Session{}, errors.Wrapf(err, "failed to get session %s of build %s", sessionID, buildID)
	}
	return s.client.sessionFromWire(w, device)
}

// JUnitReport fetches the junit-style report text for a session.
func (s *SessionService) JUnitReport(ctx context.Context, buildID, sessionID string) (string, error) {
	text, err := s.client.getText(ctx, buildPath+buildID+"/sessions/"+sessionID+"/report")
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return "", errors.Wrapf(ErrReportUnavailable, "session %s", sessionID)
		}
		return "", errors.Wrapf(err, "failed to get report for session %s", sessionID)
	}
	return text, nil
}

// Coverage fetches the code coverage payload for a session.
func (s *SessionService) Coverage(ctx context.Context, buildID, sessionID string) ([]byte, error) {
	text, err := s.client.getText(ctx, buildPath+buildID+"/sessions/"+sessionID+"/coverage")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get coverage for session %s", sessionID)
	}
	return []byte(text), nil
}
