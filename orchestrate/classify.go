package orchestrate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bsrun/bsrun/model"
)

const noErrorMessage = "no error message"

// Classifier derives per-session outcomes and human-readable error
// messages. Outcome classification itself is the pure function
// model.ClassifyOutcome; the classifier adds the report-derivation chain.
type Classifier struct {
	logger  zerolog.Logger
	reports Reports
}

// NewClassifier builds a Classifier.
func NewClassifier(logger zerolog.Logger, reports Reports) *Classifier {
	return &Classifier{logger: logger, reports: reports}
}

// ErrorMessage derives the message to report for a session. Only failed and
// skipped sessions carry one. The chain prefers the junit report, then the
// structured error payload's message, then a fixed placeholder; report
// fetch failures are swallowed, never raised.
func (c *Classifier) ErrorMessage(ctx context.Context, buildID string, session model.Session) string {
	outcome := session.Outcome()
	if outcome != model.OutcomeFailed && outcome != model.OutcomeSkipped {
		return ""
	}
	if outcome == model.OutcomeFailed {
		report, err := c.reports.JUnitReport(ctx, buildID, session.ID)
		if err == nil {
			return report
		}
		c.logger.Debug().Err(err).
			Str("session_id", session.ID).
			Msg("No junit report available")
	}
	if session.Error != nil && session.Error.Message != "" {
		return session.Error.Message
	}
	return noErrorMessage
}
