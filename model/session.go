package model

import "time"

// SessionError is the structured error payload the farm attaches to a
// failed session.
type SessionError struct {
	Message string `json:"message"`
}

// Session is one device's execution record within a build. StartedAt is the
// zero time when the session never began executing on the device, which is a
// distinct condition from a failure.
type Session struct {
	ID        string        `json:"id"`
	Status    State         `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     *SessionError `json:"error,omitempty"`
	Device    Device        `json:"device"`
}

// Started reports whether the session ever began executing.
func (s Session) Started() bool {
	return !s.StartedAt.IsZero()
}

// Outcome classifies the session.
func (s Session) Outcome() Outcome {
	return ClassifyOutcome(s.Status, s.Started())
}

// BuildDevice groups the sessions recorded for one device of a build.
// Sessions are ordered as reported by the farm; a device re-queued
// internally has more than one, with the most recent last.
type BuildDevice struct {
	Device   Device    `json:"device"`
	Sessions []Session `json:"sessions"`
}

// Latest returns the most recent session for the device, or false if the
// farm recorded none.
func (bd BuildDevice) Latest() (Session, bool) {
	if len(bd.Sessions) == 0 {
		return Session{}, false
	}
	return bd.Sessions[len(bd.Sessions)-1], true
}

// BuildSnapshot is the state of one submitted build as of a single status
// query: the build status plus every targeted device and its sessions.
type BuildSnapshot struct {
	ID      string        `json:"id"`
	Status  State         `json:"status"`
	Devices []BuildDevice `json:"devices"`
}

// AllDevices returns every device the build targeted.
func (b BuildSnapshot) AllDevices() []Device {
	devices := make([]Device, 0, len(b.Devices))
	for _, bd := range b.Devices {
		devices = append(devices, bd.Device)
	}
	return devices
}
