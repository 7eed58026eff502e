package server

import (
	"time"

	"github.com/nedpals/mfulc/session"
)

// SessionEvent is the payload of a "session" message.
type SessionEvent struct {
	ID            string    `json:"id"`
	UID           string    `json:"uid"`
	Type          string    `json:"type"`
	Action        string    `json:"action"`
	Authenticated bool      `json:"authenticated"`
	Pages         int       `json:"pages"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	Error         *string   `json:"error"`
	Time          time.Time `json:"time"`
}

// NewSessionEvent summarizes a finished session for clients.
func NewSessionEvent(o session.Outcome) SessionEvent {
	ev := SessionEvent{
		ID:            o.ID,
		UID:           o.Identity.UID,
		Type:          o.Identity.Type,
		Action:        o.Action.String(),
		Authenticated: o.Authenticated,
		Time:          o.Time,
	}
	if o.Report != nil {
		ev.Pages = o.Report.Count(session.StatusOK)
		ev.Skipped = o.Report.Count(session.StatusSkipped)
		ev.Failed = o.Report.Count(session.StatusFailed)
	}
	if o.Err != nil {
		msg := o.Err.Error()
		ev.Error = &msg
	}
	return ev
}
