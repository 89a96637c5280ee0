// Package audit keeps the per-session trail of what happened in an interview.
package audit

import "time"

// Actor identifies who caused an entry.
type Actor string

const (
	ActorClient     Actor = "client"
	ActorConsultant Actor = "consultant"
	ActorSystem     Actor = "system"
)

// Action describes what was done.
type Action string

const (
	ActionAnswerRecorded    Action = "answer_recorded"
	ActionTopicClosed       Action = "topic_closed"
	ActionTopicReopened     Action = "topic_reopened"
	ActionFeaturesSelected  Action = "features_selected"
	ActionFoundationUpdated Action = "foundation_updated"
	ActionDocumentGenerated Action = "document_generated"
	ActionSessionReset      Action = "session_reset"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"-"`
	SessionID string    `json:"session_id" db:"session_id"`
	Actor     Actor     `json:"actor" db:"actor"`
	Action    Action    `json:"action" db:"action"`
	Summary   string    `json:"summary" db:"summary"`
	Detail    string    `json:"detail,omitempty" db:"detail"`
}
