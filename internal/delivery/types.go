// Package delivery hands finished scope documents to the outside world: an
// archive bucket and a webhook. Transient webhook failures are retried here
// and nowhere else.
package delivery

import "time"

// Channel is where a document was sent.
type Channel string

const (
	ChannelArchive Channel = "archive"
	ChannelWebhook Channel = "webhook"
)

// Status is the final outcome of one delivery.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Delivery is one rendered document version to send.
type Delivery struct {
	SessionID    string
	Version      int
	ClientName   string
	ClientEmail  string
	Score        int
	Complete     bool
	ProjectTotal float64
	Markdown     string
	HTML         []byte
	JSON         []byte
}

// Record is the stored outcome of one channel.
type Record struct {
	ID              string    `json:"id" db:"id"`
	SessionID       string    `json:"session_id" db:"session_id"`
	DocumentVersion int       `json:"document_version" db:"document_version"`
	Channel         Channel   `json:"channel" db:"channel"`
	Target          string    `json:"target" db:"target"`
	Status          Status    `json:"status" db:"status"`
	Attempts        int       `json:"attempts" db:"attempts"`
	Error           string    `json:"error,omitempty" db:"error"`
	CreatedAt       time.Time `json:"created_at" db:"-"`
}

// WebhookPayload is the JSON body POSTed to the webhook.
type WebhookPayload struct {
	Event        string            `json:"event"`
	SessionID    string            `json:"session_id"`
	Version      int               `json:"version"`
	ClientName   string            `json:"client_name"`
	ClientEmail  string            `json:"client_email"`
	Score        int               `json:"score"`
	Complete     bool              `json:"complete"`
	ProjectTotal float64           `json:"project_total"`
	Locations    map[string]string `json:"locations,omitempty"`
	Markdown     string            `json:"markdown"`
}

// EventDocumentGenerated is the webhook event name.
const EventDocumentGenerated = "scope_document.generated"
