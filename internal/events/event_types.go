package events

import (
	"time"

	"github.com/spec-kit/civicguard/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketFiling  EventType = "ticket_filing"
	EventTicketFiled   EventType = "ticket_filed"
)

// Event represents a lifecycle event emitted by intake and the filing worker.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	IssueClass domain.IssueClass `json:"issue_class"`
	Severity   domain.Severity   `json:"severity"`
	Address    string            `json:"address"`
	MediaURL   string            `json:"media_url"`
}

// TicketFilingPayload payload.
type TicketFilingPayload struct {
	IssueClass    domain.IssueClass `json:"issue_class"`
	AuthorityName string            `json:"authority_name"`
	EndpointType  string            `json:"endpoint_type"`
}

// TicketFiledPayload payload.
type TicketFiledPayload struct {
	AuthorityName     string `json:"authority_name"`
	AuthorityTicketID string `json:"authority_ticket_id"`
	Dispatched        bool   `json:"dispatched"`
}
