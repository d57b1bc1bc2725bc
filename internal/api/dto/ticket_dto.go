package dto

import (
	"time"

	"github.com/spec-kit/civicguard/internal/domain"
)

// TicketView is the public projection of a ticket.
type TicketView struct {
	ID                string    `json:"id"`
	Class             string    `json:"class"`
	Severity          string    `json:"severity"`
	Lat               *float64  `json:"lat"`
	Lng               *float64  `json:"lng"`
	Address           string    `json:"address"`
	Status            string    `json:"status"`
	Authority         *string   `json:"authority,omitempty"`
	AuthorityTicketID *string   `json:"authority_ticket_id,omitempty"`
	Contact           *string   `json:"contact,omitempty"`
	MediaURL          string    `json:"media_url"`
	Dispatched        bool      `json:"dispatched"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IntakeResponse extends the ticket view with intake-only derived fields.
type IntakeResponse struct {
	TicketView
	Confidence float64 `json:"confidence"`
	Note       *string `json:"note,omitempty"`
}

// TicketListResponse pairs the total count with one page of tickets.
type TicketListResponse struct {
	Count int          `json:"count"`
	Items []TicketView `json:"items"`
}

// UploadResponse is the validation probe result.
type UploadResponse struct {
	Filename    string   `json:"filename"`
	ContentType string   `json:"content_type"`
	Size        int      `json:"size"`
	SHA256      string   `json:"sha256"`
	GPS         *GPSView `json:"gps"`
}

// GPSView carries EXIF coordinates.
type GPSView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lon"`
}

// GeocodeResponse reports a reverse-geocode probe outcome.
type GeocodeResponse struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	Address  string `json:"address"`
}

// FromTicket maps the domain ticket to its view.
func FromTicket(t *domain.Ticket) TicketView {
	return TicketView{
		ID:                t.ID,
		Class:             string(t.IssueClass),
		Severity:          string(t.Severity),
		Lat:               t.Lat,
		Lng:               t.Lng,
		Address:           t.Address,
		Status:            string(t.Status),
		Authority:         t.AuthorityName,
		AuthorityTicketID: t.AuthorityTicketID,
		Contact:           t.Contact,
		MediaURL:          t.MediaURL,
		Dispatched:        t.Dispatched,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
