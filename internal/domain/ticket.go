package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The state machine is
// forward-only: CREATED -> FILING -> FILED.
type TicketStatus string

const (
	TicketStatusCreated TicketStatus = "CREATED"
	TicketStatusFiling  TicketStatus = "FILING"
	TicketStatusFiled   TicketStatus = "FILED"
)

// IssueClass is the categorical label for a reported problem.
type IssueClass string

const (
	IssuePothole        IssueClass = "pothole"
	IssueGarbage        IssueClass = "garbage"
	IssueStreetlight    IssueClass = "streetlight"
	IssueWaterLeak      IssueClass = "water_leak"
	IssueIllegalParking IssueClass = "illegal_parking"
	IssueStrayAnimals   IssueClass = "stray_animals"
	IssueUnknown        IssueClass = "unknown"
)

// IssueClasses lists the concrete labels the classifier can assign.
// "unknown" is the fallback and is not part of this set.
var IssueClasses = []IssueClass{
	IssuePothole,
	IssueGarbage,
	IssueStreetlight,
	IssueWaterLeak,
	IssueIllegalParking,
	IssueStrayAnimals,
}

// Severity enumerates reported urgency.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// UnknownAddress is the sentinel used whenever geocoding yields nothing.
const UnknownAddress = "Unknown"

// Ticket is the aggregate for one reported civic issue.
//
// Lat/Lng are jointly nil or jointly set. Address is never empty; it falls
// back to UnknownAddress. AuthorityTicketID is populated only once the
// ticket reaches FILED.
type Ticket struct {
	ID                string
	IssueClass        IssueClass
	Severity          Severity
	Lat               *float64
	Lng               *float64
	Address           string
	Status            TicketStatus
	AuthorityName     *string
	AuthorityTicketID *string
	Contact           *string
	MediaURL          string
	Dispatched        bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasCoordinates reports whether both coordinates are present.
func (t *Ticket) HasCoordinates() bool {
	return t.Lat != nil && t.Lng != nil
}

// FilingJob is the queue payload instructing a worker to file one ticket.
// Immutable once enqueued; the worker reconstructs any remaining context
// from a store lookup.
type FilingJob struct {
	TicketID   string     `json:"ticket_id"`
	MediaURL   string     `json:"media_url"`
	IssueClass IssueClass `json:"issue_class"`
	Address    string     `json:"address"`
	Contact    *string    `json:"contact,omitempty"`
}
