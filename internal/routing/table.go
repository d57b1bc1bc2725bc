package routing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spec-kit/civicguard/internal/domain"
)

// EndpointType selects the filing transport for an authority.
type EndpointType string

const (
	EndpointEmail EndpointType = "email"
	EndpointAPI   EndpointType = "api"
)

// RouteDescriptor is the resolved authority and transport endpoint for one
// (issue class, zone) pair. Immutable once loaded.
type RouteDescriptor struct {
	IssueClass    string
	Zone          string
	AuthorityName string
	EndpointType  EndpointType
	EndpointValue string
}

// DefaultRoute is returned when no table row matches. A generic helpdesk
// always accepts email.
var DefaultRoute = RouteDescriptor{
	AuthorityName: "Municipal Helpdesk",
	EndpointType:  EndpointEmail,
	EndpointValue: "helpdesk@example.com",
}

// Table is an immutable routing table indexed by (class, zone). Safe for
// unsynchronized concurrent reads after load.
type Table struct {
	routes      map[string]RouteDescriptor
	defaultZone string
}

// LoadTable reads the routing CSV (columns: class, zone, authority_name,
// endpoint_type, endpoint_value) into an immutable lookup table.
func LoadTable(path, defaultZone string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routing table: %w", err)
	}
	defer f.Close()

	table, err := parseTable(f, defaultZone)
	if err != nil {
		return nil, fmt.Errorf("parse routing table %s: %w", path, err)
	}
	return table, nil
}

func parseTable(r io.Reader, defaultZone string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{routes: map[string]RouteDescriptor{}, defaultZone: defaultZone}, nil
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"class", "zone", "authority_name", "endpoint_type", "endpoint_value"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	routes := make(map[string]RouteDescriptor, len(records)-1)
	for _, record := range records[1:] {
		desc := RouteDescriptor{
			IssueClass:    strings.TrimSpace(record[col["class"]]),
			Zone:          strings.TrimSpace(record[col["zone"]]),
			AuthorityName: strings.TrimSpace(record[col["authority_name"]]),
			EndpointType:  EndpointType(strings.TrimSpace(record[col["endpoint_type"]])),
			EndpointValue: strings.TrimSpace(record[col["endpoint_value"]]),
		}
		routes[routeKey(desc.IssueClass, desc.Zone)] = desc
	}

	return &Table{routes: routes, defaultZone: defaultZone}, nil
}

// Lookup resolves the authority route for an issue class and zone. Matching
// is case-insensitive and trimmed on class, exact-after-trim on zone. An
// empty zone means the default zone. Lookup never fails; unmatched pairs get
// DefaultRoute.
func (t *Table) Lookup(issueClass domain.IssueClass, zone string) RouteDescriptor {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		zone = t.defaultZone
	}
	if desc, ok := t.routes[routeKey(string(issueClass), zone)]; ok {
		return desc
	}
	return DefaultRoute
}

// DefaultZone returns the zone applied when callers supply none.
func (t *Table) DefaultZone() string {
	return t.defaultZone
}

func routeKey(issueClass, zone string) string {
	return strings.ToLower(strings.TrimSpace(issueClass)) + "|" + strings.TrimSpace(zone)
}
