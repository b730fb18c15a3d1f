package domain

import "time"

// ResultsStyle selects how search results are laid out by the client.
type ResultsStyle string

const (
	ResultsStyleCard ResultsStyle = "card"
	ResultsStyleList ResultsStyle = "list"
)

// ParseResultsStyle maps a raw query value to a ResultsStyle.
// Anything other than "list" is treated as the default card layout.
func ParseResultsStyle(s string) ResultsStyle {
	if ResultsStyle(s) == ResultsStyleList {
		return ResultsStyleList
	}
	return ResultsStyleCard
}

// SearchRecord is one row of a search result. It is a flat union:
//   - a public transport link when URL is non-empty,
//   - a trip when Type is offer or wanted,
//   - a group otherwise.
type SearchRecord struct {
	ID          int       `json:"id"`
	Type        TripType  `json:"type,omitempty"`
	URL         string    `json:"url,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Direction   string    `json:"direction,omitempty"`
	TripStart   *Place    `json:"TripStart,omitempty"`
	TripEnd     *Place    `json:"TripEnd,omitempty"`
	Date        time.Time `json:"date"`
	Seats       int       `json:"seats,omitempty"`
	Photo       string    `json:"photo,omitempty"`
	MapPhoto    string    `json:"mapPhoto,omitempty"`
	User        *User     `json:"User,omitempty"`
}

// PublicTransport is an external timetable link shown alongside ride results.
type PublicTransport struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TripFromSearch builds a Trip from a trip-shaped search record.
func TripFromSearch(r SearchRecord) Trip {
	return Trip{
		ID:          r.ID,
		Type:        r.Type,
		Description: r.Description,
		Direction:   r.Direction,
		TripStart:   r.TripStart,
		TripEnd:     r.TripEnd,
		Date:        r.Date,
		Seats:       r.Seats,
		Photo:       r.Photo,
		MapPhoto:    r.MapPhoto,
		URL:         r.URL,
		User:        r.User,
	}
}

// GroupFromSearch builds a Group from a group-shaped search record.
func GroupFromSearch(r SearchRecord) Group {
	return Group{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Photo:       r.Photo,
		MapPhoto:    r.MapPhoto,
		TripStart:   r.TripStart,
		TripEnd:     r.TripEnd,
		User:        r.User,
	}
}

// PublicTransportFromSearch builds a PublicTransport from a link-shaped search record.
func PublicTransportFromSearch(r SearchRecord) PublicTransport {
	return PublicTransport{ID: r.ID, Name: r.Name, URL: r.URL}
}

// SearchQuery carries the filters of a search request from the HTTP layer to the repo layer.
// Empty fields match anything. From, To and Direction match case-insensitively
// as substrings. Dates, when set, keep only trips departing on one of those
// calendar days; groups and public transport links are not dated.
type SearchQuery struct {
	From      string
	To        string
	Direction string
	Dates     []time.Time
	Limit     int
}
