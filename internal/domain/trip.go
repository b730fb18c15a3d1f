// Package domain contains the core data types for the ride-sharing feed API.
// This package imports no other internal package and is imported by every other
// internal package (dispatch, report, repo, service, handler).
//
// JSON field names mirror the shapes the mobile client already consumes
// (e.g. "TripStart", "feedable", "firstName"), so records can be passed
// through without renaming.
package domain

import "time"

// TripType distinguishes a ride offer from a ride request.
type TripType string

const (
	// TripTypeOffer is a driver offering seats.
	TripTypeOffer TripType = "offer"
	// TripTypeWanted is a passenger asking for a ride.
	TripTypeWanted TripType = "wanted"
)

// Valid reports whether t is one of the known trip types.
func (t TripType) Valid() bool {
	return t == TripTypeOffer || t == TripTypeWanted
}

// Place is a named, optionally geocoded endpoint of a trip.
type Place struct {
	Name        string    `json:"name"`
	CountryCode string    `json:"countryCode,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
}

// User is the public profile of a participant.
// Email and PhoneNumber are only populated for the authenticated user.
type User struct {
	ID          int    `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// FullName joins first and last name, skipping whichever is empty.
func (u User) FullName() string {
	switch {
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// Trip is a single ride offer or ride request.
// Direction is a free-text heading used by legacy records whose endpoints
// were never geocoded; TripStart/TripEnd may be nil for those.
type Trip struct {
	ID          int       `json:"id"`
	Type        TripType  `json:"type"`
	Description string    `json:"description,omitempty"`
	Direction   string    `json:"direction,omitempty"`
	TripStart   *Place    `json:"TripStart,omitempty"`
	TripEnd     *Place    `json:"TripEnd,omitempty"`
	Stops       []Place   `json:"Stops,omitempty"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time,omitempty"`
	Seats       int       `json:"seats"`
	Photo       string    `json:"photo,omitempty"`
	MapPhoto    string    `json:"mapPhoto,omitempty"`
	URL         string    `json:"url,omitempty"`
	ParentID    *int      `json:"parentId,omitempty"`
	ReturnTrip  bool      `json:"returnTrip,omitempty"`
	User        *User     `json:"User,omitempty"`
}

// Endpoints returns the display names of the trip's start and end.
// Each endpoint falls back to Direction independently when its place is
// missing or has an empty name.
func (t Trip) Endpoints() (start, end string) {
	return placeName(t.TripStart, t.Direction), placeName(t.TripEnd, t.Direction)
}

// Route formats the endpoints as "start - end".
func (t Trip) Route() string {
	start, end := t.Endpoints()
	return start + " - " + end
}

func placeName(p *Place, fallback string) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	return fallback
}

// AskRequest is a passenger's request for a ride, possibly on several dates.
// Endpoints may be given as places, as a Direction, or a mix of both.
type AskRequest struct {
	Description string      `json:"description,omitempty"`
	Direction   string      `json:"direction,omitempty"`
	TripStart   *Place      `json:"TripStart,omitempty"`
	TripEnd     *Place      `json:"TripEnd,omitempty"`
	Dates       []time.Time `json:"dates"`
	Time        string      `json:"time,omitempty"`
	ReturnTrip  bool        `json:"returnTrip,omitempty"`
}
