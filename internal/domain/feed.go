package domain

import "time"

// Feedable names the kind of entity a feed entry wraps.
type Feedable string

const (
	FeedableTrip       Feedable = "trip"
	FeedableGroup      Feedable = "group"
	FeedableExperience Feedable = "experience"
)

// Group is a ride-sharing group, optionally tied to an outreach route.
type Group struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Photo       string `json:"photo,omitempty"`
	MapPhoto    string `json:"mapPhoto,omitempty"`
	TripStart   *Place `json:"TripStart,omitempty"`
	TripEnd     *Place `json:"TripEnd,omitempty"`
	User        *User  `json:"User,omitempty"`
}

// Picture returns the group photo, or the map rendering when no photo was uploaded.
func (g Group) Picture() string {
	if g.Photo != "" {
		return g.Photo
	}
	return g.MapPhoto
}

// Experience is a photo story published after a trip took place.
type Experience struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Trip     *Trip  `json:"Trip,omitempty"`
	User     *User  `json:"User,omitempty"`
}

// FeedRecord is one entry of the home feed.
// Exactly one of Trip and Group is expected to be set, matching Feedable.
type FeedRecord struct {
	ID        int       `json:"id"`
	Feedable  Feedable  `json:"feedable"`
	Trip      *Trip     `json:"Trip,omitempty"`
	Group     *Group    `json:"Group,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
