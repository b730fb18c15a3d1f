package domain

import "time"

// Comment is a message posted under a feed item.
type Comment struct {
	ID         int       `json:"id"`
	FeedItemID int       `json:"feedItemId,omitempty"`
	Text       string    `json:"text"`
	Date       time.Time `json:"date"`
	User       *User     `json:"User,omitempty"`
}

// Suggestion points a ride request at an offered ride, usually someone
// else's. Its JSON carries id, Trip and User, which is the shape a client
// sends back when reporting the suggestion.
type Suggestion struct {
	ID         int       `json:"id"`
	FeedItemID int       `json:"feedItemId"`
	TripItemID int       `json:"tripItemId"`
	Text       string    `json:"text,omitempty"`
	Date       time.Time `json:"date"`
	Trip       *Trip     `json:"Trip,omitempty"`
	User       *User     `json:"User,omitempty"`
}
