package handler

import (
	"time"

	"github.com/skjutsgruppen/rideshare/backend/internal/dispatch"
	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// Card is the wire form of a dispatched variant: a kind tag, exactly one
// payload field matching it, and the card's actions.
type Card struct {
	Kind            dispatch.Kind           `json:"kind"`
	Offer           *domain.Trip            `json:"offer,omitempty"`
	Ask             *domain.Trip            `json:"ask,omitempty"`
	Trip            *domain.Trip            `json:"trip,omitempty"`
	Group           *domain.Group           `json:"group,omitempty"`
	PublicTransport *domain.PublicTransport `json:"publicTransport,omitempty"`
	ListItem        *ListItem               `json:"listItem,omitempty"`
	dispatch.Handlers
}

// ListItem is the wire form of dispatch.ListItem.
type ListItem struct {
	Type     domain.TripType `json:"type,omitempty"`
	ImageURI string          `json:"imageUri,omitempty"`
	Title    string          `json:"title"`
	Date     time.Time       `json:"date"`
}

// cardEncoder is a dispatch.Visitor that fills in a Card.
type cardEncoder struct {
	card Card
}

var _ dispatch.Visitor = (*cardEncoder)(nil)

func (e *cardEncoder) VisitOffer(c dispatch.OfferCard) {
	e.card = Card{Kind: c.Kind(), Offer: &c.Offer, Handlers: c.Handlers}
}

func (e *cardEncoder) VisitAsk(c dispatch.AskCard) {
	e.card = Card{Kind: c.Kind(), Ask: &c.Ask, Handlers: c.Handlers}
}

func (e *cardEncoder) VisitGroup(c dispatch.GroupCard) {
	e.card = Card{Kind: c.Kind(), Group: &c.Group, Handlers: c.Handlers}
}

func (e *cardEncoder) VisitTrip(c dispatch.TripCard) {
	e.card = Card{Kind: c.Kind(), Trip: &c.Trip, Handlers: c.Handlers}
}

func (e *cardEncoder) VisitPublicTransport(c dispatch.PublicTransportItem) {
	e.card = Card{Kind: c.Kind(), PublicTransport: &c.PublicTransport}
}

func (e *cardEncoder) VisitListItem(c dispatch.ListItem) {
	e.card = Card{
		Kind:     c.Kind(),
		ListItem: &ListItem{Type: c.Type, ImageURI: c.ImageURI, Title: c.Title, Date: c.Date},
		Handlers: c.Handlers,
	}
}

// toCards converts variants to their wire form, preserving order.
func toCards(vs []dispatch.Variant) []Card {
	out := make([]Card, len(vs))
	for i, v := range vs {
		var e cardEncoder
		v.Accept(&e)
		out[i] = e.card
	}
	return out
}
