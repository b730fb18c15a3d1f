package dispatch

import (
	"time"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// Kind names a presentation variant on the wire.
type Kind string

const (
	KindOffer           Kind = "offer"
	KindAsk             Kind = "ask"
	KindGroup           Kind = "group"
	KindTrip            Kind = "trip"
	KindPublicTransport Kind = "publicTransport"
	KindListItem        Kind = "listItem"
)

// Action is an opaque client action identifier (e.g. a deep-link name).
type Action string

// Handlers is the capability set a card exposes. It is copied verbatim into
// whichever variant is chosen.
type Handlers struct {
	OnPress      Action `json:"onPress,omitempty"`
	OnSharePress Action `json:"onSharePress,omitempty"`
}

// Variant is one arm of the closed set of presentation variants.
// The unexported method seals the set to this package; consumers use
// Accept with a Visitor so that adding a variant breaks every consumer
// that does not handle it.
type Variant interface {
	Kind() Kind
	Accept(v Visitor)
	sealed()
}

// Visitor handles every Variant arm.
type Visitor interface {
	VisitOffer(OfferCard)
	VisitAsk(AskCard)
	VisitGroup(GroupCard)
	VisitTrip(TripCard)
	VisitPublicTransport(PublicTransportItem)
	VisitListItem(ListItem)
}

// OfferCard renders a feed trip of type offer.
type OfferCard struct {
	Offer    domain.Trip
	Handlers Handlers
}

// AskCard renders a feed trip of type wanted.
type AskCard struct {
	Ask      domain.Trip
	Handlers Handlers
}

// GroupCard renders a group, from either the feed or card-mode search.
type GroupCard struct {
	Group    domain.Group
	Handlers Handlers
}

// TripCard renders an offer or ask found by card-mode search.
type TripCard struct {
	Trip     domain.Trip
	Handlers Handlers
}

// PublicTransportItem renders an external timetable link in list-mode search.
type PublicTransportItem struct {
	PublicTransport domain.PublicTransport
}

// ListItem is the compact row used for trips in list-mode search.
type ListItem struct {
	Type     domain.TripType
	ImageURI string
	Title    string
	Date     time.Time
	Handlers Handlers
}

func (OfferCard) Kind() Kind           { return KindOffer }
func (AskCard) Kind() Kind             { return KindAsk }
func (GroupCard) Kind() Kind           { return KindGroup }
func (TripCard) Kind() Kind            { return KindTrip }
func (PublicTransportItem) Kind() Kind { return KindPublicTransport }
func (ListItem) Kind() Kind            { return KindListItem }

func (c OfferCard) Accept(v Visitor)           { v.VisitOffer(c) }
func (c AskCard) Accept(v Visitor)             { v.VisitAsk(c) }
func (c GroupCard) Accept(v Visitor)           { v.VisitGroup(c) }
func (c TripCard) Accept(v Visitor)            { v.VisitTrip(c) }
func (c PublicTransportItem) Accept(v Visitor) { v.VisitPublicTransport(c) }
func (c ListItem) Accept(v Visitor)            { v.VisitListItem(c) }

func (OfferCard) sealed()           {}
func (AskCard) sealed()             {}
func (GroupCard) sealed()           {}
func (TripCard) sealed()            {}
func (PublicTransportItem) sealed() {}
func (ListItem) sealed()            {}
