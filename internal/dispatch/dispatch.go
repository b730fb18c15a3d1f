// Package dispatch selects the presentation variant for a feed or search record.
// Selection is a pure function of the record, the results style and the
// handlers; nothing here fetches data or has side effects.
package dispatch

import (
	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// Feed selects the variant for a home feed entry.
// It returns ok=false when the record matches no variant, which includes a
// feedable whose nested subject is missing. Callers render nothing in that case.
func Feed(rec domain.FeedRecord, h Handlers) (Variant, bool) {
	switch rec.Feedable {
	case domain.FeedableTrip:
		if rec.Trip == nil {
			return nil, false
		}
		switch rec.Trip.Type {
		case domain.TripTypeOffer:
			return OfferCard{Offer: *rec.Trip, Handlers: h}, true
		case domain.TripTypeWanted:
			return AskCard{Ask: *rec.Trip, Handlers: h}, true
		}
	case domain.FeedableGroup:
		if rec.Group == nil {
			return nil, false
		}
		return GroupCard{Group: *rec.Group, Handlers: h}, true
	}
	return nil, false
}

// Search selects the variant for a search result.
//
// In list mode a record with a URL is always a public transport link,
// whatever its type; every other record becomes a ListItem.
// In card mode offers and asks become trip cards, a record with a URL but
// no trip type renders nothing, and anything else is a group.
func Search(rec domain.SearchRecord, style domain.ResultsStyle, h Handlers) (Variant, bool) {
	if style == domain.ResultsStyleList {
		if rec.URL != "" {
			return PublicTransportItem{PublicTransport: domain.PublicTransportFromSearch(rec)}, true
		}
		return listItem(rec, h), true
	}

	switch {
	case rec.Type.Valid():
		return TripCard{Trip: domain.TripFromSearch(rec), Handlers: h}, true
	case rec.URL != "":
		return nil, false
	}
	return GroupCard{Group: domain.GroupFromSearch(rec), Handlers: h}, true
}

func listItem(rec domain.SearchRecord, h Handlers) ListItem {
	item := ListItem{
		Type:     rec.Type,
		Title:    endpointName(rec.TripStart) + " - " + endpointName(rec.TripEnd),
		Date:     rec.Date,
		Handlers: h,
	}
	if rec.User != nil {
		item.ImageURI = rec.User.Avatar
	}
	return item
}

func endpointName(p *domain.Place) string {
	if p == nil {
		return ""
	}
	return p.Name
}
