// Package report resolves what a report is about and drives a single
// report from draft to submission.
//
// The resolver functions are pure and tolerate records whose discriminant
// and nested fields disagree: they return ok=false or zero values instead
// of failing.
package report

import (
	"fmt"
	"strconv"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// ResolveReportableID returns the identifier submitted to the moderation backend.
// ok is false when the type is unknown or the expected nested record is missing.
func ResolveReportableID(t domain.ReportableType, d domain.ReportData) (int, bool) {
	switch t {
	case domain.ReportTrip:
		if d.Trip != nil {
			return d.Trip.ID, true
		}
	case domain.ReportGroup:
		if d.Group != nil {
			return d.Group.ID, true
		}
	case domain.ReportUser:
		if d.User != nil {
			return d.User.ID, true
		}
	case domain.ReportSuggestion, domain.ReportShare:
		if d.ID != nil {
			return *d.ID, true
		}
	case domain.ReportComment:
		if d.Comment != nil {
			return d.Comment.ID, true
		}
	case domain.ReportExperience:
		if d.Experience != nil {
			return d.Experience.ID, true
		}
	}
	return 0, false
}

// ResolveReportable returns the entity kind recorded on the report.
// Suggestions and shares are feed entries in their own right.
func ResolveReportable(t domain.ReportableType) string {
	if t == domain.ReportSuggestion || t == domain.ReportShare {
		return "Feed"
	}
	return string(t)
}

// ResolveTypeLabel returns the noun used in "You are reporting this <label>".
// Unknown combinations echo the raw type.
func ResolveTypeLabel(t domain.ReportableType, d domain.ReportData) string {
	switch {
	case t == domain.ReportTrip:
		return "ride"
	case t == domain.ReportSuggestion:
		return "suggestion"
	case t == domain.ReportShare && d.Feedable == domain.FeedableTrip:
		return "shared ride"
	case t == domain.ReportComment:
		return "comment"
	case t == domain.ReportExperience || d.Feedable == domain.FeedableExperience:
		return "experience"
	case t == domain.ReportGroup:
		return "group"
	case t == domain.ReportUser:
		return "user"
	}
	return string(t)
}

// ResolveBodyView extracts the summary shown next to the report form.
// Missing nested records produce empty fields rather than an error.
func ResolveBodyView(t domain.ReportableType, d domain.ReportData) domain.DisplayFields {
	view := domain.DisplayFields{AvatarURI: avatar(d.User)}

	switch {
	case t == domain.ReportTrip:
		if d.Trip == nil {
			return view
		}
		view = tripView(*d.Trip, offerSentence(*d.Trip))
		view.AvatarURI = avatar(d.Trip.User)

	case t == domain.ReportComment:
		if d.Comment == nil {
			return view
		}
		view.PrimaryText = d.Comment.Text
		view.SecondaryText = firstName(d.Comment.User)
		view.Date = d.Comment.Date

	case t == domain.ReportExperience || d.Feedable == domain.FeedableExperience:
		if d.Experience == nil {
			return view
		}
		if d.Experience.Trip != nil {
			view = tripView(*d.Experience.Trip, "Experience")
		} else {
			view.SecondaryText = "Experience"
		}
		if t == domain.ReportExperience {
			view.AvatarURI = d.Experience.PhotoURL
		} else {
			view.AvatarURI = avatar(d.User)
		}

	case t == domain.ReportGroup:
		if d.Group == nil {
			return view
		}
		view.PrimaryText = d.Group.Name
		view.SecondaryText = firstName(d.Group.User)
		view.AvatarURI = d.Group.Picture()

	case t == domain.ReportShare && d.Feedable == domain.FeedableTrip:
		if d.Trip == nil {
			return view
		}
		view = tripView(*d.Trip, fmt.Sprintf("%s shared %s's ride", firstName(d.User), firstName(d.Trip.User)))
		view.AvatarURI = avatar(d.User)

	case t == domain.ReportSuggestion:
		if d.Trip == nil {
			return view
		}
		view = tripView(*d.Trip, fmt.Sprintf("%s suggested %s's ride", firstName(d.User), firstName(d.Trip.User)))
		view.AvatarURI = avatar(d.User)

	case t == domain.ReportUser:
		if d.User != nil {
			view.PrimaryText = d.User.FullName()
		}
	}
	return view
}

func tripView(trip domain.Trip, secondary string) domain.DisplayFields {
	return domain.DisplayFields{
		PrimaryText:   trip.Route(),
		SecondaryText: secondary,
		Date:          trip.Date,
	}
}

// offerSentence reads "Ana offers 3 seats" or "Ana asks for a ride".
func offerSentence(trip domain.Trip) string {
	verb := "asks"
	if trip.Type == domain.TripTypeOffer {
		verb = "offers"
	}
	what := "for a ride"
	if trip.Seats != 0 {
		what = strconv.Itoa(trip.Seats) + " seats"
	}
	return firstName(trip.User) + " " + verb + " " + what
}

func firstName(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.FirstName
}

func avatar(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.Avatar
}
