package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportableType is the discriminant a client supplies when opening a report.
type ReportableType string

const (
	ReportTrip       ReportableType = "trip"
	ReportGroup      ReportableType = "group"
	ReportUser       ReportableType = "user"
	ReportComment    ReportableType = "comment"
	ReportExperience ReportableType = "experience"
	ReportSuggestion ReportableType = "suggestion"
	ReportShare      ReportableType = "share"
)

// ReportData is the subject of a report as the client received it.
// Which nested field is populated depends on the accompanying ReportableType;
// suggestions and shares carry their own ID directly.
type ReportData struct {
	ID         *int        `json:"id,omitempty"`
	Feedable   Feedable    `json:"feedable,omitempty"`
	Trip       *Trip       `json:"Trip,omitempty"`
	Group      *Group      `json:"Group,omitempty"`
	User       *User       `json:"User,omitempty"`
	Comment    *Comment    `json:"Comment,omitempty"`
	Experience *Experience `json:"Experience,omitempty"`
}

// ReportTarget pairs a discriminant with the data it describes.
type ReportTarget struct {
	Type ReportableType `json:"type"`
	Data ReportData     `json:"data"`
}

// Report is a single content report as sent to the moderation backend.
// ID and CreatedAt are populated on persistence.
type Report struct {
	ID           uuid.UUID `json:"id"`
	ReporterID   int       `json:"reporterId"`
	Description  string    `json:"description"`
	Reportable   string    `json:"reportable"`
	ReportableID int       `json:"reportableId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DisplayFields is the summary shown on the report confirmation screen.
type DisplayFields struct {
	AvatarURI     string    `json:"avatarUri"`
	PrimaryText   string    `json:"primaryText"`
	SecondaryText string    `json:"secondaryText"`
	Date          time.Time `json:"date"`
}
