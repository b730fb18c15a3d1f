package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/report"
)

// ReporterView is the reporter as shown on the report form.
type ReporterView struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// ReportSession is the wire form of a report session.
type ReportSession struct {
	ID          uuid.UUID            `json:"id"`
	State       report.State         `json:"state"`
	Label       string               `json:"label"`
	Body        domain.DisplayFields `json:"body"`
	Reporter    ReporterView         `json:"reporter"`
	Description string               `json:"description"`
	Message     string               `json:"message,omitempty"`
	Report      *domain.Report       `json:"report,omitempty"`
}

// SubmitReportRequest is the body of POST /reports/sessions/{id}/submit.
type SubmitReportRequest struct {
	Description string `json:"description"`
}

func sessionToResponse(s *report.Session) ReportSession {
	snap := s.Snapshot()
	reporter := s.Reporter()
	return ReportSession{
		ID:          s.ID(),
		State:       snap.State,
		Label:       s.Label(),
		Body:        s.Body(),
		Reporter:    ReporterView{Name: reporter.FullName(), Avatar: reporter.Avatar},
		Description: snap.Description,
		Message:     snap.Message,
		Report:      snap.Report,
	}
}

// OpenReportSession handles POST /reports/sessions.
func (s *Server) OpenReportSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var target domain.ReportTarget
	if !decodeBody(w, r, &target) {
		return
	}
	if target.Type == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("type is required"))
		return
	}

	session := s.reports.Open(target, user)
	writeJSON(w, http.StatusCreated, sessionToResponse(session))
}

// GetReportSession handles GET /reports/sessions/{id}.
// Sessions belonging to other users are reported as not found.
func (s *Server) GetReportSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(session))
}

// SubmitReportSession handles POST /reports/sessions/{id}/submit.
//
// The description in the body replaces the draft, then the report is sent.
// The handler waits up to submitWait for the backend to answer:
//   - 200 when the report was accepted,
//   - 422 when it was rejected, locally or by the backend,
//   - 202 when it is still sending (poll GET /reports/sessions/{id}),
//   - 409 when a submission is already in flight or done.
func (s *Server) SubmitReportSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var body SubmitReportRequest
	if !decodeBody(w, r, &body) {
		return
	}

	pending, err := session.SubmitDescription(body.Description)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.writeServiceError(w, r, err, "report session not found")
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, sessionToResponse(session))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.submitWait)
	defer cancel()
	snap, err := pending.Wait(ctx)
	switch {
	case err != nil || snap.State == report.StateSending:
		writeJSON(w, http.StatusAccepted, sessionToResponse(session))
	case snap.State == report.StateReported:
		writeJSON(w, http.StatusOK, sessionToResponse(session))
	default:
		writeJSON(w, http.StatusUnprocessableEntity, sessionToResponse(session))
	}
}

// CloseReportSession handles DELETE /reports/sessions/{id}.
// Any submission still in flight is cancelled and its result discarded.
func (s *Server) CloseReportSession(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		badParam(w, err)
		return
	}

	if err := s.reports.Close(id, user.ID); err != nil {
		s.writeServiceError(w, r, err, "report session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*report.Session, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		badParam(w, err)
		return nil, false
	}
	session, err := s.reports.Get(id, user.ID)
	if err != nil {
		s.writeServiceError(w, r, err, "report session not found")
		return nil, false
	}
	return session, true
}

// defaultSubmitWait bounds how long a submit request waits for the backend.
const defaultSubmitWait = 5 * time.Second
