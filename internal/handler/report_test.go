package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/handler"
	"github.com/skjutsgruppen/rideshare/backend/internal/report"
)

// mockSubmitter is a test double for report.Submitter.
type mockSubmitter struct {
	submit func(ctx context.Context, r domain.Report) (domain.Report, error)
	calls  atomic.Int32
}

func (m *mockSubmitter) Submit(ctx context.Context, r domain.Report) (domain.Report, error) {
	m.calls.Add(1)
	return m.submit(ctx, r)
}

var _ report.Submitter = (*mockSubmitter)(nil)

// acceptingSubmitter stores every report it receives with a fresh id.
func acceptingSubmitter(got *domain.Report) *mockSubmitter {
	return &mockSubmitter{submit: func(_ context.Context, r domain.Report) (domain.Report, error) {
		*got = r
		r.ID = uuid.New()
		r.CreatedAt = time.Now().UTC()
		return r, nil
	}}
}

// newReportHandler wires a real registry around s.
func newReportHandler(t *testing.T, s report.Submitter, wait time.Duration) http.Handler {
	t.Helper()
	reg := report.NewRegistry(context.Background(), s, time.Hour)
	t.Cleanup(reg.CloseAll)
	return newHTTPHandler(t, handler.Deps{Reports: reg, SubmitWait: wait})
}

func tripTargetBody() domain.ReportTarget {
	trip := offerFixture()
	return domain.ReportTarget{Type: domain.ReportTrip, Data: domain.ReportData{Trip: &trip}}
}

// openSession opens a session as ana and returns its decoded response.
func openSession(t *testing.T, h http.Handler, target domain.ReportTarget) handler.ReportSession {
	t.Helper()
	req := asUser(t, httptest.NewRequest(http.MethodPost, "/reports/sessions", jsonBody(t, target)), ana)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var s handler.ReportSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

func submit(t *testing.T, h http.Handler, id uuid.UUID, description string) *httptest.ResponseRecorder {
	t.Helper()
	body := jsonBody(t, handler.SubmitReportRequest{Description: description})
	req := asUser(t, httptest.NewRequest(http.MethodPost, "/reports/sessions/"+id.String()+"/submit", body), ana)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) handler.ReportSession {
	t.Helper()
	var s handler.ReportSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

func TestOpenReportSession(t *testing.T) {
	h := newReportHandler(t, &mockSubmitter{}, time.Second)

	s := openSession(t, h, tripTargetBody())

	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, report.StateIdle, s.State)
	assert.Equal(t, "ride", s.Label)
	assert.Equal(t, "Göteborg - Oslo", s.Body.PrimaryText)
	assert.Equal(t, "Bo offers 3 seats", s.Body.SecondaryText)
	assert.Equal(t, handler.ReporterView{Name: "Ana Berg", Avatar: "https://img/ana.png"}, s.Reporter)
}

func TestOpenReportSession_TypeRequired(t *testing.T) {
	h := newReportHandler(t, &mockSubmitter{}, time.Second)

	req := asUser(t, httptest.NewRequest(http.MethodPost, "/reports/sessions", strings.NewReader(`{"data":{}}`)), ana)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetReportSession_OwnerOnly(t *testing.T) {
	h := newReportHandler(t, &mockSubmitter{}, time.Second)
	s := openSession(t, h, tripTargetBody())

	own := httptest.NewRecorder()
	h.ServeHTTP(own, asUser(t, httptest.NewRequest(http.MethodGet, "/reports/sessions/"+s.ID.String(), nil), ana))
	other := httptest.NewRecorder()
	h.ServeHTTP(other, asUser(t, httptest.NewRequest(http.MethodGet, "/reports/sessions/"+s.ID.String(), nil), domain.User{ID: 200, FirstName: "Eve"}))

	assert.Equal(t, http.StatusOK, own.Code)
	assert.Equal(t, http.StatusNotFound, other.Code)
}

func TestGetReportSession_BadID(t *testing.T) {
	h := newReportHandler(t, &mockSubmitter{}, time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(t, httptest.NewRequest(http.MethodGet, "/reports/sessions/not-a-uuid", nil), ana))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitReportSession_Reported(t *testing.T) {
	var sent domain.Report
	h := newReportHandler(t, acceptingSubmitter(&sent), time.Second)
	s := openSession(t, h, tripTargetBody())

	rec := submit(t, h, s.ID, "rude driver")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeSession(t, rec)
	assert.Equal(t, report.StateReported, got.State)
	require.NotNil(t, got.Report)
	assert.NotEqual(t, uuid.Nil, got.Report.ID)
	assert.Equal(t, domain.Report{ReporterID: ana.ID, Description: "rude driver", Reportable: "trip", ReportableID: 12}, sent)

	again := submit(t, h, s.ID, "rude driver")
	assert.Equal(t, http.StatusConflict, again.Code)
}

func TestSubmitReportSession_BlankDescription(t *testing.T) {
	sub := &mockSubmitter{}
	h := newReportHandler(t, sub, time.Second)
	s := openSession(t, h, tripTargetBody())

	rec := submit(t, h, s.ID, "   ")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got := decodeSession(t, rec)
	assert.Equal(t, report.StateError, got.State)
	assert.Equal(t, report.MsgDescriptionRequired, got.Message)
	assert.Zero(t, sub.calls.Load(), "nothing is sent for an invalid draft")
}

func TestSubmitReportSession_BackendValidationMessage(t *testing.T) {
	h := newReportHandler(t, &mockSubmitter{submit: func(_ context.Context, _ domain.Report) (domain.Report, error) {
		return domain.Report{}, fmt.Errorf("service.ReportService.Submit: %w: already reported this ride", domain.ErrValidation)
	}}, time.Second)
	s := openSession(t, h, tripTargetBody())

	rec := submit(t, h, s.ID, "spam")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got := decodeSession(t, rec)
	assert.Equal(t, report.StateError, got.State)
	assert.Equal(t, "already reported this ride", got.Message)

	// Editing after an error allows another attempt.
	retry := submit(t, h, s.ID, "spam, again")
	assert.Equal(t, http.StatusUnprocessableEntity, retry.Code)
}

func TestSubmitReportSession_SlowBackendThenClose(t *testing.T) {
	sub := &mockSubmitter{submit: func(ctx context.Context, _ domain.Report) (domain.Report, error) {
		<-ctx.Done()
		return domain.Report{}, ctx.Err()
	}}
	h := newReportHandler(t, sub, 20*time.Millisecond)
	s := openSession(t, h, tripTargetBody())

	rec := submit(t, h, s.ID, "spam")

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, report.StateSending, decodeSession(t, rec).State)

	inFlight := submit(t, h, s.ID, "spam")
	assert.Equal(t, http.StatusConflict, inFlight.Code)

	del := httptest.NewRecorder()
	h.ServeHTTP(del, asUser(t, httptest.NewRequest(http.MethodDelete, "/reports/sessions/"+s.ID.String(), nil), ana))
	require.Equal(t, http.StatusNoContent, del.Code)

	gone := httptest.NewRecorder()
	h.ServeHTTP(gone, asUser(t, httptest.NewRequest(http.MethodGet, "/reports/sessions/"+s.ID.String(), nil), ana))
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestSubmitReportSession_Unresolvable(t *testing.T) {
	sub := &mockSubmitter{}
	h := newReportHandler(t, sub, time.Second)
	s := openSession(t, h, domain.ReportTarget{Type: domain.ReportComment, Data: domain.ReportData{}})

	rec := submit(t, h, s.ID, "abusive")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	got := decodeSession(t, rec)
	assert.Equal(t, report.StateError, got.State)
	assert.NotEmpty(t, got.Message)
	assert.Zero(t, sub.calls.Load())
}

func TestCloseReportSession_NotOwner(t *testing.T) {
	h := newReportHandler(t, &mockSubmitter{}, time.Second)
	s := openSession(t, h, tripTargetBody())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(t, httptest.NewRequest(http.MethodDelete, "/reports/sessions/"+s.ID.String(), nil), domain.User{ID: 200, FirstName: "Eve"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenReportSession_RateLimited(t *testing.T) {
	reg := report.NewRegistry(context.Background(), &mockSubmitter{}, time.Hour)
	t.Cleanup(reg.CloseAll)
	h := newLimitedHandler(t, handler.Deps{Reports: reg}, 1, 1)

	openSession(t, h, tripTargetBody())

	req := asUser(t, httptest.NewRequest(http.MethodPost, "/reports/sessions", jsonBody(t, tripTargetBody())), ana)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, reg.Len())
}

func TestOpenReportSession_ReopenReplacesEarlierSession(t *testing.T) {
	h := newReportHandler(t, &mockSubmitter{}, time.Second)

	first := openSession(t, h, tripTargetBody())
	second := openSession(t, h, tripTargetBody())
	require.NotEqual(t, first.ID, second.ID)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(t, httptest.NewRequest(http.MethodGet, "/reports/sessions/"+first.ID.String(), nil), ana))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(t, httptest.NewRequest(http.MethodGet, "/reports/sessions/"+second.ID.String(), nil), ana))
	assert.Equal(t, http.StatusOK, rec.Code)
}
