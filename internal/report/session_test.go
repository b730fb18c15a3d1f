package report_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/report"
)

// Every session starts a goroutine per submission; none may outlive a test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockSubmitter is a hand-written test double for report.Submitter.
// calls counts invocations so tests can assert the collaborator was never reached.
type mockSubmitter struct {
	submit func(ctx context.Context, r domain.Report) (domain.Report, error)
	calls  atomic.Int32
}

func (m *mockSubmitter) Submit(ctx context.Context, r domain.Report) (domain.Report, error) {
	m.calls.Add(1)
	return m.submit(ctx, r)
}

var _ report.Submitter = (*mockSubmitter)(nil)

// ---- helpers ---------------------------------------------------------------

var reporter = domain.User{ID: 100, FirstName: "Ana", LastName: "Lind", Email: "ana@example.com"}

func tripTarget() domain.ReportTarget {
	return domain.ReportTarget{Type: domain.ReportTrip, Data: domain.ReportData{Trip: rideFixture()}}
}

func echoSubmitter() *mockSubmitter {
	return &mockSubmitter{submit: func(_ context.Context, r domain.Report) (domain.Report, error) {
		r.ID = uuid.New()
		return r, nil
	}}
}

func newSession(t *testing.T, target domain.ReportTarget, s report.Submitter) *report.Session {
	t.Helper()
	sess := report.NewSession(context.Background(), uuid.New(), target, reporter, s)
	t.Cleanup(sess.Close)
	return sess
}

func waitSettled(t *testing.T, p *report.Pending) report.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := p.Wait(ctx)
	require.NoError(t, err)
	return snap
}

// ---- validation ------------------------------------------------------------

func TestSession_StartsIdle(t *testing.T) {
	sess := newSession(t, tripTarget(), echoSubmitter())

	assert.Equal(t, report.StateIdle, sess.Snapshot().State)
	assert.Equal(t, "ride", sess.Label())
	assert.Equal(t, "Göteborg - Stockholm", sess.Body().PrimaryText)
}

func TestSession_EmptyDescription_NeverReachesSubmitter(t *testing.T) {
	sub := echoSubmitter()
	sess := newSession(t, tripTarget(), sub)

	for _, desc := range []string{"", "   "} {
		require.NoError(t, sess.Edit(desc))
		p, err := sess.Submit()

		assert.Nil(t, p)
		assert.ErrorIs(t, err, report.ErrDescriptionRequired)
		assert.ErrorIs(t, err, domain.ErrValidation)
		snap := sess.Snapshot()
		assert.Equal(t, report.StateError, snap.State)
		assert.Equal(t, report.MsgDescriptionRequired, snap.Message)
	}
	assert.Zero(t, sub.calls.Load())
}

func TestSession_UnresolvableTarget(t *testing.T) {
	sub := echoSubmitter()
	target := domain.ReportTarget{Type: domain.ReportTrip, Data: domain.ReportData{Group: &domain.Group{ID: 1}}}
	sess := newSession(t, target, sub)
	require.NoError(t, sess.Edit("spam"))

	_, err := sess.Submit()

	assert.ErrorIs(t, err, report.ErrUnresolvable)
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
	assert.Equal(t, report.StateError, sess.Snapshot().State)
	assert.NotEmpty(t, sess.Snapshot().Message)
	assert.Zero(t, sub.calls.Load())
}

// ---- success ---------------------------------------------------------------

func TestSession_Submit_Reported(t *testing.T) {
	sub := echoSubmitter()
	sess := newSession(t, tripTarget(), sub)
	require.NoError(t, sess.Edit("rude driver"))

	p, err := sess.Submit()
	require.NoError(t, err)
	snap := waitSettled(t, p)

	assert.Equal(t, report.StateReported, snap.State)
	require.NotNil(t, snap.Report)
	assert.Equal(t, reporter.ID, snap.Report.ReporterID)
	assert.Equal(t, "rude driver", snap.Report.Description)
	assert.Equal(t, "trip", snap.Report.Reportable)
	assert.EqualValues(t, 1, sub.calls.Load())
}

func TestSession_Submit_RoundTripsReportableID(t *testing.T) {
	for _, target := range []domain.ReportTarget{
		tripTarget(),
		{Type: domain.ReportShare, Data: domain.ReportData{ID: intPtr(77), Feedable: domain.FeedableTrip, Trip: rideFixture()}},
		{Type: domain.ReportComment, Data: domain.ReportData{Comment: &domain.Comment{ID: 8}}},
	} {
		t.Run(string(target.Type), func(t *testing.T) {
			sess := newSession(t, target, echoSubmitter())
			require.NoError(t, sess.Edit("reason"))

			p, err := sess.Submit()
			require.NoError(t, err)
			snap := waitSettled(t, p)

			want, ok := report.ResolveReportableID(target.Type, target.Data)
			require.True(t, ok)
			require.NotNil(t, snap.Report)
			assert.Equal(t, want, snap.Report.ReportableID)
		})
	}
}

func TestSession_Submit_RejectedWhileSending(t *testing.T) {
	release := make(chan struct{})
	sub := &mockSubmitter{submit: func(_ context.Context, r domain.Report) (domain.Report, error) {
		<-release
		return r, nil
	}}
	sess := newSession(t, tripTarget(), sub)
	require.NoError(t, sess.Edit("reason"))

	p, err := sess.Submit()
	require.NoError(t, err)
	assert.Equal(t, report.StateSending, sess.Snapshot().State)

	_, err = sess.Submit()
	assert.ErrorIs(t, err, report.ErrInFlight)
	assert.ErrorIs(t, sess.Edit("other"), report.ErrInFlight)

	close(release)
	waitSettled(t, p)
	assert.EqualValues(t, 1, sub.calls.Load())
}

func TestSession_SubmitDescription_SendsOwnDescriptionUnderRace(t *testing.T) {
	release := make(chan struct{})
	sent := make(chan string, 2)
	sub := &mockSubmitter{submit: func(_ context.Context, r domain.Report) (domain.Report, error) {
		sent <- r.Description
		<-release
		return r, nil
	}}
	sess := newSession(t, tripTarget(), sub)

	descriptions := []string{"spam", "harassment"}
	var (
		wg      sync.WaitGroup
		pending = make([]*report.Pending, len(descriptions))
		errs    = make([]error, len(descriptions))
	)
	for i, d := range descriptions {
		i, d := i, d
		wg.Add(1)
		go func() {
			defer wg.Done()
			pending[i], errs[i] = sess.SubmitDescription(d)
		}()
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "only one submission may start")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, report.ErrInFlight)
	}
	require.NotEqual(t, -1, winner)

	assert.Equal(t, descriptions[winner], <-sent)
	close(release)
	snap := waitSettled(t, pending[winner])
	assert.Equal(t, report.StateReported, snap.State)
	assert.Equal(t, descriptions[winner], snap.Report.Description)
	assert.EqualValues(t, 1, sub.calls.Load())
}

func TestSession_SubmitDescription_BlankGoesToError(t *testing.T) {
	sess := newSession(t, tripTarget(), echoSubmitter())

	_, err := sess.SubmitDescription("   ")

	assert.ErrorIs(t, err, report.ErrDescriptionRequired)
	snap := sess.Snapshot()
	assert.Equal(t, report.StateError, snap.State)
	assert.Equal(t, report.MsgDescriptionRequired, snap.Message)

	p, err := sess.SubmitDescription("spam")
	require.NoError(t, err)
	assert.Equal(t, report.StateReported, waitSettled(t, p).State)
}

func TestSession_Submit_AfterReported(t *testing.T) {
	sess := newSession(t, tripTarget(), echoSubmitter())
	require.NoError(t, sess.Edit("reason"))
	p, err := sess.Submit()
	require.NoError(t, err)
	waitSettled(t, p)

	_, err = sess.Submit()

	assert.ErrorIs(t, err, report.ErrAlreadyReported)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ---- failure and retry -----------------------------------------------------

func TestSession_BackendFailure_ThenManualRetry(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	sub := &mockSubmitter{submit: func(_ context.Context, r domain.Report) (domain.Report, error) {
		if fail.Load() {
			return domain.Report{}, errors.New("connection refused")
		}
		return r, nil
	}}
	sess := newSession(t, tripTarget(), sub)
	require.NoError(t, sess.Edit("reason"))

	p, err := sess.Submit()
	require.NoError(t, err)
	snap := waitSettled(t, p)

	assert.Equal(t, report.StateError, snap.State)
	assert.NotEmpty(t, snap.Message)
	assert.NotContains(t, snap.Message, "connection refused")

	// Editing returns the form to Idle; nothing is retried automatically.
	require.NoError(t, sess.Edit("reason, again"))
	assert.Equal(t, report.StateIdle, sess.Snapshot().State)
	assert.Empty(t, sess.Snapshot().Message)
	assert.EqualValues(t, 1, sub.calls.Load())

	fail.Store(false)
	p, err = sess.Submit()
	require.NoError(t, err)
	snap = waitSettled(t, p)

	assert.Equal(t, report.StateReported, snap.State)
	assert.EqualValues(t, 2, sub.calls.Load())
}

func TestSession_BackendValidationMessagePassedThrough(t *testing.T) {
	sub := &mockSubmitter{submit: func(_ context.Context, _ domain.Report) (domain.Report, error) {
		return domain.Report{}, fmt.Errorf("service.ReportService.Submit: %w: description too long", domain.ErrValidation)
	}}
	sess := newSession(t, tripTarget(), sub)
	require.NoError(t, sess.Edit("reason"))

	p, err := sess.Submit()
	require.NoError(t, err)
	snap := waitSettled(t, p)

	assert.Equal(t, "description too long", snap.Message)
}

// ---- cancellation ----------------------------------------------------------

func TestSession_Close_CancelsInFlightSubmission(t *testing.T) {
	started := make(chan struct{})
	sub := &mockSubmitter{submit: func(ctx context.Context, _ domain.Report) (domain.Report, error) {
		close(started)
		<-ctx.Done()
		return domain.Report{}, ctx.Err()
	}}
	sess := newSession(t, tripTarget(), sub)
	require.NoError(t, sess.Edit("reason"))

	p, err := sess.Submit()
	require.NoError(t, err)
	<-started
	sess.Close()

	snap := waitSettled(t, p)
	assert.Equal(t, report.StateSending, snap.State, "result after close must be discarded")
	assert.True(t, sess.Closed())

	_, err = sess.Submit()
	assert.ErrorIs(t, err, report.ErrClosed)
}

func TestSession_Close_DiscardsLateSuccess(t *testing.T) {
	release := make(chan struct{})
	sub := &mockSubmitter{submit: func(_ context.Context, r domain.Report) (domain.Report, error) {
		<-release // ignores cancellation, like a transport that cannot abort
		return r, nil
	}}
	sess := newSession(t, tripTarget(), sub)
	require.NoError(t, sess.Edit("reason"))

	p, err := sess.Submit()
	require.NoError(t, err)
	sess.Close()
	close(release)

	snap := waitSettled(t, p)
	assert.Equal(t, report.StateSending, snap.State)
	assert.Nil(t, snap.Report)
}

func TestPending_WaitHonoursCallerContext(t *testing.T) {
	release := make(chan struct{})
	sub := &mockSubmitter{submit: func(_ context.Context, r domain.Report) (domain.Report, error) {
		<-release
		return r, nil
	}}
	sess := newSession(t, tripTarget(), sub)
	require.NoError(t, sess.Edit("reason"))
	p, err := sess.Submit()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	snap, err := p.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, report.StateSending, snap.State)

	close(release)
	assert.Equal(t, report.StateReported, waitSettled(t, p).State)
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "too long", report.FailureMessage(fmt.Errorf("x: %w: too long", domain.ErrValidation)))
	assert.NotEmpty(t, report.FailureMessage(context.Canceled))
	assert.NotContains(t, report.FailureMessage(errors.New("pq: secret")), "secret")
}
