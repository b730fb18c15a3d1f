package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
)

// State is a step of the report workflow.
//
//	Idle → Validating → Sending → Reported
//	           ↓           ↓
//	         Error  ←──────┘   (Edit returns Error to Idle)
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSending    State = "sending"
	StateReported   State = "reported"
	StateError      State = "error"
)

// MsgDescriptionRequired is shown when the reporter submits without a reason.
const MsgDescriptionRequired = "description required"

const (
	msgUnresolvable = "We could not identify what you are reporting."
	msgFailed       = "Something went wrong while sending your report. Please try again."
	msgCancelled    = "Sending was cancelled."
)

var (
	// ErrDescriptionRequired is returned by Submit when the description is blank.
	ErrDescriptionRequired = fmt.Errorf("%w: %s", domain.ErrValidation, MsgDescriptionRequired)

	// ErrUnresolvable is returned by Submit when no reportable ID can be
	// derived from the target. Nothing is sent.
	ErrUnresolvable = fmt.Errorf("%w: no reportable id for target", domain.ErrShapeMismatch)

	// ErrInFlight is returned while a submission is pending.
	ErrInFlight = fmt.Errorf("%w: report is already being sent", domain.ErrConflict)

	// ErrAlreadyReported is returned once the report has been accepted.
	ErrAlreadyReported = fmt.Errorf("%w: already reported", domain.ErrConflict)

	// ErrClosed is returned after the session has been closed.
	ErrClosed = fmt.Errorf("%w: report session closed", domain.ErrConflict)
)

// Submitter delivers a report to the moderation backend.
// It is called at most once per Submit.
type Submitter interface {
	Submit(ctx context.Context, r domain.Report) (domain.Report, error)
}

// Snapshot is a consistent copy of a session's observable state.
type Snapshot struct {
	State       State
	Description string
	// Message is the user-facing explanation of StateError.
	Message string
	// Report is set once the state is StateReported.
	Report *domain.Report
}

// Session is the state of one report form, from opening to submission.
// The reporter is fixed at construction; nothing is read from ambient state.
//
// A Session owns a context that is cancelled by Close. Any submission still
// in flight is cancelled with it, and its result is discarded when it arrives.
type Session struct {
	id        uuid.UUID
	target    domain.ReportTarget
	reporter  domain.User
	submitter Submitter

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	description string
	message     string
	report      *domain.Report
	attempt     uint64
	closed      bool
}

// NewSession opens a session for target on behalf of reporter.
// The session's lifetime is bounded by parent.
func NewSession(parent context.Context, id uuid.UUID, target domain.ReportTarget, reporter domain.User, s Submitter) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		id:        id,
		target:    target,
		reporter:  reporter,
		submitter: s,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Target returns the report target the session was opened for.
func (s *Session) Target() domain.ReportTarget { return s.target }

// Reporter returns the user filing the report.
func (s *Session) Reporter() domain.User { return s.reporter }

// Label returns the type label of the target.
func (s *Session) Label() string {
	return ResolveTypeLabel(s.target.Type, s.target.Data)
}

// Body returns the display summary of the target.
func (s *Session) Body() domain.DisplayFields {
	return ResolveBodyView(s.target.Type, s.target.Data)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Description: s.description, Message: s.message}
	if s.report != nil {
		r := *s.report
		snap.Report = &r
	}
	return snap
}

// Edit replaces the description. Editing after a failure returns the
// session to Idle so the reporter can try again.
func (s *Session) Edit(description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editLocked(description)
}

// Submit validates the draft and, if it is valid, starts sending it.
// Validation failures move the session to StateError and are returned
// directly; the submitter is not called. Otherwise the returned Pending
// resolves once the submitter answers or the session is closed.
func (s *Session) Submit() (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked()
}

// SubmitDescription is Edit followed by Submit under one lock, so the
// description sent is always the one given here even when two requests
// race on the same session.
func (s *Session) SubmitDescription(description string) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editLocked(description); err != nil {
		return nil, err
	}
	return s.submitLocked()
}

func (s *Session) editLocked(description string) error {
	if err := s.checkSubmittableLocked(); err != nil {
		return err
	}
	s.description = description
	if s.state == StateError {
		s.state = StateIdle
		s.message = ""
	}
	return nil
}

func (s *Session) submitLocked() (*Pending, error) {
	if err := s.checkSubmittableLocked(); err != nil {
		return nil, err
	}

	s.state = StateValidating
	if strings.TrimSpace(s.description) == "" {
		s.fail(MsgDescriptionRequired)
		return nil, ErrDescriptionRequired
	}
	id, ok := ResolveReportableID(s.target.Type, s.target.Data)
	if !ok {
		s.fail(msgUnresolvable)
		return nil, ErrUnresolvable
	}

	r := domain.Report{
		ReporterID:   s.reporter.ID,
		Description:  s.description,
		Reportable:   ResolveReportable(s.target.Type),
		ReportableID: id,
	}

	s.state = StateSending
	s.message = ""
	s.attempt++
	p := &Pending{s: s, done: make(chan struct{})}
	go s.send(s.attempt, r, p.done)
	return p, nil
}

// Close abandons the session. An in-flight submission is cancelled and
// its eventual result ignored. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) checkSubmittableLocked() error {
	if s.closed {
		return ErrClosed
	}
	switch s.state {
	case StateSending:
		return ErrInFlight
	case StateReported:
		return ErrAlreadyReported
	}
	return nil
}

func (s *Session) fail(message string) {
	s.state = StateError
	s.message = message
}

func (s *Session) send(attempt uint64, r domain.Report, done chan<- struct{}) {
	defer close(done)
	saved, err := s.submitter.Submit(s.ctx, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || attempt != s.attempt || s.state != StateSending {
		return
	}
	if err != nil {
		s.fail(FailureMessage(err))
		return
	}
	s.state = StateReported
	s.report = &saved
}

// FailureMessage turns a submission error into text for the reporter.
// Validation messages from the backend are passed through; anything else
// is replaced by a generic message.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return msgCancelled
	case errors.Is(err, domain.ErrValidation):
		msg := err.Error()
		if i := strings.LastIndex(msg, domain.ErrValidation.Error()+": "); i >= 0 {
			return msg[i+len(domain.ErrValidation.Error())+2:]
		}
		return msg
	}
	return msgFailed
}

// Pending is an in-flight submission.
type Pending struct {
	s    *Session
	done chan struct{}
}

// Done is closed once the submitter has answered.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the submission settles or ctx is done, then returns the
// session state. When ctx ends first the submission keeps running and the
// returned snapshot still reads StateSending.
func (p *Pending) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-p.done:
		return p.s.Snapshot(), nil
	case <-ctx.Done():
		return p.s.Snapshot(), ctx.Err()
	}
}
