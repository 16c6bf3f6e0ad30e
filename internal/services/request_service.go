package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
	"github.com/tbourn/resume-gate/internal/observability"
	"github.com/tbourn/resume-gate/internal/repo"
	"github.com/tbourn/resume-gate/internal/sysutil"
)

// RequestNotifier sends the workflow emails. *mail.Notifier implements it.
type RequestNotifier interface {
	RequestReceived(ctx context.Context, r domain.DownloadRequest, links mail.DecisionLinks, repeat bool) error
	Decision(ctx context.Context, r domain.DownloadRequest, resumePath string) error
	Downloaded(ctx context.Context, r domain.DownloadRequest) error
}

// RequestService runs the download-request workflow against a RequestStore.
// All read-modify-write cycles go through Store.Update, so two decisions on
// the same id cannot both observe "pending".
type RequestService struct {
	Store      repo.RequestStore
	Notifier   RequestNotifier
	Links      LinkBuilder
	ResumePath string

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// Dispatch runs best-effort background work (the download alert).
	// Defaults to starting a goroutine; tests run fn inline.
	Dispatch func(fn func())

	inflight sync.WaitGroup
}

// NewRequestService wires a service with the default clock and dispatcher.
func NewRequestService(store repo.RequestStore, n RequestNotifier, links LinkBuilder, resumePath string) *RequestService {
	return &RequestService{Store: store, Notifier: n, Links: links, ResumePath: resumePath}
}

// SubmitInput is a visitor's access request. Company is optional.
type SubmitInput struct {
	Name    string
	Email   string
	Company string
	Purpose string
}

// SubmitResult describes the record the submission resolved to.
type SubmitResult struct {
	Request  domain.DownloadRequest
	Existing bool          // email was already on file; nothing was created
	Status   domain.Status // status of Request
	Outcome  Outcome
}

// DecideInput carries the query parameters of a decision link.
type DecideInput struct {
	ID     string
	Action string
	Token  string
}

// DecisionResult reports a decision. When AlreadyProcessed is set, Request
// is the stored record and nothing was changed or sent.
type DecisionResult struct {
	Request          domain.DownloadRequest
	Action           domain.Action
	AlreadyProcessed bool
	Outcome          Outcome
}

// DownloadResult is an authorized resume download.
type DownloadResult struct {
	Request domain.DownloadRequest
	Data    []byte
}

// errNoChange aborts an Update without writing.
var errNoChange = errors.New("no change")

func (s *RequestService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *RequestService) dispatch(fn func()) {
	s.inflight.Add(1)
	run := func() {
		defer s.inflight.Done()
		fn()
	}
	if s.Dispatch != nil {
		s.Dispatch(run)
		return
	}
	go run()
}

// Wait blocks until every dispatched background job has returned, or ctx
// is done. Servers call it after the listener has shut down.
func (s *RequestService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DecisionLinks returns the approve and deny URLs for a request id, built
// the same way as the ones mailed to the owner.
func (s *RequestService) DecisionLinks(id string) (mail.DecisionLinks, error) {
	return s.Links.Links(id)
}

// Submit records a visitor request, or re-notifies the owner when the email
// is already on file. Store and mail failures are reported in the Outcome;
// only validation fails the call.
func (s *RequestService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	in.Purpose = strings.TrimSpace(in.Purpose)
	if in.Name == "" || in.Email == "" || in.Purpose == "" {
		return SubmitResult{}, fmt.Errorf("%w: name, email, and purpose are required", ErrInvalidInput)
	}

	ctx, span := observability.StartSpan(ctx, "requests.submit")
	var spanErr error
	defer func() { observability.EndSpan(span, spanErr) }()

	now := s.now()
	var (
		res    SubmitResult
		loaded bool
	)
	err := s.Store.Update(ctx, func(cur []domain.DownloadRequest) ([]domain.DownloadRequest, error) {
		loaded = true
		if i := domain.FindByEmail(cur, in.Email); i >= 0 {
			res.Request, res.Existing = cur[i], true
			return nil, errNoChange
		}
		rec, err := newRequest(in, now)
		if err != nil {
			return nil, err
		}
		res.Request = rec
		return append(cur, rec), nil
	})

	switch {
	case err == nil || errors.Is(err, errNoChange):
		res.Outcome.Persisted = true
	case !loaded:
		// Unreadable store: answer as for a first-time visitor without
		// touching the stored document.
		res.Outcome.StoreErr = err
		observability.StoreErrors.WithLabelValues("load").Inc()
		logger(ctx).Error().Err(err).Msg("load requests failed; treating submission as new")
		rec, idErr := newRequest(in, now)
		if idErr != nil {
			spanErr = idErr
			return SubmitResult{}, idErr
		}
		res.Request = rec
	default:
		res.Outcome.StoreErr = err
		observability.StoreErrors.WithLabelValues("save").Inc()
		logger(ctx).Error().Err(err).Str("request_id", res.Request.ID).Msg("save requests failed")
	}
	res.Status = res.Request.Status

	span.SetAttributes(
		attribute.String("request.id", res.Request.ID),
		attribute.Bool("request.existing", res.Existing),
	)

	view := res.Request
	if res.Existing {
		view = res.Request.WithResubmission(in.Name, in.Company, in.Purpose)
	}
	res.Outcome.NotifyErr = s.notify(ctx, view.ID, func() error {
		links, err := s.Links.Links(view.ID)
		if err != nil {
			return fmt.Errorf("build decision links: %w", err)
		}
		return s.Notifier.RequestReceived(ctx, view, links, res.Existing)
	})
	res.Outcome.Notified = res.Outcome.NotifyErr == nil

	kind := "new"
	if res.Existing {
		kind = "repeat"
	}
	observability.RequestsSubmitted.WithLabelValues(string(res.Status), kind).Inc()
	return res, nil
}

func newRequest(in SubmitInput, now time.Time) (domain.DownloadRequest, error) {
	id, err := domain.NewRequestID(now)
	if err != nil {
		return domain.DownloadRequest{}, fmt.Errorf("generate id: %w", err)
	}
	return domain.DownloadRequest{
		ID:          id,
		Name:        in.Name,
		Email:       in.Email,
		Company:     in.Company,
		Purpose:     in.Purpose,
		Status:      domain.StatusPending,
		RequestedAt: now,
	}, nil
}

// Decide applies an owner decision link. A request that is no longer
// pending yields AlreadyProcessed without changes, so replaying a link is
// harmless. The visitor is notified only when the new status was persisted.
func (s *RequestService) Decide(ctx context.Context, in DecideInput) (DecisionResult, error) {
	id := strings.TrimSpace(in.ID)
	action, err := domain.ParseAction(strings.TrimSpace(in.Action))
	if id == "" || err != nil {
		observability.Decisions.WithLabelValues("none", "invalid").Inc()
		return DecisionResult{}, ErrInvalidDecision
	}
	if err := s.Links.Verify(in.Token, id, action); err != nil {
		observability.Decisions.WithLabelValues(string(action), "invalid").Inc()
		return DecisionResult{}, err
	}

	ctx, span := observability.StartSpan(ctx, "requests.decide",
		attribute.String("request.id", id),
		attribute.String("decision.action", string(action)),
	)
	var spanErr error
	defer func() { observability.EndSpan(span, spanErr) }()

	now := s.now()
	res := DecisionResult{Action: action}
	var loaded bool
	err = s.Store.Update(ctx, func(cur []domain.DownloadRequest) ([]domain.DownloadRequest, error) {
		loaded = true
		i := domain.FindByID(cur, id)
		if i < 0 {
			return nil, ErrRequestNotFound
		}
		if err := cur[i].Decide(action, now); err != nil {
			res.Request = cur[i]
			if errors.Is(err, domain.ErrAlreadyDecided) {
				res.AlreadyProcessed = true
				return nil, errNoChange
			}
			return nil, err
		}
		res.Request = cur[i]
		return cur, nil
	})

	switch {
	case err == nil:
		res.Outcome.Persisted = true
	case errors.Is(err, errNoChange):
		res.Outcome.Persisted = true
		observability.Decisions.WithLabelValues(string(action), "already_processed").Inc()
		return res, nil
	case errors.Is(err, ErrRequestNotFound):
		observability.Decisions.WithLabelValues(string(action), "not_found").Inc()
		return DecisionResult{}, err
	case !loaded:
		// An unreadable store holds no requests, so the id is unknown.
		observability.StoreErrors.WithLabelValues("load").Inc()
		observability.Decisions.WithLabelValues(string(action), "not_found").Inc()
		logger(ctx).Error().Err(err).Str("request_id", id).Msg("load requests failed; request not found")
		spanErr = err
		return DecisionResult{}, fmt.Errorf("%w: load requests: %v", ErrRequestNotFound, err)
	default:
		// The decision was computed but not stored. The visitor is not
		// told about a status the store does not hold.
		observability.StoreErrors.WithLabelValues("save").Inc()
		logger(ctx).Error().Err(err).Str("request_id", id).Msg("save decision failed")
		res.Outcome.StoreErr = err
		observability.Decisions.WithLabelValues(string(action), "unsaved").Inc()
		return res, nil
	}

	observability.Decisions.WithLabelValues(string(action), "applied").Inc()
	res.Outcome.NotifyErr = s.notify(ctx, id, func() error {
		if res.Request.IsApproved() {
			if _, err := os.Stat(s.ResumePath); err != nil {
				return fmt.Errorf("%w: %s", ErrResumeNotFound, s.ResumePath)
			}
		}
		return s.Notifier.Decision(ctx, res.Request, s.ResumePath)
	})
	res.Outcome.Notified = res.Outcome.NotifyErr == nil
	return res, nil
}

// Authorize releases the resume to an approved email (case-insensitive).
// Unknown, pending and denied emails all get ErrAccessDenied. On success
// the owner alert is dispatched in the background.
func (s *RequestService) Authorize(ctx context.Context, email string) (DownloadResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		observability.Downloads.WithLabelValues("invalid").Inc()
		return DownloadResult{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	reqs, err := s.Store.Load(ctx)
	if err != nil {
		observability.StoreErrors.WithLabelValues("load").Inc()
		logger(ctx).Error().Err(err).Msg("load requests failed; denying download")
	}

	var rec *domain.DownloadRequest
	for i := range reqs {
		if reqs[i].IsApproved() && reqs[i].MatchesEmail(email) {
			rec = &reqs[i]
			break
		}
	}
	if rec == nil {
		observability.Downloads.WithLabelValues("denied").Inc()
		logger(ctx).Info().Str("email", sysutil.MaskEmail(email)).Msg("download denied")
		return DownloadResult{}, ErrAccessDenied
	}

	data, err := os.ReadFile(s.ResumePath)
	if errors.Is(err, fs.ErrNotExist) {
		observability.Downloads.WithLabelValues("missing_file").Inc()
		return DownloadResult{}, ErrResumeNotFound
	}
	if err != nil {
		return DownloadResult{}, fmt.Errorf("read resume: %w", err)
	}
	observability.Downloads.WithLabelValues("served").Inc()

	r := *rec
	bg := context.WithoutCancel(ctx)
	s.dispatch(func() {
		_ = s.notify(bg, r.ID, func() error { return s.Notifier.Downloaded(bg, r) })
	})
	return DownloadResult{Request: r, Data: data}, nil
}

// List returns stored requests in insertion order, optionally filtered by
// status. A store read failure yields an empty list with Outcome.StoreErr.
func (s *RequestService) List(ctx context.Context, status domain.Status) ([]domain.DownloadRequest, Outcome) {
	reqs, err := s.Store.Load(ctx)
	if err != nil {
		observability.StoreErrors.WithLabelValues("load").Inc()
		logger(ctx).Error().Err(err).Msg("load requests failed; listing nothing")
		return []domain.DownloadRequest{}, Outcome{StoreErr: err}
	}
	if status == "" {
		return reqs, Outcome{Persisted: true}
	}
	out := make([]domain.DownloadRequest, 0, len(reqs))
	for _, r := range reqs {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, Outcome{Persisted: true}
}

// notify runs send and logs (but returns) its error. mail.ErrNotConfigured
// is logged at debug level because it is an expected deployment mode.
func (s *RequestService) notify(ctx context.Context, requestID string, send func() error) error {
	if s.Notifier == nil {
		return mail.ErrNotConfigured
	}
	err := send()
	switch {
	case err == nil:
	case errors.Is(err, mail.ErrNotConfigured):
		logger(ctx).Debug().Str("request_id", requestID).Msg("notification skipped")
	default:
		logger(ctx).Warn().Err(err).Str("request_id", requestID).Msg("notification failed")
	}
	return err
}

// logger returns the request-scoped logger stored in ctx by the HTTP
// middleware, or the global logger.
func logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
