// Package handlers wiring.
//
// Handlers are transport-thin: they bind input, call the workflow services,
// and translate results and sentinel errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
	"github.com/tbourn/resume-gate/internal/services"
)

//
// Service contracts (context-aware)
//

// RequestService is the download-request workflow consumed by handlers.
// *services.RequestService implements it.
type RequestService interface {
	// Submit records an access request or re-notifies for a known email.
	Submit(ctx context.Context, in services.SubmitInput) (services.SubmitResult, error)
	// Decide applies an owner decision link.
	Decide(ctx context.Context, in services.DecideInput) (services.DecisionResult, error)
	// Authorize returns the resume bytes for an approved email.
	Authorize(ctx context.Context, email string) (services.DownloadResult, error)
	// List returns stored requests, optionally filtered by status.
	List(ctx context.Context, status domain.Status) ([]domain.DownloadRequest, services.Outcome)
	// DecisionLinks returns the approve/deny URLs for a request id.
	DecisionLinks(id string) (mail.DecisionLinks, error)
}

// ContactService relays contact-form messages.
type ContactService interface {
	Send(ctx context.Context, m domain.ContactMessage) (services.ContactResult, error)
}

//
// Handler wiring
//

// Options carries presentation settings.
type Options struct {
	// ResumeFilename is the download filename in Content-Disposition.
	ResumeFilename string
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	reqSvc     RequestService
	contactSvc ContactService
	opts       Options
	pages      *template.Template
}

// New constructs Handlers bound to the given services.
func New(reqSvc RequestService, contactSvc ContactService, opts Options) *Handlers {
	if opts.ResumeFilename == "" {
		opts.ResumeFilename = "Resume.pdf"
	}
	return &Handlers{reqSvc: reqSvc, contactSvc: contactSvc, opts: opts, pages: pageTemplates}
}

// bindJSON decodes the body into dst, answering 413 for bodies cut off by
// the router's size limit and 400 for anything else. It reports whether the
// handler should continue.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return false
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
	return false
}
