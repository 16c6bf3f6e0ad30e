package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/resume-gate/internal/config"
	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/observability"
)

// ResumeDownloadSubject marks a contact-form submission sent by the
// download dialog rather than a free-form message.
const ResumeDownloadSubject = "Resume Download Request"

// DecisionLinks are the approve/deny URLs embedded in owner notifications.
type DecisionLinks struct {
	Approve string
	Deny    string
}

// Notifier composes the workflow emails and hands them to a Sender.
//
// Owner-facing messages go to OwnerEmail; visitor-facing messages go to the
// request's email address. Errors are returned to the caller, which decides
// whether to swallow them; every attempt is counted in
// resumegate_notifications_total.
type Notifier struct {
	Sender         Sender
	OwnerEmail     string
	OwnerName      string
	SiteURL        string // public base URL, used for the admin dashboard link
	ResumeFilename string // attachment name on approval emails
	Now            func() time.Time
}

// NewNotifier addresses owner mail from cfg.Owner and links the dashboard
// to the public base URL.
func NewNotifier(s Sender, cfg config.Config) *Notifier {
	return &Notifier{
		Sender:         s,
		OwnerEmail:     cfg.Owner.Email,
		OwnerName:      cfg.Owner.Name,
		SiteURL:        cfg.Links.BaseURL,
		ResumeFilename: cfg.Resume.Filename,
	}
}

func (n *Notifier) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// RequestReceived tells the owner about a new (or repeated) request and
// embeds the decision links.
func (n *Notifier) RequestReceived(ctx context.Context, r domain.DownloadRequest, links DecisionLinks, repeat bool) error {
	kind, prefix := KindNewRequest, "New Request"
	if repeat {
		kind, prefix = KindRepeatRequest, "Repeat Request"
	}
	html, text, err := render("request", struct {
		Repeat              bool
		Request             domain.DownloadRequest
		ApproveURL, DenyURL string
	}{repeat, r, links.Approve, links.Deny})
	if err != nil {
		return n.record(kind, fmt.Errorf("render %s: %w", kind, err))
	}
	return n.deliver(ctx, kind, Message{
		To:       n.OwnerEmail,
		FromName: "Portfolio Download Request",
		Subject:  fmt.Sprintf("%s: Resume Download Request from %s", prefix, r.Name),
		HTML:     html,
		Text:     text,
	})
}

// Decision tells the visitor the outcome. Approval attaches the resume at
// resumePath; denial is a plain refusal.
func (n *Notifier) Decision(ctx context.Context, r domain.DownloadRequest, resumePath string) error {
	data := struct {
		Request   domain.DownloadRequest
		OwnerName string
	}{r, n.OwnerName}

	switch r.Status {
	case domain.StatusApproved:
		html, text, err := render("approved", data)
		if err != nil {
			return n.record(KindApproved, fmt.Errorf("render approved: %w", err))
		}
		return n.deliver(ctx, KindApproved, Message{
			To:       r.Email,
			FromName: n.OwnerName + " Portfolio",
			Subject:  "Resume Download Approved - " + n.OwnerName,
			HTML:     html,
			Text:     text,
			Attachments: []Attachment{{
				Path:        resumePath,
				Filename:    n.ResumeFilename,
				ContentType: "application/pdf",
			}},
		})
	case domain.StatusDenied:
		html, text, err := render("denied", data)
		if err != nil {
			return n.record(KindDenied, fmt.Errorf("render denied: %w", err))
		}
		return n.deliver(ctx, KindDenied, Message{
			To:       r.Email,
			FromName: n.OwnerName + " Portfolio",
			Subject:  "Resume Download Request - Update",
			HTML:     html,
			Text:     text,
		})
	default:
		return fmt.Errorf("no decision email for status %q", r.Status)
	}
}

// Downloaded tells the owner that an approved visitor fetched the resume.
func (n *Notifier) Downloaded(ctx context.Context, r domain.DownloadRequest) error {
	html, text, err := render("downloaded", struct {
		Request      domain.DownloadRequest
		DownloadedAt time.Time
		AdminURL     string
	}{r, n.now(), n.SiteURL + "/admin"})
	if err != nil {
		return n.record(KindDownloaded, fmt.Errorf("render downloaded: %w", err))
	}
	return n.deliver(ctx, KindDownloaded, Message{
		To:       n.OwnerEmail,
		FromName: "Resume Download Alert",
		Subject:  "Resume Downloaded by " + r.Name,
		HTML:     html,
		Text:     text,
	})
}

// Contact relays a contact-form submission to the owner with Reply-To set to
// the visitor.
func (n *Notifier) Contact(ctx context.Context, m domain.ContactMessage) error {
	resume := m.Subject == ResumeDownloadSubject
	subject := "New message from " + m.Name
	if resume {
		subject = "Resume Downloaded by " + m.Name
	}
	html, text, err := render("contact", struct {
		Msg            domain.ContactMessage
		ResumeDownload bool
	}{m, resume})
	if err != nil {
		return n.record(KindContact, fmt.Errorf("render contact: %w", err))
	}
	return n.deliver(ctx, KindContact, Message{
		To:       n.OwnerEmail,
		ReplyTo:  m.Email,
		FromName: m.Name,
		Subject:  subject,
		HTML:     html,
		Text:     text,
	})
}

// Test sends a transport check message to the owner.
func (n *Notifier) Test(ctx context.Context) error {
	html, text, err := render("test", struct{ SentAt time.Time }{n.now()})
	if err != nil {
		return n.record(KindTest, fmt.Errorf("render test: %w", err))
	}
	return n.deliver(ctx, KindTest, Message{
		To:       n.OwnerEmail,
		FromName: "Test Email",
		Subject:  "Test Email - Resume Download Notification System",
		HTML:     html,
		Text:     text,
	})
}

func (n *Notifier) deliver(ctx context.Context, kind Kind, m Message) error {
	if n.Sender == nil {
		return n.record(kind, ErrNotConfigured)
	}
	if nop, ok := n.Sender.(NopSender); ok {
		return n.record(kind, nop.Send(ctx, m))
	}
	if m.To == "" {
		return n.record(kind, fmt.Errorf("%s: no recipient address", kind))
	}
	ctx, span := observability.StartSpan(ctx, "mail.send")
	err := n.Sender.Send(ctx, m)
	observability.EndSpan(span, err)
	return n.record(kind, err)
}

func (n *Notifier) record(kind Kind, err error) error {
	result := "sent"
	switch {
	case errors.Is(err, ErrNotConfigured):
		result = "skipped"
	case err != nil:
		result = "failed"
		log.Error().Err(err).Str("kind", string(kind)).Msg("notification failed")
	}
	observability.Notifications.WithLabelValues(string(kind), result).Inc()
	return err
}
