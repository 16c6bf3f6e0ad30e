// Package mail composes and delivers the workflow's notification emails.
//
// A Sender moves one Message over some transport (SMTP via gomail, or a
// no-op when credentials are missing). The Notifier turns workflow events
// into Messages using the embedded templates; every message carries both an
// HTML body and a plain-text alternative.
package mail

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by senders that cannot deliver because mail
// credentials are absent. Callers treat it as "skipped", not as a failure.
var ErrNotConfigured = errors.New("mail transport not configured")

// Attachment is a file attached from disk under a display name.
type Attachment struct {
	Path        string
	Filename    string
	ContentType string
}

// Message is one outgoing email. From is always the configured mail
// account; FromName only sets the display name.
type Message struct {
	To          string
	ReplyTo     string
	FromName    string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender delivers a Message. Implementations do not retry.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, m Message) error

// Send calls f(ctx, m).
func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// Kind labels a notification for logs and metrics.
type Kind string

const (
	KindNewRequest    Kind = "new_request"
	KindRepeatRequest Kind = "repeat_request"
	KindApproved      Kind = "approved"
	KindDenied        Kind = "denied"
	KindDownloaded    Kind = "downloaded"
	KindContact       Kind = "contact"
	KindTest          Kind = "test"
)
