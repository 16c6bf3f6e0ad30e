package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
)

// ContactNotifier relays contact-form messages. *mail.Notifier implements it.
type ContactNotifier interface {
	Contact(ctx context.Context, m domain.ContactMessage) error
}

// ContactService relays contact-form submissions to the owner.
type ContactService struct {
	Notifier ContactNotifier
}

// NewContactService returns a ContactService using n.
func NewContactService(n ContactNotifier) *ContactService {
	return &ContactService{Notifier: n}
}

// ContactResult reports whether the message was handed to the transport.
// Delivered is false when mail is not configured; that is not an error.
type ContactResult struct {
	Delivered bool
}

// Send validates m and relays it. Name, email, and one of message or
// purpose are required.
func (s *ContactService) Send(ctx context.Context, m domain.ContactMessage) (ContactResult, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	m.Company = strings.TrimSpace(m.Company)
	m.Purpose = strings.TrimSpace(m.Purpose)
	if m.Name == "" || m.Email == "" || (m.Message == "" && m.Purpose == "") {
		return ContactResult{}, fmt.Errorf("%w: name, email, and a message are required", ErrInvalidInput)
	}
	if s.Notifier == nil {
		return ContactResult{}, nil
	}

	err := s.Notifier.Contact(ctx, m)
	switch {
	case err == nil:
		return ContactResult{Delivered: true}, nil
	case errors.Is(err, mail.ErrNotConfigured):
		logger(ctx).Info().Msg("contact message received; email not configured")
		return ContactResult{}, nil
	default:
		logger(ctx).Error().Err(err).Msg("relay contact message failed")
		return ContactResult{}, fmt.Errorf("relay contact message: %w", err)
	}
}
