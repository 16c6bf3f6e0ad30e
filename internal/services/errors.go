// Package services implements the download-request workflow (intake,
// owner decision, gated download, listing) and the contact relay.
//
// This file centralizes the service-level error values so handlers and the
// CLI can map them to HTTP statuses or exit messages consistently.
package services

import "errors"

var (
	// ErrInvalidInput is returned when required fields are missing or blank.
	// Nothing is persisted or sent.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDecision is returned for a decision link with no id or an
	// action other than approve/deny.
	ErrInvalidDecision = errors.New("invalid decision link")

	// ErrInvalidLink is returned when decision links are signed and the
	// token is missing, expired, or bound to another id/action.
	ErrInvalidLink = errors.New("decision link signature invalid or expired")

	// ErrRequestNotFound indicates no stored request has the given id.
	ErrRequestNotFound = errors.New("download request not found")

	// ErrAccessDenied is returned when no approved request matches the email.
	// Unknown, pending and denied requests are deliberately indistinguishable.
	ErrAccessDenied = errors.New("access denied")

	// ErrResumeNotFound indicates the protected file is missing on disk.
	ErrResumeNotFound = errors.New("resume file not found")
)
