// Package domain defines the persistence models for resume download requests
// and contact messages. DownloadRequest is mapped with GORM for the database
// backed stores and serialized with camelCase JSON for the file store, so the
// same type flows through every RequestStore implementation.
package domain

import (
	"strings"
	"time"
)

// DownloadRequest tracks one visitor's resume-access lifecycle.
//
// Fields:
//   - ID: ULID assigned at creation (char(26)).
//   - Name / Email / Company / Purpose: visitor-supplied values. Email is the
//     correlation key across the workflow (one record per distinct email).
//   - Status: pending, approved or denied.
//   - RequestedAt: creation time (UTC).
//   - RespondedAt: set on the first and only transition out of pending.
type DownloadRequest struct {
	ID          string     `json:"id"                    gorm:"type:char(26);primaryKey"`
	Name        string     `json:"name"                  gorm:"type:varchar(255);not null"`
	Email       string     `json:"email"                 gorm:"type:varchar(320);not null;index:idx_request_email"`
	Company     string     `json:"company"               gorm:"type:varchar(255);not null;default:''"`
	Purpose     string     `json:"purpose"               gorm:"type:varchar(255);not null"`
	Status      Status     `json:"status"                gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','approved','denied')"`
	RequestedAt time.Time  `json:"requestedAt"           gorm:"not null;index:idx_request_order,priority:1"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// TableName returns the database table name for DownloadRequest.
func (DownloadRequest) TableName() string { return "download_requests" }

// IsPending reports whether the request still awaits an owner decision.
func (r *DownloadRequest) IsPending() bool { return r.Status == StatusPending }

// IsApproved reports whether the visitor may download the resume.
func (r *DownloadRequest) IsApproved() bool { return r.Status == StatusApproved }

// MatchesEmail compares the stored email with email, ignoring surrounding
// whitespace and letter case.
func (r *DownloadRequest) MatchesEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Email), strings.TrimSpace(email))
}

// Decide applies an owner action. Only pending requests can be decided;
// any other state yields ErrAlreadyDecided and leaves r untouched.
func (r *DownloadRequest) Decide(a Action, now time.Time) error {
	target, err := a.Target()
	if err != nil {
		return err
	}
	if !r.IsPending() {
		return ErrAlreadyDecided
	}
	at := now.UTC()
	r.Status = target
	r.RespondedAt = &at
	return nil
}

// WithResubmission returns a copy of r overlaid with a repeat submission:
// name and purpose always come from the new submission, company only when
// the visitor supplied one. The copy is used for owner notifications and is
// never persisted.
func (r DownloadRequest) WithResubmission(name, company, purpose string) DownloadRequest {
	out := r
	if name != "" {
		out.Name = name
	}
	if company != "" {
		out.Company = company
	}
	if purpose != "" {
		out.Purpose = purpose
	}
	return out
}

// FindByEmail returns the index of the first request matching email
// (case-insensitive), or -1.
func FindByEmail(reqs []DownloadRequest, email string) int {
	for i := range reqs {
		if reqs[i].MatchesEmail(email) {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the request with the given id, or -1.
func FindByID(reqs []DownloadRequest, id string) int {
	for i := range reqs {
		if reqs[i].ID == id {
			return i
		}
	}
	return -1
}

// ContactMessage is a contact-form submission relayed to the owner.
// Company and Purpose are only filled by the resume-download variant of the
// form; Subject distinguishes it from a plain message.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
	Company string `json:"company,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}
