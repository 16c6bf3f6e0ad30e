package domain

import "strings"

// Status is the lifecycle state of a DownloadRequest.
//
//	(none)  --submit-->  pending
//	pending --approve--> approved  (terminal)
//	pending --deny-----> denied    (terminal)
//
// Repeat submissions never change the status.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further transitions.
func (s Status) Terminal() bool { return s == StatusApproved || s == StatusDenied }

// ParseStatus parses a status name case-insensitively.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Action is an owner decision carried by a decision link.
type Action string

const (
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
)

// ParseAction accepts exactly "approve" or "deny".
func ParseAction(v string) (Action, error) {
	switch a := Action(v); a {
	case ActionApprove, ActionDeny:
		return a, nil
	}
	return "", ErrInvalidAction
}

// Target returns the status an action moves a pending request to.
func (a Action) Target() (Status, error) {
	switch a {
	case ActionApprove:
		return StatusApproved, nil
	case ActionDeny:
		return StatusDenied, nil
	}
	return "", ErrInvalidAction
}
