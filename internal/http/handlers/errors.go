// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages, which follow the wording the portfolio site shows to
// visitors.
//
// Example response:
//
//	{
//	  "success": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "access_denied",
//	  "message": "The author has not granted you access to download the resume. Your request may be pending or denied."
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTooLarge         = "request_too_large"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeAccessDenied   = "access_denied"
	ErrCodeResumeNotFound = "resume_not_found"
	ErrCodeRequestFailed  = "request_failed"
	ErrCodeSendFailed     = "send_failed"
)
