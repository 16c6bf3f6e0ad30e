// Download-request HTTP handlers.
//
//   - POST /api/download-request   (visitor intake)
//   - GET  /api/download-request   (owner listing, weak ETag support)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/http/middleware"
	"github.com/tbourn/resume-gate/internal/repo"
	"github.com/tbourn/resume-gate/internal/services"
)

// Visitor-facing messages, worded as on the portfolio site.
const (
	msgSubmitted       = "Your download request has been submitted and is pending approval. You will be notified once approved."
	msgStillPending    = "Your download request is pending approval. Please check back later."
	msgAlreadyApproved = "Download approved! Your download will start shortly."
	msgAlreadyDenied   = "Access denied. The author has not granted permission to download the resume."
	msgIntakeRequired  = "Name, email, and purpose are required"
)

//
// DTOs
//

// DownloadRequestBody is the JSON payload of an access request.
type DownloadRequestBody struct {
	Name    string `json:"name"    binding:"max=255" example:"Jane Doe"`
	Email   string `json:"email"   binding:"max=320" example:"jane@example.com"`
	Company string `json:"company" binding:"max=255" example:"Acme Corp"`
	Purpose string `json:"purpose" binding:"max=255" example:"job-opportunity"`
}

// DownloadRequestResponse tells the visitor where their request stands.
// Success is false only when the email's request was denied.
type DownloadRequestResponse struct {
	Success  bool   `json:"success"  example:"true"`
	Approved bool   `json:"approved" example:"false"`
	Message  string `json:"message"  example:"Your download request is pending approval. Please check back later."`
}

// ListRequestsResponse wraps the stored requests in insertion order.
type ListRequestsResponse struct {
	Requests []domain.DownloadRequest `json:"requests"`
}

//
// Handlers
//

// SubmitDownloadRequest godoc
// @ID          submitDownloadRequest
// @Summary     Request access to the resume
// @Description Records a pending request and emails the owner approve/deny links. When the email is already on file no record is created; the owner is re-notified and the response reflects the stored status.
// @Tags        Requests
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.DownloadRequestBody      true  "Access request"
// @Success     200   {object}  handlers.DownloadRequestResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing fields or invalid JSON"
// @Failure     413   {object}  handlers.ErrorResponse  "Body too large"
// @Failure     429   {object}  handlers.ErrorResponse  "Rate limited"
// @Router      /api/download-request [post]
func (h *Handlers) SubmitDownloadRequest(c *gin.Context) {
	var body DownloadRequestBody
	if !bindJSON(c, &body) {
		return
	}

	res, err := h.reqSvc.Submit(c.Request.Context(), services.SubmitInput{
		Name:    body.Name,
		Email:   body.Email,
		Company: body.Company,
		Purpose: body.Purpose,
	})
	if errors.Is(err, services.ErrInvalidInput) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgIntakeRequired)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRequestFailed, "Error processing request. Please try again.")
		return
	}
	if res.Outcome.Degraded() {
		// The visitor still gets the optimistic answer.
		middleware.LoggerFrom(c).Warn().
			Str("download_request_id", res.Request.ID).
			Bool("persisted", res.Outcome.Persisted).
			Bool("notified", res.Outcome.Notified).
			Msg("intake degraded")
	}

	ok(c, http.StatusOK, intakeResponse(res))
}

func intakeResponse(res services.SubmitResult) DownloadRequestResponse {
	if !res.Existing {
		return DownloadRequestResponse{Success: true, Message: msgSubmitted}
	}
	switch res.Status {
	case domain.StatusApproved:
		return DownloadRequestResponse{Success: true, Approved: true, Message: msgAlreadyApproved}
	case domain.StatusDenied:
		return DownloadRequestResponse{Success: false, Message: msgAlreadyDenied}
	default:
		return DownloadRequestResponse{Success: true, Message: msgStillPending}
	}
}

// ListDownloadRequests godoc
// @ID          listDownloadRequests
// @Summary     List download requests
// @Description Returns stored requests in insertion order. Requires HTTP Basic credentials when ADMIN_USER and ADMIN_PASSWORD_HASH are configured. Supports a weak ETag via If-None-Match.
// @Tags        Requests
// @Produce     json
// @Security    BasicAuth
// @Param       status         query   string  false "Filter by status"  Enums(pending, approved, denied)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {object} handlers.ListRequestsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Invalid status filter"
// @Failure     401  {object} handlers.ErrorResponse "Admin credentials required"
// @Router      /api/download-request [get]
func (h *Handlers) ListDownloadRequests(c *gin.Context) {
	var status domain.Status
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s, err := domain.ParseStatus(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be pending, approved or denied")
			return
		}
		status = s
	}

	reqs, out := h.reqSvc.List(c.Request.Context(), status)
	if out.StoreErr != nil {
		// An unreadable store lists as empty; never cache that answer.
		ok(c, http.StatusOK, ListRequestsResponse{Requests: reqs})
		return
	}

	count, pending, latest := repo.RequestStats(reqs)
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	etag := fmt.Sprintf(`W/"requests:%s:%d:%d:%d"`, status, count, pending, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}
	ok(c, http.StatusOK, ListRequestsResponse{Requests: reqs})
}
