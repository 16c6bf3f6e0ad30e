// Owner decision handler.
//
//   - GET /admin/approve-download?id=&action=approve|deny[&token=]
//
// The endpoint is opened from an email client, so every outcome is a
// human-readable HTML page rather than JSON.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/resume-gate/internal/http/middleware"
	"github.com/tbourn/resume-gate/internal/mail"
	"github.com/tbourn/resume-gate/internal/services"
)

// DecideDownloadRequest godoc
// @ID          decideDownloadRequest
// @Summary     Approve or deny a download request
// @Description Target of the links in the owner's notification email. Renders an HTML confirmation page. Replaying a link renders "already processed" without changes. When DECISION_LINK_SECRET is set the token parameter is required.
// @Tags        Admin
// @Produce     html
// @Param       id      query  string  true   "Request id"
// @Param       action  query  string  true   "Decision"  Enums(approve, deny)
// @Param       token   query  string  false  "Signed link token"
// @Success     200  {string}  string  "Decision applied or already processed"
// @Failure     400  {string}  string  "Invalid link"
// @Failure     403  {string}  string  "Token invalid or expired"
// @Failure     404  {string}  string  "Request not found"
// @Failure     500  {string}  string  "Unexpected failure"
// @Router      /admin/approve-download [get]
func (h *Handlers) DecideDownloadRequest(c *gin.Context) {
	res, err := h.reqSvc.Decide(c.Request.Context(), services.DecideInput{
		ID:     c.Query("id"),
		Action: c.Query("action"),
		Token:  c.Query("token"),
	})
	switch {
	case errors.Is(err, services.ErrInvalidDecision):
		h.renderPage(c, http.StatusBadRequest, "invalid", pageData{Title: "Invalid Request"})
		return
	case errors.Is(err, services.ErrInvalidLink):
		h.renderPage(c, http.StatusForbidden, "forbidden", pageData{Title: "Link Expired"})
		return
	case errors.Is(err, services.ErrRequestNotFound):
		h.renderPage(c, http.StatusNotFound, "notfound", pageData{Title: "Request Not Found"})
		return
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Msg("decision failed")
		h.renderPage(c, http.StatusInternalServerError, "error", pageData{Title: "Error"})
		return
	}

	if res.AlreadyProcessed {
		h.renderPage(c, http.StatusOK, "processed", pageData{Title: "Already Processed", Request: res.Request})
		return
	}

	approved := res.Request.IsApproved()
	data := pageData{
		Title:    "Request " + string(res.Request.Status),
		Request:  res.Request,
		Approved: approved,
		Color:    "#dc2626",
		Note:     decisionNote(res.Outcome),
	}
	if approved {
		data.Color = "#16a34a"
	}
	h.renderPage(c, http.StatusOK, "decided", data)
}

// decisionNote tells the owner what happened to the visitor email, since
// the outcome is otherwise invisible to them.
func decisionNote(out services.Outcome) string {
	switch {
	case out.StoreErr != nil:
		return "Warning: the decision could not be saved and the user was not notified. Please try the link again."
	case out.Notified:
		return "The user has been notified via email."
	case errors.Is(out.NotifyErr, mail.ErrNotConfigured):
		return "Email is not configured; the user was not notified."
	case errors.Is(out.NotifyErr, services.ErrResumeNotFound):
		return "The resume file is missing, so the approval email was not sent."
	default:
		return "The decision was saved, but the notification email could not be sent."
	}
}
