// Resume download handler.
//
//   - GET /api/download-resume?email=
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/resume-gate/internal/services"
)

const (
	msgEmailRequired = "Email parameter is required"
	// One message for unknown, pending and denied emails.
	msgAccessDenied = "The author has not granted you access to download the resume. Your request may be pending or denied."
	msgNoResume     = "Resume file not found"
)

// DownloadResume godoc
// @ID          downloadResume
// @Summary     Download the resume
// @Description Returns the PDF when an approved request exists for the email (case-insensitive). Unknown, pending and denied emails all receive the same 403. The owner is notified of each successful download.
// @Tags        Resume
// @Produce     application/pdf
// @Produce     json
// @Param       email  query  string  true  "Email used in the access request"  example(jane@example.com)
// @Success     200  {file}    file
// @Header      200  {string}  Content-Disposition  "attachment; filename=\"Resume.pdf\""
// @Failure     400  {object}  handlers.ErrorResponse  "Missing email"
// @Failure     403  {object}  handlers.ErrorResponse  "No approved request for this email"
// @Failure     404  {object}  handlers.ErrorResponse  "Resume file missing"
// @Failure     500  {object}  handlers.ErrorResponse  "Read failure"
// @Router      /api/download-resume [get]
func (h *Handlers) DownloadResume(c *gin.Context) {
	res, err := h.reqSvc.Authorize(c.Request.Context(), c.Query("email"))
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msgEmailRequired)
		return
	case errors.Is(err, services.ErrAccessDenied):
		fail(c, http.StatusForbidden, ErrCodeAccessDenied, msgAccessDenied)
		return
	case errors.Is(err, services.ErrResumeNotFound):
		fail(c, http.StatusNotFound, ErrCodeResumeNotFound, msgNoResume)
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Failed to download resume")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.opts.ResumeFilename))
	c.Header("Content-Length", strconv.Itoa(len(res.Data)))
	c.Data(http.StatusOK, "application/pdf", res.Data)
}
