// Owner dashboard.
//
//   - GET /admin
//
// Linked from the download alert email. Lists every request, newest first,
// with decision links on the pending ones.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/resume-gate/internal/http/middleware"
)

// AdminDashboard godoc
// @ID          adminDashboard
// @Summary     Owner dashboard
// @Description Lists stored requests newest first. Pending requests carry the same approve and deny links as the notification email. Requires HTTP Basic credentials when ADMIN_USER and ADMIN_PASSWORD_HASH are configured.
// @Tags        Admin
// @Produce     html
// @Security    BasicAuth
// @Success     200  {string}  string  "Dashboard page"
// @Failure     401  {object}  handlers.ErrorResponse  "Admin credentials required"
// @Router      /admin [get]
func (h *Handlers) AdminDashboard(c *gin.Context) {
	reqs, out := h.reqSvc.List(c.Request.Context(), "")

	data := pageData{Title: "Download Requests"}
	if out.StoreErr != nil {
		data.Note = "The request store could not be read."
	}
	data.Rows = make([]dashboardRow, 0, len(reqs))
	for i := len(reqs) - 1; i >= 0; i-- {
		row := dashboardRow{Request: reqs[i]}
		if reqs[i].IsPending() {
			links, err := h.reqSvc.DecisionLinks(reqs[i].ID)
			if err != nil {
				middleware.LoggerFrom(c).Warn().Err(err).Str("request_id", reqs[i].ID).Msg("build decision links failed")
			} else {
				row.Links = links
			}
		}
		data.Rows = append(data.Rows, row)
	}
	h.renderPage(c, http.StatusOK, "dashboard", data)
}
