package handlers

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
)

//go:embed templates/*.tmpl
var pageFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"when": func(t *time.Time) string {
		if t == nil {
			return "N/A"
		}
		return t.UTC().Format("Jan 2, 2006 3:04 PM MST")
	},
	"at": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006 3:04 PM MST") },
}).ParseFS(pageFS, "templates/*.tmpl"))

// pageData feeds the decision page templates.
type pageData struct {
	Title    string
	Request  domain.DownloadRequest
	Approved bool
	Color    string
	Note     string
	Rows     []dashboardRow
}

// dashboardRow is one request on the owner dashboard. Links is empty for
// decided requests.
type dashboardRow struct {
	Request domain.DownloadRequest
	Links   mail.DecisionLinks
}

// renderPage writes one of the named decision pages.
func (h *Handlers) renderPage(c *gin.Context, status int, name string, data pageData) {
	if data.Title == "" {
		data.Title = "Resume download request"
	}
	c.Render(status, render.HTML{Template: h.pages, Name: name, Data: data})
}
