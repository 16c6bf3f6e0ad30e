package mail

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// timeLayout is used for every timestamp shown in an email. Times are
// rendered in UTC so output does not depend on the host zone.
const timeLayout = "Jan 2, 2006 3:04 PM MST"

var funcs = map[string]any{
	"when": func(t time.Time) string { return t.UTC().Format(timeLayout) },
	"whenp": func(t *time.Time) string {
		if t == nil {
			return "N/A"
		}
		return t.UTC().Format(timeLayout)
	},
	"orNone":  orNone,
	"purpose": PurposeLabel,
}

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.txt.tmpl"))
)

// render executes <name>.html.tmpl and <name>.txt.tmpl with data.
func render(name string, data any) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&hb, name+".html.tmpl", data); err != nil {
		return "", "", err
	}
	if err := textTemplates.ExecuteTemplate(&tb, name+".txt.tmpl", data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// PurposeLabel turns a form slug such as "job-opportunity" into the label
// shown to the owner ("JOB OPPORTUNITY").
func PurposeLabel(p string) string {
	// A Caser keeps state between calls and must not be shared.
	return cases.Upper(language.Und).String(strings.ReplaceAll(strings.TrimSpace(p), "-", " "))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}
