package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
	"github.com/tbourn/resume-gate/internal/repo"
	"github.com/tbourn/resume-gate/internal/services"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, m)
	return o.err
}

func (o *outbox) sent() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mail.Message(nil), o.msgs...)
}

type testEnv struct {
	r      *gin.Engine
	store  *repo.MemoryStore
	outbox *outbox
	resume string
	svc    *services.RequestService
}

func newEnv(t *testing.T, seed ...domain.DownloadRequest) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resume := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("%PDF-1.4 resume"), 0o600))

	box := &outbox{}
	n := &mail.Notifier{
		Sender:         box,
		OwnerEmail:     "owner@example.com",
		OwnerName:      "Owner",
		SiteURL:        "https://example.com",
		ResumeFilename: "Jane_Resume.pdf",
		Now:            func() time.Time { return t0 },
	}
	store := repo.NewMemoryStore(seed...)
	svc := services.NewRequestService(store, n, services.LinkBuilder{BaseURL: "https://example.com"}, resume)
	svc.Now = func() time.Time { return t0 }
	svc.Dispatch = func(fn func()) { fn() }

	h := New(svc, services.NewContactService(n), Options{ResumeFilename: "Jane_Resume.pdf"})
	r := gin.New()
	r.POST("/api/download-request", h.SubmitDownloadRequest)
	r.GET("/api/download-request", h.ListDownloadRequests)
	r.GET("/admin/approve-download", h.DecideDownloadRequest)
	r.GET("/admin", h.AdminDashboard)
	r.GET("/api/download-resume", h.DownloadResume)
	r.POST("/api/contact", h.SendContact)

	return &testEnv{r: r, store: store, outbox: box, resume: resume, svc: svc}
}

func (e *testEnv) do(method, target string, body any, hdr ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) stored(t *testing.T) []domain.DownloadRequest {
	t.Helper()
	reqs, err := e.store.Load(context.Background())
	require.NoError(t, err)
	return reqs
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func seeded(id, email string, s domain.Status) domain.DownloadRequest {
	r := domain.DownloadRequest{
		ID: id, Name: "Jane", Email: email, Purpose: "job-opportunity",
		Status: s, RequestedAt: t0.Add(-time.Hour),
	}
	if s != domain.StatusPending {
		at := t0.Add(-time.Minute)
		r.RespondedAt = &at
	}
	return r
}

// ----- Intake -----

func TestSubmitDownloadRequest_New(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/api/download-request", gin.H{
		"name": "A", "email": "a@x.com", "purpose": "job-opportunity",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeJSON[DownloadRequestResponse](t, w)
	assert.Equal(t, DownloadRequestResponse{Success: true, Message: msgSubmitted}, got)

	reqs := e.stored(t)
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.StatusPending, reqs[0].Status)

	sent := e.outbox.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "owner@example.com", sent[0].To)
	assert.Contains(t, sent[0].Text, "https://example.com/admin/approve-download?id="+reqs[0].ID+"&action=approve")
}

func TestSubmitDownloadRequest_Repeat(t *testing.T) {
	tests := []struct {
		status domain.Status
		want   DownloadRequestResponse
	}{
		{domain.StatusPending, DownloadRequestResponse{Success: true, Message: msgStillPending}},
		{domain.StatusApproved, DownloadRequestResponse{Success: true, Approved: true, Message: msgAlreadyApproved}},
		{domain.StatusDenied, DownloadRequestResponse{Success: false, Message: msgAlreadyDenied}},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			e := newEnv(t, seeded("01SEED", "a@x.com", tc.status))
			w := e.do(http.MethodPost, "/api/download-request", gin.H{
				"name": "A", "email": "A@X.com", "purpose": "freelance",
			})
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, decodeJSON[DownloadRequestResponse](t, w))
			assert.Len(t, e.stored(t), 1)
			require.Len(t, e.outbox.sent(), 1)
			assert.Contains(t, e.outbox.sent()[0].Subject, "Repeat Request")
		})
	}
}

func TestSubmitDownloadRequest_BadInput(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/download-request", gin.H{"name": "A", "email": "a@x.com"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	er := decodeJSON[ErrorResponse](t, w)
	assert.False(t, er.Success)
	assert.Equal(t, ErrCodeBadRequest, er.Code)
	assert.Equal(t, msgIntakeRequired, er.Message)

	w = e.do(http.MethodPost, "/api/download-request", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/download-request", gin.H{
		"name": strings.Repeat("n", 300), "email": "a@x.com", "purpose": "p",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, e.stored(t))
	assert.Empty(t, e.outbox.sent())
}

func TestSubmitDownloadRequest_MailDownStillSucceeds(t *testing.T) {
	e := newEnv(t)
	e.outbox.err = errors.New("smtp: connection refused")

	w := e.do(http.MethodPost, "/api/download-request", gin.H{"name": "A", "email": "a@x.com", "purpose": "p"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeJSON[DownloadRequestResponse](t, w).Success)
	assert.Len(t, e.stored(t), 1)
}

func TestSubmitDownloadRequest_TooLarge(t *testing.T) {
	e := newEnv(t)
	limited := gin.New()
	limited.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 32)
		c.Next()
	})
	limited.POST("/api/download-request", New(e.svc, nil, Options{}).SubmitDownloadRequest)

	body := `{"name":"` + strings.Repeat("x", 100) + `","email":"a@x.com","purpose":"p"}`
	req := httptest.NewRequest(http.MethodPost, "/api/download-request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// ----- Listing -----

func TestListDownloadRequests(t *testing.T) {
	e := newEnv(t,
		seeded("01A", "a@x.com", domain.StatusPending),
		seeded("01B", "b@x.com", domain.StatusApproved),
	)

	w := e.do(http.MethodGet, "/api/download-request", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decodeJSON[ListRequestsResponse](t, w)
	require.Len(t, all.Requests, 2)
	assert.Equal(t, "01A", all.Requests[0].ID)
	etag := w.Header().Get("ETag")
	require.True(t, strings.HasPrefix(etag, `W/"requests:`), etag)

	// Conditional request hits 304.
	w = e.do(http.MethodGet, "/api/download-request", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	// A decision changes the ETag.
	_, err := e.svc.Decide(context.Background(), services.DecideInput{ID: "01A", Action: "deny"})
	require.NoError(t, err)
	w = e.do(http.MethodGet, "/api/download-request", nil, "If-None-Match", etag)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))

	w = e.do(http.MethodGet, "/api/download-request?status=approved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	only := decodeJSON[ListRequestsResponse](t, w)
	require.Len(t, only.Requests, 1)
	assert.Equal(t, "01B", only.Requests[0].ID)

	w = e.do(http.MethodGet, "/api/download-request?status=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDownloadRequests_StoreDownListsEmpty(t *testing.T) {
	e := newEnv(t, seeded("01A", "a@x.com", domain.StatusPending))
	e.store.LoadErr = errors.New("disk gone")

	w := e.do(http.MethodGet, "/api/download-request", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"requests":[]}`, w.Body.String())
	assert.Empty(t, w.Header().Get("ETag"))
}

// ----- Decision pages -----

func TestDecideDownloadRequest_Pages(t *testing.T) {
	e := newEnv(t, seeded("01P", "p@x.com", domain.StatusPending), seeded("01D", "d@x.com", domain.StatusDenied))

	tests := []struct {
		name   string
		target string
		status int
		want   string
	}{
		{"missing id", "/admin/approve-download?action=approve", http.StatusBadRequest, "Invalid approval link"},
		{"bad action", "/admin/approve-download?id=01P&action=maybe", http.StatusBadRequest, "Invalid approval link"},
		{"unknown id", "/admin/approve-download?id=01NOPE&action=approve", http.StatusNotFound, "Request Not Found"},
		{"already denied", "/admin/approve-download?id=01D&action=approve", http.StatusOK, "This request has already been <strong>denied</strong>"},
		{"approve", "/admin/approve-download?id=01P&action=approve", http.StatusOK, "Request APPROVED"},
		{"replay", "/admin/approve-download?id=01P&action=deny", http.StatusOK, "Already Processed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(http.MethodGet, tc.target, nil)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), tc.want)
		})
	}

	reqs := e.stored(t)
	assert.Equal(t, domain.StatusApproved, reqs[0].Status)
	assert.Equal(t, domain.StatusDenied, reqs[1].Status)

	// Exactly one visitor email: the approval with the resume attached.
	sent := e.outbox.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "p@x.com", sent[0].To)
	require.Len(t, sent[0].Attachments, 1)
	assert.Equal(t, e.resume, sent[0].Attachments[0].Path)
}

func TestDecideDownloadRequest_EscapesVisitorInput(t *testing.T) {
	r := seeded("01X", "x@x.com", domain.StatusPending)
	r.Name = `<script>alert(1)</script>`
	e := newEnv(t, r)

	w := e.do(http.MethodGet, "/admin/approve-download?id=01X&action=deny", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<script>")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
	assert.Contains(t, w.Body.String(), "Request DENIED")
	assert.Contains(t, w.Body.String(), "Company:</strong> Not provided")
}

func TestDecideDownloadRequest_SignedLinks(t *testing.T) {
	e := newEnv(t, seeded("01P", "p@x.com", domain.StatusPending))
	e.svc.Links = services.LinkBuilder{BaseURL: "https://example.com", Secret: []byte("k"), TTL: time.Hour, Now: func() time.Time { return t0 }}

	w := e.do(http.MethodGet, "/admin/approve-download?id=01P&action=approve&token=forged", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "could not be verified")

	link, err := e.svc.Links.URL("01P", domain.ActionApprove)
	require.NoError(t, err)
	w = e.do(http.MethodGet, strings.TrimPrefix(link, "https://example.com"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Request APPROVED")
}

func TestDecideDownloadRequest_StoreFailures(t *testing.T) {
	e := newEnv(t, seeded("01P", "p@x.com", domain.StatusPending))
	e.store.SaveErr = errors.New("read-only")
	w := e.do(http.MethodGet, "/admin/approve-download?id=01P&action=approve", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "could not be saved")
	assert.Empty(t, e.outbox.sent())

	// An unreadable store has no requests to decide.
	e.store.LoadErr = errors.New("disk gone")
	w = e.do(http.MethodGet, "/admin/approve-download?id=01P&action=approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Request Not Found")
}

// ----- Dashboard -----

func TestAdminDashboard(t *testing.T) {
	e := newEnv(t,
		seeded("01A", "a@x.com", domain.StatusApproved),
		seeded("01B", "b@x.com", domain.StatusPending),
	)

	w := e.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "Download Requests")
	assert.Contains(t, body, `href="https://example.com/admin/approve-download?id=01B&amp;action=approve"`)
	assert.Contains(t, body, `href="https://example.com/admin/approve-download?id=01B&amp;action=deny"`)
	assert.NotContains(t, body, "id=01A&amp;action")
	assert.Contains(t, body, "approved")
	assert.Less(t, strings.Index(body, "b@x.com"), strings.Index(body, "a@x.com"), "newest first")

	// The link on the dashboard applies the decision.
	w = e.do(http.MethodGet, "/admin/approve-download?id=01B&action=approve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodGet, "/admin", nil)
	assert.NotContains(t, w.Body.String(), "action=approve")
}

func TestAdminDashboard_EmptyAndStoreDown(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No download requests yet.")

	e.store.LoadErr = errors.New("disk gone")
	w = e.do(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "could not be read")
}

func Test_decisionNote(t *testing.T) {
	assert.Equal(t, "The user has been notified via email.", decisionNote(services.Outcome{Persisted: true, Notified: true}))
	assert.Contains(t, decisionNote(services.Outcome{Persisted: true, NotifyErr: mail.ErrNotConfigured}), "not configured")
	assert.Contains(t, decisionNote(services.Outcome{Persisted: true, NotifyErr: services.ErrResumeNotFound}), "resume file is missing")
	assert.Contains(t, decisionNote(services.Outcome{Persisted: true, NotifyErr: errors.New("x")}), "could not be sent")
}

// ----- Download -----

func TestDownloadResume(t *testing.T) {
	e := newEnv(t,
		seeded("01A", "ok@x.com", domain.StatusApproved),
		seeded("01P", "wait@x.com", domain.StatusPending),
		seeded("01D", "no@x.com", domain.StatusDenied),
	)

	w := e.do(http.MethodGet, "/api/download-resume?email=OK%40x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Resume.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 resume", w.Body.String())

	sent := e.outbox.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "owner@example.com", sent[0].To)

	// Pending, denied and unknown are indistinguishable.
	var bodies []string
	for _, email := range []string{"wait@x.com", "no@x.com", "nobody@x.com"} {
		w := e.do(http.MethodGet, "/api/download-resume?email="+email, nil)
		require.Equal(t, http.StatusForbidden, w.Code)
		er := decodeJSON[ErrorResponse](t, w)
		assert.Equal(t, ErrCodeAccessDenied, er.Code)
		bodies = append(bodies, er.Message)
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])

	w = e.do(http.MethodGet, "/api/download-resume", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgEmailRequired, decodeJSON[ErrorResponse](t, w).Message)

	require.NoError(t, os.Remove(e.resume))
	w = e.do(http.MethodGet, "/api/download-resume?email=ok@x.com", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrCodeResumeNotFound, decodeJSON[ErrorResponse](t, w).Code)
}

// ----- Contact -----

func TestSendContact(t *testing.T) {
	e := newEnv(t)

	w := e.do(http.MethodPost, "/api/contact", gin.H{"name": "Jane", "email": "jane@x.com", "message": "Hi"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MessageResponse{Success: true, Message: "Message sent successfully"}, decodeJSON[MessageResponse](t, w))
	sent := e.outbox.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "jane@x.com", sent[0].ReplyTo)

	w = e.do(http.MethodPost, "/api/contact", gin.H{"name": "Jane", "email": "jane@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.outbox.err = errors.New("smtp down")
	w = e.do(http.MethodPost, "/api/contact", gin.H{"name": "Jane", "email": "jane@x.com", "message": "Hi"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send message", decodeJSON[ErrorResponse](t, w).Message)
}

func TestSendContact_MailNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(nil, services.NewContactService(&mail.Notifier{OwnerEmail: "owner@example.com"}), Options{})
	r := gin.New()
	r.POST("/api/contact", h.SendContact)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane","email":"jane@x.com","message":"Hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Information received successfully (email not configured)", decodeJSON[MessageResponse](t, w).Message)
}
