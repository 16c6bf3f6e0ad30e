// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders. The service answers three kinds of
// clients: the SPA calling JSON endpoints, the owner's browser opening
// decision pages, and visitors downloading the PDF. The API group uses the
// baseline; the decision pages add a Content-Security-Policy and no-store;
// the download adds no-store so the PDF is not left in shared caches.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// PageCSP is the policy for server-rendered decision pages: inline styles
// only, no scripts, no framing.
const PageCSP = "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// SecurityOptions configures HTTP security headers emitted by SecurityHeaders.
type SecurityOptions struct {
	EnableHSTS   bool          // set true only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // defaults to 180 days
	NoStore      bool          // add Cache-Control: no-store (+ Pragma, Expires)
	EnablePolicy bool          // include Permissions-Policy, X-Permitted-Cross-Domain-Policies
	CSP          string        // Content-Security-Policy; empty for JSON routes
}

// SecurityHeaders returns a Gin middleware that adds security headers:
//
//   - Always: X-Content-Type-Options: nosniff, X-Frame-Options: DENY,
//     Referrer-Policy: no-referrer. The referrer policy also keeps signed
//     decision links from leaking to third parties.
//   - EnablePolicy: Permissions-Policy and X-Permitted-Cross-Domain-Policies.
//   - NoStore: Cache-Control: no-store, Pragma: no-cache, Expires: 0.
//   - CSP: Content-Security-Policy.
//   - EnableHSTS on HTTPS requests (TLS or X-Forwarded-Proto: https):
//     Strict-Transport-Security: max-age=<seconds>; includeSubDomains; preload.
//   - Exposes X-Request-ID via Access-Control-Expose-Headers when present.
//
// The middleware can be stacked; later instances overwrite earlier values.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.CSP != "" {
			h.Set("Content-Security-Policy", opt.CSP)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get(requestIDHeader) != "" {
			const hdr = "Access-Control-Expose-Headers"
			cur := h.Get(hdr)
			if cur == "" {
				h.Set(hdr, requestIDHeader)
			} else if !strings.Contains(cur, requestIDHeader) {
				h.Set(hdr, cur+", "+requestIDHeader)
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the incoming request used HTTPS either directly
// (r.TLS != nil) or via a reverse proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
