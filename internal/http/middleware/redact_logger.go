// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger used by the router.
// Visitor emails travel in query strings (?email=) and decision links carry
// signed tokens (?token=), so both are scrubbed before anything is logged.
//
//   - Never logs request or response bodies.
//   - Email-valued query parameters are masked to "j***@example.com" so
//     repeated requests from one visitor stay correlatable by domain.
//   - Secret query parameters (token plus RedactOptions.MaskParams) and
//     sensitive headers (Authorization, Cookie, Set-Cookie plus
//     RedactOptions.MaskHeaders) are replaced with "[REDACTED]".
//   - Free-form values are regex-scrubbed for emails and phone numbers.
//
// Like Logger, it attaches the request-scoped logger to the Gin context and
// the request context.
package middleware

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/resume-gate/internal/sysutil"
)

const redacted = "[REDACTED]"

// RedactOptions configures additional scrub behavior for RedactingLogger.
// Header and parameter names are matched case-insensitively and merged with
// the built-in sets.
type RedactOptions struct {
	MaskHeaders []string
	MaskParams  []string
}

var (
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern.
	// Examples matched: "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrub masks emails (keeping the domain) and phone numbers in s.
func scrub(s string) string {
	if s == "" {
		return s
	}
	out := emailRE.ReplaceAllStringFunc(s, sysutil.MaskEmail)
	return phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
}

func lowerSet(builtin []string, extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(builtin)+len(extra))
	for _, v := range append(builtin, extra...) {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// redactQuery rewrites raw pair by pair, preserving order. Values are
// unescaped before scrubbing and logged unescaped.
func redactQuery(raw string, maskParams map[string]struct{}) string {
	if raw == "" {
		return ""
	}
	pairs := strings.Split(raw, "&")
	for i, p := range pairs {
		k, v, hasValue := strings.Cut(p, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			val = v
		}
		switch _, secret := maskParams[strings.ToLower(key)]; {
		case secret:
			val = redacted
		case strings.EqualFold(key, "email"):
			val = sysutil.MaskEmail(strings.TrimSpace(val))
		default:
			val = scrub(val)
		}
		if hasValue {
			pairs[i] = scrub(key) + "=" + val
		} else {
			pairs[i] = scrub(key)
		}
	}
	return truncate(strings.Join(pairs, "&"), maxQueryLogLength)
}

// RedactingLogger returns a Gin middleware that logs requests with
// sensitive values scrubbed. Levels follow Logger: error for 5xx or Gin
// errors, warn for 4xx, info otherwise.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := lowerSet([]string{"authorization", "cookie", "set-cookie"}, opts.MaskHeaders)
	maskParams := lowerSet([]string{"token"}, opts.MaskParams)

	return func(c *gin.Context) {
		start := time.Now()

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = redacted
				continue
			}
			safeHeaders[k] = scrub(strings.Join(vv, ", "))
		}

		if _, ok := c.Get(requestIDKey); !ok {
			// RequestID not installed; fall back to the headers.
			rid := c.Writer.Header().Get(requestIDHeader)
			if rid == "" {
				rid = c.GetHeader(requestIDHeader)
			}
			c.Set(requestIDKey, rid)
		}

		l := attachLogger(c, routePath(c), redactQuery(c.Request.URL.RawQuery, maskParams))

		c.Next()

		emit(c, l.With().Interface("headers", safeHeaders).Logger(), start)
	}
}
