// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements AdminAuth, HTTP Basic authentication for the owner's
// listing endpoint, checked against a bcrypt hash.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// adminUserKey is the Gin context key under which AdminAuth stores the
// authenticated user name.
const adminUserKey = "adminUser"

// AdminRealm is sent in WWW-Authenticate challenges.
const AdminRealm = "resume-gate admin"

// AdminAuth returns a middleware that requires HTTP Basic credentials
// matching user and the bcrypt passwordHash. When either is empty the
// middleware is a pass-through, which keeps the listing open as in the
// default deployment.
//
// Failures answer 401 with a WWW-Authenticate challenge and the standard
// error envelope. The bcrypt comparison runs even for a wrong user name so
// response timing does not reveal which half was wrong.
func AdminAuth(user, passwordHash string) gin.HandlerFunc {
	if user == "" || passwordHash == "" {
		return func(c *gin.Context) { c.Next() }
	}
	hash := []byte(passwordHash)

	return func(c *gin.Context) {
		u, p, ok := c.Request.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1
		passOK := ok && bcrypt.CompareHashAndPassword(hash, []byte(p)) == nil
		if !ok || !userOK || !passOK {
			LoggerFrom(c).Warn().Bool("credentials_present", ok).Msg("admin auth failed")
			c.Header("WWW-Authenticate", `Basic realm="`+AdminRealm+`", charset="UTF-8"`)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "admin credentials required")
			return
		}
		c.Set(adminUserKey, user)
		c.Next()
	}
}

// AdminUserFrom returns the user authenticated by AdminAuth, or "".
func AdminUserFrom(c *gin.Context) string {
	v, _ := c.Get(adminUserKey)
	return asString(v)
}
