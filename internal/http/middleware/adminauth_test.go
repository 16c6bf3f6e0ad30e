package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func basic(user, pass string) http.Header {
	tok := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	return http.Header{"Authorization": {"Basic " + tok}}
}

func adminRouter(t *testing.T, user, hash string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/admin", AdminAuth(user, hash), func(c *gin.Context) {
		c.String(http.StatusOK, "hello "+AdminUserFrom(c))
	})
	return r
}

func TestAdminAuth_Disabled(t *testing.T) {
	for _, tc := range []struct{ user, hash string }{{"", ""}, {"owner", ""}, {"", "$2a$04$x"}} {
		r := adminRouter(t, tc.user, tc.hash)
		w := serve(r, http.MethodGet, "/admin", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello ", w.Body.String())
	}
}

func TestAdminAuth_Enabled(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	r := adminRouter(t, "owner", string(hash))

	w := serve(r, http.MethodGet, "/admin", basic("owner", "s3cret"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello owner", w.Body.String())

	for name, h := range map[string]http.Header{
		"missing":    nil,
		"wrong pass": basic("owner", "nope"),
		"wrong user": basic("intruder", "s3cret"),
		"not basic":  {"Authorization": {"Bearer abc"}},
	} {
		t.Run(name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/admin", h)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), `Basic realm="resume-gate admin"`)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "unauthorized", body["code"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}
