package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie names the cookie carrying the browser session id.
const SessionCookie = "stylist_session"

type contextKey string

const sessionIDKey contextKey = "sessionID"

// GetSessionID retrieves the browser session id from context.
func GetSessionID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if value, ok := ctx.Value(sessionIDKey).(string); ok && value != "" {
		return value, true
	}
	return "", false
}

// SessionMiddleware reads the session cookie, issuing a fresh id when it is
// missing or malformed, and injects the id into the request context.
func SessionMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || !validSessionID(sessionID) {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sessionID, 0, "/", "", secure, true)
		}

		ctx := context.WithValue(c.Request.Context(), sessionIDKey, sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(sessionIDKey), sessionID)

		c.Next()
	}
}

func validSessionID(value string) bool {
	if value == "" {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

func sessionID(c *gin.Context) string {
	id, _ := GetSessionID(c.Request.Context())
	return id
}
