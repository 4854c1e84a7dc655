package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"repwatch-console/constant"
	"repwatch-console/session"
)

// RequireSession gates every privileged route. Validation refreshes the
// session's login time, so activity keeps a session alive (sliding
// expiration); timeout and IP mismatch destroy it and bounce to login.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := h.Sessions.Validate(h.sessionID(c), c.ClientIP())
		if err != nil {
			if reason := authReason(err); reason != "" {
				redirectWithError(c, "/login", reason)
			} else {
				c.Redirect(http.StatusFound, "/login")
			}
			c.Abort()
			return
		}
		c.Set(sessionContextKey, s)
		c.Next()
	}
}

func authReason(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		return constant.ReasonSessionExpired
	case errors.Is(err, session.ErrSecurityViolation):
		return constant.ReasonSecurityViolation
	case errors.Is(err, session.ErrInvalidRequest):
		return constant.ReasonInvalidRequest
	case errors.Is(err, session.ErrInvalidCredentials):
		return constant.ReasonInvalidCredentials
	default:
		return ""
	}
}
