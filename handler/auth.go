package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"repwatch-console/constant"
	"repwatch-console/dto"
)

// LoginPage renders the login form with a CSRF token bound to the visitor's
// (possibly brand-new) session.
func (h *Handler) LoginPage(c *gin.Context) {
	token, sid, err := h.Sessions.IssueCSRFToken(h.sessionID(c))
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("issue csrf token")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	h.setSessionCookie(c, sid)

	c.HTML(http.StatusOK, "login.html", gin.H{
		"CSRFToken": token,
		"Error":     c.Query("error"),
	})
}

// Authenticate handles the login POST. CSRF is checked before credentials;
// the error reason never distinguishes bad username from bad password.
func (h *Handler) Authenticate(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, "/login", constant.ReasonInvalidRequest)
		return
	}

	newID, err := h.Sessions.Authenticate(h.sessionID(c), form.Username, form.Password, form.CSRFToken, c.ClientIP())
	if err != nil {
		redirectWithError(c, "/login", authReason(err))
		return
	}

	h.setSessionCookie(c, newID)
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) Logout(c *gin.Context) {
	h.Sessions.Logout(h.sessionID(c))
	c.SetCookie(h.cookieName(), "", -1, "/", "", h.Cfg.Auth.CookieSecure, true)
	c.Redirect(http.StatusFound, "/login")
}
