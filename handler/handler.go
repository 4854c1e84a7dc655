package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"repwatch-console/config"
	"repwatch-console/repository"
	"repwatch-console/service"
	"repwatch-console/session"
)

const sessionContextKey = "session"

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	Sessions *session.Manager
	Repo     repository.ConsoleRepository
	Combine  service.CombineService
	Backups  service.BackupService
	Cfg      *config.Config
}

func New(sessions *session.Manager, repo repository.ConsoleRepository, combine service.CombineService, backups service.BackupService, cfg *config.Config) *Handler {
	return &Handler{
		Sessions: sessions,
		Repo:     repo,
		Combine:  combine,
		Backups:  backups,
		Cfg:      cfg,
	}
}

func (h *Handler) cookieName() string {
	return h.Cfg.Auth.CookieName
}

func (h *Handler) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetCookie(h.cookieName(), sessionID, 0, "/", "", h.Cfg.Auth.CookieSecure, true)
}

func (h *Handler) sessionID(c *gin.Context) string {
	id, err := c.Cookie(h.cookieName())
	if err != nil {
		return ""
	}
	return id
}

// redirectWithError sends the admin back to a sensible page with a
// machine-readable reason; failures here are control flow, not server errors.
func redirectWithError(c *gin.Context, path, reason string) {
	c.Redirect(http.StatusFound, path+"?error="+url.QueryEscape(reason))
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
