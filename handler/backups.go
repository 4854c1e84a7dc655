package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"repwatch-console/constant"
)

func (h *Handler) ListBackups(c *gin.Context) {
	backups, err := h.Backups.List(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list backups failed")
		redirectWithError(c, "/dashboard", constant.ReasonServerError)
		return
	}
	c.HTML(http.StatusOK, "backups.html", gin.H{
		"Backups": backups,
		"Error":   c.Query("error"),
	})
}

func (h *Handler) CreateBackup(c *gin.Context) {
	if _, err := h.Backups.Create(c.Request.Context()); err != nil {
		redirectWithError(c, "/backups", constant.ReasonBackupFailed)
		return
	}
	c.Redirect(http.StatusFound, "/backups")
}

func (h *Handler) DownloadBackup(c *gin.Context) {
	h.serveFrom(c, h.Cfg.Paths.BackupsDir, c.Param("name"), false, true)
}

func (h *Handler) RestoreBackup(c *gin.Context) {
	if err := h.Backups.Restore(c.Request.Context(), c.Param("name")); err != nil {
		redirectWithError(c, "/backups", constant.ReasonBackupFailed)
		return
	}
	c.Redirect(http.StatusFound, "/backups")
}

func (h *Handler) DeleteBackup(c *gin.Context) {
	if err := h.Backups.Delete(c.Request.Context(), c.Param("name")); err != nil {
		redirectWithError(c, "/backups", constant.ReasonBackupFailed)
		return
	}
	c.Redirect(http.StatusFound, "/backups")
}
