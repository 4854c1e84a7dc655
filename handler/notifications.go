package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"repwatch-console/constant"
	"repwatch-console/entities"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.Repo.ListNotifications(c.Request.Context(), c.Query("unread") == "1")
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list notifications failed")
		redirectWithError(c, "/dashboard", constant.ReasonServerError)
		return
	}
	c.HTML(http.StatusOK, "notifications.html", gin.H{
		"Notifications": notifications,
		"Error":         c.Query("error"),
	})
}

func (h *Handler) CreateNotification(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		redirectWithError(c, "/notifications", constant.ReasonInvalidRequest)
		return
	}
	n := &entities.Notification{Title: title, Body: c.PostForm("body")}
	if err := h.Repo.CreateNotification(c.Request.Context(), n); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("create notification failed")
		redirectWithError(c, "/notifications", constant.ReasonServerError)
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		redirectWithError(c, "/notifications", constant.ReasonInvalidRequest)
		return
	}
	if err := h.Repo.MarkNotificationRead(c.Request.Context(), uint(id)); err != nil {
		redirectWithError(c, "/notifications", constant.ReasonServerError)
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		redirectWithError(c, "/notifications", constant.ReasonInvalidRequest)
		return
	}
	if err := h.Repo.DeleteNotification(c.Request.Context(), uint(id)); err != nil {
		redirectWithError(c, "/notifications", constant.ReasonServerError)
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}
