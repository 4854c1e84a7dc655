package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"repwatch-console/constant"
	"repwatch-console/repository"
)

func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	reps, total, err := h.Repo.ListReps(ctx, repository.ListRepsParams{
		Page:    1,
		PerPage: 10,
		SortBy:  repository.SortByName,
		Order:   repository.OrderAsc,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("dashboard rep listing failed")
		redirectWithError(c, "/login", constant.ReasonServerError)
		return
	}

	summary, err := h.Repo.ActivitySummary(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("dashboard activity summary failed")
		summary = nil
	}

	notifications, err := h.Repo.ListNotifications(ctx, true)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("dashboard notification listing failed")
		notifications = nil
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Reps":          reps,
		"TotalReps":     total,
		"Summary":       summary,
		"Notifications": notifications,
		"Error":         c.Query("error"),
	})
}

// Reports renders the ad-hoc report queries: activity by type over a chosen
// window and recording counts per rep.
func (h *Handler) Reports(c *gin.Context) {
	ctx := c.Request.Context()

	days := 30
	if c.Query("window") == "week" {
		days = 7
	}

	summary, err := h.Repo.ActivitySummary(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("report activity summary failed")
		redirectWithError(c, "/dashboard", constant.ReasonServerError)
		return
	}

	counts, err := h.Repo.RecordingCountsPerRep(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("report recording counts failed")
		redirectWithError(c, "/dashboard", constant.ReasonServerError)
		return
	}

	c.HTML(http.StatusOK, "reports.html", gin.H{
		"WindowDays":      days,
		"Summary":         summary,
		"RecordingCounts": counts,
	})
}
