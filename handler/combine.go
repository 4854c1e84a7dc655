package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"repwatch-console/constant"
	"repwatch-console/dto"
	"repwatch-console/repository"
	"repwatch-console/service"
)

// CombineForm renders the time-range selection form.
func (h *Handler) CombineForm(c *gin.Context) {
	reps, _, err := h.Repo.ListReps(c.Request.Context(), repository.ListRepsParams{
		Page:    1,
		PerPage: 200,
		SortBy:  repository.SortByName,
		Order:   repository.OrderAsc,
	})
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("combine form rep listing failed")
		redirectWithError(c, "/dashboard", constant.ReasonServerError)
		return
	}

	c.HTML(http.StatusOK, "combine.html", gin.H{
		"Reps":  reps,
		"Error": c.Query("error"),
	})
}

// GenerateCombinedVideo runs the combination pipeline and redirects to the
// player on success, or back to the form with a reason on failure.
func (h *Handler) GenerateCombinedVideo(c *gin.Context) {
	var req dto.CombineRequest
	if err := c.ShouldBind(&req); err != nil {
		redirectWithError(c, "/combine", constant.ReasonInvalidRange)
		return
	}

	artifact, err := h.Combine.Combine(c.Request.Context(), req)
	if err != nil {
		redirectWithError(c, "/combine", combineReason(c, err))
		return
	}

	q := url.Values{}
	q.Set("file", artifact.FileName)
	q.Set("user", artifact.Rep.Name)
	q.Set("start", artifact.Start)
	q.Set("end", artifact.End)
	c.Redirect(http.StatusFound, "/combine/watch?"+q.Encode())
}

// WatchCombined renders the player referencing the combined-video endpoint.
func (h *Handler) WatchCombined(c *gin.Context) {
	file := c.Query("file")
	if file == "" {
		redirectWithError(c, "/combine", constant.ReasonInvalidRequest)
		return
	}
	c.HTML(http.StatusOK, "watch_combined.html", gin.H{
		"File":  file,
		"User":  c.Query("user"),
		"Start": c.Query("start"),
		"End":   c.Query("end"),
	})
}

// ServeCombinedVideo streams a generated artifact from the output root. No
// suffix fallback here: artifact names are exact.
func (h *Handler) ServeCombinedVideo(c *gin.Context) {
	h.serveFrom(c, h.Cfg.Paths.OutputDir, c.Query("file"), false, false)
}

func combineReason(c *gin.Context, err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidRange):
		return constant.ReasonInvalidRange
	case errors.Is(err, service.ErrInvalidFormat):
		return constant.ReasonInvalidFormat
	case errors.Is(err, service.ErrUserNotFound):
		return constant.ReasonUserNotFound
	case errors.Is(err, service.ErrNoRecordingsInRange):
		return constant.ReasonNoRecordings
	case errors.Is(err, service.ErrNoResolvableFiles):
		return constant.ReasonNoResolvableFiles
	case errors.Is(err, service.ErrCombinationFailed):
		return constant.ReasonCombinationFailed
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("combination pipeline failed")
		return constant.ReasonServerError
	}
}
