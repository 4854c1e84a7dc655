package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"repwatch-console/constant"
	"repwatch-console/dto"
	"repwatch-console/entities"
	"repwatch-console/repository"
)

func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	params := repository.ListRepsParams{
		Page:    page,
		PerPage: 25,
		SortBy:  repository.RepSortColumn(c.DefaultQuery("sort", "name")),
		Order:   repository.SortOrder(c.DefaultQuery("order", "asc")),
		Search:  c.Query("q"),
	}

	reps, total, err := h.Repo.ListReps(ctx, params)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list reps failed")
		redirectWithError(c, "/dashboard", constant.ReasonServerError)
		return
	}

	c.HTML(http.StatusOK, "users.html", gin.H{
		"Reps":   reps,
		"Total":  total,
		"Page":   page,
		"Search": params.Search,
		"Error":  c.Query("error"),
	})
}

func (h *Handler) NewUserForm(c *gin.Context) {
	c.HTML(http.StatusOK, "user_form.html", gin.H{
		"Error": c.Query("error"),
	})
}

func (h *Handler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	var form dto.RepForm
	if err := c.ShouldBind(&form); err != nil || form.RepID == "" || form.Name == "" {
		redirectWithError(c, "/users/new", constant.ReasonInvalidRequest)
		return
	}

	rep := &entities.SalesRep{
		RepID:        form.RepID,
		Name:         form.Name,
		BranchID:     form.BranchID,
		EmailAddress: form.EmailAddress,
		JoinDate:     form.JoinDate,
		ActiveFlag:   activeFlag(form.ActiveFlag),
	}
	if form.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			redirectWithError(c, "/users/new", constant.ReasonServerError)
			return
		}
		rep.PasswordHash = string(hash)
	}

	if err := h.Repo.CreateRep(ctx, rep); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("rep_id", form.RepID).Msg("create rep failed")
		redirectWithError(c, "/users/new", constant.ReasonServerError)
		return
	}
	c.Redirect(http.StatusFound, "/users")
}

func (h *Handler) EditUserForm(c *gin.Context) {
	rep, ok := h.findRepParam(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "user_form.html", gin.H{
		"Rep":   rep,
		"Error": c.Query("error"),
	})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	rep, ok := h.findRepParam(c)
	if !ok {
		return
	}

	var form dto.RepForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithError(c, "/users", constant.ReasonInvalidRequest)
		return
	}

	rep.Name = form.Name
	rep.BranchID = form.BranchID
	rep.EmailAddress = form.EmailAddress
	rep.JoinDate = form.JoinDate
	rep.ActiveFlag = activeFlag(form.ActiveFlag)
	if form.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			redirectWithError(c, "/users", constant.ReasonServerError)
			return
		}
		rep.PasswordHash = string(hash)
	}

	if err := h.Repo.UpdateRep(ctx, rep); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint("id", rep.ID).Msg("update rep failed")
		redirectWithError(c, "/users", constant.ReasonServerError)
		return
	}
	c.Redirect(http.StatusFound, "/users")
}

func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		redirectWithError(c, "/users", constant.ReasonInvalidRequest)
		return
	}
	if err := h.Repo.DeleteRep(ctx, uint(id)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Uint64("id", id).Msg("delete rep failed")
		redirectWithError(c, "/users", constant.ReasonServerError)
		return
	}
	c.Redirect(http.StatusFound, "/users")
}

func (h *Handler) BulkDeleteUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var ids []uint
	for _, raw := range c.PostFormArray("ids") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			redirectWithError(c, "/users", constant.ReasonInvalidRequest)
			return
		}
		ids = append(ids, uint(id))
	}

	if err := h.Repo.BulkDeleteReps(ctx, ids); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("count", len(ids)).Msg("bulk delete reps failed")
		redirectWithError(c, "/users", constant.ReasonServerError)
		return
	}
	c.Redirect(http.StatusFound, "/users")
}

func (h *Handler) findRepParam(c *gin.Context) (*entities.SalesRep, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		redirectWithError(c, "/users", constant.ReasonInvalidRequest)
		return nil, false
	}
	rep, err := h.Repo.FindRepByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			redirectWithError(c, "/users", constant.ReasonUserNotFound)
		} else {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Uint64("id", id).Msg("find rep failed")
			redirectWithError(c, "/users", constant.ReasonServerError)
		}
		return nil, false
	}
	return rep, true
}

func activeFlag(raw string) constant.ActiveFlag {
	if raw == string(constant.ActiveFlagNo) {
		return constant.ActiveFlagNo
	}
	return constant.ActiveFlagYes
}
