package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"repwatch-console/pkg/safepath"
)

// ViewRecording streams a recording inline from the uploads root.
func (h *Handler) ViewRecording(c *gin.Context) {
	h.serveFrom(c, h.Cfg.Paths.UploadsDir, c.Query("file"), true, false)
}

// DownloadRecording forces a save-as with the resolved basename.
func (h *Handler) DownloadRecording(c *gin.Context) {
	h.serveFrom(c, h.Cfg.Paths.UploadsDir, c.Query("file"), true, true)
}

// serveFrom resolves name inside root and streams it. Suffix matching is
// enabled for the uploads root only; the output root serves exact names.
func (h *Handler) serveFrom(c *gin.Context, root, name string, suffixFallback, attachment bool) {
	resolved, err := safepath.ResolveExisting(root, name, suffixFallback)
	if err != nil {
		switch {
		case errors.Is(err, safepath.ErrEmptyName):
			c.String(http.StatusBadRequest, "missing file parameter")
		case errors.Is(err, safepath.ErrNotContained):
			c.String(http.StatusForbidden, "access denied")
		default:
			c.String(http.StatusNotFound, "file not found")
		}
		return
	}

	if attachment {
		c.FileAttachment(resolved, filepath.Base(resolved))
		return
	}
	c.Header("Content-Type", safepath.ContentType(resolved))
	c.File(resolved)
}

// WatchLive renders the polling player for a rep's most recent uploads.
func (h *Handler) WatchLive(c *gin.Context) {
	rep, ok := h.findRepQueryParam(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "watch_live.html", gin.H{
		"Rep": rep,
	})
}

// NewUploads returns recordings newer than the given row ID, for polling.
func (h *Handler) NewUploads(c *gin.Context) {
	rep, ok := h.findRepQueryParam(c)
	if !ok {
		return
	}
	afterID, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 32)

	recordings, err := h.Repo.RecordingsSince(c.Request.Context(), rep.ID, uint(afterID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": recordings})
}

func (h *Handler) LatestVideo(c *gin.Context) {
	rep, ok := h.findRepQueryParam(c)
	if !ok {
		return
	}

	rec, err := h.Repo.LatestRecording(c.Request.Context(), rep.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no recordings"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recording": rec})
}

func (h *Handler) findRepQueryParam(c *gin.Context) (rep repInfo, ok bool) {
	id, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return repInfo{}, false
	}
	found, err := h.Repo.FindRepByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		}
		return repInfo{}, false
	}
	return repInfo{ID: found.ID, RepID: found.RepID, Name: found.Name}, true
}

type repInfo struct {
	ID    uint
	RepID string
	Name  string
}
