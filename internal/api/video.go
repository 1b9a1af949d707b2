package api

import (
	"errors"
	"net/http"
	"strconv"

	"streaming-api/internal/billing"
	"streaming-api/internal/middleware"
	"streaming-api/internal/models"
	"streaming-api/internal/response"
	"streaming-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetVideos lists the catalog
// GET /api/videos
func (h *Handlers) GetVideos(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Order("created_at DESC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var videos []models.Video
	if err := query.Find(&videos).Error; err != nil {
		logging.Errorf("Failed to list videos: %v", err)
		c.JSON(http.StatusInternalServerError, response.Error("Error fetching videos"))
		return
	}

	response.SuccessJSON(c, videos)
}

// GetPlayback authorizes playback for one video and issues a short-lived
// playback token on success. The route already requires an active
// subscription; this handler additionally enforces the video's plan level.
// GET /api/videos/:id/play
func (h *Handlers) GetPlayback(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error("Authentication required"))
		return
	}

	videoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid video id"))
		return
	}

	var video models.Video
	if err := h.db.WithContext(c.Request.Context()).First(&video, uint(videoID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.Error("Video not found"))
			return
		}
		logging.Errorf("Failed to load video %d: %v", videoID, err)
		c.JSON(http.StatusInternalServerError, response.Error("Error fetching video"))
		return
	}

	decision, err := h.entitlements.CheckAccess(c.Request.Context(), userID, video.RequiredPlanID)
	if err != nil {
		logging.Errorf("Entitlement check failed - user: %d, video: %d, error: %v", userID, video.ID, err)
		c.JSON(http.StatusInternalServerError, response.Error("Error verifying subscription"))
		return
	}
	if !decision.Allowed {
		message := "Active subscription required"
		if decision.Reason == billing.ReasonInsufficientPlan {
			message = video.RequiredPlanID + " subscription required"
		}
		c.JSON(http.StatusForbidden, response.ErrorWithCode(message, string(decision.Reason)))
		return
	}

	token, err := h.playback.IssueToken(c.Request.Context(), userID, video.ID)
	if err != nil {
		logging.Errorf("Failed to issue playback token - user: %d, video: %d, error: %v", userID, video.ID, err)
		c.JSON(http.StatusInternalServerError, response.Error("Error preparing playback"))
		return
	}

	response.SuccessJSON(c, gin.H{
		"playback_id":        video.PlaybackID,
		"playback_token":     token,
		"expires_in_seconds": int(h.playback.TTL().Seconds()),
	})
}

// HealthCheck reports service and database health
// GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "streaming-api",
		"database": "connected",
	})
}
