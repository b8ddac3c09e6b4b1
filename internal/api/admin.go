package api

import (
	"errors"
	"net/http"
	"strconv"

	"TG_adrewards/internal/middleware"
	"TG_adrewards/internal/model"
	"TG_adrewards/internal/service"
	"TG_adrewards/pkg/auth"
	"TG_adrewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type adminRoutes struct {
	as service.AdServiceI
	us service.UserServiceI
}

func NewAdminRoutes(handler *gin.RouterGroup, as service.AdServiceI, us service.UserServiceI,
	a *auth.TelegramAuth, authz *middleware.Authorization) {

	r := &adminRoutes{as: as, us: us}
	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware())
	h.Use(authz.AdminOnly())
	{
		h.POST("/ads", r.CreateAd)
		h.PATCH("/ads/:ad_id/toggle", r.ToggleAdActive)
		h.GET("/ads/:ad_id/stats", r.GetAdStats)
		h.GET("/users/:telegram_id", r.GetUserInfo)
	}
}

type CreateAdRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	URL           string  `json:"url" binding:"required"`
	Reward        float64 `json:"reward" binding:"min=0"`
	CooldownHours int     `json:"cooldown_hours" binding:"min=0"`
}

func (r *adminRoutes) CreateAd(c *gin.Context) {
	log := logger.Logger()

	var req CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ad := &model.Advertisement{
		Title:         req.Title,
		Description:   req.Description,
		URL:           req.URL,
		Reward:        req.Reward,
		CooldownHours: req.CooldownHours,
	}

	adID, err := r.as.CreateAd(c.Request.Context(), ad)
	if err != nil {
		log.Error("failed to create ad", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ad"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ad_id": adID,
		"title": ad.Title,
	})
}

func (r *adminRoutes) ToggleAdActive(c *gin.Context) {
	log := logger.Logger()

	adID, err := strconv.ParseInt(c.Param("ad_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse ad_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ad_id"})
		return
	}

	err = r.as.ToggleAdActive(c.Request.Context(), adID)
	if err != nil {
		if errors.Is(err, service.ErrAdUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
			return
		}
		log.Error("failed to toggle ad",
			zap.Error(err),
			zap.Int64("ad_id", adID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle ad"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ad_id": adID})
}

func (r *adminRoutes) GetAdStats(c *gin.Context) {
	log := logger.Logger()

	adID, err := strconv.ParseInt(c.Param("ad_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse ad_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ad_id"})
		return
	}

	stats, err := r.as.GetAdStats(c.Request.Context(), adID)
	if err != nil {
		if errors.Is(err, service.ErrAdUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ad not found"})
			return
		}
		log.Error("failed to get ad stats",
			zap.Error(err),
			zap.Int64("ad_id", adID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get ad stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ad_id":           stats.AdID,
		"total_views":     stats.TotalViews,
		"confirmed_views": stats.ConfirmedViews,
		"viewer_ids":      stats.ViewerIDs,
	})
}

func (r *adminRoutes) GetUserInfo(c *gin.Context) {
	log := logger.Logger()

	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	info, err := r.us.GetUserInfo(c.Request.Context(), telegramID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user info",
			zap.Error(err),
			zap.Int64("user_id", telegramID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"telegram_id": info.User.TelegramID,
		"username":    info.User.Username,
		"first_name":  info.User.FirstName,
		"last_name":   info.User.LastName,
		"balance":     info.User.Balance,
		"invited_by":  info.User.InvitedBy,
		"join_date":   info.User.JoinDate,
		"referrals":   info.Referrals,
	})
}
