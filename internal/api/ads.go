package api

import (
	"errors"
	"net/http"
	"strconv"

	"TG_adrewards/internal/service"
	"TG_adrewards/pkg/auth"
	"TG_adrewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type adRoutes struct {
	as service.AdServiceI
}

func NewAdRoutes(handler *gin.RouterGroup, as service.AdServiceI, a *auth.TelegramAuth) {
	r := &adRoutes{as: as}
	h := handler.Group("/ads")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/", r.ListAds)
		h.POST("/:ad_id/views", r.StartView)
		h.POST("/views/:view_id/confirm", r.ConfirmView)
	}
}

func telegramUserID(c *gin.Context) (int64, bool) {
	userData, exists := c.Get("telegram_user")
	if !exists {
		return 0, false
	}
	user, ok := userData.(*auth.TelegramUserData)
	if !ok {
		return 0, false
	}
	return user.ID, true
}

func (r *adRoutes) ListAds(c *gin.Context) {
	log := logger.Logger()

	userID, ok := telegramUserID(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	ads, err := r.as.ListAdsWithEligibility(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to list ads",
			zap.Error(err),
			zap.Int64("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list ads"})
		return
	}

	out := make([]gin.H, len(ads))
	for i, ad := range ads {
		out[i] = gin.H{
			"ad_id":           ad.AdID,
			"title":           ad.Title,
			"reward":          ad.Reward,
			"eligible":        ad.Eligible,
			"remaining_hours": ad.RemainingHours,
		}
	}

	c.JSON(http.StatusOK, out)
}

func (r *adRoutes) StartView(c *gin.Context) {
	log := logger.Logger()

	userID, ok := telegramUserID(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	adID, err := strconv.ParseInt(c.Param("ad_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse ad_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ad_id"})
		return
	}

	viewID, err := r.as.StartView(c.Request.Context(), userID, adID)
	if err != nil {
		var cooldownErr *service.CooldownActiveError
		switch {
		case errors.As(err, &cooldownErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":           "cooldown active",
				"remaining_hours": cooldownErr.RemainingHours,
			})
		case errors.Is(err, service.ErrAdUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "ad is not available"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			log.Error("failed to start ad view",
				zap.Error(err),
				zap.Int64("user_id", userID),
				zap.Int64("ad_id", adID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start ad view"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"view_id": viewID,
		"ad_id":   adID,
	})
}

func (r *adRoutes) ConfirmView(c *gin.Context) {
	log := logger.Logger()

	userID, ok := telegramUserID(c)
	if !ok {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	viewID, err := strconv.ParseInt(c.Param("view_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse view_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid view_id"})
		return
	}

	reward, err := r.as.ConfirmView(c.Request.Context(), viewID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrViewNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no pending view found"})
		case errors.Is(err, service.ErrAdRemoved):
			c.JSON(http.StatusGone, gin.H{"error": "ad no longer exists"})
		default:
			log.Error("failed to confirm ad view",
				zap.Error(err),
				zap.Int64("user_id", userID),
				zap.Int64("view_id", viewID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm ad view"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view_id": viewID,
		"reward":  reward,
	})
}
