package api

import (
	"fmt"
	"net/http"
	"strconv"

	"TG_adrewards/internal/model"
	"TG_adrewards/internal/service"
	"TG_adrewards/pkg/auth"
	"TG_adrewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.TelegramAuth

	// botUsername is resolved once at startup; empty disables links.
	botUsername string
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.TelegramAuth, botUsername string) {
	r := &userRoutes{us: us, a: a, botUsername: botUsername}
	h := handler.Group("/users")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.POST("/", r.RegisterUser)
		h.GET("/:telegram_id/balance", r.GetBalance)
		h.GET("/:telegram_id/referrals", r.GetReferrals)
	}
}

type RegisterUserRequest struct {
	ReferralCode string `json:"referral_code"`
}

type RegisterUserResponse struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
}

func (r *userRoutes) RegisterUser(c *gin.Context) {
	log := logger.Logger()

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userData, exists := c.Get("telegram_user")
	if !exists {
		log.Error("telegram user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, ok := userData.(*auth.TelegramUserData)
	if !ok {
		log.Error("invalid type assertion for telegram user data")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	u := &model.User{
		TelegramID: user.ID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
	}

	err := r.us.RegisterUser(c.Request.Context(), u, req.ReferralCode)
	if err != nil {
		log.Error("failed to register user",
			zap.Error(err),
			zap.Int64("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	out := RegisterUserResponse{
		TelegramID: u.TelegramID,
		Username:   u.Username,
	}

	c.JSON(http.StatusCreated, out)
}

func (r *userRoutes) GetBalance(c *gin.Context) {
	log := logger.Logger()

	telegramID := c.Param("telegram_id")
	id, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	balance, err := r.us.GetBalance(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to get balance",
			zap.Error(err),
			zap.Int64("user_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"telegram_id": id,
		"balance":     balance,
	})
}

func (r *userRoutes) GetReferrals(c *gin.Context) {
	log := logger.Logger()

	telegramID := c.Param("telegram_id")
	id, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	count, err := r.us.CountReferrals(c.Request.Context(), id)
	if err != nil {
		log.Error("failed to count referrals",
			zap.Error(err),
			zap.Int64("user_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count referrals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"telegram_id":   id,
		"referrals":     count,
		"referral_link": r.referralLink(id),
	})
}

func (r *userRoutes) referralLink(userID int64) string {
	if r.botUsername == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=ref_%d", r.botUsername, userID)
}
