package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"TG_adrewards/internal/api"
	"TG_adrewards/internal/middleware"
	"TG_adrewards/internal/repository"
	"TG_adrewards/internal/service"
	"TG_adrewards/pkg/auth"
	"TG_adrewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	userService := service.NewUserService(repo, cfg.Rewards.ReferralBonus)
	adService := service.NewAdService(repo, service.SystemClock())

	if err := adService.SeedCatalog(context.Background(), cfg.AdCatalog()); err != nil {
		zapLogger.Fatal("Failed to seed ad catalog", zap.Error(err))
	}

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authz := middleware.NewAuthorization(cfg.TelegramAuth.AdminTelegramID)
	botUsername := resolveBotUsername(cfg.TelegramAuth.TelegramBotToken, zapLogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, telegramAuth, botUsername)
	api.NewAdRoutes(a, adService, telegramAuth)
	api.NewAdminRoutes(a, adService, userService, telegramAuth, authz)
	api.NewWSRoutes(a, userService)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}

// resolveBotUsername asks the Bot API for the bot's username once at
// startup; referral links are built from it. An empty result disables
// the links but nothing else.
func resolveBotUsername(token string, log *zap.Logger) string {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Warn("Failed to resolve bot username, referral links disabled", zap.Error(err))
		return ""
	}
	return bot.Self.UserName
}
