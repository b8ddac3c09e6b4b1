package api

import (
	"net/http"
	"strconv"
	"time"

	"TG_adrewards/internal/service"
	"TG_adrewards/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const balancePushInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsRoutes struct {
	us service.UserServiceI
}

func NewWSRoutes(handler *gin.RouterGroup, us service.UserServiceI) {
	r := &wsRoutes{us: us}
	handler.GET("/ws/:telegram_id", r.handleWebSocket)
}

type balanceMessage struct {
	Type       string  `json:"type"`
	TelegramID int64   `json:"telegram_id"`
	Balance    float64 `json:"balance"`
	Referrals  int     `json:"referrals"`
}

// handleWebSocket pushes the user's balance and referral count to the
// client on a fixed interval so the mini-app can refresh without polling.
func (r *wsRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log.Info("balance feed connected",
		zap.String("session_id", sessionID),
		zap.Int64("telegram_id", telegramID))

	r.balanceLoop(c, conn, telegramID, sessionID)
}

func (r *wsRoutes) balanceLoop(c *gin.Context, conn *websocket.Conn, telegramID int64, sessionID string) {
	log := logger.Logger()

	ticker := time.NewTicker(balancePushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			balance, err := r.us.GetBalance(c.Request.Context(), telegramID)
			if err != nil {
				log.Error("failed to get balance for feed",
					zap.Error(err),
					zap.String("session_id", sessionID),
					zap.Int64("telegram_id", telegramID))
				return
			}

			referrals, err := r.us.CountReferrals(c.Request.Context(), telegramID)
			if err != nil {
				log.Error("failed to count referrals for feed",
					zap.Error(err),
					zap.String("session_id", sessionID),
					zap.Int64("telegram_id", telegramID))
				return
			}

			out, err := json.Marshal(balanceMessage{
				Type:       "balance",
				TelegramID: telegramID,
				Balance:    balance,
				Referrals:  referrals,
			})
			if err != nil {
				log.Error("failed to marshal balance message", zap.Error(err))
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Info("balance feed closed",
						zap.String("session_id", sessionID),
						zap.Error(err))
				}
				return
			}
		}
	}
}
