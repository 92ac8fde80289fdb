package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dugout/internal/dispatcher"
	"dugout/internal/models"
	"dugout/internal/parser"
)

const apologyMsg = "😅 Something went wrong on my end. Try again in a minute!"

// Sender delivers the bot's response back to the group.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// WebhookHandler receives GroupMe callbacks and runs the
// parse-dispatch-respond path synchronously per request.
type WebhookHandler struct {
	Parser     *parser.Parser
	Dispatcher *dispatcher.Dispatcher
	Sender     Sender
	Logger     *zap.Logger
}

func (h *WebhookHandler) Register(r *gin.Engine) {
	r.POST("/webhook", h.webhook)
}

func (h *WebhookHandler) webhook(c *gin.Context) {
	var msg models.Inbound
	if err := c.ShouldBindJSON(&msg); err != nil {
		h.Logger.Warn("webhook payload malformed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}

	// Never respond to our own (or any bot's) messages.
	if msg.SenderType == "bot" {
		c.Status(http.StatusOK)
		return
	}
	if !h.Parser.Addressed(msg) {
		c.Status(http.StatusOK)
		return
	}

	requestID := requestIDFrom(c)
	log := h.Logger.With(zap.String("request_id", requestID))

	cmd := h.Parser.Parse(msg)
	log.Info("command parsed",
		zap.Int("kind", int(cmd.Kind)),
		zap.String("user", msg.UserID))

	reply, err := h.Dispatcher.Dispatch(c.Request.Context(), cmd, dispatcher.Caller{
		UserID: msg.UserID,
		Name:   msg.Name,
	})
	if err != nil {
		log.Error("dispatch failed", zap.Error(err))
		reply = apologyMsg
	}

	if reply != "" {
		if err := h.Sender.Send(c.Request.Context(), reply); err != nil {
			log.Error("reply send failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "send failed"})
			return
		}
	}
	c.Status(http.StatusOK)
}

// RequestIDMiddleware tags each request with an ID for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
