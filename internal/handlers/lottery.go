package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"balotera-backend/internal/models"
	"balotera-backend/internal/services"
)

type LotteryHandler struct {
	lottery *services.LotteryService
}

func NewLotteryHandler(lottery *services.LotteryService) *LotteryHandler {
	return &LotteryHandler{lottery: lottery}
}

// GetDraw reports the cycle in progress and the last revealed draw.
func (h *LotteryHandler) GetDraw(c *gin.Context) {
	c.JSON(http.StatusOK, h.lottery.CurrentDrawInfo())
}

func (h *LotteryHandler) PlaceBet(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	wager, err := h.lottery.PlaceBet(c.Request.Context(), userID, &req)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, services.ErrBettingClosed):
			status = http.StatusConflict
		case errors.Is(err, services.ErrInsufficientBalance):
			status = http.StatusPaymentRequired
		case errors.Is(err, services.ErrUserNotFound):
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bet":     wager,
	})
}

func (h *LotteryHandler) GetPending(c *gin.Context) {
	userID := c.GetString("user_id")

	pending, err := h.lottery.Pending(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pending bets"})
		return
	}
	if pending == nil {
		pending = []models.PendingWager{}
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (h *LotteryHandler) GetHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	history, err := h.lottery.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	if history == nil {
		history = []models.WagerRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
