package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"balotera-backend/internal/models"
	"balotera-backend/internal/services"
)

// GamesHandler fronts the instant games: roulette, the fruit machine and
// the aviador rounds.
type GamesHandler struct {
	roulette *services.RouletteService
	fruit    *services.FruitService
	crash    *services.CrashService
	forex    *services.ForexService
}

func NewGamesHandler(roulette *services.RouletteService, fruit *services.FruitService, crash *services.CrashService, forex *services.ForexService) *GamesHandler {
	return &GamesHandler{
		roulette: roulette,
		fruit:    fruit,
		crash:    crash,
		forex:    forex,
	}
}

func spinStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrBettingClosed):
		return http.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func (h *GamesHandler) SpinRoulette(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.RouletteSpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.roulette.Spin(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(spinStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GamesHandler) RouletteHistory(c *gin.Context) {
	history, err := h.roulette.History(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	if history == nil {
		history = []models.RouletteRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// FruitBoard serves the ring layout and paytable so the client can render
// the machine.
func (h *GamesHandler) FruitBoard(c *gin.Context) {
	symbols, ring := services.FruitBoard()
	c.JSON(http.StatusOK, gin.H{
		"symbols":  symbols,
		"ring":     ring,
		"bet_unit": services.FruitBetUnit,
		"max_bet":  services.MaxFruitUnitsPerSymbol,
	})
}

func (h *GamesHandler) SpinFruit(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.FruitSpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.fruit.Spin(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(spinStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GamesHandler) FruitHistory(c *gin.Context) {
	history, err := h.fruit.History(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	if history == nil {
		history = []models.FruitRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *GamesHandler) CrashBet(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.CrashBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.crash.PlaceBet(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(spinStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GamesHandler) CrashCashout(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.CrashCashoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.crash.Cashout(c.Request.Context(), userID, req.RoundID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ForexMarket serves the price stream and the caller's open position.
func (h *GamesHandler) ForexMarket(c *gin.Context) {
	c.JSON(http.StatusOK, h.forex.Market(c.GetString("user_id")))
}

func (h *GamesHandler) ForexBet(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.ForexBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.forex.PlaceBet(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(spinStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GamesHandler) ForexHistory(c *gin.Context) {
	history, err := h.forex.History(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	if history == nil {
		history = []models.ForexRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *GamesHandler) CrashHistory(c *gin.Context) {
	history, err := h.crash.History(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	if history == nil {
		history = []models.CrashRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
