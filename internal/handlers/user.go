package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"balotera-backend/internal/models"
	"balotera-backend/internal/services"
)

type UserHandler struct {
	auth *services.AuthService
}

func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// profileJSON is the account as clients see it. The stored password never
// leaves the server.
func profileJSON(a *models.Account) gin.H {
	return gin.H{
		"id":                 a.ID,
		"username":           a.Username,
		"role":               a.Role,
		"country":            a.Country,
		"currency":           a.Currency,
		"created_at":         a.CreatedAt,
		"balance":            a.Balance,
		"pending_bets":       a.PendingWagers,
		"payments":           a.Payments,
		"last_credit_notice": a.LastCreditNotice,
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")

	account, err := h.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profileJSON(account)})
}

func (h *UserHandler) MarkNoticeSeen(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.auth.MarkNoticeSeen(c.Request.Context(), userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
