package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"balotera-backend/internal/models"
	"balotera-backend/internal/services"
	"balotera-backend/internal/store"
)

// AdminHandler is the back office: account listing, balance adjustments and
// the registration switch.
type AdminHandler struct {
	admin *services.AdminService
	store store.Store
}

func NewAdminHandler(admin *services.AdminService, st store.Store) *AdminHandler {
	return &AdminHandler{admin: admin, store: st}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	snap, err := h.store.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	users := make([]gin.H, 0, len(snap.Doc.Users))
	for _, a := range snap.Doc.Users {
		u := profileJSON(a)
		u["pending_count"] = len(a.PendingWagers)
		users = append(users, u)
	}

	c.JSON(http.StatusOK, gin.H{
		"allow_register": snap.Doc.AllowRegister,
		"users":          users,
	})
}

func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	var req models.AdminBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	account, err := h.admin.AdjustBalance(c.Request.Context(), req.UserID, req.Delta)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    profileJSON(account),
	})
}

func (h *AdminHandler) SetPassword(c *gin.Context) {
	var req models.AdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if err := h.admin.SetPassword(c.Request.Context(), req.UserID, req.Password); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	if err := h.admin.DeleteUser(c.Request.Context(), userID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ToggleRegister(c *gin.Context) {
	allow, err := h.admin.ToggleRegister(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"allow_register": allow,
	})
}
