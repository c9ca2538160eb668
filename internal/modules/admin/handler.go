package admin

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects a group already guarded by JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// users moderation
	admin.GET("/users", h.GetUsers)
	admin.DELETE("/users/:id", h.DeleteUser)

	// sellers moderation, :id is the shop id
	admin.GET("/sellers", h.GetSellers)
	admin.POST("/sellers/:id/approve", h.ApproveSeller)
	admin.POST("/sellers/:id/reject", h.RejectSeller)
	admin.DELETE("/sellers/:id", h.DeleteSeller)

	admin.PATCH("/shops/:id/badge", h.SetBadge)
}

// GetUsers returns every user for the admin list.
// @Summary		List users
// @Tags		Admin
// @Security	BearerAuth
// @Success		200	{array}	domain.User
// @Router		/admin/users [GET]
func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "User deleted"})
}

// GetSellers returns every shop with its owner.
// @Summary		List sellers
// @Tags		Admin
// @Security	BearerAuth
// @Success		200	{array}	domain.Shop
// @Router		/admin/sellers [GET]
func (h *Handler) GetSellers(c *gin.Context) {
	shops, err := h.service.ListSellers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, shops)
}

func (h *Handler) ApproveSeller(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	shop, err := h.service.ApproveSeller(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop)
}

func (h *Handler) RejectSeller(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RejectSellerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	shop, err := h.service.RejectSeller(c.Request.Context(), id, c.GetInt64("user_id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop)
}

func (h *Handler) DeleteSeller(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSeller(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Seller deleted"})
}

func (h *Handler) SetBadge(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req BadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "verified is required")
		return
	}
	shop, err := h.service.SetBadge(c.Request.Context(), id, *req.Verified)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrShopNotFound):
		response.Error(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Shop not found")
	case errors.Is(err, ErrCannotDeleteMe):
		response.Error(c, http.StatusBadRequest, "CANNOT_DELETE_SELF", "You cannot delete your own account from the admin panel")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
