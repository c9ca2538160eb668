package shop

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace/internal/middleware"
	"marketplace/internal/pkg/response"
	"marketplace/internal/upload"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc     *Service
	storage *upload.Storage
}

func NewHandler(svc *Service, storage *upload.Storage) *Handler {
	return &Handler{svc: svc, storage: storage}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	// Public routes (auth optional)
	if public != nil {
		public.GET("/shops", h.List)
		public.GET("/shops/:id", h.Get)
		public.GET("/shops/:id/products", h.Products)
	}

	// Protected routes (auth required)
	if protected != nil {
		protected.POST("/shops", h.Create)
		protected.PUT("/shops/:id", h.Update)
		protected.POST("/shops/:id/banner", h.UploadBanner)
		protected.DELETE("/shops/:id", h.Delete)
	}
}

// Create opens a pending shop for the caller.
// @Summary		Become a seller
// @Tags		Shops
// @Security	BearerAuth
// @Param		request	body	CreateShopRequest	true	"shop data, phone must be verified"
// @Success		201	{object}	CreateShopResponse
// @Failure		403	{object}	map[string]interface{}	"phone not verified"
// @Failure		409	{object}	map[string]interface{}	"shop already exists"
// @Router		/shops [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "All shop fields are required and the phone must be a Moroccan mobile number")
		return
	}

	res, err := h.svc.Create(c.Request.Context(), middleware.CurrentViewer(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) List(c *gin.Context) {
	shops, err := h.svc.ListApproved(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, shops)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	shop, err := h.svc.Get(c.Request.Context(), middleware.CurrentViewer(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop)
}

func (h *Handler) Products(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	products, err := h.svc.Products(c.Request.Context(), middleware.CurrentViewer(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, products)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	shop, err := h.svc.Update(c.Request.Context(), middleware.CurrentViewer(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, shop)
}

func (h *Handler) UploadBanner(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	viewer := middleware.CurrentViewer(c)
	if _, err := h.svc.manageable(c.Request.Context(), viewer, id); err != nil {
		writeError(c, err)
		return
	}

	fh, err := c.FormFile(upload.FieldName)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "An image file is required")
		return
	}
	bannerURL, err := h.storage.SaveImage("banners", fh)
	if err != nil {
		status, code := upload.HTTPStatus(err)
		response.Error(c, status, code, err.Error())
		return
	}

	shop, old, err := h.svc.SetBanner(c.Request.Context(), viewer, id, bannerURL)
	if err != nil {
		h.storage.Remove(bannerURL)
		writeError(c, err)
		return
	}
	h.storage.Remove(old)
	response.Success(c, http.StatusOK, shop)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	shop, err := h.svc.Delete(c.Request.Context(), middleware.CurrentViewer(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.storage.Remove(shop.BannerURL)
	response.Success(c, http.StatusOK, gin.H{"message": "Shop deleted"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid shop id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrShopNotFound):
		response.Error(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Shop not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only manage your own shop")
	case errors.Is(err, ErrPhoneNotVerified):
		response.Error(c, http.StatusForbidden, "PHONE_NOT_VERIFIED", "Please verify the shop phone number first")
	case errors.Is(err, ErrShopAlreadyExists):
		response.Error(c, http.StatusConflict, "SHOP_EXISTS", "You already have a shop")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
