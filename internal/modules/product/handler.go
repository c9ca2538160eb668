package product

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace/internal/domain"
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
	if public != nil {
		public.GET("/products/:id", h.Get)
	}

	if protected != nil {
		protected.POST("/products", h.Create)
		protected.PUT("/products/:id", h.Update)
		protected.PATCH("/products/:id/status", h.UpdateStatus)
		protected.POST("/products/:id/images", h.UploadImage)
		protected.DELETE("/products/:id", h.Delete)
		protected.POST("/products/:id/reviews", h.CreateReview)
	}
}

// Create adds a product or event to the caller's shop.
// @Summary		Create product
// @Tags		Products
// @Security	BearerAuth
// @Param		request	body	CreateProductRequest	true	"product data"
// @Success		201	{object}	domain.Product
// @Failure		403	{object}	map[string]interface{}	"caller has no shop"
// @Router		/products [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentViewer(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), middleware.CurrentViewer(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.CurrentViewer(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be active, inactive or pending")
		return
	}
	p, err := h.svc.SetStatus(c.Request.Context(), middleware.CurrentViewer(c), id, domain.ProductStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) UploadImage(c *gin.Context) {
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
	imageURL, err := h.storage.SaveImage("products", fh)
	if err != nil {
		status, code := upload.HTTPStatus(err)
		response.Error(c, status, code, err.Error())
		return
	}

	p, err := h.svc.AddImage(c.Request.Context(), viewer, id, imageURL)
	if err != nil {
		h.storage.Remove(imageURL)
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.svc.Delete(c.Request.Context(), middleware.CurrentViewer(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	for _, img := range p.Images {
		h.storage.Remove(img)
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Product deleted"})
}

func (h *Handler) CreateReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rating must be between 1 and 5")
		return
	}
	p, err := h.svc.AddReview(c.Request.Context(), middleware.CurrentViewer(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid product id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		response.Error(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, ErrNoShop):
		response.Error(c, http.StatusForbidden, "NO_SHOP", "Create a shop before adding products")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only manage your own products")
	case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidDates):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrOwnProduct):
		response.Error(c, http.StatusForbidden, "OWN_PRODUCT", "You cannot review your own product")
	case errors.Is(err, ErrAlreadyReviewed):
		response.Error(c, http.StatusConflict, "ALREADY_REVIEWED", "You already reviewed this product")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
