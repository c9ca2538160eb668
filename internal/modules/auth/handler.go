package auth

import (
	"errors"
	"net/http"

	"marketplace/internal/domain"
	"marketplace/internal/pkg/response"
	"marketplace/internal/upload"
	"marketplace/internal/verification"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
	storage *upload.Storage
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service, storage *upload.Storage) *Handler {
	return &Handler{
		service: service,
		storage: storage,
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)

		authGroup.POST("/verification/email/send", h.SendEmailCode)
		authGroup.POST("/verification/email/verify", h.VerifyEmailCode)
		authGroup.POST("/verification/phone/send", h.SendPhoneCode)
		authGroup.POST("/verification/phone/verify", h.VerifyPhoneCode)

		authGroup.POST("/password/forgot", h.ForgotPassword)
		authGroup.POST("/password/reset", h.ResetPassword)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me", h.UpdateProfile)
		userGroup.PUT("/me/password", h.ChangePassword)
		userGroup.POST("/me/avatar", h.UploadAvatar)
		userGroup.DELETE("/me", h.DeleteMe)
	}
}

// Register creates a customer account after email verification.
// @Summary		Register
// @Tags		Auth
// @Param		request	body	RegisterRequest	true	"name, email, password, optional phone and address"
// @Success		201	{object}	map[string]interface{}	"user and token"
// @Failure		400	{object}	map[string]interface{}	"validation error"
// @Failure		403	{object}	map[string]interface{}	"email not verified"
// @Failure		409	{object}	map[string]interface{}	"email already registered"
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailNotVerified):
			response.Error(c, http.StatusForbidden, "EMAIL_NOT_VERIFIED", "Please verify your email first")
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

// Login
// @Summary		Login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"email and password"
// @Success		200	{object}	map[string]interface{}	"user and token"
// @Failure		401	{object}	map[string]interface{}	"wrong email or password"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":  result.User,
		"token": result.Token,
	})
}

func (h *Handler) SendEmailCode(c *gin.Context) {
	var req SendEmailCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A valid email is required")
		return
	}
	h.sendCode(c, domain.ChannelEmail, req.Email)
}

func (h *Handler) SendPhoneCode(c *gin.Context) {
	var req SendPhoneCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A valid Moroccan mobile number is required")
		return
	}
	h.sendCode(c, domain.ChannelPhone, req.Phone)
}

func (h *Handler) VerifyEmailCode(c *gin.Context) {
	var req VerifyEmailCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and code are required")
		return
	}
	h.verifyCode(c, domain.ChannelEmail, req.Email, req.Code)
}

func (h *Handler) VerifyPhoneCode(c *gin.Context) {
	var req VerifyPhoneCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Phone and code are required")
		return
	}
	h.verifyCode(c, domain.ChannelPhone, req.Phone, req.Code)
}

func (h *Handler) sendCode(c *gin.Context, channel domain.VerificationChannel, target string) {
	result, err := h.service.SendCode(c.Request.Context(), channel, target)
	if err != nil {
		writeVerificationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) verifyCode(c *gin.Context, channel domain.VerificationChannel, target, code string) {
	if err := h.service.VerifyCode(c.Request.Context(), channel, target, code); err != nil {
		writeVerificationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A valid email is required")
		return
	}
	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeVerificationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "If the account exists, a reset link has been sent"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Token and a password of at least 6 characters are required")
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			response.Error(c, http.StatusBadRequest, "INVALID_RESET_TOKEN", "Reset link is invalid or expired")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "RESET_FAILED", "Failed to reset password")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password updated"})
}

// GetMe returns the current user, with the shop attached for sellers.
// @Summary		Current user
// @Tags		Users
// @Security	BearerAuth
// @Success		200	{object}	domain.User
// @Router		/users/me [GET]
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.GetCurrentUser(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "New password must be at least 6 characters")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), c.GetInt64("user_id"), req); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			response.Error(c, http.StatusBadRequest, "WRONG_PASSWORD", "Old password is incorrect")
			return
		}
		writeUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *Handler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile(upload.FieldName)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "An image file is required")
		return
	}

	avatarURL, err := h.storage.SaveImage("avatars", fh)
	if err != nil {
		status, code := upload.HTTPStatus(err)
		response.Error(c, status, code, err.Error())
		return
	}

	user, old, err := h.service.SetAvatar(c.Request.Context(), c.GetInt64("user_id"), avatarURL)
	if err != nil {
		h.storage.Remove(avatarURL)
		writeUserError(c, err)
		return
	}
	h.storage.Remove(old)

	response.Success(c, http.StatusOK, user)
}

func (h *Handler) DeleteMe(c *gin.Context) {
	user, err := h.service.DeleteAccount(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeUserError(c, err)
		return
	}
	h.storage.Remove(user.AvatarURL)
	response.Success(c, http.StatusOK, gin.H{"message": "Account deleted"})
}

func writeUserError(c *gin.Context, err error) {
	if errors.Is(err, ErrUserNotFound) {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
}

func writeVerificationError(c *gin.Context, err error) {
	status, code, message, ok := verification.HTTPStatus(err)
	if !ok {
		_ = c.Error(err)
	}
	response.Error(c, status, code, message)
}
