package server

import (
	"context"
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/middleware"
	"marketplace/internal/modules/admin"
	"marketplace/internal/modules/auth"
	"marketplace/internal/modules/notification"
	"marketplace/internal/modules/product"
	"marketplace/internal/modules/shop"
	"marketplace/internal/pkg/jwt"
	"marketplace/internal/pkg/response"
	"marketplace/internal/pkg/validator"
	"marketplace/internal/repository"
	"marketplace/internal/upload"
	"marketplace/internal/verification"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the router needs. cmd/api builds it from config,
// tests build it by hand.
type Deps struct {
	DB          *gorm.DB
	JWT         *jwt.Service
	Verifier    *verification.Service
	Mailer      verification.Sender
	Storage     *upload.Storage
	Reset       auth.ResetOptions
	CORSOrigins []string
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(d Deps) *gin.Engine {
	validator.RegisterGinRules()

	userRepo := repository.NewUserRepository(d.DB)
	shopRepo := repository.NewShopRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	resetRepo := repository.NewResetTokenRepository(d.DB)

	notifService := notification.NewService(userRepo, d.Mailer)

	authService := auth.NewService(userRepo, resetRepo, shopRepo, d.Verifier, d.JWT, d.Mailer, d.Reset)
	authHandler := auth.NewHandler(authService, d.Storage)

	shopService := shop.NewService(shopRepo, productRepo, d.Verifier, d.JWT)
	shopHandler := shop.NewHandler(shopService, d.Storage)

	productService := product.NewService(productRepo, shopRepo, notifService)
	productHandler := product.NewHandler(productService, d.Storage)

	adminService := admin.NewService(userRepo, shopRepo, notifService)
	adminHandler := admin.NewHandler(adminService)

	r := gin.New()
	r.MaxMultipartMemory = upload.MaxImageSize
	r.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.CORS(d.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static(upload.PublicPrefix, d.Storage.BaseDir())

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(middleware.OptionalJWTAuth(d.JWT))
		authHandler.RegisterPublicRoutes(public)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))
		authHandler.RegisterProtectedRoutes(protected)

		shopHandler.RegisterRoutes(public, protected)
		productHandler.RegisterRoutes(public, protected)

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.JWTAuth(d.JWT), middleware.RequireRole(string(domain.RoleAdmin)))
		adminHandler.RegisterRoutes(adminGroup)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return r
}

// NewDeps builds the production dependencies from configuration: the
// verification store (Redis when configured, the database otherwise) and
// the message senders.
func NewDeps(ctx context.Context, cfg *config.Config, db *gorm.DB) (Deps, error) {
	var store verification.Store = verification.NewGormStore(db)
	if cfg.Redis.Addr != "" {
		client, err := verification.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return Deps{}, err
		}
		store = verification.NewRedisStore(client)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("verification codes stored in redis")
	}

	var mailer verification.Sender = verification.NewConsoleSender("email")
	if !cfg.DevConsoleDelivery && cfg.Mail.WebhookURL != "" {
		mailer = verification.NewWebhookMailer(cfg.Mail.WebhookURL, cfg.Mail.From)
	}

	var whatsapp verification.Sender = verification.NewConsoleSender("whatsapp")
	if cfg.WhatsApp.APIURL != "" {
		whatsapp = verification.NewWhatsAppSender(cfg.WhatsApp.APIURL, cfg.WhatsApp.Token)
	}

	verifier := verification.NewService(store, mailer, whatsapp, verification.Options{
		Pepper:         cfg.Auth.VerificationCodePepper,
		CodeTTL:        cfg.Auth.VerifyCodeTTL,
		ResendCooldown: cfg.Auth.VerifyResendCooldown,
		VerifiedWindow: cfg.Auth.VerifiedWindow,
	})

	return Deps{
		DB:       db,
		JWT:      jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL),
		Verifier: verifier,
		Mailer:   mailer,
		Storage:  upload.NewStorage(cfg.UploadsDir),
		Reset: auth.ResetOptions{
			Pepper:  cfg.Auth.VerificationCodePepper,
			TTL:     cfg.Auth.ResetTokenTTL,
			URLBase: cfg.Auth.ResetURLBase,
		},
		CORSOrigins: cfg.CORSAllowedOrigins,
	}, nil
}
