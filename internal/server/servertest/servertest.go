// Package servertest runs the real API router on an httptest server backed
// by a throwaway SQLite database, for client-side tests.
package servertest

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace/internal/database"
	"marketplace/internal/domain"
	"marketplace/internal/modules/auth"
	"marketplace/internal/pkg/jwt"
	"marketplace/internal/server"
	"marketplace/internal/upload"
	"marketplace/internal/verification"
)

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

type Message struct {
	To, Subject, Body string
}

// Outbox records messages instead of delivering them. With Fail set every
// send returns an error.
type Outbox struct {
	mu   sync.Mutex
	msgs []Message
	Fail bool
}

func (o *Outbox) Send(_ context.Context, to, subject, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail {
		return errors.New("gateway unavailable")
	}
	o.msgs = append(o.msgs, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.msgs...)
}

// LastCode returns the 6-digit code from the newest message sent to "to".
func (o *Outbox) LastCode(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if o.msgs[i].To != to {
			continue
		}
		if m := codePattern.FindStringSubmatch(o.msgs[i].Body); m != nil {
			return m[1]
		}
	}
	return ""
}

type Env struct {
	Server   *httptest.Server
	DB       *gorm.DB
	JWT      *jwt.Service
	Mail     *Outbox
	WhatsApp *Outbox
	Uploads  string
}

// New starts the API and stops it when the test ends.
func New(t testing.TB) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.Connect(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &Env{
		DB:       db,
		JWT:      jwt.New("servertest-secret", time.Hour),
		Mail:     &Outbox{},
		WhatsApp: &Outbox{},
		Uploads:  filepath.Join(dir, "uploads"),
	}

	verifier := verification.NewService(verification.NewGormStore(db), env.Mail, env.WhatsApp, verification.Options{
		Pepper:         "servertest-pepper",
		CodeTTL:        10 * time.Minute,
		ResendCooldown: time.Minute,
		VerifiedWindow: 30 * time.Minute,
	})

	router := server.NewRouter(server.Deps{
		DB:       db,
		JWT:      env.JWT,
		Verifier: verifier,
		Mailer:   env.Mail,
		Storage:  upload.NewStorage(env.Uploads),
		Reset: auth.ResetOptions{
			Pepper:  "servertest-pepper",
			TTL:     time.Hour,
			URLBase: "http://localhost:3000/reset-password",
		},
	})

	env.Server = httptest.NewServer(router)
	t.Cleanup(func() {
		env.Server.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return env
}

func (e *Env) URL() string { return e.Server.URL }

// CreateUser inserts a user directly, bypassing verification.
func (e *Env) CreateUser(t testing.TB, email, password, name string, role domain.UserRole) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		Email:         email,
		PasswordHash:  string(hash),
		Name:          name,
		Role:          role,
		EmailVerified: true,
	}
	require.NoError(t, e.DB.Create(u).Error)
	return u
}

// CreateShop inserts a shop for an existing user and makes them a seller.
func (e *Env) CreateShop(t testing.TB, owner *domain.User, name string, status domain.ShopStatus) *domain.Shop {
	t.Helper()
	s := &domain.Shop{
		OwnerID:     owner.ID,
		Name:        name,
		Description: name + " description",
		Address:     "1 Avenue Hassan II, Casablanca",
		Phone:       "612345678",
		ZipCode:     "20000",
		Status:      status,
	}
	require.NoError(t, e.DB.Omit("Owner").Create(s).Error)
	require.NoError(t, e.DB.Model(&domain.User{}).Where("id = ?", owner.ID).Update("role", domain.RoleSeller).Error)
	owner.Role = domain.RoleSeller
	return s
}

// CreateProduct inserts an active product with the given review ratings.
func (e *Env) CreateProduct(t testing.TB, shopID int64, name string, price float64, ratings ...int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ShopID:        shopID,
		Kind:          domain.KindProduct,
		Name:          name,
		OriginalPrice: price,
		Stock:         5,
		Status:        domain.ProductActive,
		Images:        []string{},
	}
	require.NoError(t, e.DB.Omit("Reviews").Create(p).Error)
	for i, r := range ratings {
		reviewer := e.CreateUser(t, fmt.Sprintf("reviewer-%d-%d@example.ma", p.ID, i), "secret1", "Reviewer", domain.RoleCustomer)
		require.NoError(t, e.DB.Omit("User").Create(&domain.Review{ProductID: p.ID, UserID: reviewer.ID, Rating: r}).Error)
	}
	return p
}

// Token issues a bearer token for the user.
func (e *Env) Token(t testing.TB, u *domain.User) string {
	t.Helper()
	token, err := e.JWT.GenerateToken(u.ID, string(u.Role))
	require.NoError(t, err)
	return token
}
