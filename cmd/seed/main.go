package main

import (
	"fmt"
	"math/rand"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/domain"
	"marketplace/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init("marketplace-seed", true)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("DB connection failed")
	}

	logger.Info().Msg("Running migrations...")
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	if err := db.Transaction(seed); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	logger.Info().Msg("Seed completed")
}

func seed(tx *gorm.DB) error {
	rng := rand.New(rand.NewSource(42))

	// Cleanup old data (children first)
	logger.Info().Msg("Cleaning old data...")
	for _, table := range []string{"reviews", "products", "shops", "password_reset_tokens", "verification_codes", "users"} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}

	// ================== USERS ==================
	logger.Info().Msg("Creating users...")

	admin, err := createUser(tx, "admin@marketplace.ma", "admin123", "Administrator", domain.RoleAdmin, "")
	if err != nil {
		return err
	}
	logger.Info().Str("email", admin.Email).Msg("admin created (password admin123)")

	customers := make([]*domain.User, 0, 4)
	for i, name := range []string{"Salma Idrissi", "Omar Benali", "Nadia Tazi", "Karim Alaoui"} {
		u, err := createUser(tx, fmt.Sprintf("customer%d@marketplace.ma", i+1), "customer123", name, domain.RoleCustomer, fmt.Sprintf("6%08d", 10000000+i))
		if err != nil {
			return err
		}
		customers = append(customers, u)
	}

	// ================== SHOPS ==================
	logger.Info().Msg("Creating sellers and shops...")
	shopSeeds := []struct {
		owner, shop, city, zip string
		status                 domain.ShopStatus
		verified               bool
	}{
		{"Hamza Chraibi", "Atlas Crafts", "Marrakech", "40000", domain.ShopApproved, true},
		{"Imane Berrada", "Rif Ceramics", "Chefchaouen", "91000", domain.ShopApproved, false},
		{"Yassine Fassi", "Souk Digital", "Casablanca", "20000", domain.ShopPending, false},
		{"Leila Amrani", "Argan House", "Agadir", "80000", domain.ShopRejected, false},
	}

	var shops []*domain.Shop
	for i, s := range shopSeeds {
		phone := fmt.Sprintf("7%08d", 20000000+i)
		owner, err := createUser(tx, fmt.Sprintf("seller%d@marketplace.ma", i+1), "seller123", s.owner, domain.RoleSeller, phone)
		if err != nil {
			return err
		}
		shop := &domain.Shop{
			OwnerID:     owner.ID,
			Name:        s.shop,
			Description: s.shop + " sells handmade goods from " + s.city,
			Address:     fmt.Sprintf("%d Derb Sidi Ahmed, %s", 10+i, s.city),
			Phone:       phone,
			ZipCode:     s.zip,
			Status:      s.status,
			Verified:    s.verified,
		}
		if s.status == domain.ShopRejected {
			shop.RejectReason = "Missing business address proof"
		}
		if err := tx.Omit("Owner").Create(shop).Error; err != nil {
			return err
		}
		shops = append(shops, shop)
	}

	// ================== PRODUCTS ==================
	logger.Info().Msg("Creating products and reviews...")
	names := []string{"Berber rug", "Tagine pot", "Leather pouf", "Brass lantern", "Argan oil", "Ceramic bowl"}
	for _, shop := range shops {
		for j := 0; j < 3; j++ {
			price := float64(100 + rng.Intn(900))
			p := &domain.Product{
				ShopID:        shop.ID,
				Kind:          domain.KindProduct,
				Name:          names[(int(shop.ID)+j)%len(names)],
				Description:   "Traditional Moroccan craftsmanship",
				Category:      "crafts",
				OriginalPrice: price,
				Stock:         rng.Intn(20),
				SoldOut:       rng.Intn(50),
				Status:        domain.ProductActive,
				Images:        []string{},
			}
			if j == 0 {
				p.DiscountPrice = price * 0.8
			}
			if j == 2 {
				p.Status = domain.ProductInactive
			}
			if err := tx.Omit("Reviews").Create(p).Error; err != nil {
				return err
			}

			sum := 0
			for k, c := range customers[:1+rng.Intn(len(customers))] {
				rating := 3 + (k+j)%3
				sum += rating
				if err := tx.Omit("User").Create(&domain.Review{
					ProductID: p.ID,
					UserID:    c.ID,
					Rating:    rating,
					Comment:   "Great quality",
				}).Error; err != nil {
					return err
				}
				p.Ratings = float64(sum) / float64(k+1)
			}
			if err := tx.Model(p).Update("ratings", p.Ratings).Error; err != nil {
				return err
			}
		}

		start := time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour)
		end := start.Add(48 * time.Hour)
		event := &domain.Product{
			ShopID:        shop.ID,
			Kind:          domain.KindEvent,
			Name:          shop.Name + " open workshop",
			OriginalPrice: 150,
			Stock:         30,
			Status:        domain.ProductActive,
			Images:        []string{},
			StartDate:     &start,
			EndDate:       &end,
		}
		if err := tx.Omit("Reviews").Create(event).Error; err != nil {
			return err
		}
	}

	logger.Info().Int("customers", len(customers)).Int("shops", len(shops)).Msg("demo data ready")
	return nil
}

func createUser(tx *gorm.DB, email, password, name string, role domain.UserRole, phone string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		Name:          name,
		Phone:         phone,
		EmailVerified: true,
		PhoneVerified: phone != "",
	}
	if err := tx.Create(u).Error; err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	return u, nil
}
