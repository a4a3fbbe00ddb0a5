// Command seeduser creates or refreshes a demo back-office account holding
// every permission and prints a development access token for it.
// Usage: go run ./cmd/seeduser [-username admin] [-ttl 8h]
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/config"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/infra"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/middleware"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var allPermissions = []string{
	model.PermPurchaseOrderManage,
	model.PermPurchaseOrderApprove,
	model.PermInventoryManage,
	model.PermOrderSell,
	model.PermOrderCancel,
}

func main() {
	username := flag.String("username", "admin", "account username")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Fatal().Msg("refusing to seed a demo account in production")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set to sign the token")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	account := model.Account{
		Username: *username,
		FullName: "Demo Administrator",
		Role:     "administrator",
		Active:   true,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "role", "active", "updated_at"}),
		}).Create(&account).Error; err != nil {
			return err
		}
		// ON CONFLICT does not return the existing id
		if err := tx.Where("username = ?", *username).First(&account).Error; err != nil {
			return err
		}
		perms := make([]model.AccountPermission, 0, len(allPermissions))
		for _, p := range allPermissions {
			perms = append(perms, model.AccountPermission{AccountID: account.ID, Permission: p})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&perms).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed account")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.JWTClaims{
		AccountID:   account.ID.String(),
		Username:    account.Username,
		Role:        account.Role,
		Permissions: allPermissions,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(*ttl)),
		},
	})
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}

	log.Info().Str("account_id", account.ID.String()).Str("username", account.Username).Msg("demo account ready")
	fmt.Println(signed)
}
