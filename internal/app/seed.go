package app

import (
	"errors"
	"fmt"

	"contentgen_backend/internal/auth"
	"contentgen_backend/internal/config"
	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/models"

	"gorm.io/gorm"
)

// seedFirstUser создает первого пользователя из SEED_USER_EMAIL/SEED_USER_PASSWORD.
// В development в лог пишется токен для ручной проверки API.
func seedFirstUser(db *gorm.DB, cfg *config.Config, tokens *auth.TokenManager) error {
	email := models.NormalizeEmail(cfg.Seed.Email)
	password := cfg.Seed.Password

	if email == "" || password == "" {
		logger.Warn("SEED_USER_EMAIL or SEED_USER_PASSWORD is not set. Skipping user seeding.")
		return nil
	}

	var user models.User
	result := db.Where("email = ?", email).First(&user)
	switch {
	case result.Error == nil:
		logger.Info("Seed user already exists. Skipping creation.", "email", email)
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		user = models.User{Email: email, PasswordHash: hash}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create seed user: %w", err)
		}
		logger.Info("✅ Seed user created", "email", email, "user_id", user.ID)
	default:
		return fmt.Errorf("failed to check for seed user: %w", result.Error)
	}

	if cfg.IsDevelopment() {
		token, err := tokens.GenerateToken(user.ID, user.Email)
		if err != nil {
			return fmt.Errorf("failed to issue seed token: %w", err)
		}
		logger.Debug("Seed user token", "user_id", user.ID, "token", token)
	}
	return nil
}
