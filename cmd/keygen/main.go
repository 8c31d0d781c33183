// Одноразовая утилита выдачи и отзыва API ключей.
package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/VladimirMonin/students-api-411/internal/app"
	"github.com/VladimirMonin/students-api-411/internal/models"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		user       = flag.String("user", "", "Owner label for the new key")
		role       = flag.String("role", models.RoleUser, "Role: admin, user or read_only")
		revoke     = flag.String("revoke", "", "Deactivate an existing key instead of issuing one")
	)
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	if *revoke != "" {
		if err := service.Store.DeactivateAPIKey(*revoke); err != nil {
			logger.Error.Fatalf("Failed to revoke key: %v", err)
		}
		logger.Info.Printf("API ключ отозван: %s", *revoke)
		return
	}

	if *user == "" {
		logger.Error.Fatalf("-user is required when issuing a key")
	}
	if !models.KnownRole(*role) {
		logger.Error.Fatalf("Unknown role %q, expected admin, user or read_only", *role)
	}

	key, err := app.GenerateAPIKey()
	if err != nil {
		logger.Error.Fatalf("Failed to generate key: %v", err)
	}

	record := &models.APIKey{
		Key:      key,
		Username: *user,
		Role:     *role,
		Active:   true,
	}
	if err := service.Store.CreateAPIKey(record); err != nil {
		logger.Error.Fatalf("Failed to save key: %v", err)
	}

	logger.Info.Printf("Создан API ключ для %s (%s): %s", *user, *role, key)
}
