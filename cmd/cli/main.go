package main

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/lightera/bundokai/internal/config"
	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/pkg/logger"
	"github.com/lightera/bundokai/pkg/pg"
)

// defaultCatalog is what the stand distributes. Seeding is idempotent, so
// re-running the cli never duplicates items.
var defaultCatalog = []*model.DeliveryItem{
	{Name: "Cesta Natalina", Category: model.CategoryBasicBasket, InitialStock: 0, CurrentStock: 0},
	{Name: "Brinquedo Infantil", Category: model.CategoryToys, InitialStock: 0, CurrentStock: 0},
	{Name: "Kit Material Escolar", Category: model.CategorySchoolSupplies, InitialStock: 0, CurrentStock: 0},
	{Name: "Kit Festa", Category: model.CategoryParty, InitialStock: 0, CurrentStock: 0},
}

func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
	}
	// main.go --dir=./migrations [--seed]
	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	err = pg.Migrate(pgConf, getMigrationPath())
	if err != nil {
		logger.Error("migration: error running migrations", "error", err)
		return
	}

	if slices.Contains(os.Args, "--seed") {
		seedCatalog(pgConf)
	}
}

func seedCatalog(pgConf pg.Config) {
	db, err := pg.CreateReadWrite(pgConf, pgConf, false)
	if err != nil {
		logger.Error("seed: failed connecting to pg", "error", err)
		return
	}

	repo := repository.NewDeliveryRepository(db)
	created, err := repo.SeedItems(context.Background(), defaultCatalog)
	if err != nil {
		logger.Error("seed: error seeding catalog", "error", err)
		return
	}
	logger.Info("seed: catalog ready", "created", created)
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open(".env"); err != nil {
		logger.Error("failed to open the passed env file, got error" + err.Error())
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--dir=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed migrations dir, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open("./migrations"); err != nil {
		logger.Error("failed to open the default migrations dir, got error" + err.Error())
		return ""
	}
	return "./migrations"
}
