// cmd/seed/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table before migrating")
	hash := flag.String("hash", "", "print the bcrypt hash of a password and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(cfg)

	if *hash != "" {
		if err := printHash(cfg, *hash); err != nil {
			log.WithError(err).Fatal("failed to hash password")
		}
		return
	}

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	migration := postgres.NewMigration(db.GetDB(), log)
	if *reset {
		if err := migration.DropAllTables(); err != nil {
			log.WithError(err).Fatal("failed to drop tables")
		}
	}
	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Fatal("index creation failed")
	}
	if err := migration.SeedInitialData(); err != nil {
		log.WithError(err).Fatal("data seeding failed")
	}
}

// printHash hashes password with the configured cost and checks the result
// before printing it, for use in hand-written seed SQL.
func printHash(cfg *config.Config, password string) error {
	passwords := auth.NewPasswordManager(cfg)

	hashed, err := passwords.HashPassword(password)
	if err != nil {
		return err
	}
	if err := passwords.VerifyPassword(password, hashed); err != nil {
		return fmt.Errorf("hash verification failed: %w", err)
	}

	_, err = fmt.Fprintln(os.Stdout, hashed)
	return err
}
