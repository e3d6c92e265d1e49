package main

import (
	"time"

	"walkintovoid/auth"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const seedAdminPassword = "password123"

func runMigrate(cmd *cobra.Command, args []string) error {
	// opening the store migrates it
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("schema is up to date")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	if cfg.AdminEmail == "" {
		return errors.New("admin_email must be set to seed (WIV_ADMIN_EMAIL)")
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	hashed, err := auth.HashPassword([]byte(seedAdminPassword))
	if err != nil {
		return errors.Wrap(err, "could not hash admin password")
	}
	res, err := store.Seed(cmd.Context(), auth.NormalizeEmail(cfg.AdminEmail), string(hashed), time.Now())
	if err != nil {
		return err
	}
	logger.Info("seeding finished",
		zap.String("admin", res.Admin.Email),
		zap.String("category", res.Category.Name),
		zap.Int("posts_created", res.Posts))
	return nil
}

func runPurgeOtps(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	otp := auth.NewOtpService(store, nil, logger, nil)
	n, err := otp.PurgeExpired(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("expired codes purged", zap.Int64("deleted", n))
	return nil
}
