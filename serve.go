package main

import (
	"context"
	"net/http"
	"time"

	"walkintovoid/auth"
	"walkintovoid/constants"
	"walkintovoid/database"
	"walkintovoid/mailer"
	"walkintovoid/media"
	"walkintovoid/metrics"
	"walkintovoid/site"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newMailer() mailer.Mailer {
	if cfg.Mail.Host == "" {
		logger.Warn("mail.host is not set; verification codes are only logged")
		return &mailer.LogMailer{Logger: logger}
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Timeout:  10 * time.Second,
	})
}

func newServer(ctx context.Context, store *database.Store) (*site.Server, error) {
	m := metrics.New()

	otp := auth.NewOtpService(store, newMailer(), logger, m)
	otp.TTL = cfg.OtpTTL
	otp.From = cfg.Mail.From

	srv := &site.Server{
		Store:       store,
		Otp:         otp,
		Sessions:    auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL),
		Credentials: &auth.Credentials{Store: store},
		OAuth: &auth.OAuthAdapter{
			Store:      store,
			AdminEmail: cfg.AdminEmail,
			Logger:     logger,
			Now:        time.Now,
		},
		Metrics: m,
		Views:   site.NewViewCounter(store, logger, m, constants.VIEW_INCREMENT_TIMEOUT),
		Logger:  logger,
		Options: site.Options{
			CORSOrigins:        cfg.CORSOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			RegisterPerMinute:  cfg.RegisterPerMinute,
			LoginPerMinute:     cfg.LoginPerMinute,
			SecureCookies:      cfg.SecureCookies,
			SessionTTL:         cfg.SessionTTL,
			MaxUploadBytes:     cfg.MaxUploadBytes(),
			RequestLogging:     verbose,
		},
	}

	if g := cfg.OAuth.Google; g.Enabled() {
		srv.Google = auth.NewGoogleProvider(g.ClientID, g.ClientSecret, g.RedirectURL)
		logger.Info("google sign-in enabled")
	}
	if cfg.S3.Bucket != "" {
		uploader, err := media.NewS3Uploader(ctx, media.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		srv.Uploader = uploader
		logger.Info("banner uploads enabled", zap.String("bucket", cfg.S3.Bucket))
	}
	return srv, nil
}

// purgeOtpsEvery removes expired codes until ctx is done.
func purgeOtpsEvery(ctx context.Context, otp *auth.OtpService, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := otp.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("could not purge expired codes", zap.Error(err))
			}
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := newServer(ctx, store)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", "http://localhost"+httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server stopped")
		}
		return nil
	})
	if cfg.OtpPurgeInterval > 0 {
		g.Go(func() error {
			return purgeOtpsEvery(gctx, srv.Otp, cfg.OtpPurgeInterval)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	// let in-flight view increments land before the store closes
	srv.Views.Wait()
	return err
}
