package main

import (
	"context"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ataleek/portal/internal/api"
	"github.com/ataleek/portal/internal/auth"
	"github.com/ataleek/portal/internal/config"
	"github.com/ataleek/portal/internal/db"
	"github.com/ataleek/portal/internal/github"
	"github.com/ataleek/portal/internal/repository"
	"github.com/ataleek/portal/internal/service"
	"github.com/ataleek/portal/pkg/logger"
)

func main() {
	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting portal")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	logger.Info("database connection established")

	transactor := db.NewPgxTransactor(pool)

	userRepo := repository.NewPgxUserRepository(pool)
	mentorRepo := repository.NewPgxMentorRepository(pool)
	solutionRepo := repository.NewPgxSolutionRepository(pool)
	deliveryRepo := repository.NewPgxDeliveryRepository(pool)

	orgClient := github.NewClient(context.Background(), cfg.AdminAccessToken)
	oauthProvider := auth.NewOAuthProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)

	userAPIFactory := func(ctx context.Context, accessToken string) service.UserAPI {
		return github.NewClient(ctx, accessToken)
	}

	webhooks := service.NewWebhookService(cfg.AdminUsername).
		WithOrgAPI(orgClient).
		WithSolutionRepo(solutionRepo).
		WithDeliveryRepo(deliveryRepo)

	portal := service.NewPortalService(cfg.Organization).
		WithOrgAPI(orgClient).
		WithUserAPIFactory(userAPIFactory).
		WithMentorRepo(mentorRepo).
		WithSolutionRepo(solutionRepo)

	authService := service.NewAuthService(cfg.SessionSecret, transactor).
		WithOAuth(oauthProvider).
		WithUserRepo(userRepo)

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name: "postgres",
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	e := echo.New()

	handler := api.NewHandler(logger).
		WithWebhookService(webhooks).
		WithPortalService(portal).
		WithAuthService(authService).
		WithHealthChecker(healthChecker)

	handler.RegisterRoutes(e)

	logger.Info("server starting", zap.String("addr", cfg.ListenAddr))
	if err = e.Start(cfg.ListenAddr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
