package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/star3ai/social-auth-service/internal/config"
	"github.com/star3ai/social-auth-service/internal/handler"
	"github.com/star3ai/social-auth-service/internal/service"
	"github.com/star3ai/social-auth-service/internal/tiktok"
	"github.com/star3ai/social-auth-service/internal/utils"
	"github.com/star3ai/social-auth-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	tiktokClient := tiktok.NewClient(tiktok.Config{
		ClientID:       cfg.TikTok.ClientID,
		ClientSecret:   cfg.TikTok.ClientSecret,
		RedirectURL:    cfg.TikTok.RedirectURL,
		Timeout:        cfg.TikTok.Timeout.Duration,
		AuthorizeURL:   cfg.TikTok.AuthorizeURL,
		TokenURL:       cfg.TikTok.TokenURL,
		UserInfoURL:    cfg.TikTok.UserInfoURL,
		VideoListURL:   cfg.TikTok.VideoListURL,
		PublishInitURL: cfg.TikTok.PublishInitURL,
	})

	stateCodec := utils.NewStateCodec(cfg.OAuth.StateSecret, cfg.OAuth.StateTTL.Duration)
	replayGuard := service.NewRedisReplayGuard(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)
	auditLogger := observability.NewAuditLogger(infra.Logger())

	notifier := service.NewNoopNotifier()
	if cfg.UserService.CreateUserURL != "" {
		notifier = service.NewHTTPUserNotifier(cfg.UserService.CreateUserURL, cfg.UserService.Timeout.Duration)
	}

	accountService := service.NewAccountService(infra.Store(), tiktokClient, infra.Logger())

	oauthService := service.NewOAuthService(
		tiktokClient,
		stateCodec,
		replayGuard,
		accountService,
		notifier,
		infra.Logger(),
		auditLogger,
		service.RedirectConfig{
			WebSuccessURL: cfg.OAuth.WebSuccessURL,
			AppSuccessURL: cfg.OAuth.AppSuccessURL,
			WebErrorURL:   cfg.OAuth.WebErrorURL,
			AppErrorURL:   cfg.OAuth.AppErrorURL,
		},
		cfg.Identity.Default,
		cfg.OAuth.StateTTL.Duration,
	)

	authHandler := handler.NewAuthHandler(oauthService)
	socialHandler := handler.NewSocialHandler(accountService)

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, socialHandler, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	socialHandler *handler.SocialHandler,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	auth := router.Group("/auth")
	{
		auth.GET("/:provider/login",
			handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
			authHandler.Login,
		)
		auth.GET("/:provider/callback", authHandler.Callback)
	}

	api := router.Group("/api")
	api.Use(handler.IdentityMiddleware(cfg.Identity.Default))
	{
		api.GET("/:provider/accounts", socialHandler.GetAccounts)
		api.GET("/:provider/videos/:provider_id", socialHandler.GetVideos)
		api.POST("/:provider/video/create", socialHandler.CreateVideo)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("store_backend", a.config.Store.Backend),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
