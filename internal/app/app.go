package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/config"
	"portfolio-api/internal/database"
	"portfolio-api/internal/event"
	"portfolio-api/internal/handler"
	"portfolio-api/internal/mail"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/repository"
	"portfolio-api/internal/router"
	"portfolio-api/internal/service"
	"portfolio-api/internal/storage"
	"portfolio-api/internal/token"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	profileCache, err := cache.New(ctx, cfg.CacheDriver, cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	slog.Info("cache ready", "driver", cfg.CacheDriver)

	images, err := storage.New(ctx, storage.Config{
		Driver:      cfg.StorageDriver,
		UploadDir:   cfg.UploadDir,
		PublicURL:   cfg.PublicUploadURL,
		S3Bucket:    cfg.S3Bucket,
		S3Region:    cfg.S3Region,
		S3Endpoint:  cfg.S3Endpoint,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		S3PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		_ = profileCache.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("image storage ready", "driver", cfg.StorageDriver)

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		_ = profileCache.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	mailer := newMailer(cfg)

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	skillRepo := repository.NewSkillRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	educationRepo := repository.NewEducationRepository(pool)
	workRepo := repository.NewWorkExperienceRepository(pool)
	socialLinkRepo := repository.NewSocialLinkRepository(pool)
	blogRepo := repository.NewBlogRepository(pool)
	slog.Info("database ready")

	bus := event.NewBus()
	welcomeEvents, unsubscribe := bus.Subscribe()
	go service.NewWelcomeMailer(mailer, cfg.FrontendURL, cfg.EmailSendTimeout).Run(welcomeEvents)

	userService := service.NewUserService(userRepo, profileCache, cfg.CacheTTL, images, bus, time.Now)
	sessionService, err := service.NewSessionService(userRepo, codec, profileCache, time.Now)
	if err != nil {
		unsubscribe()
		_ = profileCache.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize session service: %w", err)
	}
	resetService := service.NewPasswordResetService(userRepo, mailer, profileCache, service.PasswordResetConfig{
		TokenTTL:    cfg.ResetTokenTTL,
		SendTimeout: cfg.EmailSendTimeout,
		FrontendURL: cfg.FrontendURL,
	}, time.Now)
	adminService := service.NewUserAdminService(userRepo, profileCache, time.Now)
	profileService := service.NewProfileService(profileRepo, images, time.Now)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin, err := userService.SeedAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			slog.Error("admin seeding failed", "error", err)
		} else if _, err := profileService.EnsureDefault(ctx, admin, cfg.DefaultProfileSlug); err != nil {
			slog.Error("default profile seeding failed", "error", err)
		}
	}

	cookie := middleware.NewSessionCookie(cfg.CookieName, cfg.CookieDomain, cfg.IsProduction(), cfg.JWTAccessTTL)
	authMiddleware := middleware.NewAuthMiddleware(sessionService, cookie)

	var metrics *middleware.Metrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = middleware.NewMetrics(reg)
	}

	var cacheCheck interface {
		Ping(ctx context.Context) error
	}
	if redisCache, ok := profileCache.(*cache.Redis); ok {
		cacheCheck = redisCache
	}

	handlers := router.Handlers{
		Auth:           handler.NewAuthHandler(userService, sessionService, resetService, cookie, cfg.MaxUploadSize),
		User:           handler.NewUserHandler(adminService),
		Profile:        handler.NewProfileHandler(profileService, cfg.DefaultProfileSlug, cfg.MaxUploadSize),
		Project:        handler.NewProjectHandler(service.NewProjectService(projectRepo, profileRepo, images, time.Now), cfg.MaxUploadSize),
		Skill:          handler.NewSkillHandler(service.NewSkillService(skillRepo, time.Now)),
		Education:      handler.NewEducationHandler(service.NewEducationService(educationRepo, profileRepo, time.Now), cfg.MaxUploadSize),
		WorkExperience: handler.NewWorkExperienceHandler(service.NewWorkExperienceService(workRepo, profileRepo, images, time.Now), cfg.MaxUploadSize),
		SocialLink:     handler.NewSocialLinkHandler(service.NewSocialLinkService(socialLinkRepo, profileRepo, time.Now)),
		Blog:           handler.NewBlogHandler(service.NewBlogService(blogRepo, profileRepo, images, time.Now), cfg.MaxUploadSize),
		Health:         handler.NewHealthHandler(db, cacheCheck, cfg.Env),
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(cfg, authMiddleware, metrics, handlers),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		ReadTimeout:       cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			bus.Close,
			func() {
				if err := profileCache.Close(); err != nil {
					slog.Warn("cache close failed", "error", err)
				}
			},
			db.Close,
		},
	}, nil
}

// newMailer logs messages instead of sending them when no SMTP credentials
// are configured.
func newMailer(cfg *config.Config) mail.Sender {
	if !cfg.EmailEnabled() {
		slog.Warn("SMTP credentials not set, emails will only be logged")
		return mail.LogSender{}
	}

	smtp := mail.NewSMTPSender(mail.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUser,
		Password:  cfg.SMTPPass,
		FromName:  cfg.SMTPFromName,
		FromEmail: cfg.SMTPFromEmail,
		Timeout:   cfg.EmailSendTimeout,
	})
	return mail.NewBreakerSender(smtp, 5, 30*time.Second)
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return runErr
}
