package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/forgo/clubhub/api/internal/config"
	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/handler"
	"github.com/forgo/clubhub/api/internal/middleware"
	"github.com/forgo/clubhub/api/internal/repository"
	"github.com/forgo/clubhub/api/internal/service"
	"github.com/forgo/clubhub/api/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Server.LogLevel),
	})))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	if !cfg.IsProduction() {
		if err := ensureDevKeys(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
			slog.Error("failed to prepare signing keys", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	clubRepo := repository.NewClubRepository(db)
	eventRepo := repository.NewEventRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	// Services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
		Users:      userRepo,
	})
	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:        userRepo,
		Hasher:       service.NewBcryptHasher(cfg.Auth.BcryptCost),
		TokenService: tokenService,
	})
	clubService := service.NewClubService(service.ClubServiceConfig{
		Clubs: clubRepo,
		Users: userRepo,
	})
	eventService := service.NewEventService(service.EventServiceConfig{
		Events:   eventRepo,
		Clubs:    clubRepo,
		Users:    userRepo,
		Location: cfg.Location(),
	})
	messageService := service.NewMessageService(service.MessageServiceConfig{
		Messages: messageRepo,
		Clubs:    clubService,
		Users:    userRepo,
	})
	hallOfFameService := service.NewHallOfFameService(achievementRepo)

	mux := handler.NewRouter(handler.RouterConfig{
		Auth:       authService,
		Tokens:     tokenService,
		Clubs:      clubService,
		Events:     eventService,
		Messages:   messageService,
		HallOfFame: hallOfFameService,
		DB:         db,
	})

	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("timezone", cfg.Location().String()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureDevKeys writes a fresh key pair when none exists yet
func ensureDevKeys(privatePath, publicPath string) error {
	if _, err := os.Stat(privatePath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	for _, p := range []string{privatePath, publicPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return err
		}
	}
	slog.Warn("generating development signing keys", slog.String("path", privatePath))
	return jwt.GenerateKeyPair(privatePath, publicPath)
}
