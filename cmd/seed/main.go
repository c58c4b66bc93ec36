package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/forgo/clubhub/api/internal/config"
	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/repository"
	"github.com/forgo/clubhub/api/internal/service"
)

func main() {
	password := flag.String("password", "", "Password for every seeded account (default: SEED_PASSWORD)")
	timeout := flag.Duration("timeout", time.Minute, "Overall seeding timeout")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *password == "" {
		*password = cfg.Auth.SeedPassword
	}
	if *password == "" {
		slog.Error("seed password is empty")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepository(db)
	clubs := repository.NewClubRepository(db)
	auth := service.NewAuthService(service.AuthServiceConfig{
		Users:  users,
		Hasher: service.NewBcryptHasher(cfg.Auth.BcryptCost),
	})
	seeder := service.NewSeederService(service.SeederServiceConfig{
		Users: users,
		Clubs: clubs,
		Auth:  auth,
	})

	result, err := seeder.SeedCampus(ctx, *password)
	if err != nil {
		slog.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seeded campus",
		slog.Int("created", result.Created),
		slog.Int("existing", result.Existing),
		slog.Int64("duration_ms", result.Duration),
	)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
