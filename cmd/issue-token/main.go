package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/forgo/clubhub/api/internal/config"
	"github.com/forgo/clubhub/api/internal/database"
	"github.com/forgo/clubhub/api/internal/model"
	"github.com/forgo/clubhub/api/internal/repository"
	"github.com/forgo/clubhub/api/internal/service"
	"github.com/forgo/clubhub/api/pkg/jwt"
)

func main() {
	name := flag.String("name", "PR Council Member", "Account name")
	roll := flag.String("roll", "", "Roll number (students)")
	club := flag.String("club", "PR COUNCIL", "Club name (club heads and PR council)")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
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
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nStart the server once in development to generate keys\n")
		os.Exit(1)
	}

	users := repository.NewUserRepository(db)
	var user *model.User
	if *roll != "" {
		user, err = users.GetStudent(ctx, *name, *roll)
	} else {
		user, err = users.GetCouncilMember(ctx, *name, *club)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error looking up user: %v\n", err)
		os.Exit(1)
	}
	if user == nil {
		fmt.Fprintf(os.Stderr, "No account named %q; run the seed command first\n", *name)
		os.Exit(1)
	}

	tokens := service.NewTokenService(service.TokenServiceConfig{JWTService: jwtService, Users: users})
	issued, err := tokens.Issue(user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"token":      issued.Token,
			"token_type": issued.TokenType,
			"expires_in": issued.ExpiresIn,
			"user_id":    user.ID,
			"role":       user.Role,
		})
		return
	}

	expires := time.Now().Add(time.Duration(issued.ExpiresIn) * time.Second)
	fmt.Println("Session Token Issued")
	fmt.Println("====================")
	fmt.Printf("User ID:  %s\n", user.ID)
	fmt.Printf("Name:     %s\n", user.Name)
	fmt.Printf("Role:     %s\n", user.Role)
	fmt.Printf("Expires:  %s\n", expires.Format(time.RFC3339))
	fmt.Println()
	fmt.Println(issued.Token)
	fmt.Println()
	fmt.Printf("  curl -H 'Authorization: Bearer %s...' http://localhost:%s/v1/auth/verify-token\n", issued.Token[:32], cfg.Server.Port)
}
