// Command seeduser creates a login for the shop. Users are never created
// over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Skotchmaster/ecommerce/internal/config"
	"github.com/Skotchmaster/ecommerce/internal/logging"
	"github.com/Skotchmaster/ecommerce/internal/mykafka"
	"github.com/Skotchmaster/ecommerce/internal/repo"
	"github.com/Skotchmaster/ecommerce/internal/service"
)

func main() {
	username := flag.String("username", "", "login name")
	password := flag.String("password", "", "password; falls back to SEED_PASSWORD")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(logging.New(cfg.LogLevel).With("service", "seeduser"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	events := mykafka.New(cfg.KafkaBrokers)
	defer events.Close()

	svc := &service.AuthService{Repo: repo.New(db), Events: events}
	user, err := svc.CreateUser(ctx, *username, *password)
	switch {
	case errors.Is(err, service.ErrConflict):
		fmt.Fprintf(os.Stderr, "user %q already exists\n", *username)
		os.Exit(1)
	case err != nil:
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("created user %q with id %d\n", user.Username, user.ID)
}
