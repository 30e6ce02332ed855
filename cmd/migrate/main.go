package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/tenantauth/internal/observability"
	"github.com/hongminglow/tenantauth/internal/storage/postgres"
)

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or DATABASE_URL")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|status]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer pool.Close()

	logger := observability.NewLogger(os.Getenv("APP_ENV"))
	if err := postgres.Migrate(ctx, pool, flag.Arg(0), logger); err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
