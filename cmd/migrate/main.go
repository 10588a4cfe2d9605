package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"flotanet.org/internal/auth"
	"flotanet.org/internal/migrate"
	"flotanet.org/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	var (
		dsn            = flag.String("dsn", os.Getenv("FLOTANET_PG_DSN"), "PostgreSQL DSN")
		migrationsPath = flag.String("migrations", "migrations", "Path to SQL migrations")
		seedsPath      = flag.String("seeds", "migrations/seeds", "Path to SQL seeds")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or FLOTANET_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|seed|status|bootstrap-admin]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	mgr := migrate.NewManager(db, *migrationsPath, *seedsPath)

	switch flag.Arg(0) {
	case "up":
		var ran int
		ran, err = mgr.Up(ctx)
		if err == nil {
			log.Printf("applied %d migration(s)", ran)
		}
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		var ran int
		ran, err = mgr.Seed(ctx)
		if err == nil {
			log.Printf("applied %d seed(s)", ran)
		}
	case "status":
		var history []string
		history, err = mgr.Status(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	case "bootstrap-admin":
		err = bootstrapAdmin(ctx, db)
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}

// bootstrapAdmin creates the first administrator account so a fresh
// deployment has someone who can log in. Idempotent: an existing username
// is reported, not overwritten.
func bootstrapAdmin(ctx context.Context, db *sql.DB) error {
	username := os.Getenv("FLOTANET_ADMIN_USERNAME")
	password := os.Getenv("FLOTANET_ADMIN_PASSWORD")
	email := os.Getenv("FLOTANET_ADMIN_EMAIL")
	if username == "" || password == "" || email == "" {
		return errors.New("FLOTANET_ADMIN_USERNAME, FLOTANET_ADMIN_PASSWORD and FLOTANET_ADMIN_EMAIL are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	store := pg.NewStore(db)
	id, err := store.CreateIdentity(ctx, &auth.Identity{
		FullName: "Administrator",
		Username: username,
		Email:    email,
		Role:     auth.RoleAdmin,
	}, hash)
	if errors.Is(err, auth.ErrConflict) {
		log.Printf("admin %q already exists, leaving it untouched", username)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("created admin %q (id %d)", username, id)
	return nil
}
