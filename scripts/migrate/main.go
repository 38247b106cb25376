package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"lejio/tracking/internal/config"
	"lejio/tracking/internal/store"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.Load()

	if *down {
		fmt.Println("Rolling back schema...")
		if err := store.MigrateDown(cfg.MigrationURL()); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		fmt.Println("✓ Schema dropped")
		return
	}

	fmt.Println("Applying migrations...")
	if err := store.Migrate(cfg.MigrationURL()); err != nil {
		log.Fatalf("Migration failed: %v\n\nMake sure Postgres is running:\n  docker-compose up -d timescaledb", err)
	}
	fmt.Println("✓ Migrations applied")

	verify(context.Background(), cfg)

	fmt.Println("\n✅ Database ready")
	fmt.Println("   Run next: go run ./scripts/seed_fleet")
}

func verify(ctx context.Context, cfg *config.Config) {
	fmt.Println("\n── Verification ────────────────────────────────")

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer pool.Close()

	tables := []string{"vehicles", "devices", "geofences", "gps_positions", "geofence_alerts"}
	for _, table := range tables {
		var exists bool
		err := pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&exists)
		if err != nil || !exists {
			log.Fatalf("Table %s was not created: %v", table, err)
		}
		fmt.Printf("  ✓ table: %s\n", table)
	}

	var indexCount int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM pg_indexes
		WHERE tablename = ANY($1)
		AND indexname LIKE 'idx_%'
	`, tables).Scan(&indexCount)
	if err != nil {
		log.Fatalf("Index check failed: %v", err)
	}
	fmt.Printf("  ✓ indexes: %d\n", indexCount)
}
