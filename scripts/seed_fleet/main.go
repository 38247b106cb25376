package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"lejio/tracking/internal/config"
)

type seedVehicle struct {
	id string
}

type seedDevice struct {
	id, externalID, vehicleID string
	active                    bool
}

type seedGeofence struct {
	id, vehicleID    string
	lat, lon, radius float64
	onEnter, onExit  bool
}

var (
	vehicles = []seedVehicle{{"veh-cph-01"}, {"veh-cph-02"}, {"veh-aar-01"}}

	devices = []seedDevice{
		{"dev-01", "356307042441013", "veh-cph-01", true},  // teltonika FMB920
		{"dev-02", "868204005647838", "veh-cph-02", true},  // ruptela FM-Eco4
		{"dev-03", "autopi-4c1d9a", "veh-aar-01", true},    // autopi TMU
		{"dev-04", "356307042441099", "", true},            // spare, not installed
		{"dev-05", "868204005640000", "veh-cph-01", false}, // replaced unit
	}

	geofences = []seedGeofence{
		{"gf-cph-depot", "veh-cph-01", 55.6761, 12.5683, 1000, true, true},
		{"gf-cph-airport", "veh-cph-01", 55.6180, 12.6508, 2500, true, false},
		{"gf-cph-depot-2", "veh-cph-02", 55.6761, 12.5683, 1000, false, true},
		{"gf-aar-harbour", "veh-aar-01", 56.1572, 10.2107, 600, true, true},
	}
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system environment variables")
	}
	cfg := config.Load()
	ctx := context.Background()

	fmt.Println("Connecting to Postgres...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Connection failed: %v\n\nRun the migrations first:\n  go run ./scripts/migrate", err)
	}
	fmt.Println("✓ Connected")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	step1Vehicles(ctx, pool)
	step2Devices(ctx, pool)
	step3Geofences(ctx, pool)
	step4DeviceCache(ctx, client)

	fmt.Println("\n✅ Fleet seeded")
	fmt.Println("   Try: curl -XPOST localhost:" + cfg.HTTPPort + "/api/v1/gps/webhook/teltonika -d '{\"ident\":\"356307042441013\",\"position.latitude\":55.6761,\"position.longitude\":12.5683}'")
}

func step1Vehicles(ctx context.Context, pool *pgxpool.Pool) {
	fmt.Println("\n── Step 1: Vehicles ────────────────────────────")
	for _, v := range vehicles {
		if _, err := pool.Exec(ctx,
			`INSERT INTO vehicles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, v.id,
		); err != nil {
			log.Fatalf("Failed to seed vehicle %s: %v", v.id, err)
		}
		fmt.Printf("  ✓ %s\n", v.id)
	}
}

func step2Devices(ctx context.Context, pool *pgxpool.Pool) {
	fmt.Println("\n── Step 2: Devices ─────────────────────────────")
	for _, d := range devices {
		var vehicleID *string
		if d.vehicleID != "" {
			vehicleID = &d.vehicleID
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO devices (id, external_id, vehicle_id, is_active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET external_id = EXCLUDED.external_id,
			    vehicle_id = EXCLUDED.vehicle_id,
			    is_active = EXCLUDED.is_active
		`, d.id, d.externalID, vehicleID, d.active)
		if err != nil {
			log.Fatalf("Failed to seed device %s: %v", d.id, err)
		}
		fmt.Printf("  ✓ %-18s → %-12s active=%v\n", d.externalID, d.vehicleID, d.active)
	}
}

func step3Geofences(ctx context.Context, pool *pgxpool.Pool) {
	fmt.Println("\n── Step 3: Geofences ───────────────────────────")
	for _, g := range geofences {
		_, err := pool.Exec(ctx, `
			INSERT INTO geofences
				(id, vehicle_id, center_latitude, center_longitude, radius_meters, is_active, alert_on_enter, alert_on_exit)
			VALUES ($1, $2, $3, $4, $5, true, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET center_latitude = EXCLUDED.center_latitude,
			    center_longitude = EXCLUDED.center_longitude,
			    radius_meters = EXCLUDED.radius_meters,
			    alert_on_enter = EXCLUDED.alert_on_enter,
			    alert_on_exit = EXCLUDED.alert_on_exit
		`, g.id, g.vehicleID, g.lat, g.lon, g.radius, g.onEnter, g.onExit)
		if err != nil {
			log.Fatalf("Failed to seed geofence %s: %v", g.id, err)
		}
		fmt.Printf("  ✓ %-16s r=%-6.0f enter=%v exit=%v\n", g.id, g.radius, g.onEnter, g.onExit)
	}
}

// Cached device records would keep serving the old assignment until they
// expire.
func step4DeviceCache(ctx context.Context, client *redis.Client) {
	fmt.Println("\n── Step 4: Device cache ────────────────────────")
	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Printf("  ! redis unreachable, skipped: %v\n", err)
		return
	}

	keys := make([]string, 0, len(devices))
	for _, d := range devices {
		keys = append(keys, "device:ext:"+d.externalID)
	}
	n, err := client.Del(ctx, keys...).Result()
	if err != nil {
		log.Fatalf("Cache invalidation failed: %v", err)
	}
	fmt.Printf("  ✓ %d cached device records cleared\n", n)
}
