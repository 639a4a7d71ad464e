// Command seed fills the database with demo job-seeker data and prints bearer
// tokens for the seeded users.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"jobcrm/internal/config"
	"jobcrm/internal/database"
	"jobcrm/internal/middleware"
	"jobcrm/internal/seed"
)

func main() {
	users := flag.Int("users", 10, "number of random job seekers to create")
	apps := flag.Int("applications", 5, "applications per random user")
	events := flag.Int("events", 3, "events per random application")
	firstUser := flag.Uint("first-user", 100, "user id of the first random job seeker")
	fixtures := flag.String("fixtures", "", "YAML fixtures file; \"demo\" loads the built-in set")
	clean := flag.Bool("clean", false, "delete existing domain rows first")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed tokens")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db)

	if *clean {
		if err := s.Clear(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var userIDs []uint
	if *fixtures != "" {
		var fx *seed.Fixtures
		if *fixtures == "demo" {
			fx, err = seed.DemoFixtures()
		} else {
			fx, err = seed.LoadFixturesFile(*fixtures)
		}
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		if _, err := s.ApplyFixtures(ctx, fx); err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		for _, p := range fx.Profiles {
			userIDs = append(userIDs, p.UserID)
		}
	}

	if *users > 0 {
		opts := seed.Options{
			Users:               *users,
			ApplicationsPerUser: *apps,
			EventsPerApp:        *events,
			FirstUserID:         uint(*firstUser),
		}
		if _, err := s.SeedRandom(ctx, opts); err != nil {
			log.Fatalf("Random seeding failed: %v", err)
		}
		userIDs = append(userIDs, uint(*firstUser))
	}

	for _, id := range userIDs {
		token, err := middleware.SignToken(cfg.JWTSecret, id, *tokenTTL)
		if err != nil {
			log.Fatalf("Failed to sign token for user %d: %v", id, err)
		}
		log.Printf("user %d: Bearer %s", id, token)
	}
}
