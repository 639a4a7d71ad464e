// Package seed writes demo data through the services so seeded rows obey the
// same rules as API traffic.
package seed

import (
	"context"
	"fmt"
	"time"

	"jobcrm/internal/middleware"
	"jobcrm/internal/models"
	"jobcrm/internal/repository"
	"jobcrm/internal/service"

	"gorm.io/gorm"
)

// Options configure random seeding.
type Options struct {
	Users               int
	ApplicationsPerUser int
	EventsPerApp        int
	FirstUserID         uint
	MaxDays             int
	Seed                int64
}

// Summary counts what a run wrote.
type Summary struct {
	Profiles     int
	Applications int
	Events       int
}

type Seeder struct {
	db           *gorm.DB
	profiles     *service.ProfileService
	applications *service.ApplicationService
	timeline     *service.TimelineService
	now          func() time.Time
}

func NewSeeder(db *gorm.DB) *Seeder {
	profileRepo := repository.NewProfileRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	guard := service.NewGuard(profileRepo)
	catalog := service.NewCatalogService(db, repository.NewCatalogRepository(db))

	return &Seeder{
		db:           db,
		profiles:     service.NewProfileService(db, profileRepo),
		applications: service.NewApplicationService(db, guard, catalog, applicationRepo),
		timeline:     service.NewTimelineService(db, guard, applicationRepo, repository.NewEventRepository(db)),
		now:          time.Now,
	}
}

// Clear removes every domain row, children first. Companies and positions go too.
func (s *Seeder) Clear(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Event{}, &models.Application{}, &models.Position{}, &models.Company{}, &models.Profile{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// ApplyFixtures is idempotent: existing profiles and applications are reused
// and only the missing part of a status path is walked.
func (s *Seeder) ApplyFixtures(ctx context.Context, fx *Fixtures) (Summary, error) {
	var sum Summary
	for _, p := range fx.Profiles {
		created, err := s.ensureProfile(ctx, p.UserID, p.input())
		if err != nil {
			return sum, fmt.Errorf("profile for user %d: %w", p.UserID, err)
		}
		if created {
			sum.Profiles++
		}

		for _, a := range p.Applications {
			app, created, err := s.applications.CreateApplication(ctx, p.UserID, a.input())
			if err != nil {
				return sum, fmt.Errorf("application %s/%s: %w", a.CompanyName, a.PositionName, err)
			}
			if created {
				sum.Applications++
			}
			if a.Status != "" {
				if err := s.advance(ctx, app, p.UserID, models.ApplicationStatus(a.Status)); err != nil {
					return sum, err
				}
			}
			// events are only written with a fresh application so reruns do not duplicate them
			if !created {
				continue
			}
			for _, e := range a.Events {
				date, _ := time.Parse(models.DateLayout, e.Date)
				if _, err := s.timeline.AppendEvent(ctx, app.ID, p.UserID, e.Description, date); err != nil {
					return sum, fmt.Errorf("event on application %d: %w", app.ID, err)
				}
				sum.Events++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "fixtures applied",
		"profiles", sum.Profiles, "applications", sum.Applications, "events", sum.Events)
	return sum, nil
}

// SeedRandom creates opts.Users fake job seekers starting at opts.FirstUserID.
func (s *Seeder) SeedRandom(ctx context.Context, opts Options) (Summary, error) {
	if opts.FirstUserID == 0 {
		opts.FirstUserID = 1
	}
	f := NewFactory(opts.Seed)
	now := s.now()

	var sum Summary
	for i := 0; i < opts.Users; i++ {
		userID := opts.FirstUserID + uint(i)
		created, err := s.ensureProfile(ctx, userID, f.Profile())
		if err != nil {
			return sum, fmt.Errorf("profile for user %d: %w", userID, err)
		}
		if created {
			sum.Profiles++
		}

		for j := 0; j < opts.ApplicationsPerUser; j++ {
			app, created, err := s.applications.CreateApplication(ctx, userID, f.Application())
			if err != nil {
				return sum, fmt.Errorf("application for user %d: %w", userID, err)
			}
			if !created {
				continue
			}
			sum.Applications++

			for k := 0; k < opts.EventsPerApp; k++ {
				desc, date := f.Event(now, opts.MaxDays)
				if _, err := s.timeline.AppendEvent(ctx, app.ID, userID, desc, date); err != nil {
					return sum, fmt.Errorf("event on application %d: %w", app.ID, err)
				}
				sum.Events++
			}
			if err := s.advance(ctx, app, userID, f.Status()); err != nil {
				return sum, err
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "random data seeded",
		"profiles", sum.Profiles, "applications", sum.Applications, "events", sum.Events)
	return sum, nil
}

func (s *Seeder) ensureProfile(ctx context.Context, userID uint, in service.ProfileInput) (bool, error) {
	_, err := s.profiles.CreateProfile(ctx, userID, in)
	switch {
	case err == nil:
		return true, nil
	case models.HasCode(err, models.CodeConflict):
		return false, nil
	default:
		return false, err
	}
}

// advance walks app from its current status to target through allowed transitions.
func (s *Seeder) advance(ctx context.Context, app *models.Application, userID uint, target models.ApplicationStatus) error {
	path, ok := PathTo(app.Status, target)
	if !ok {
		return fmt.Errorf("application %d cannot move from %q to %q", app.ID, app.Status, target)
	}
	for _, next := range path {
		if _, err := s.applications.TransitionApplication(ctx, app.ID, userID, next); err != nil {
			return fmt.Errorf("application %d to %q: %w", app.ID, next, err)
		}
	}
	return nil
}

// PathTo returns the shortest sequence of transitions leading from one status
// to another. An empty path means from already equals to.
func PathTo(from, to models.ApplicationStatus) ([]models.ApplicationStatus, bool) {
	if from == to {
		return nil, true
	}
	prev := map[models.ApplicationStatus]models.ApplicationStatus{from: ""}
	queue := []models.ApplicationStatus{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range models.AllApplicationStatuses {
			if _, seen := prev[next]; seen || !cur.CanTransitionTo(next) {
				continue
			}
			prev[next] = cur
			if next == to {
				var path []models.ApplicationStatus
				for st := to; st != from; st = prev[st] {
					path = append([]models.ApplicationStatus{st}, path...)
				}
				return path, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}
