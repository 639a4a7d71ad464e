// Package service holds the application's business rules. Handlers call into
// services; services own transactions and call repositories.
package service

import (
	"context"

	"jobcrm/internal/models"
	"jobcrm/internal/observability"
	"jobcrm/internal/repository"
)

// Guard enforces ownership: a caller may act on an application, and on its
// events, only when the application's applicant profile belongs to them.
type Guard struct {
	profiles repository.ProfileRepository
}

func NewGuard(profiles repository.ProfileRepository) *Guard {
	return &Guard{profiles: profiles}
}

// ActingProfile resolves the caller's profile. A caller without one cannot act
// on applications.
func (g *Guard) ActingProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	profile, err := g.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewForbiddenError("Create a profile before tracking applications")
	}
	return profile, nil
}

// AuthorizeApplication requires app.Applicant to be loaded.
func (g *Guard) AuthorizeApplication(_ context.Context, userID uint, app *models.Application) error {
	if app != nil && app.OwnedBy(userID) {
		return nil
	}
	observability.AuthorizationDenied.WithLabelValues("application").Inc()
	return models.NewForbiddenError("You do not have access to this application")
}

// AuthorizeEvent requires event.Application.Applicant to be loaded.
func (g *Guard) AuthorizeEvent(_ context.Context, userID uint, event *models.Event) error {
	if event != nil && event.Application != nil && event.Application.OwnedBy(userID) {
		return nil
	}
	observability.AuthorizationDenied.WithLabelValues("event").Inc()
	return models.NewForbiddenError("You do not have access to this event")
}
