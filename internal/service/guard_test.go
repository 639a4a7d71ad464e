package service

import (
	"context"
	"errors"
	"testing"

	"jobcrm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUserIDFn  func(context.Context, uint) (*models.Profile, error)
	findByUserIDFn func(context.Context, uint) (*models.Profile, error)
	createFn       func(context.Context, *models.Profile) error
	updateFieldsFn func(context.Context, uint, map[string]any) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.findByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}
func (s *profileRepoStub) UpdateFields(ctx context.Context, profileID uint, fields map[string]any) error {
	return s.updateFieldsFn(ctx, profileID, fields)
}

func profilesFor(byUser map[uint]*models.Profile) *profileRepoStub {
	find := func(_ context.Context, userID uint) (*models.Profile, error) {
		return byUser[userID], nil
	}
	return &profileRepoStub{
		getByUserIDFn:  find,
		findByUserIDFn: find,
		createFn:       func(_ context.Context, _ *models.Profile) error { return nil },
		updateFieldsFn: func(_ context.Context, _ uint, _ map[string]any) error { return nil },
	}
}

func TestGuard_ActingProfile(t *testing.T) {
	guard := NewGuard(profilesFor(map[uint]*models.Profile{
		7: {ID: 70, UserID: 7},
	}))
	ctx := context.Background()

	p, err := guard.ActingProfile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(70), p.ID)

	_, err = guard.ActingProfile(ctx, 8)
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	_, err = guard.ActingProfile(ctx, 0)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestGuard_ActingProfilePropagatesStoreErrors(t *testing.T) {
	repo := profilesFor(nil)
	repo.findByUserIDFn = func(_ context.Context, _ uint) (*models.Profile, error) {
		return nil, models.NewInternalError(errors.New("connection reset"))
	}

	_, err := NewGuard(repo).ActingProfile(context.Background(), 7)
	assert.True(t, models.HasCode(err, models.CodeInternal))
}

func TestGuard_Authorize(t *testing.T) {
	guard := NewGuard(profilesFor(nil))
	ctx := context.Background()
	app := &models.Application{ID: 1, Applicant: &models.Profile{ID: 70, UserID: 7}}

	tests := []struct {
		name    string
		userID  uint
		app     *models.Application
		allowed bool
	}{
		{"owner", 7, app, true},
		{"someone else", 8, app, false},
		{"applicant not loaded", 7, &models.Application{ID: 2}, false},
		{"nil application", 7, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.AuthorizeApplication(ctx, tt.userID, tt.app)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, models.HasCode(err, models.CodeForbidden))
			}

			err = guard.AuthorizeEvent(ctx, tt.userID, &models.Event{ID: 9, Application: tt.app})
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, models.HasCode(err, models.CodeForbidden))
			}
		})
	}
}
