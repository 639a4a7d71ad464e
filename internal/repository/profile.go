package repository

import (
	"context"
	"errors"

	"jobcrm/internal/cache"
	"jobcrm/internal/models"
	"jobcrm/internal/observability"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for job-seeker profiles.
type ProfileRepository interface {
	// GetByUserID reads through the Redis profile cache.
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	// FindByUserID bypasses the cache and returns nil, nil when no profile exists.
	FindByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	UpdateFields(ctx context.Context, profileID uint, fields map[string]any) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		defer observability.TrackQuery("select", "profiles")()
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Profile for user", userID)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	defer observability.TrackQuery("select", "profiles")()

	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	defer observability.TrackQuery("insert", "profiles")()

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A profile already exists for this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateFields writes the given columns. Callers invalidate the profile cache
// once the surrounding transaction has committed.
func (r *profileRepository) UpdateFields(ctx context.Context, profileID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	defer observability.TrackQuery("update", "profiles")()

	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profileID).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profileID)
	}
	return nil
}
