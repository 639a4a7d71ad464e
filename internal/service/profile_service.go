package service

import (
	"context"
	"time"

	"jobcrm/internal/cache"
	"jobcrm/internal/models"
	"jobcrm/internal/repository"
	"jobcrm/internal/validation"

	"gorm.io/gorm"
)

// ProfileService manages the one profile each user may have.
type ProfileService struct {
	db       *gorm.DB
	profiles repository.ProfileRepository
	now      func() time.Time
}

// ProfileInput is the onboarding payload.
type ProfileInput struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Bio       string     `json:"bio"`
	Location  string     `json:"location"`
	BirthDate *time.Time `json:"birth_date"`
}

// ProfilePatch changes only the fields that are non-nil.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Bio       *string
	Location  *string
	BirthDate *time.Time
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Bio == nil && p.Location == nil && p.BirthDate == nil
}

func NewProfileService(db *gorm.DB, profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{db: db, profiles: profiles, now: time.Now}
}

func (s *ProfileService) validateInput(in ProfileInput) (ProfileInput, error) {
	var c validation.Collector
	in.FirstName = c.Optional("first_name", in.FirstName, validation.MaxPersonNameLen)
	in.LastName = c.Optional("last_name", in.LastName, validation.MaxPersonNameLen)
	in.Bio = c.Optional("bio", in.Bio, validation.MaxBioLen)
	in.Location = c.Optional("location", in.Location, validation.MaxNameLen)
	c.BirthDate("birth_date", in.BirthDate, s.now())
	if in.BirthDate != nil {
		d := models.TruncateDate(*in.BirthDate)
		in.BirthDate = &d
	}
	return in, c.Err()
}

// CreateProfile fails with ConflictError when the user already has a profile,
// including when a concurrent request created it first.
func (s *ProfileService) CreateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.Profile, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	in, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("A profile already exists for this user")
	}

	profile := &models.Profile{
		UserID:    userID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Location:  in.Location,
		BirthDate: in.BirthDate,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, userID)
	return profile, nil
}

// GetOrCreateProfile returns the existing profile when in is nil (NotFoundError
// if there is none) and otherwise behaves like CreateProfile. created reports
// whether a profile was written.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, userID uint, in *ProfileInput) (profile *models.Profile, created bool, err error) {
	if in == nil {
		profile, err = s.GetProfile(ctx, userID)
		return profile, false, err
	}
	profile, err = s.CreateProfile(ctx, userID, *in)
	if err != nil {
		return nil, false, err
	}
	return profile, true, nil
}

// GetProfile reads through the profile cache.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.profiles.GetByUserID(ctx, userID)
}

// UpdateProfile applies the name group and the detail group of patch in one
// transaction. Either both groups are stored or neither is.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*models.Profile, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	var c validation.Collector
	names := map[string]any{}
	details := map[string]any{}
	if patch.FirstName != nil {
		names["first_name"] = c.Optional("first_name", *patch.FirstName, validation.MaxPersonNameLen)
	}
	if patch.LastName != nil {
		names["last_name"] = c.Optional("last_name", *patch.LastName, validation.MaxPersonNameLen)
	}
	if patch.Bio != nil {
		details["bio"] = c.Optional("bio", *patch.Bio, validation.MaxBioLen)
	}
	if patch.Location != nil {
		details["location"] = c.Optional("location", *patch.Location, validation.MaxNameLen)
	}
	if patch.BirthDate != nil {
		c.BirthDate("birth_date", patch.BirthDate, s.now())
		details["birth_date"] = models.TruncateDate(*patch.BirthDate)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	var updated *models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewProfileRepository(tx)

		profile, err := repo.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			return models.NewNotFoundError("Profile for user", userID)
		}
		if err := repo.UpdateFields(ctx, profile.ID, names); err != nil {
			return err
		}
		if err := repo.UpdateFields(ctx, profile.ID, details); err != nil {
			return err
		}

		updated, err = repo.FindByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateProfile(ctx, userID)
	return updated, nil
}
