package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobcrm/internal/cache"
	"jobcrm/internal/models"
	"jobcrm/internal/repository"
	"jobcrm/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProfileService(t *testing.T) (*ProfileService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	svc := NewProfileService(db, repository.NewProfileRepository(db))
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, db
}

func strPtr(s string) *string { return &s }

func TestCreateProfile(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	birth := time.Date(1990, 2, 3, 18, 45, 0, 0, time.UTC)
	p, err := svc.CreateProfile(ctx, 1, ProfileInput{
		FirstName: "  Pat ",
		LastName:  "Lee",
		Location:  "Berlin",
		BirthDate: &birth,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Pat", p.FirstName)
	require.NotNil(t, p.BirthDate)
	assert.Equal(t, "1990-02-03", p.BirthDate.Format(models.DateLayout))

	_, err = svc.CreateProfile(ctx, 1, ProfileInput{FirstName: "Again"})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	_, err = svc.CreateProfile(ctx, 0, ProfileInput{})
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestCreateProfile_RejectsFutureBirthDate(t *testing.T) {
	svc, db := newProfileService(t)

	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateProfile(context.Background(), 1, ProfileInput{BirthDate: &future})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	var n int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestGetOrCreateProfile(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	_, created, err := svc.GetOrCreateProfile(ctx, 1, nil)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.False(t, created)

	p, created, err := svc.GetOrCreateProfile(ctx, 1, &ProfileInput{FirstName: "Pat"})
	require.NoError(t, err)
	assert.True(t, created)

	got, created, err := svc.GetOrCreateProfile(ctx, 1, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, got.ID)

	_, _, err = svc.GetOrCreateProfile(ctx, 1, &ProfileInput{FirstName: "Pat"})
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, 1, ProfilePatch{FirstName: strPtr("Pat")})
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = svc.CreateProfile(ctx, 1, ProfileInput{FirstName: "Pat", LastName: "Lee", Bio: "Go developer"})
	require.NoError(t, err)

	birth := time.Date(1991, 7, 8, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateProfile(ctx, 1, ProfilePatch{
		LastName:  strPtr("Morgan"),
		Location:  strPtr("Lisbon"),
		BirthDate: &birth,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pat", updated.FirstName)
	assert.Equal(t, "Morgan", updated.LastName)
	assert.Equal(t, "Go developer", updated.Bio)
	assert.Equal(t, "Lisbon", updated.Location)
	require.NotNil(t, updated.BirthDate)
	assert.Equal(t, "1991-07-08", updated.BirthDate.Format(models.DateLayout))

	same, err := svc.UpdateProfile(ctx, 1, ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, "Morgan", same.LastName)

	future := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpdateProfile(ctx, 1, ProfilePatch{FirstName: strPtr("Sam"), BirthDate: &future})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	current, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pat", current.FirstName)
}

func TestUpdateProfile_GroupsCommitTogether(t *testing.T) {
	svc, db := newProfileService(t)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, 1, ProfileInput{FirstName: "Pat", Bio: "before"})
	require.NoError(t, err)

	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_details",
		func(tx *gorm.DB) {
			if fields, ok := tx.Statement.Dest.(map[string]any); ok {
				if _, hasBio := fields["bio"]; hasBio {
					_ = tx.AddError(errors.New("disk full"))
				}
			}
		}))

	_, err = svc.UpdateProfile(ctx, 1, ProfilePatch{FirstName: strPtr("Sam"), Bio: strPtr("after")})
	require.Error(t, err)

	var stored models.Profile
	require.NoError(t, db.Where("user_id = ?", 1).First(&stored).Error)
	assert.Equal(t, "Pat", stored.FirstName)
	assert.Equal(t, "before", stored.Bio)
}

func TestProfileCache_InvalidatedOnUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	svc, _ := newProfileService(t)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, 1, ProfileInput{FirstName: "Pat"})
	require.NoError(t, err)

	_, err = svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.ProfileKey(1)))

	_, err = svc.UpdateProfile(ctx, 1, ProfilePatch{FirstName: strPtr("Sam")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ProfileKey(1)))

	fresh, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sam", fresh.FirstName)
}
