package repository

import (
	"context"
	"errors"

	"jobcrm/internal/models"
	"jobcrm/internal/observability"

	"gorm.io/gorm"
)

// ApplicationRepository persists job applications.
type ApplicationRepository interface {
	FindOrCreate(ctx context.Context, applicantID, positionID uint) (*models.Application, bool, error)
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	ListByApplicant(ctx context.Context, applicantID uint, statuses []models.ApplicationStatus) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uint, from, to models.ApplicationStatus) error
	CountByStatus(ctx context.Context, applicantID uint) (map[models.ApplicationStatus]int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository returns an ApplicationRepository bound to db (which may be a transaction).
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// FindOrCreate returns the application for (applicantID, positionID), creating an
// Open one when none exists. An existing application is returned untouched.
func (r *applicationRepository) FindOrCreate(ctx context.Context, applicantID, positionID uint) (*models.Application, bool, error) {
	row := &models.Application{
		ApplicantID: applicantID,
		PositionID:  positionID,
		Status:      models.ApplicationStatusOpen,
	}
	return findOrInsert(ctx, r.db, "applications", row, []string{"applicant_id", "position_id"}, func(db *gorm.DB) *gorm.DB {
		return db.Where("applicant_id = ? AND position_id = ?", applicantID, positionID)
	})
}

// GetByID loads the application with its applicant and position (with company).
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	defer observability.TrackQuery("select", "applications")()

	var app models.Application
	if err := r.db.WithContext(ctx).
		Preload("Applicant").
		Preload("Position.Company").
		First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Application", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &app, nil
}

// ListByApplicant returns newest first. An empty statuses slice means no filter.
func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uint, statuses []models.ApplicationStatus) ([]models.Application, error) {
	defer observability.TrackQuery("select", "applications")()

	q := r.db.WithContext(ctx).
		Preload("Position.Company").
		Where("applicant_id = ?", applicantID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var apps []models.Application
	if err := q.Order("created_at DESC").Order("id DESC").Find(&apps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return apps, nil
}

// UpdateStatus moves the application from `from` to `to`. The write is
// conditional on the stored status still being `from`; a concurrent change
// yields a ConflictError.
func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, from, to models.ApplicationStatus) error {
	defer observability.TrackQuery("update", "applications")()

	res := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("Application status changed concurrently, reload and retry")
	}
	return nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context, applicantID uint) (map[models.ApplicationStatus]int64, error) {
	defer observability.TrackQuery("select", "applications")()

	var rows []struct {
		Status models.ApplicationStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Select("status, COUNT(*) AS total").
		Where("applicant_id = ?", applicantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.ApplicationStatus]int64, len(models.AllApplicationStatuses))
	for _, s := range models.AllApplicationStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
