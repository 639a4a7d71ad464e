package repository

import (
	"context"
	"errors"

	"jobcrm/internal/models"
	"jobcrm/internal/observability"

	"gorm.io/gorm"
)

// EventRepository persists timeline events.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	ListByApplication(ctx context.Context, applicationID uint) ([]models.Event, error)
	Delete(ctx context.Context, id uint) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	defer observability.TrackQuery("insert", "events")()

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID loads the event together with its application and that application's applicant.
func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	defer observability.TrackQuery("select", "events")()

	var event models.Event
	if err := r.db.WithContext(ctx).Preload("Application.Applicant").First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

// ListByApplication orders by date, then by id so same-day events keep insertion order.
func (r *eventRepository) ListByApplication(ctx context.Context, applicationID uint) ([]models.Event, error) {
	defer observability.TrackQuery("select", "events")()

	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("date ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "events")()

	res := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Event", id)
	}
	return nil
}
