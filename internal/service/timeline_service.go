package service

import (
	"context"
	"log/slog"
	"time"

	"jobcrm/internal/middleware"
	"jobcrm/internal/models"
	"jobcrm/internal/observability"
	"jobcrm/internal/repository"
	"jobcrm/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// TimelineService manages the dated events of an application.
type TimelineService struct {
	db     *gorm.DB
	guard  *Guard
	apps   repository.ApplicationRepository
	events repository.EventRepository
}

func NewTimelineService(db *gorm.DB, guard *Guard, apps repository.ApplicationRepository, events repository.EventRepository) *TimelineService {
	return &TimelineService{db: db, guard: guard, apps: apps, events: events}
}

// AppendEvent adds an event dated on the calendar day of date. Only the
// application's owner may append; nothing is written otherwise.
func (s *TimelineService) AppendEvent(ctx context.Context, applicationID, callerUserID uint, description string, date time.Time) (event *models.Event, err error) {
	ctx, span := observability.StartSpan(ctx, "TimelineService", "AppendEvent",
		attribute.Int64("application.id", int64(applicationID)))
	defer span.Finish(&err)

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeApplication(ctx, callerUserID, app); err != nil {
		return nil, err
	}

	var c validation.Collector
	description = c.Required("description", description, validation.MaxDescriptionLen)
	date = c.RequiredDate("date", date)
	if err := c.Err(); err != nil {
		return nil, err
	}

	event = &models.Event{
		ApplicationID: app.ID,
		Description:   description,
		Date:          date,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	observability.EventsAppended.Inc()
	middleware.Logger.InfoContext(ctx, "timeline event appended",
		slog.Uint64("application_id", uint64(app.ID)),
		slog.Uint64("event_id", uint64(event.ID)),
	)
	return event, nil
}

// RemoveEvent deletes an event owned (through its application) by the caller.
// A foreign event yields ForbiddenError and is kept.
func (s *TimelineService) RemoveEvent(ctx context.Context, eventID, callerUserID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "TimelineService", "RemoveEvent",
		attribute.Int64("event.id", int64(eventID)))
	defer span.Finish(&err)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := repository.NewEventRepository(tx)

		event, err := events.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if err := s.guard.AuthorizeEvent(ctx, callerUserID, event); err != nil {
			return err
		}
		return events.Delete(ctx, event.ID)
	})
}

// ListEvents returns the application's events by date, same-day events in
// insertion order.
func (s *TimelineService) ListEvents(ctx context.Context, applicationID, callerUserID uint) ([]models.Event, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeApplication(ctx, callerUserID, app); err != nil {
		return nil, err
	}

	events, err := s.events.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}
