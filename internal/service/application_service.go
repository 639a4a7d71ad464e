package service

import (
	"context"
	"log/slog"

	"jobcrm/internal/cache"
	"jobcrm/internal/middleware"
	"jobcrm/internal/models"
	"jobcrm/internal/observability"
	"jobcrm/internal/repository"
	"jobcrm/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Messages reported to the caller of CreateApplication.
const (
	MsgApplicationCreated = "New application created!"
	MsgApplicationExists  = "This application already exists."
)

// ApplicationService is the ledger of a job-seeker's applications.
type ApplicationService struct {
	db      *gorm.DB
	guard   *Guard
	catalog *CatalogService
	apps    repository.ApplicationRepository
}

// NewApplicationInput describes the position being applied to.
type NewApplicationInput struct {
	PositionInput
}

func NewApplicationService(db *gorm.DB, guard *Guard, catalog *CatalogService, apps repository.ApplicationRepository) *ApplicationService {
	return &ApplicationService{db: db, guard: guard, catalog: catalog, apps: apps}
}

// CreateApplication records that the caller applied to the described position.
// Company, position and application are resolved in one transaction; applying
// twice returns the existing application with created=false and its status untouched.
func (s *ApplicationService) CreateApplication(ctx context.Context, callerUserID uint, in NewApplicationInput) (app *models.Application, created bool, err error) {
	ctx, span := observability.StartSpan(ctx, "ApplicationService", "CreateApplication",
		attribute.Int64("user.id", int64(callerUserID)),
		attribute.String("company.name", in.CompanyName),
		attribute.String("position.name", in.PositionName),
	)
	defer span.Finish(&err)

	var c validation.Collector
	pos := in.PositionInput.validate(&c)
	if err := c.Err(); err != nil {
		return nil, false, err
	}

	profile, err := s.guard.ActingProfile(ctx, callerUserID)
	if err != nil {
		return nil, false, err
	}

	var res catalogResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = s.catalog.resolveTx(ctx, tx, pos)
		if txErr != nil {
			return txErr
		}
		app, created, txErr = repository.NewApplicationRepository(tx).FindOrCreate(ctx, profile.ID, res.position.ID)
		return txErr
	})
	if err != nil {
		return nil, false, err
	}

	if res.changed() {
		cache.InvalidateCatalog(ctx, res.position.CompanyID)
	}
	app.Applicant = profile
	app.Position = res.position

	span.AddAttributes(attribute.Bool("application.created", created), attribute.Int64("application.id", int64(app.ID)))
	if created {
		observability.ApplicationsCreated.Inc()
		middleware.Logger.InfoContext(ctx, "application created",
			slog.Uint64("application_id", uint64(app.ID)),
			slog.Uint64("position_id", uint64(app.PositionID)),
		)
	} else {
		observability.ApplicationDedupHits.Inc()
	}
	return app, created, nil
}

// ListApplications returns the caller's applications newest first. An empty
// filter selects the active pipeline (Open and Offer extended). A caller
// without a profile has no applications.
func (s *ApplicationService) ListApplications(ctx context.Context, userID uint, statuses []models.ApplicationStatus) ([]models.Application, error) {
	if len(statuses) == 0 {
		statuses = models.ActiveApplicationStatuses
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, models.NewFieldValidationError("status", "unknown status "+string(st))
		}
	}
	return s.list(ctx, userID, statuses)
}

// ListAllApplications is ListApplications without a status filter.
func (s *ApplicationService) ListAllApplications(ctx context.Context, userID uint) ([]models.Application, error) {
	return s.list(ctx, userID, nil)
}

func (s *ApplicationService) list(ctx context.Context, userID uint, statuses []models.ApplicationStatus) ([]models.Application, error) {
	profile, err := s.guard.ActingProfile(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			return []models.Application{}, nil
		}
		return nil, err
	}
	apps, err := s.apps.ListByApplicant(ctx, profile.ID, statuses)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// GetApplication returns NotFoundError for an unknown id and ForbiddenError
// when the caller does not own the application.
func (s *ApplicationService) GetApplication(ctx context.Context, applicationID, callerUserID uint) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeApplication(ctx, callerUserID, app); err != nil {
		return nil, err
	}
	return app, nil
}

// TransitionApplication moves the application along its status lifecycle.
func (s *ApplicationService) TransitionApplication(ctx context.Context, applicationID, callerUserID uint, to models.ApplicationStatus) (app *models.Application, err error) {
	ctx, span := observability.StartSpan(ctx, "ApplicationService", "TransitionApplication",
		attribute.Int64("application.id", int64(applicationID)),
		attribute.String("status.to", string(to)),
	)
	defer span.Finish(&err)

	if !to.Valid() {
		return nil, models.NewFieldValidationError("status", "unknown status "+string(to))
	}

	app, err = s.GetApplication(ctx, applicationID, callerUserID)
	if err != nil {
		return nil, err
	}

	from := app.Status
	if !from.CanTransitionTo(to) {
		return nil, models.NewInvalidTransitionError(from, to)
	}
	if err := s.apps.UpdateStatus(ctx, app.ID, from, to); err != nil {
		return nil, err
	}

	app.Status = to
	observability.ApplicationTransitions.WithLabelValues(string(to)).Inc()
	middleware.Logger.InfoContext(ctx, "application status changed",
		slog.Uint64("application_id", uint64(app.ID)),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	return app, nil
}

// CountByStatus summarizes the caller's pipeline. Every status is present in the result.
func (s *ApplicationService) CountByStatus(ctx context.Context, userID uint) (map[models.ApplicationStatus]int64, error) {
	profile, err := s.guard.ActingProfile(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			empty := make(map[models.ApplicationStatus]int64, len(models.AllApplicationStatuses))
			for _, st := range models.AllApplicationStatuses {
				empty[st] = 0
			}
			return empty, nil
		}
		return nil, err
	}
	return s.apps.CountByStatus(ctx, profile.ID)
}
