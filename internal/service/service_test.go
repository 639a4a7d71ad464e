package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobcrm/internal/models"
	"jobcrm/internal/repository"
	"jobcrm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type services struct {
	db           *gorm.DB
	profiles     *ProfileService
	catalog      *CatalogService
	applications *ApplicationService
	timeline     *TimelineService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewTestDB(t)

	profileRepo := repository.NewProfileRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	guard := NewGuard(profileRepo)
	catalog := NewCatalogService(db, repository.NewCatalogRepository(db))

	return &services{
		db:           db,
		profiles:     NewProfileService(db, profileRepo),
		catalog:      catalog,
		applications: NewApplicationService(db, guard, catalog, appRepo),
		timeline:     NewTimelineService(db, guard, appRepo, repository.NewEventRepository(db)),
	}
}

func (s *services) onboard(t *testing.T, userID uint) *models.Profile {
	t.Helper()
	p, err := s.profiles.CreateProfile(context.Background(), userID, ProfileInput{FirstName: "Pat", LastName: "Lee"})
	require.NoError(t, err)
	return p
}

func (s *services) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func acmeBackend() NewApplicationInput {
	return NewApplicationInput{PositionInput: PositionInput{
		CompanyName:        "Acme",
		CompanyLocation:    "Berlin",
		CompanySubIndustry: "Logistics",
		PositionName:       "Backend Engineer",
		MinSalary:          100000,
		MaxSalary:          130000,
		TechStack:          "Go, PostgreSQL",
	}}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestCreateApplication_AcmeScenario(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	owner := s.onboard(t, 1)
	s.onboard(t, 2)

	app, created, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ApplicationStatusOpen, app.Status)
	assert.Equal(t, owner.ID, app.ApplicantID)
	require.NotNil(t, app.Position)
	assert.Equal(t, "Backend Engineer", app.Position.PositionName)
	require.NotNil(t, app.Position.Company)
	assert.Equal(t, "Acme", app.Position.Company.CompanyName)

	again, created, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, app.ID, again.ID)
	assert.Equal(t, models.ApplicationStatusOpen, again.Status)
	assert.Equal(t, int64(1), s.count(t, &models.Application{}))

	_, err = s.applications.GetApplication(ctx, app.ID, 2)
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	got, err := s.applications.GetApplication(ctx, app.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	_, err = s.applications.GetApplication(ctx, 9999, 1)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCreateApplication_ExistingStatusUntouched(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	s.onboard(t, 1)

	app, _, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)
	_, err = s.applications.TransitionApplication(ctx, app.ID, 1, models.ApplicationStatusOfferExtended)
	require.NoError(t, err)

	again, created, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.ApplicationStatusOfferExtended, again.Status)
}

func TestCreateApplication_SalaryRangeWritesNothing(t *testing.T) {
	s := newServices(t)
	s.onboard(t, 1)

	in := acmeBackend()
	in.MinSalary, in.MaxSalary = 130000, 100000

	_, _, err := s.applications.CreateApplication(context.Background(), 1, in)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.NotEmpty(t, appErr.Fields)
	assert.Equal(t, "min_salary", appErr.Fields[0].Field)
	assert.Equal(t, "min salary must not exceed max salary", appErr.Fields[0].Message)

	assert.Zero(t, s.count(t, &models.Company{}))
	assert.Zero(t, s.count(t, &models.Position{}))
	assert.Zero(t, s.count(t, &models.Application{}))
}

func TestCreateApplication_ReportsEveryInvalidField(t *testing.T) {
	s := newServices(t)
	s.onboard(t, 1)

	_, _, err := s.applications.CreateApplication(context.Background(), 1, NewApplicationInput{})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	fields := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"company_name", "position_name"}, fields)
}

func TestCreateApplication_NoProfile(t *testing.T) {
	s := newServices(t)

	_, _, err := s.applications.CreateApplication(context.Background(), 42, acmeBackend())
	assert.True(t, models.HasCode(err, models.CodeForbidden))
	assert.Zero(t, s.count(t, &models.Company{}))
}

func TestCreateApplication_ConcurrentCallersNeverBothCreate(t *testing.T) {
	s := newServices(t)
	s.onboard(t, 1)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[uint]struct{}{}
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, c, err := s.applications.CreateApplication(context.Background(), 1, acmeBackend())
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if c {
				created++
			}
			ids[app.ID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)
	assert.Equal(t, int64(1), s.count(t, &models.Application{}))
	assert.Equal(t, int64(1), s.count(t, &models.Company{}))
	assert.Equal(t, int64(1), s.count(t, &models.Position{}))
}

func TestResolveOrCreatePosition_FirstWriteWins(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	first, err := s.catalog.ResolveOrCreatePosition(ctx, acmeBackend().PositionInput)
	require.NoError(t, err)

	in := acmeBackend().PositionInput
	in.CompanyLocation = "Lisbon"
	in.MinSalary, in.MaxSalary = 1, 2
	second, err := s.catalog.ResolveOrCreatePosition(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(100000), second.MinSalary)
	assert.Equal(t, "Berlin", second.Company.Location)

	company, err := s.catalog.GetCompany(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", company.Location)

	positions, err := s.catalog.ListPositions(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, positions, 1)

	companies, err := s.catalog.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 1)

	_, err = s.catalog.ListPositions(ctx, 9999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestResolveOrCreatePositionTx_RollsBackWithCaller(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.catalog.ResolveOrCreatePositionTx(ctx, tx, acmeBackend().PositionInput)
		require.NoError(t, err)
		return models.NewConflictError("abort")
	})
	require.Error(t, err)
	assert.Zero(t, s.count(t, &models.Company{}))
}

func TestListApplications(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	s.onboard(t, 1)

	titles := []string{"Backend Engineer", "SRE", "Data Engineer"}
	apps := make([]*models.Application, 0, len(titles))
	for _, title := range titles {
		in := acmeBackend()
		in.PositionName = title
		app, _, err := s.applications.CreateApplication(ctx, 1, in)
		require.NoError(t, err)
		apps = append(apps, app)
	}
	_, err := s.applications.TransitionApplication(ctx, apps[1].ID, 1, models.ApplicationStatusRejected)
	require.NoError(t, err)
	_, err = s.applications.TransitionApplication(ctx, apps[2].ID, 1, models.ApplicationStatusOfferExtended)
	require.NoError(t, err)

	active, err := s.applications.ListApplications(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, apps[2].ID, active[0].ID)
	assert.Equal(t, apps[0].ID, active[1].ID)

	rejected, err := s.applications.ListApplications(ctx, 1, []models.ApplicationStatus{models.ApplicationStatusRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, apps[1].ID, rejected[0].ID)

	all, err := s.applications.ListAllApplications(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.applications.ListApplications(ctx, 1, []models.ApplicationStatus{"Ghosted"})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	none, err := s.applications.ListApplications(ctx, 77, nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	counts, err := s.applications.CountByStatus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ApplicationStatusOpen])
	assert.Equal(t, int64(1), counts[models.ApplicationStatusRejected])
	assert.Equal(t, int64(1), counts[models.ApplicationStatusOfferExtended])

	empty, err := s.applications.CountByStatus(ctx, 77)
	require.NoError(t, err)
	assert.Len(t, empty, len(models.AllApplicationStatuses))
}

func TestTransitionApplication(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	s.onboard(t, 1)
	s.onboard(t, 2)

	app, _, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)

	_, err = s.applications.TransitionApplication(ctx, app.ID, 2, models.ApplicationStatusWithdrawn)
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	_, err = s.applications.TransitionApplication(ctx, app.ID, 1, "Hired")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = s.applications.TransitionApplication(ctx, app.ID, 1, models.ApplicationStatusClosed)
	assert.True(t, models.HasCode(err, models.CodeInvalidTransition))

	moved, err := s.applications.TransitionApplication(ctx, app.ID, 1, models.ApplicationStatusOfferExtended)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusOfferExtended, moved.Status)

	moved, err = s.applications.TransitionApplication(ctx, app.ID, 1, models.ApplicationStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusClosed, moved.Status)

	_, err = s.applications.TransitionApplication(ctx, app.ID, 1, models.ApplicationStatusOpen)
	assert.True(t, models.HasCode(err, models.CodeInvalidTransition))

	stored, err := s.applications.GetApplication(ctx, app.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusClosed, stored.Status)
}

func TestTimeline_OrderingAndOwnership(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	s.onboard(t, 1)
	s.onboard(t, 2)

	app, _, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)

	for _, d := range []string{"2024-03-01", "2024-01-15", "2024-02-10"} {
		_, err := s.timeline.AppendEvent(ctx, app.ID, 1, "note "+d, date(t, d))
		require.NoError(t, err)
	}

	events, err := s.timeline.ListEvents(ctx, app.ID, 1)
	require.NoError(t, err)
	require.Len(t, events, 3)
	got := []string{
		events[0].Date.Format(models.DateLayout),
		events[1].Date.Format(models.DateLayout),
		events[2].Date.Format(models.DateLayout),
	}
	assert.Equal(t, []string{"2024-01-15", "2024-02-10", "2024-03-01"}, got)

	_, err = s.timeline.ListEvents(ctx, app.ID, 2)
	assert.True(t, models.HasCode(err, models.CodeForbidden))
}

func TestAppendEvent_Scenario(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	s.onboard(t, 1)
	s.onboard(t, 2)

	app, _, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)

	ev, err := s.timeline.AppendEvent(ctx, app.ID, 1, "  Phone screen  ", time.Date(2024, 4, 1, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Phone screen", ev.Description)
	assert.Equal(t, "2024-04-01", ev.Date.Format(models.DateLayout))

	_, err = s.timeline.AppendEvent(ctx, app.ID, 2, "Sneaky note", date(t, "2024-04-02"))
	assert.True(t, models.HasCode(err, models.CodeForbidden))
	assert.Equal(t, int64(1), s.count(t, &models.Event{}))

	_, err = s.timeline.AppendEvent(ctx, app.ID, 1, "   ", date(t, "2024-04-02"))
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = s.timeline.AppendEvent(ctx, app.ID, 1, "No date", time.Time{})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = s.timeline.AppendEvent(ctx, 9999, 1, "Missing", date(t, "2024-04-02"))
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.Equal(t, int64(1), s.count(t, &models.Event{}))
}

func TestRemoveEvent(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	s.onboard(t, 1)
	s.onboard(t, 2)

	app, _, err := s.applications.CreateApplication(ctx, 1, acmeBackend())
	require.NoError(t, err)
	ev, err := s.timeline.AppendEvent(ctx, app.ID, 1, "Onsite", date(t, "2024-05-01"))
	require.NoError(t, err)

	err = s.timeline.RemoveEvent(ctx, ev.ID, 2)
	assert.True(t, models.HasCode(err, models.CodeForbidden))
	assert.Equal(t, int64(1), s.count(t, &models.Event{}))

	require.NoError(t, s.timeline.RemoveEvent(ctx, ev.ID, 1))
	assert.Zero(t, s.count(t, &models.Event{}))

	err = s.timeline.RemoveEvent(ctx, ev.ID, 1)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
