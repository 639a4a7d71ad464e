package service

import (
	"context"

	"jobcrm/internal/cache"
	"jobcrm/internal/models"
	"jobcrm/internal/observability"
	"jobcrm/internal/repository"
	"jobcrm/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CatalogService resolves companies and positions by natural key.
type CatalogService struct {
	db   *gorm.DB
	repo repository.CatalogRepository
}

// PositionInput carries the company and position attributes of an application.
// For an existing company or position the descriptive fields are ignored.
type PositionInput struct {
	CompanyName        string `json:"company_name"`
	CompanyLocation    string `json:"company_location"`
	CompanySubIndustry string `json:"company_sub_industry"`
	PositionName       string `json:"position_name"`
	IsRemote           bool   `json:"is_remote"`
	MinSalary          int64  `json:"min_salary"`
	MaxSalary          int64  `json:"max_salary"`
	TechStack          string `json:"tech_stack"`
}

// validate collects field errors into c and returns the trimmed input.
func (in PositionInput) validate(c *validation.Collector) PositionInput {
	in.CompanyName = c.Required("company_name", in.CompanyName, validation.MaxNameLen)
	in.CompanyLocation = c.Optional("company_location", in.CompanyLocation, validation.MaxNameLen)
	in.CompanySubIndustry = c.Optional("company_sub_industry", in.CompanySubIndustry, validation.MaxNameLen)
	in.PositionName = c.Required("position_name", in.PositionName, validation.MaxNameLen)
	in.TechStack = c.Optional("tech_stack", in.TechStack, validation.MaxTechStackLen)
	c.SalaryRange(in.MinSalary, in.MaxSalary)
	return in
}

// catalogResult reports what a resolve step wrote, for cache invalidation after commit.
type catalogResult struct {
	position        *models.Position
	companyCreated  bool
	positionCreated bool
}

func (r catalogResult) changed() bool {
	return r.companyCreated || r.positionCreated
}

func NewCatalogService(db *gorm.DB, repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{db: db, repo: repo}
}

// ResolveOrCreatePosition finds or creates the company and its position in one
// transaction. Input is validated before anything is written.
func (s *CatalogService) ResolveOrCreatePosition(ctx context.Context, in PositionInput) (pos *models.Position, err error) {
	ctx, span := observability.StartSpan(ctx, "CatalogService", "ResolveOrCreatePosition",
		attribute.String("company.name", in.CompanyName))
	defer span.Finish(&err)

	var c validation.Collector
	in = in.validate(&c)
	if err := c.Err(); err != nil {
		return nil, err
	}

	var res catalogResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		res, txErr = s.resolveTx(ctx, tx, in)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	if res.changed() {
		cache.InvalidateCatalog(ctx, res.position.CompanyID)
	}
	return res.position, nil
}

// ResolveOrCreatePositionTx is ResolveOrCreatePosition inside a caller-owned
// transaction. The caller commits and owns cache invalidation.
func (s *CatalogService) ResolveOrCreatePositionTx(ctx context.Context, tx *gorm.DB, in PositionInput) (*models.Position, error) {
	var c validation.Collector
	in = in.validate(&c)
	if err := c.Err(); err != nil {
		return nil, err
	}
	res, err := s.resolveTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	return res.position, nil
}

// resolveTx expects validated input.
func (s *CatalogService) resolveTx(ctx context.Context, tx *gorm.DB, in PositionInput) (catalogResult, error) {
	repo := repository.NewCatalogRepository(tx)

	company, companyCreated, err := repo.FindOrCreateCompany(ctx, &models.Company{
		CompanyName: in.CompanyName,
		Location:    in.CompanyLocation,
		SubIndustry: in.CompanySubIndustry,
	})
	if err != nil {
		return catalogResult{}, err
	}

	position, positionCreated, err := repo.FindOrCreatePosition(ctx, &models.Position{
		CompanyID:    company.ID,
		PositionName: in.PositionName,
		IsRemote:     in.IsRemote,
		MinSalary:    in.MinSalary,
		MaxSalary:    in.MaxSalary,
		TechStack:    in.TechStack,
	})
	if err != nil {
		return catalogResult{}, err
	}
	position.Company = company

	return catalogResult{
		position:        position,
		companyCreated:  companyCreated,
		positionCreated: positionCreated,
	}, nil
}

// GetCompany looks a company up by its exact name.
func (s *CatalogService) GetCompany(ctx context.Context, name string) (*models.Company, error) {
	if name == "" {
		return nil, models.NewFieldValidationError("company_name", "company name is required")
	}
	return s.repo.GetCompanyByName(ctx, name)
}

func (s *CatalogService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	err := cache.Aside(ctx, cache.CompanyListKey, &companies, cache.CatalogTTL, func() error {
		var err error
		companies, err = s.repo.ListCompanies(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return companies, nil
}

// ListPositions returns NotFoundError for an unknown company.
func (s *CatalogService) ListPositions(ctx context.Context, companyID uint) ([]models.Position, error) {
	if _, err := s.repo.GetCompanyByID(ctx, companyID); err != nil {
		return nil, err
	}

	var positions []models.Position
	err := cache.Aside(ctx, cache.PositionListKey(companyID), &positions, cache.PositionTTL, func() error {
		var err error
		positions, err = s.repo.ListPositions(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return positions, nil
}
