package repository

import (
	"context"
	"errors"

	"jobcrm/internal/models"
	"jobcrm/internal/observability"

	"gorm.io/gorm"
)

// CatalogRepository persists companies and their positions.
type CatalogRepository interface {
	FindOrCreateCompany(ctx context.Context, company *models.Company) (*models.Company, bool, error)
	FindOrCreatePosition(ctx context.Context, position *models.Position) (*models.Position, bool, error)
	GetCompanyByID(ctx context.Context, id uint) (*models.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	ListPositions(ctx context.Context, companyID uint) ([]models.Position, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository returns a CatalogRepository bound to db (which may be a transaction).
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// FindOrCreateCompany returns the company named company.CompanyName, inserting
// company when none exists. Attributes of an existing company are left as stored.
func (r *catalogRepository) FindOrCreateCompany(ctx context.Context, company *models.Company) (*models.Company, bool, error) {
	return findOrInsert(ctx, r.db, "companies", company, []string{"company_name"}, func(db *gorm.DB) *gorm.DB {
		return db.Where("company_name = ?", company.CompanyName)
	})
}

// FindOrCreatePosition is keyed by (company_id, position_name).
func (r *catalogRepository) FindOrCreatePosition(ctx context.Context, position *models.Position) (*models.Position, bool, error) {
	return findOrInsert(ctx, r.db, "positions", position, []string{"company_id", "position_name"}, func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ? AND position_name = ?", position.CompanyID, position.PositionName)
	})
}

func (r *catalogRepository) GetCompanyByID(ctx context.Context, id uint) (*models.Company, error) {
	defer observability.TrackQuery("select", "companies")()

	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Company", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &company, nil
}

func (r *catalogRepository) GetCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	defer observability.TrackQuery("select", "companies")()

	var company models.Company
	if err := r.db.WithContext(ctx).Where("company_name = ?", name).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Company", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &company, nil
}

func (r *catalogRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	defer observability.TrackQuery("select", "companies")()

	var companies []models.Company
	if err := r.db.WithContext(ctx).Order("company_name ASC").Find(&companies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return companies, nil
}

func (r *catalogRepository) ListPositions(ctx context.Context, companyID uint) ([]models.Position, error) {
	defer observability.TrackQuery("select", "positions")()

	var positions []models.Position
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("position_name ASC").
		Find(&positions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return positions, nil
}
