package models

import "time"

// Company is deduplicated by CompanyName; the first write wins for its other fields.
type Company struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyName string    `gorm:"size:255;not null;uniqueIndex:idx_companies_name" json:"company_name"`
	Location    string    `gorm:"size:255" json:"location"`
	SubIndustry string    `gorm:"size:255" json:"sub_industry"`
	CreatedAt   time.Time `json:"created_at"`

	Positions []Position `gorm:"foreignKey:CompanyID" json:"positions,omitempty"`
}

// TableName specifies the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// Position is unique per (CompanyID, PositionName).
type Position struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyID    uint      `gorm:"not null;uniqueIndex:idx_positions_company_name" json:"company_id"`
	Company      *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	PositionName string    `gorm:"size:255;not null;uniqueIndex:idx_positions_company_name" json:"position_name"`
	IsRemote     bool      `gorm:"not null;default:false" json:"is_remote"`
	MinSalary    int64     `gorm:"not null;default:0" json:"min_salary"`
	MaxSalary    int64     `gorm:"not null;default:0" json:"max_salary"`
	TechStack    string    `gorm:"type:text" json:"tech_stack"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Position) TableName() string {
	return "positions"
}
