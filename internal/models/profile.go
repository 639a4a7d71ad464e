// Package models contains data structures for the application's domain models.
package models

import "time"

// Profile is the job-seeker record attached to one identity.
type Profile struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_profiles_user_id" json:"user_id"`
	FirstName string     `gorm:"size:150" json:"first_name"`
	LastName  string     `gorm:"size:150" json:"last_name"`
	Bio       string     `gorm:"type:text" json:"bio"`
	Location  string     `gorm:"size:255" json:"location"`
	BirthDate *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Applications []Application `gorm:"foreignKey:ApplicantID" json:"applications,omitempty"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}
