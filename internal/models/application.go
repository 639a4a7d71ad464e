package models

import "time"

// ApplicationStatus is the lifecycle state of an Application.
type ApplicationStatus string

const (
	// ApplicationStatusOpen is the initial state of every application.
	ApplicationStatusOpen ApplicationStatus = "Open"
	// ApplicationStatusOfferExtended means the company made an offer.
	ApplicationStatusOfferExtended ApplicationStatus = "Offer extended"
	// ApplicationStatusRejected means the company declined the applicant.
	ApplicationStatusRejected ApplicationStatus = "Rejected"
	// ApplicationStatusWithdrawn means the applicant pulled out.
	ApplicationStatusWithdrawn ApplicationStatus = "Withdrawn"
	// ApplicationStatusClosed means an extended offer was settled.
	ApplicationStatusClosed ApplicationStatus = "Closed"
)

// AllApplicationStatuses lists every status in lifecycle order.
var AllApplicationStatuses = []ApplicationStatus{
	ApplicationStatusOpen,
	ApplicationStatusOfferExtended,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
	ApplicationStatusClosed,
}

// ActiveApplicationStatuses is the default pipeline view.
var ActiveApplicationStatuses = []ApplicationStatus{
	ApplicationStatusOpen,
	ApplicationStatusOfferExtended,
}

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusOpen: {
		ApplicationStatusOfferExtended,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusOfferExtended: {
		ApplicationStatusClosed,
		ApplicationStatusWithdrawn,
	},
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	for _, known := range AllApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ApplicationStatus) Terminal() bool {
	return len(applicationTransitions[s]) == 0
}

// Application links an applicant Profile to a Position.
type Application struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ApplicantID uint              `gorm:"not null;uniqueIndex:idx_applications_applicant_position" json:"applicant_id"`
	Applicant   *Profile          `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	PositionID  uint              `gorm:"not null;uniqueIndex:idx_applications_applicant_position;index" json:"position_id"`
	Position    *Position         `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'Open';index:idx_applications_status" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Events []Event `gorm:"foreignKey:ApplicationID" json:"events,omitempty"`
}

// TableName specifies the table name for GORM
func (Application) TableName() string {
	return "applications"
}

// OwnedBy reports whether the applicant profile belongs to userID.
// The Applicant relation must be loaded.
func (a *Application) OwnedBy(userID uint) bool {
	return a.Applicant != nil && a.Applicant.UserID == userID
}
