package models

import "time"

// Event is a dated note on an application's timeline.
type Event struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ApplicationID uint         `gorm:"not null;index:idx_events_application_date" json:"application_id"`
	Application   *Application `gorm:"foreignKey:ApplicationID" json:"-"`
	Description   string       `gorm:"type:text;not null" json:"description"`
	Date          time.Time    `gorm:"type:date;not null;index:idx_events_application_date" json:"date"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// TruncateDate drops the clock part of t, keeping its calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
