// Package validation turns typed input into a structured list of field errors.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"jobcrm/internal/models"
)

// Column limits shared with the schema.
const (
	MaxNameLen        = 255
	MaxPersonNameLen  = 150
	MaxDescriptionLen = 2000
	MaxTechStackLen   = 2000
	MaxBioLen         = 5000
)

// Collector accumulates field errors so callers report every problem at once.
type Collector struct {
	fields []models.FieldError
}

// Add records a failure for field.
func (c *Collector) Add(field, message string) {
	c.fields = append(c.fields, models.FieldError{Field: field, Message: message})
}

// Required trims value and checks it is non-empty and at most max runes.
// The trimmed value is returned.
func (c *Collector) Required(field, value string, max int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		c.Add(field, fmt.Sprintf("%s is required", humanize(field)))
		return value
	}
	c.MaxLen(field, value, max)
	return value
}

// Optional trims value and checks its length when non-empty.
func (c *Collector) Optional(field, value string, max int) string {
	value = strings.TrimSpace(value)
	if value != "" {
		c.MaxLen(field, value, max)
	}
	return value
}

// MaxLen checks value is at most max runes.
func (c *Collector) MaxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		c.Add(field, fmt.Sprintf("%s must be at most %d characters", humanize(field), max))
	}
}

// NonNegative checks v >= 0.
func (c *Collector) NonNegative(field string, v int64) {
	if v < 0 {
		c.Add(field, fmt.Sprintf("%s must not be negative", humanize(field)))
	}
}

// Fields returns the collected failures.
func (c *Collector) Fields() []models.FieldError {
	return c.fields
}

// Err returns a validation AppError listing every failure, or nil.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return models.NewValidationErrors(c.fields)
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
