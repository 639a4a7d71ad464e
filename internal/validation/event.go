package validation

import (
	"time"

	"jobcrm/internal/models"
)

// Date parses a YYYY-MM-DD calendar date. A blank value is reported as missing.
func (c *Collector) Date(field, value string) (time.Time, bool) {
	if value == "" {
		c.Add(field, humanize(field)+" is required")
		return time.Time{}, false
	}
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		c.Add(field, humanize(field)+" must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return d, true
}

// RequiredDate checks t is set and returns it truncated to its calendar date.
func (c *Collector) RequiredDate(field string, t time.Time) time.Time {
	if t.IsZero() {
		c.Add(field, humanize(field)+" is required")
		return t
	}
	return models.TruncateDate(t)
}
