package validation

import "time"

// BirthDate rejects dates after today. nil is accepted.
func (c *Collector) BirthDate(field string, birth *time.Time, now time.Time) {
	if birth == nil {
		return
	}
	if birth.After(now) {
		c.Add(field, humanize(field)+" must not be in the future")
	}
}
