package validation

// SalaryRangeMessage is reported on min_salary when the range is inverted.
const SalaryRangeMessage = "min salary must not exceed max salary"

// SalaryRange checks both bounds are non-negative and min <= max.
func (c *Collector) SalaryRange(min, max int64) {
	c.NonNegative("min_salary", min)
	c.NonNegative("max_salary", max)
	if min > max {
		c.Add("min_salary", SalaryRangeMessage)
	}
}
