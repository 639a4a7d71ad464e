package server

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"jobcrm/internal/middleware"
	"jobcrm/internal/models"
	"jobcrm/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The message is derived from the parameter name ("id" -> "Invalid ID",
// "eventId" -> "Invalid event ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if prefix, ok := strings.CutSuffix(param, "Id"); ok {
		return strings.ToLower(strings.Join(splitCamel(prefix), " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// callerID returns the authenticated user. Routes under /api always have one.
func callerID(c *fiber.Ctx) uint {
	userID, _ := middleware.CurrentUser(c)
	return userID
}

// parseBody decodes the JSON body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// parseStatuses reads the status filter. Both repeated parameters
// (?status=Open&status=Rejected) and comma lists are accepted.
func parseStatuses(c *fiber.Ctx) []models.ApplicationStatus {
	var statuses []models.ApplicationStatus
	for _, raw := range c.Context().QueryArgs().PeekMulti("status") {
		for _, part := range strings.Split(string(raw), ",") {
			if part = strings.TrimSpace(part); part != "" {
				statuses = append(statuses, models.ApplicationStatus(part))
			}
		}
	}
	return statuses
}

// parseOptionalDate parses a YYYY-MM-DD value. nil is returned for a blank value.
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	var v validation.Collector
	d, ok := v.Date(field, strings.TrimSpace(*value))
	if !ok {
		return nil, v.Err()
	}
	return &d, nil
}
