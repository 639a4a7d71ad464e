package server

import (
	"strings"
	"time"

	"jobcrm/internal/models"

	"github.com/gofiber/fiber/v2"
)

type eventRequest struct {
	Description string `json:"description"`
	Date        string `json:"date"`
}

// ListEvents handles GET /api/applications/:id/events
func (s *Server) ListEvents(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	events, err := s.timeline.ListEvents(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(events)
}

// AppendEvent handles POST /api/applications/:id/events
func (s *Server) AppendEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req eventRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	caller := callerID(c)

	raw := strings.TrimSpace(req.Date)
	date, dateErr := parseOptionalDate("date", &raw)
	if dateErr != nil {
		// ownership is reported ahead of input problems
		if _, err := s.applications.GetApplication(ctx, id, caller); err != nil {
			return models.RespondWithAppError(c, err)
		}
		return models.RespondWithAppError(c, dateErr)
	}

	var when time.Time
	if date != nil {
		when = *date
	}

	event, err := s.timeline.AppendEvent(ctx, id, caller, req.Description, when)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// RemoveEvent handles DELETE /api/events/:id
func (s *Server) RemoveEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.timeline.RemoveEvent(c.UserContext(), id, callerID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
