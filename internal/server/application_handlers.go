package server

import (
	"jobcrm/internal/models"
	"jobcrm/internal/service"

	"github.com/gofiber/fiber/v2"
)

type transitionRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

// CreateApplication handles POST /api/applications. A new application answers
// 201; resubmitting an existing one answers 200 with the stored record.
func (s *Server) CreateApplication(c *fiber.Ctx) error {
	var req service.NewApplicationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	app, created, err := s.applications.CreateApplication(c.UserContext(), callerID(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	status, message := fiber.StatusOK, service.MsgApplicationExists
	if created {
		status, message = fiber.StatusCreated, service.MsgApplicationCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"message":     message,
		"created":     created,
		"application": app,
	})
}

// ListApplications handles GET /api/applications?status=...
// Without a filter only active applications are listed.
func (s *Server) ListApplications(c *fiber.Ctx) error {
	apps, err := s.applications.ListApplications(c.UserContext(), callerID(c), parseStatuses(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(apps)
}

// ListAllApplications handles GET /api/applications/all
func (s *Server) ListAllApplications(c *fiber.Ctx) error {
	apps, err := s.applications.ListAllApplications(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(apps)
}

// GetApplicationSummary handles GET /api/applications/summary
func (s *Server) GetApplicationSummary(c *fiber.Ctx) error {
	counts, err := s.applications.CountByStatus(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return c.JSON(fiber.Map{
		"counts": counts,
		"total":  total,
	})
}

// GetApplication handles GET /api/applications/:id
func (s *Server) GetApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	app, err := s.applications.GetApplication(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(app)
}

// TransitionApplication handles PATCH /api/applications/:id/status
func (s *Server) TransitionApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req transitionRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	app, err := s.applications.TransitionApplication(c.UserContext(), id, callerID(c), req.Status)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(app)
}
