package server

import (
	"strings"

	"jobcrm/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListCompanies handles GET /api/companies. With ?name= it returns that one company.
func (s *Server) ListCompanies(c *fiber.Ctx) error {
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		company, err := s.catalog.GetCompany(c.UserContext(), name)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(company)
	}

	companies, err := s.catalog.ListCompanies(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(companies)
}

// ListCompanyPositions handles GET /api/companies/:id/positions
func (s *Server) ListCompanyPositions(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	positions, err := s.catalog.ListPositions(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(positions)
}
