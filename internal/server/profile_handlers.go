package server

import (
	"jobcrm/internal/models"
	"jobcrm/internal/service"

	"github.com/gofiber/fiber/v2"
)

type profileRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Bio       string  `json:"bio"`
	Location  string  `json:"location"`
	BirthDate *string `json:"birth_date"`
}

type profilePatchRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	BirthDate *string `json:"birth_date"`
}

// CreateProfile handles POST /api/profile. Without a body it returns the
// caller's existing profile; with one it creates the profile (201) or
// reports a conflict (409).
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	var in *service.ProfileInput
	if len(c.Body()) > 0 {
		var req profileRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		birth, err := parseOptionalDate("birth_date", req.BirthDate)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		in = &service.ProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
			Location:  req.Location,
			BirthDate: birth,
		}
	}

	profile, created, err := s.profiles.GetOrCreateProfile(c.UserContext(), callerID(c), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if created {
		return c.Status(fiber.StatusCreated).JSON(profile)
	}
	return c.JSON(profile)
}

// GetMyProfile handles GET /api/profile/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profiles.GetProfile(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PATCH /api/profile/me. Absent fields are left unchanged.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req profilePatchRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	birth, err := parseOptionalDate("birth_date", req.BirthDate)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	profile, err := s.profiles.UpdateProfile(c.UserContext(), callerID(c), service.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Location:  req.Location,
		BirthDate: birth,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}
