package server

import (
	"time"

	"skillshare/internal/models"
	"skillshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// planRequest is the JSON body for creating and updating learning plans.
// Dates are accepted as "2006-01-02" or RFC 3339.
type planRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
	Resources   []string `json:"resources"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Status      string   `json:"status"`
}

func parsePlanDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (r planRequest) dates(c *fiber.Ctx) (start, end time.Time, ok bool) {
	fields := models.FieldErrors{}
	start, err := parsePlanDate(r.StartDate)
	if err != nil {
		fields["startDate"] = "Start date must be a valid date"
	}
	end, err = parsePlanDate(r.EndDate)
	if err != nil {
		fields["endDate"] = "End date must be a valid date"
	}
	if len(fields) > 0 {
		_ = models.RespondWithFieldErrors(c, fields)
		return start, end, false
	}
	return start, end, true
}

// CreateLearningPlan handles POST /api/learning-plans
func (s *Server) CreateLearningPlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid request body"))
	}

	start, end, ok := req.dates(c)
	if !ok {
		return nil
	}

	plan, err := s.planService.CreatePlan(c.Context(), service.CreatePlanInput{
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Topics:      req.Topics,
		Resources:   req.Resources,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// GetLearningPlan handles GET /api/learning-plans/:id
func (s *Server) GetLearningPlan(c *fiber.Ctx) error {
	planID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	plan, err := s.planService.GetPlan(c.Context(), planID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(plan)
}

// GetUserPlans handles GET /api/learning-plans/user/:userId
func (s *Server) GetUserPlans(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page, size := models.PageParams(c)

	result, err := s.planService.GetUserPlans(c.Context(), userID, page, size)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetUserPlansByStatus handles GET /api/learning-plans/user/:userId/status/:status
func (s *Server) GetUserPlansByStatus(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	plans, err := s.planService.GetUserPlansByStatus(c.Context(), userID,
		models.PlanStatus(c.Params("status")))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if plans == nil {
		plans = []*models.LearningPlan{}
	}
	return c.JSON(plans)
}

// GetActiveUserPlans handles GET /api/learning-plans/user/:userId/active
func (s *Server) GetActiveUserPlans(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	plans, err := s.planService.GetActiveUserPlans(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if plans == nil {
		plans = []*models.LearningPlan{}
	}
	return c.JSON(plans)
}

// CountUserPlansByStatus handles GET /api/learning-plans/user/:userId/count/:status.
// Returns a bare number.
func (s *Server) CountUserPlansByStatus(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	count, err := s.planService.CountUserPlansByStatus(c.Context(), userID,
		models.PlanStatus(c.Params("status")))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(count)
}

// SearchLearningPlans handles GET /api/learning-plans/search?topic=
func (s *Server) SearchLearningPlans(c *fiber.Ctx) error {
	plans, err := s.planService.SearchPlansByTopic(c.Context(), c.Query("topic"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if plans == nil {
		plans = []*models.LearningPlan{}
	}
	return c.JSON(plans)
}

// UpdateLearningPlan handles PUT /api/learning-plans/:id
func (s *Server) UpdateLearningPlan(c *fiber.Ctx) error {
	planID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid request body"))
	}

	start, end, ok := req.dates(c)
	if !ok {
		return nil
	}

	plan, err := s.planService.UpdatePlan(c.Context(), service.UpdatePlanInput{
		UserID:      currentUserID(c),
		PlanID:      planID,
		Title:       req.Title,
		Description: req.Description,
		Topics:      req.Topics,
		Resources:   req.Resources,
		StartDate:   start,
		EndDate:     end,
		Status:      models.PlanStatus(req.Status),
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(plan)
}

// DeleteLearningPlan handles DELETE /api/learning-plans/:id
func (s *Server) DeleteLearningPlan(c *fiber.Ctx) error {
	planID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.planService.DeletePlan(c.Context(), currentUserID(c), planID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ValidatePlanTopic handles GET /api/learning-plans/validate-topic?topic=.
// Returns a bare boolean.
func (s *Server) ValidatePlanTopic(c *fiber.Ctx) error {
	return c.JSON(s.planService.IsValidTopic(c.Query("topic")))
}

// ValidatePlanResource handles GET /api/learning-plans/validate-resource?resource=.
// Returns a bare boolean.
func (s *Server) ValidatePlanResource(c *fiber.Ctx) error {
	return c.JSON(s.planService.IsValidResource(c.Query("resource")))
}
