package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/services"
)

type BusinessHandler struct {
	businessService *services.BusinessService
}

func NewBusinessHandler(businessService *services.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// GetBusiness godoc
// @Summary Get business profile
// @Description Returns the active business profile the widget answers for
// @Tags Business
// @Produce json
// @Success 200 {object} business.Config
// @Router /business [get]
func (h *BusinessHandler) GetBusiness(c *fiber.Ctx) error {
	return c.JSON(h.businessService.Business())
}

// GetInsights godoc
// @Summary Get business insights
// @Description Returns missing information, recommendations and the AI readiness score
// @Tags Business
// @Produce json
// @Success 200 {object} services.Insights
// @Router /business/insights [get]
func (h *BusinessHandler) GetInsights(c *fiber.Ctx) error {
	return c.JSON(h.businessService.Insights())
}

// GetKnowledgeBase godoc
// @Summary Get knowledge base
// @Description Returns every knowledge item of the active business
// @Tags KnowledgeBase
// @Produce json
// @Success 200 {array} business.KnowledgeItem
// @Router /knowledge-base [get]
func (h *BusinessHandler) GetKnowledgeBase(c *fiber.Ctx) error {
	return c.JSON(h.businessService.Knowledge())
}

// SearchKnowledgeBase godoc
// @Summary Search knowledge base
// @Tags KnowledgeBase
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} business.KnowledgeItem
// @Failure 400 {object} map[string]string
// @Router /knowledge-base/search [get]
func (h *BusinessHandler) SearchKnowledgeBase(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}
	return c.JSON(h.businessService.SearchKnowledge(q))
}

// KnowledgeItemRequest represents request body for adding knowledge base item
type KnowledgeItemRequest struct {
	ID         string   `json:"id,omitempty" example:"kb_parking"`
	Question   string   `json:"question" example:"Is there parking?"`
	Answer     string   `json:"answer" example:"Yes, free parking behind the building."`
	Tags       []string `json:"tags,omitempty" example:"parking,location"`
	ContentIDs []string `json:"contentIds,omitempty" example:"location-map"`
	Priority   int      `json:"priority,omitempty" example:"5"`
}

// AddKnowledgeItem godoc
// @Summary Add knowledge base item
// @Description Persists a question/answer pair and makes it searchable immediately
// @Tags KnowledgeBase
// @Accept json
// @Produce json
// @Param data body KnowledgeItemRequest true "Knowledge item"
// @Success 201 {object} business.KnowledgeItem
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /knowledge-base [post]
func (h *BusinessHandler) AddKnowledgeItem(c *fiber.Ctx) error {
	var req KnowledgeItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request",
		})
	}

	item, err := h.businessService.AddKnowledge(c.UserContext(), business.KnowledgeItem{
		ID:         req.ID,
		Question:   req.Question,
		Answer:     req.Answer,
		Tags:       req.Tags,
		ContentIDs: req.ContentIDs,
		Priority:   req.Priority,
	})
	switch {
	case errors.Is(err, services.ErrInvalidKnowledge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question and answer are required",
		})
	case errors.Is(err, services.ErrDuplicateKnowledge):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "knowledge item already exists",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save knowledge item",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}
