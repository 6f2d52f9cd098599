package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/services"
)

type HealthHandler struct {
	chatService *services.ChatService
	gatherer    prometheus.Gatherer
}

func NewHealthHandler(chatService *services.ChatService, gatherer prometheus.Gatherer) *HealthHandler {
	return &HealthHandler{chatService: chatService, gatherer: gatherer}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	stats := h.chatService.Stats()
	return c.JSON(fiber.Map{
		"status":          "ok",
		"service":         "widget-api",
		"provider":        stats.Provider,
		"active_sessions": h.chatService.ActiveSessions(),
	})
}

// GetStats godoc
// @Summary Answering statistics
// @Description Turns answered per route and the share answered without an AI call
// @Tags Health
// @Produce json
// @Success 200 {object} chat.Stats
// @Router /stats [get]
func (h *HealthHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(h.chatService.Stats())
}

// GetIntentStats godoc
// @Summary Logged turns per intent
// @Description Counts persisted conversation turns of the active business by detected intent
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 500 {object} map[string]string
// @Router /stats/intents [get]
func (h *HealthHandler) GetIntentStats(c *fiber.Ctx) error {
	counts, err := h.chatService.IntentCounts(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load intent statistics",
		})
	}
	return c.JSON(counts)
}

// Metrics serves the Prometheus exposition format.
func (h *HealthHandler) Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
