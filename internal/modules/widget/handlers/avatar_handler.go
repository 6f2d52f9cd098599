package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/avatar"
)

type AvatarHandler struct {
	heygen *avatar.HeyGenClient
}

func NewAvatarHandler(heygen *avatar.HeyGenClient) *AvatarHandler {
	return &AvatarHandler{heygen: heygen}
}

// AvatarSessionRequest identifies a running avatar session
type AvatarSessionRequest struct {
	SessionID string `json:"session_id" example:"c1f0..."`
}

// AvatarSpeakRequest represents request body for making the avatar speak
type AvatarSpeakRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text" example:"Welcome! How can I help you today?"`
	TaskType  string `json:"task_type,omitempty" example:"talk"`
}

// requireAvatar answers 503 when no HeyGen key is configured.
func (h *AvatarHandler) requireAvatar(c *fiber.Ctx) error {
	if !h.heygen.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "avatar is not configured",
		})
	}
	return c.Next()
}

// CreateToken godoc
// @Summary Create avatar streaming token
// @Tags Avatar
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /avatar/token [post]
func (h *AvatarHandler) CreateToken(c *fiber.Ctx) error {
	token, err := h.heygen.CreateToken(c.UserContext())
	if err != nil {
		return upstreamError(c, "failed to create avatar token", err)
	}
	return c.JSON(fiber.Map{"token": token})
}

// StartSession godoc
// @Summary Start avatar session
// @Description Creates and starts a streaming session with the default avatar
// @Tags Avatar
// @Produce json
// @Success 201 {object} avatar.SessionInfo
// @Failure 502 {object} map[string]string
// @Router /avatar/sessions [post]
func (h *AvatarHandler) StartSession(c *fiber.Ctx) error {
	info, err := h.heygen.NewSession(c.UserContext(), avatar.DefaultSessionRequest())
	if err != nil {
		return upstreamError(c, "failed to create avatar session", err)
	}
	if err := h.heygen.StartSession(c.UserContext(), info.SessionID); err != nil {
		return upstreamError(c, "failed to start avatar session", err)
	}
	return c.Status(fiber.StatusCreated).JSON(info)
}

// Speak godoc
// @Summary Make the avatar speak
// @Tags Avatar
// @Accept json
// @Produce json
// @Param data body AvatarSpeakRequest true "Text to speak"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /avatar/speak [post]
func (h *AvatarHandler) Speak(c *fiber.Ctx) error {
	var req AvatarSpeakRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request",
		})
	}
	if req.SessionID == "" || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id and text are required",
		})
	}

	err := h.heygen.Speak(c.UserContext(), avatar.TaskRequest{
		SessionID: req.SessionID,
		Text:      req.Text,
		TaskType:  req.TaskType,
	})
	if err != nil {
		return upstreamError(c, "failed to send avatar task", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Interrupt godoc
// @Summary Interrupt the avatar
// @Tags Avatar
// @Accept json
// @Produce json
// @Param data body AvatarSessionRequest true "Session"
// @Success 200 {object} map[string]string
// @Router /avatar/interrupt [post]
func (h *AvatarHandler) Interrupt(c *fiber.Ctx) error {
	var req AvatarSessionRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}
	if err := h.heygen.Interrupt(c.UserContext(), req.SessionID); err != nil {
		return upstreamError(c, "failed to interrupt avatar", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// StopSession godoc
// @Summary Stop avatar session
// @Tags Avatar
// @Accept json
// @Produce json
// @Param data body AvatarSessionRequest true "Session"
// @Success 200 {object} map[string]string
// @Router /avatar/stop [post]
func (h *AvatarHandler) StopSession(c *fiber.Ctx) error {
	var req AvatarSessionRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}
	if err := h.heygen.StopSession(c.UserContext(), req.SessionID); err != nil {
		return upstreamError(c, "failed to stop avatar session", err)
	}
	return c.JSON(fiber.Map{"status": "stopped"})
}

func upstreamError(c *fiber.Ctx, msg string, err error) error {
	log.Error().Err(err).Msg(msg)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": msg,
	})
}
