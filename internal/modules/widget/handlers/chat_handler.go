package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessageRequest represents request body for sending a chat message
type SendMessageRequest struct {
	Message string `json:"message" example:"What are your opening hours?"`
}

// StartSession godoc
// @Summary Start a chat session
// @Description Creates a session greeted with the business welcome message
// @Tags Chat
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /chat/sessions [post]
func (h *ChatHandler) StartSession(c *fiber.Ctx) error {
	session := h.chatService.StartSession()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": session.ID,
		"messages":   session.Messages(),
	})
}

// SendMessage godoc
// @Summary Send a message
// @Description Runs one chat turn and returns the assistant reply with suggested content
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param data body SendMessageRequest true "User message"
// @Success 200 {object} chat.Reply
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /chat/sessions/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request",
		})
	}

	reply, err := h.chatService.SendMessage(c.UserContext(), c.Params("id"), req.Message)
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	case err != nil:
		log.Error().Err(err).Str("session_id", c.Params("id")).Msg("chat turn failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to process message",
		})
	}

	return c.JSON(reply)
}

// GetMessages godoc
// @Summary Get session messages
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} chat.Message
// @Failure 404 {object} map[string]string
// @Router /chat/sessions/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	msgs, err := h.chatService.Messages(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}
	return c.JSON(msgs)
}

// ClearMessages godoc
// @Summary Clear session messages
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /chat/sessions/{id}/messages [delete]
func (h *ChatHandler) ClearMessages(c *fiber.Ctx) error {
	if err := h.chatService.ClearMessages(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}
	return c.JSON(fiber.Map{"message": "messages cleared"})
}

// GetHistory godoc
// @Summary Get persisted conversation turns
// @Description Returns logged turns of a session, newest first
// @Tags Chat
// @Produce json
// @Param id path string true "Session ID"
// @Param limit query int false "Max turns" default(20)
// @Success 200 {array} models.ConversationTurn
// @Router /chat/sessions/{id}/history [get]
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	turns, err := h.chatService.History(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch history",
		})
	}
	return c.JSON(turns)
}
