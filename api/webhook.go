package api

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/relay/pkg/telegram"
	"github.com/papercomputeco/relay/pkg/utils"
)

// ApologyMessage is sent to the chat instead of any internal error text.
const ApologyMessage = "Sorry, something went wrong while processing your message. Please try again later."

// WebhookResponse acknowledges a delivered reply.
type WebhookResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// handleWebhook answers one Telegram update and relays the reply to the
// originating chat.
func (s *Server) handleWebhook(c *fiber.Ctx) error {
	if s.config.WebhookSecret != "" && c.Get(telegram.SecretTokenHeader) != s.config.WebhookSecret {
		s.logger.Warn("webhook request with invalid secret token", "ip", c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "invalid secret token"})
	}

	var update telegram.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid update payload"})
	}

	msg := update.Message
	if msg == nil || msg.Text == "" || msg.Chat == nil || msg.Chat.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "message text or chat id not found"})
	}

	ctx := c.UserContext()
	chatID := msg.Chat.ID
	log := s.logger.With(
		"request_id", c.Locals("requestid"),
		"chat_id", chatID,
	)
	log.Info("webhook message received", "text", utils.Truncate(msg.Text, 80))

	answer, err := s.asker.Ask(ctx, msg.Text, strconv.FormatInt(chatID, 10))
	if err != nil {
		log.Error("failed to process message", "error", err)
		if sendErr := s.sender.SendMessage(ctx, chatID, ApologyMessage); sendErr != nil {
			log.Error("failed to deliver apology", "error", sendErr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to process message"})
	}

	if err := s.sender.SendMessage(ctx, chatID, answer.Reply); err != nil {
		log.Error("failed to deliver reply", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to deliver reply"})
	}

	log.Info("reply delivered", "search_degraded", answer.SearchErr != nil)
	return c.JSON(WebhookResponse{OK: true, Message: "message delivered"})
}
