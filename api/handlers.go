package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/relay/pkg/storage"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// ErrorResponse is the body of every non-success response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryResponse lists a user's recent turns.
type HistoryResponse struct {
	UserID string `json:"user_id"`
	// Turns in chronological order (oldest first)
	Turns []HistoryTurn `json:"turns"`
	Count int           `json:"count"`
}

// HistoryTurn is one recorded turn.
type HistoryTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleHistory returns a user's most recent turns.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "user_id parameter required"})
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = min(n, maxHistoryLimit)
	}

	turns, err := s.history.Recent(c.UserContext(), userID, limit)
	if err != nil {
		s.logger.Error("failed to load history", "user_id", userID, "error", err)
		status := fiber.StatusInternalServerError
		if storage.IsUnavailable(err) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(ErrorResponse{Error: "failed to load history"})
	}

	resp := HistoryResponse{
		UserID: userID,
		Turns:  make([]HistoryTurn, 0, len(turns)),
	}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, HistoryTurn{
			Role:      string(t.Role),
			Content:   t.Content,
			Timestamp: t.Timestamp,
		})
	}
	resp.Count = len(resp.Turns)

	return c.JSON(resp)
}
