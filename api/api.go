package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/papercomputeco/relay/pkg/agent"
	"github.com/papercomputeco/relay/pkg/storage"
)

// Asker answers a message for a user.
type Asker interface {
	Ask(ctx context.Context, message, userID string) (*agent.Answer, error)
}

// Sender delivers a text message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Server is the relay's HTTP server.
type Server struct {
	config  Config
	asker   Asker
	history storage.Driver
	sender  Sender
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The history driver is injected so it can be shared with the orchestrator.
func NewServer(config Config, asker Asker, history storage.Driver, sender Sender, logger *slog.Logger) (*Server, error) {
	switch {
	case asker == nil:
		return nil, errors.New("asker is required")
	case history == nil:
		return nil, errors.New("history driver is required")
	case sender == nil:
		return nil, errors.New("sender is required")
	case (config.Inspect || config.MCPHandler != nil) && config.APIToken == "":
		return nil, errors.New("an API token is required to expose the inspection or MCP routes")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		asker:   asker,
		history: history,
		sender:  sender,
		logger:  logger,
		app:     app,
	}

	app.Use(recover.New())
	app.Use(requestid.New())

	app.Post("/", s.handleWebhook)
	app.Get("/ping", s.handlePing)

	// Conversation data is only served with the API token.
	if config.Inspect {
		app.Get("/v1/history/:user_id", s.requireToken(), s.handleHistory)
	}
	if config.MCPHandler != nil {
		app.All("/mcp", s.requireToken(), adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// requireToken rejects requests without the configured bearer token.
func (s *Server) requireToken() fiber.Handler {
	token := []byte(s.config.APIToken)
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), token) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			s.logger.Warn("rejected unauthenticated request", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "missing or invalid API token"})
		},
	})
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"mcp", s.config.MCPHandler != nil,
		"inspect", s.config.Inspect,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server on ln.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting API server",
		"listen", ln.Addr().String(),
		"mcp", s.config.MCPHandler != nil,
		"inspect", s.config.Inspect,
	)
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// ShutdownWithContext shuts down the API server, giving up when ctx ends.
func (s *Server) ShutdownWithContext(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
