// Package server exposes the integration to the form builder over HTTP.
package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/natserract/ffcleverreach/pkg/feeds"
	"github.com/natserract/ffcleverreach/pkg/integration"
	"go.uber.org/zap"
)

type Server struct {
	app         *fiber.App
	integration *integration.Integration
	feeds       *feeds.Store
	logger      *zap.Logger
}

func New(in *integration.Integration, store *feeds.Store, log *zap.Logger) *Server {
	s := &Server{
		integration: in,
		feeds:       store,
		logger:      log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "ffcleverreach",
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} | ${path}\n",
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/", s.authCallback)

	s.app.Get("/settings", s.getSettings)
	s.app.Post("/settings", s.saveSettings)
	s.app.Delete("/settings", s.disconnect)
	s.app.Get("/settings/fields", s.globalFields)

	s.app.Get("/integrations", s.integrations)

	s.app.Get("/lists", s.lists)
	s.app.Get("/lists/:listID/fields", s.mergeFields)

	forms := s.app.Group("/forms/:formID")
	// Static feed routes are registered before /feeds/:feedID.
	forms.Get("/feeds/fields", s.settingsFields)
	forms.Get("/feeds/defaults", s.integrationDefaults)
	forms.Get("/feeds", s.listFeeds)
	forms.Post("/feeds", s.createFeed)
	forms.Get("/feeds/:feedID", s.getFeed)
	forms.Put("/feeds/:feedID", s.updateFeed)
	forms.Delete("/feeds/:feedID", s.deleteFeed)
	forms.Post("/entries", s.submitEntry)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()))
	}
	return fail(c, code, err.Error())
}

func success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"data": fiber.Map{
			"message": message,
			"status":  false,
		},
	})
}
