package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/natserract/ffcleverreach/pkg/feeds"
	"github.com/natserract/ffcleverreach/pkg/integration"
	"go.uber.org/zap"
)

func (s *Server) authCallback(c *fiber.Ctx) error {
	args := c.Request().URI().QueryArgs()
	if !args.Has("ff_cleverreach_auth") {
		return fiber.ErrNotFound
	}

	target, err := s.integration.HandleAuth(c.UserContext(), c.Query("code"), args.Has("code"))
	if err != nil {
		return err
	}
	return c.Redirect(target, fiber.StatusFound)
}

func (s *Server) getSettings(c *fiber.Ctx) error {
	settings, err := s.integration.GetGlobalSettings(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, settings)
}

func (s *Server) saveSettings(c *fiber.Ctx) error {
	var input integration.GlobalSettingsInput
	if err := c.BodyParser(&input); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request")
	}

	res, err := s.integration.SaveGlobalSettings(c.UserContext(), input)
	if err != nil {
		var respErr *integration.ResponseError
		if errors.As(err, &respErr) {
			return fail(c, respErr.StatusCode, respErr.Message)
		}
		return err
	}
	return success(c, res)
}

func (s *Server) disconnect(c *fiber.Ctx) error {
	if err := s.integration.Disconnect(c.UserContext()); err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Your settings has been updated", "status": false})
}

func (s *Server) globalFields(c *fiber.Ctx) error {
	return success(c, s.integration.GetGlobalFields())
}

func (s *Server) integrations(c *fiber.Ctx) error {
	cards := s.integration.PushIntegration(c.UserContext(), nil, c.Query("form_id"))
	return success(c, cards)
}

func (s *Server) lists(c *fiber.Ctx) error {
	return success(c, s.integration.GetLists(c.UserContext()))
}

func (s *Server) mergeFields(c *fiber.Ctx) error {
	fields, ok := s.integration.GetMergeFields(c.UserContext(), c.Params("listID"))
	if !ok {
		return success(c, false)
	}
	return success(c, fields)
}

func (s *Server) settingsFields(c *fiber.Ctx) error {
	return success(c, s.integration.GetSettingsFields(c.UserContext(), c.Params("formID")))
}

func (s *Server) integrationDefaults(c *fiber.Ctx) error {
	return success(c, s.integration.GetIntegrationDefaults(c.Params("formID")))
}

func (s *Server) listFeeds(c *fiber.Ctx) error {
	list, err := s.feeds.List(c.UserContext(), c.Params("formID"))
	if err != nil {
		return err
	}
	return success(c, list)
}

func (s *Server) getFeed(c *fiber.Ctx) error {
	feed, err := s.feeds.Get(c.UserContext(), c.Params("formID"), c.Params("feedID"))
	if errors.Is(err, feeds.ErrFeedNotFound) {
		return fail(c, fiber.StatusNotFound, "feed not found")
	}
	if err != nil {
		return err
	}
	return success(c, feed)
}

func (s *Server) createFeed(c *fiber.Ctx) error {
	var values feeds.Values
	if err := c.BodyParser(&values); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request")
	}
	if values.Name == "" {
		return fail(c, fiber.StatusUnprocessableEntity, "Feed Name is required")
	}

	feed, err := s.feeds.Save(c.UserContext(), feeds.Feed{
		FormID:   c.Params("formID"),
		Settings: values,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": feed})
}

func (s *Server) updateFeed(c *fiber.Ctx) error {
	ctx := c.UserContext()
	formID, feedID := c.Params("formID"), c.Params("feedID")

	if _, err := s.feeds.Get(ctx, formID, feedID); err != nil {
		if errors.Is(err, feeds.ErrFeedNotFound) {
			return fail(c, fiber.StatusNotFound, "feed not found")
		}
		return err
	}

	var values feeds.Values
	if err := c.BodyParser(&values); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request")
	}
	if values.Name == "" {
		return fail(c, fiber.StatusUnprocessableEntity, "Feed Name is required")
	}

	feed, err := s.feeds.Save(ctx, feeds.Feed{ID: feedID, FormID: formID, Settings: values})
	if err != nil {
		return err
	}
	return success(c, feed)
}

func (s *Server) deleteFeed(c *fiber.Ctx) error {
	err := s.feeds.Delete(c.UserContext(), c.Params("formID"), c.Params("feedID"))
	if errors.Is(err, feeds.ErrFeedNotFound) {
		return fail(c, fiber.StatusNotFound, "feed not found")
	}
	if err != nil {
		return err
	}
	return success(c, fiber.Map{"message": "Feed deleted"})
}

type submission struct {
	EntryID string                 `json:"entry_id"`
	Data    map[string]interface{} `json:"data"`
}

// submitEntry runs every enabled feed of the form whose conditionals match
// the submitted data.
func (s *Server) submitEntry(c *fiber.Ctx) error {
	var req submission
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request")
	}

	ctx := c.UserContext()
	formID := c.Params("formID")

	list, err := s.feeds.List(ctx, formID)
	if err != nil {
		return err
	}

	ran := make([]string, 0, len(list))
	for _, feed := range list {
		if !feed.Settings.Enabled || !feed.Settings.Conditionals.Matches(req.Data) {
			continue
		}
		s.integration.Notify(ctx, feeds.Process(feed, req.Data), req.Data,
			integration.Entry{ID: req.EntryID}, integration.Form{ID: formID})
		ran = append(ran, feed.ID)
	}

	s.logger.Info("Submission processed",
		zap.String("form_id", formID),
		zap.String("entry_id", req.EntryID),
		zap.Int("feeds_run", len(ran)))
	return success(c, fiber.Map{"feeds": ran})
}
