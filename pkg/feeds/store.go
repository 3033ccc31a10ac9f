package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/natserract/ffcleverreach/pkg/settings"
	"go.uber.org/zap"
)

// ErrFeedNotFound is returned when a feed id is unknown for the form.
var ErrFeedNotFound = errors.New("feeds: feed not found")

// Store keeps each form's feeds as one JSON option in the host option store.
type Store struct {
	options settings.Store
	logger  *zap.Logger
}

func NewStore(options settings.Store, logger *zap.Logger) *Store {
	return &Store{options: options, logger: logger}
}

func optionKey(formID string) string {
	return MetaKey + "_" + formID
}

// List returns the form's feeds in insertion order.
func (s *Store) List(ctx context.Context, formID string) ([]Feed, error) {
	raw, err := s.options.Get(ctx, optionKey(formID))
	if errors.Is(err, settings.ErrNotFound) {
		return []Feed{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds for form %s: %w", formID, err)
	}

	var list []Feed
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to decode feeds for form %s: %w", formID, err)
	}
	return list, nil
}

// Get returns one feed of the form.
func (s *Store) Get(ctx context.Context, formID, feedID string) (Feed, error) {
	list, err := s.List(ctx, formID)
	if err != nil {
		return Feed{}, err
	}
	for _, f := range list {
		if f.ID == feedID {
			return f, nil
		}
	}
	return Feed{}, ErrFeedNotFound
}

// Save inserts the feed, or replaces the stored feed with the same id.
// A feed without an id gets a new one.
func (s *Store) Save(ctx context.Context, feed Feed) (Feed, error) {
	list, err := s.List(ctx, feed.FormID)
	if err != nil {
		return Feed{}, err
	}

	if feed.ID == "" {
		feed.ID = uuid.NewString()
		list = append(list, feed)
	} else {
		replaced := false
		for i := range list {
			if list[i].ID == feed.ID {
				list[i] = feed
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, feed)
		}
	}

	if err := s.write(ctx, feed.FormID, list); err != nil {
		return Feed{}, err
	}
	s.logger.Info("Feed saved", zap.String("form_id", feed.FormID), zap.String("feed_id", feed.ID))
	return feed, nil
}

// Delete removes one feed of the form.
func (s *Store) Delete(ctx context.Context, formID, feedID string) error {
	list, err := s.List(ctx, formID)
	if err != nil {
		return err
	}

	kept := make([]Feed, 0, len(list))
	for _, f := range list {
		if f.ID != feedID {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(list) {
		return ErrFeedNotFound
	}

	if err := s.write(ctx, formID, kept); err != nil {
		return err
	}
	s.logger.Info("Feed deleted", zap.String("form_id", formID), zap.String("feed_id", feedID))
	return nil
}

func (s *Store) write(ctx context.Context, formID string, list []Feed) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode feeds: %w", err)
	}
	if err := s.options.Update(ctx, optionKey(formID), raw); err != nil {
		return fmt.Errorf("failed to write feeds for form %s: %w", formID, err)
	}
	return nil
}
