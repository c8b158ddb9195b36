package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/repository"
)

// Store is the storage collaborator for event administration. SetLive
// clears every other live flag in the same transaction, which is what
// keeps "at most one live event" true.
type Store interface {
	CreateEvent(ctx context.Context, e domain.Event) (int64, error)
	UpdateEvent(ctx context.Context, e domain.Event) error
	SetLive(ctx context.Context, eventID int64) error
	ClearLive(ctx context.Context, eventID int64) error
}

type Notifier interface {
	Changed(ctx context.Context, eventID int64, kind string) error
}

type Service struct {
	store    Store
	notifier Notifier
}

func New(store Store, notifier Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
	}
}

// CreateEvent creates an event and returns its ID.
//
// Returns:
//   - error: admin.ErrEventConflict on a uniqueness violation.
func (s *Service) CreateEvent(ctx context.Context, e domain.Event) (int64, error) {
	const op = "service.admin.CreateEvent"

	id, err := s.store.CreateEvent(ctx, e)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, fmt.Errorf("%s: %w", op, ErrEventConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdateEvent rewrites the editable fields of an event.
//
// Returns:
//   - error: admin.ErrEventNotFound if the event does not exist.
func (s *Service) UpdateEvent(ctx context.Context, e domain.Event) error {
	const op = "service.admin.UpdateEvent"

	if err := s.store.UpdateEvent(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	_ = s.notifier.Changed(ctx, e.ID, "event_updated")

	return nil
}

// SetLive opens one event for on-site scanning, closing any other.
//
// Returns:
//   - error: admin.ErrEventNotFound if the event does not exist.
func (s *Service) SetLive(ctx context.Context, eventID int64) error {
	const op = "service.admin.SetLive"

	if err := s.store.SetLive(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	_ = s.notifier.Changed(ctx, eventID, "event_live")

	return nil
}

// ClearLive takes the event off live; scanning is disabled once no event
// is live.
//
// Returns:
//   - error: admin.ErrEventNotFound if the event does not exist.
func (s *Service) ClearLive(ctx context.Context, eventID int64) error {
	const op = "service.admin.ClearLive"

	if err := s.store.ClearLive(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	_ = s.notifier.Changed(ctx, eventID, "event_offline")

	return nil
}
