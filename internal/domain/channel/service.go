package channel

import (
	"context"
	"strings"
	"time"

	"channelwatch/pkg/errors"
	"channelwatch/pkg/logger"
)

// Service coordinates explicit tracking requests and validates input before
// anything reaches the scheduler
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a channel service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "channel_service"),
	}
}

// ValidateID rejects malformed channel ids at the API boundary
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationError("id", "must not be empty", id)
	}
	return nil
}

// Track adds a channel at tier 1 with the given snapshot as baseline.
// Returns ErrAlreadyExists if the channel is already tracked.
func (s *Service) Track(ctx context.Context, id, title string, snap MetricSnapshot) (*Channel, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByID(ctx, id); err == nil && existing != nil {
		return nil, errors.Wrapf(errors.ErrAlreadyExists, "channel %s", id)
	} else if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "check existing channel")
	}

	now := time.Now()
	ch := &Channel{
		ID:             id,
		Title:          title,
		Tier:           Tier1,
		IsActive:       true,
		LastPromotedAt: now,
		Current:        snap,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, errors.Wrap(err, "create channel")
	}

	s.log.Infow("Channel tracked",
		"channel_id", id,
		"title", title,
		"subscribers", snap.Subscribers,
	)

	return ch, nil
}

// ActiveCount returns how many channels are tracked in total
func (s *Service) ActiveCount(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
