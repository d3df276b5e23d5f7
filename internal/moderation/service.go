package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gratefultolord/community_bot/internal/db"
)

var (
	ErrAlreadyReviewed = errors.New("profile already reviewed")
	ErrNotFound        = errors.New("profile not found")
)

type ProfileStore interface {
	GetByID(id int64) (*db.Profile, error)
	GetByUsername(username string) (*db.Profile, error)
	SetReviewDecision(id int64, status string, reviewerID int64) (bool, error)
	DeleteIfUnreviewed(id int64) (bool, error)
	Delete(username string) (bool, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, id int64, username string)
}

// Service owns the profile lifecycle transitions. A single mutex serializes
// all transitions so two concurrent decisions cannot race past the
// unreviewed guard.
type Service struct {
	mu       sync.Mutex
	profiles ProfileStore
	cache    Invalidator
	logger   *zap.Logger
}

func NewService(profiles ProfileStore, cache Invalidator, logger *zap.Logger) *Service {
	return &Service{
		profiles: profiles,
		cache:    cache,
		logger:   logger,
	}
}

// Approve marks a pending profile approved and records the reviewer. Returns
// the profile as it was before the transition so callers can notify the
// submitter.
func (s *Service) Approve(ctx context.Context, id, reviewerID int64) (*db.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.profiles.GetByID(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("moderation.Approve: %w", err)
	}

	ok, err := s.profiles.SetReviewDecision(id, db.StatusApproved, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("moderation.Approve: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyReviewed
	}

	s.cache.Invalidate(ctx, profile.ID, profile.Username)
	s.logger.Info("profile approved",
		zap.Int64("profile_id", id),
		zap.Int64("reviewer_id", reviewerID))

	return profile, nil
}

// Reject deletes the submission outright, freeing the username for an
// immediate resubmission.
func (s *Service) Reject(ctx context.Context, id, reviewerID int64) (*db.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.profiles.GetByID(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("moderation.Reject: %w", err)
	}

	ok, err := s.profiles.DeleteIfUnreviewed(id)
	if err != nil {
		return nil, fmt.Errorf("moderation.Reject: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyReviewed
	}

	s.cache.Invalidate(ctx, profile.ID, profile.Username)
	s.logger.Info("profile rejected",
		zap.Int64("profile_id", id),
		zap.Int64("reviewer_id", reviewerID))

	return profile, nil
}

// Delete is the direct administrative removal of a record, untied to an open
// review.
func (s *Service) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.profiles.GetByUsername(username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("moderation.Delete: %w", err)
	}

	ok, err := s.profiles.Delete(username)
	if err != nil {
		return fmt.Errorf("moderation.Delete: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	s.cache.Invalidate(ctx, profile.ID, profile.Username)
	s.logger.Info("profile deleted", zap.String("username", username))

	return nil
}

// Supersede clears a non-approved leftover occupying the username before a
// resubmission. Approved records are left alone.
func (s *Service) Supersede(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.profiles.GetByUsername(username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("moderation.Supersede: %w", err)
	}

	if profile.Status == db.StatusApproved {
		return nil
	}

	if _, err := s.profiles.Delete(username); err != nil {
		return fmt.Errorf("moderation.Supersede: %w", err)
	}

	s.cache.Invalidate(ctx, profile.ID, profile.Username)

	return nil
}
