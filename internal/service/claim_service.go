package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CaptainYami1/Flowvahub-Test/internal/domain"
)

// ClaimService is the idempotency registry: one fact per (user, event, key)
type ClaimService struct {
	repo ClaimRepository
}

func NewClaimService(repo ClaimRepository) *ClaimService {
	return &ClaimService{repo: repo}
}

// TryClaim attempts the insert. A unique violation is the normal
// "already claimed" outcome and is never returned as an error.
func (s *ClaimService) TryClaim(ctx context.Context, userID string, event domain.EventType, key string, meta map[string]any) (domain.ClaimStatus, *domain.ClaimRecord, error) {
	if !event.Valid() {
		return "", nil, &domain.ValidationError{Field: "event_type", Message: "unknown event type"}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil, &domain.ValidationError{Field: "key", Message: "must not be empty"}
	}

	rec := &domain.ClaimRecord{
		UserID:    userID,
		EventType: event,
		Key:       key,
		Meta:      meta,
	}
	err := s.repo.Insert(ctx, rec)
	switch {
	case err == nil:
		ClaimsTotal.WithLabelValues(string(event), string(domain.ClaimGranted)).Inc()
		return domain.ClaimGranted, rec, nil
	case errors.Is(err, domain.ErrDuplicate):
		ClaimsTotal.WithLabelValues(string(event), string(domain.ClaimAlreadyClaimed)).Inc()
		return domain.ClaimAlreadyClaimed, nil, nil
	default:
		ClaimsTotal.WithLabelValues(string(event), "error").Inc()
		return "", nil, fmt.Errorf("insert claim: %w", err)
	}
}

// HasClaimed is a lookup for display state only. It never gates a credit.
func (s *ClaimService) HasClaimed(ctx context.Context, userID string, event domain.EventType, key string) (bool, error) {
	return s.repo.Exists(ctx, userID, event, key)
}

// Release deletes a granted claim whose credit failed, so the user can retry
func (s *ClaimService) Release(ctx context.Context, claim *domain.ClaimRecord) error {
	if claim == nil || claim.ID == 0 {
		return nil
	}
	err := s.repo.Delete(ctx, claim.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// History lists a user's claims of one event type since the given time, oldest first
func (s *ClaimService) History(ctx context.Context, userID string, event domain.EventType, since time.Time) ([]domain.ClaimRecord, error) {
	return s.repo.ListByUser(ctx, userID, event, since)
}
