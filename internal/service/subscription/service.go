package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// tokenRetries bounds how many fresh tokens we try when the store reports
// a collision. One retry would almost certainly do; three is paranoia.
const tokenRetries = 3

// ConfirmationSender delivers the confirmation email after a successful
// subscribe. The concrete implementation lives in emailclient.
type ConfirmationSender interface {
	SendTestEmail(ctx context.Context, recipient domain.Email) error
}

// Service implements the subscriber state machine. All public methods are
// safe for concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo   Repository
	sender ConfirmationSender // optional; nil disables the side channel
}

// NewService creates a subscription service backed by the given
// repository. sender may be nil, in which case no confirmation email is
// sent; the subscriber still starts pending with a resolvable token.
func NewService(repo Repository, sender ConfirmationSender) *Service {
	return &Service{repo: repo, sender: sender}
}

// Subscribe validates the raw input, persists a pending subscriber bound
// to a fresh confirmation token, and best-effort sends the confirmation
// email. Validation failure leaves no side effects.
func (s *Service) Subscribe(ctx context.Context, rawEmail, rawName string) error {
	email, err := domain.ParseEmail(rawEmail)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	name, err := domain.ParseName(rawName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	sub := &domain.Subscriber{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Status:       domain.SubscriberPending,
		SubscribedAt: time.Now().UTC(),
	}

	if err := s.create(ctx, sub); err != nil {
		return err
	}

	// The confirmation email is a side channel: the hard invariants
	// (pending status, resolvable token) already hold, so a send failure
	// is logged, never surfaced.
	if s.sender != nil {
		if err := s.sender.SendTestEmail(ctx, sub.Email); err != nil {
			logger.Warn("confirmation email failed",
				"subscriber_id", sub.ID, "email", sub.Email.String(), "err", err)
		}
	}

	logger.Info("subscriber created",
		"subscriber_id", sub.ID, "email", sub.Email.String())
	return nil
}

// create persists the subscriber, retrying with a fresh token on the rare
// store-reported collision.
func (s *Service) create(ctx context.Context, sub *domain.Subscriber) error {
	var lastErr error
	for attempt := 0; attempt < tokenRetries; attempt++ {
		err := s.repo.Create(ctx, sub, NewToken())
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTokenCollision) {
			lastErr = err
			continue
		}
		if errors.Is(err, ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("persist subscriber: %w", err)
	}
	return fmt.Errorf("persist subscriber: %w", lastErr)
}

// Confirm resolves the token and applies the pending_confirmation →
// confirmed transition. MarkConfirmed is idempotent, so re-submitting the
// same valid token succeeds again rather than erroring.
func (s *Service) Confirm(ctx context.Context, token string) error {
	id, err := s.repo.FindSubscriberByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnknownToken) {
			return err
		}
		return fmt.Errorf("resolve token: %w", err)
	}

	if err := s.repo.MarkConfirmed(ctx, id); err != nil {
		return fmt.Errorf("confirm subscriber %s: %w", id, err)
	}

	logger.Info("subscriber confirmed", "subscriber_id", id)
	return nil
}
