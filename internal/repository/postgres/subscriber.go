// Package postgres implements the service repository interfaces against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// SubscriberRepo implements subscription.Repository against PostgreSQL.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

// Create inserts the subscriber and its confirmation token in a single
// transaction, so a token-insert failure can never leave an orphaned
// pending subscriber behind.
func (r *SubscriberRepo) Create(ctx context.Context, s *domain.Subscriber, token string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscribers (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.Email.String(), s.Name.String(), s.SubscribedAt, s.Status)
	if err != nil {
		if isUniqueViolation(err, "email") {
			return subscription.ErrDuplicateEmail
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`, token, s.ID)
	if err != nil {
		if isUniqueViolation(err, "subscription_token") {
			return subscription.ErrTokenCollision
		}
		return fmt.Errorf("insert token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) FindSubscriberByToken(ctx context.Context, token string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT subscriber_id FROM subscription_tokens
		WHERE subscription_token = $1
	`, token).Scan(&id)
	if err == sql.ErrNoRows {
		return "", subscription.ErrUnknownToken
	}
	if err != nil {
		return "", fmt.Errorf("find subscriber by token: %w", err)
	}
	return id, nil
}

func (r *SubscriberRepo) MarkConfirmed(ctx context.Context, subscriberID string) error {
	// Unconditional UPDATE keeps this idempotent: re-confirming an
	// already-confirmed subscriber rewrites the same value.
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscribers SET status = $1 WHERE id = $2
	`, domain.SubscriberConfirmed, subscriberID)
	if err != nil {
		return fmt.Errorf("mark confirmed: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("mark confirmed: subscriber %s not found", subscriberID)
	}
	return nil
}

func (r *SubscriberRepo) ListConfirmed(ctx context.Context) ([]domain.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email FROM subscribers WHERE status = $1
	`, domain.SubscriberConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list confirmed: %w", err)
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var id, rawEmail string
		if err := rows.Scan(&id, &rawEmail); err != nil {
			return nil, fmt.Errorf("scan confirmed subscriber: %w", err)
		}
		// Rows predating current validation rules are skipped, not fatal:
		// one bad address must not blank out the whole run.
		email, err := domain.ParseEmail(rawEmail)
		if err != nil {
			logger.Warn("skipping confirmed subscriber with invalid stored email",
				"subscriber_id", id, "err", err)
			continue
		}
		out = append(out, domain.Recipient{SubscriberID: id, Email: email})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list confirmed: %w", err)
	}
	return out, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation on a constraint covering the given column.
func isUniqueViolation(err error, column string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" { // unique_violation
		return false
	}
	// Constraint names follow Postgres defaults: <table>_<column>_key or
	// <table>_pkey for the token primary key.
	return strings.Contains(pqErr.Constraint, column) ||
		(column == "subscription_token" && strings.HasSuffix(pqErr.Constraint, "_pkey"))
}
