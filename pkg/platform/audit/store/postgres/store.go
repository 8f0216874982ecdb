package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	id "sendgate/pkg/domain"
	audit "sendgate/pkg/platform/audit"

	"github.com/google/uuid"
)

// Store persists audit events in the audit_events table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an audit event. Category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, account_id, recipient_id,
			action, decision, reason, key_fingerprint, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		string(category),
		timestamp,
		nullString(event.AccountID.String()),
		nullString(event.RecipientID.String()),
		event.Action,
		nullString(event.Decision),
		nullString(event.Reason),
		nullString(event.KeyFingerprint),
		nullString(event.RequestID),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByRecipient returns a recipient's events, oldest first.
func (s *Store) ListByRecipient(ctx context.Context, recipientID id.RecipientID) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, account_id, recipient_id, action, decision, reason, key_fingerprint, request_id
		FROM audit_events
		WHERE recipient_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, recipientID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event                                               audit.Event
			category                                            string
			accountID, recipient, decision, reason, fp, request sql.NullString
		)
		if err := rows.Scan(&category, &event.Timestamp, &accountID, &recipient, &event.Action, &decision, &reason, &fp, &request); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.AccountID = id.AccountID(accountID.String)
		event.RecipientID = id.RecipientID(recipient.String)
		event.Decision = decision.String
		event.Reason = reason.String
		event.KeyFingerprint = fp.String
		event.RequestID = request.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
