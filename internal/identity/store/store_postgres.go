package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	"sendgate/pkg/platform/sentinel"
)

var queryDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "sendgate_identity_store_query_duration_ms",
	Help:    "Latency of identity store queries in milliseconds",
	Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
}, []string{"op"})

// PostgresStore persists identity records in PostgreSQL.
// This store is pure I/O; trust policy lives in the identity service and gate.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func observe(op string, start time.Time) {
	queryDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

const identityColumns = `recipient_id, identity_key, first_seen_at, approved_blocking, approved_non_blocking`

func (s *PostgresStore) Get(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	defer observe("get", time.Now())
	query := `SELECT ` + identityColumns + ` FROM recipient_identities WHERE recipient_id = $1`
	record, err := scanIdentity(s.db.QueryRowContext(ctx, query, recipientID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipient identity: %w", err)
	}
	return record, nil
}

// Observe inserts the first key for a recipient as trusted-on-first-use, or
// supersedes a different stored key with both approval levels cleared. An
// identical key leaves the row untouched.
func (s *PostgresStore) Observe(ctx context.Context, recipientID id.RecipientID, key []byte, now time.Time) (*models.RecipientIdentity, bool, error) {
	defer observe("observe", time.Now())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin observe identity: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO recipient_identities (recipient_id, identity_key, first_seen_at, approved_blocking, approved_non_blocking)
		VALUES ($1, $2, $3, TRUE, TRUE)
		ON CONFLICT (recipient_id) DO UPDATE SET
			identity_key = EXCLUDED.identity_key,
			first_seen_at = EXCLUDED.first_seen_at,
			approved_blocking = FALSE,
			approved_non_blocking = FALSE
		WHERE recipient_identities.identity_key <> EXCLUDED.identity_key
		RETURNING ` + identityColumns + `, (xmax = 0) AS inserted
	`
	var (
		record    models.RecipientIdentity
		recipient string
		inserted  bool
	)
	err = tx.QueryRowContext(ctx, query, recipientID.String(), key, now).Scan(
		&recipient, &record.IdentityKey, &record.FirstSeenAt,
		&record.ApprovedBlocking, &record.ApprovedNonBlocking, &inserted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Same key: the conditional update matched nothing.
		existing, getErr := scanIdentity(tx.QueryRowContext(ctx,
			`SELECT `+identityColumns+` FROM recipient_identities WHERE recipient_id = $1`, recipientID.String()))
		if getErr != nil {
			return nil, false, fmt.Errorf("read observed identity: %w", getErr)
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("commit observe identity: %w", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("observe identity: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit observe identity: %w", err)
	}
	record.RecipientID = id.RecipientID(recipient)
	return &record, !inserted, nil
}

func (s *PostgresStore) BlockingIdentity(ctx context.Context, recipientID id.RecipientID) (*models.RecipientIdentity, error) {
	defer observe("blocking", time.Now())
	query := `
		SELECT ` + identityColumns + `
		FROM recipient_identities
		WHERE recipient_id = $1 AND NOT approved_blocking
	`
	record, err := scanIdentity(s.db.QueryRowContext(ctx, query, recipientID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query blocking identity: %w", err)
	}
	return record, nil
}

// BlockingIdentities looks up a batch in one round trip and returns the hits
// in input order. Duplicate inputs yield duplicate results.
func (s *PostgresStore) BlockingIdentities(ctx context.Context, recipientIDs []id.RecipientID) ([]*models.RecipientIdentity, error) {
	defer observe("blocking_batch", time.Now())
	if len(recipientIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(recipientIDs))
	for i, r := range recipientIDs {
		keys[i] = r.String()
	}
	query := `
		SELECT ` + identityColumns + `
		FROM recipient_identities
		WHERE recipient_id = ANY($1) AND NOT approved_blocking
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("query blocking identities: %w", err)
	}
	defer rows.Close()

	found := make(map[id.RecipientID]*models.RecipientIdentity)
	for rows.Next() {
		record, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blocking identity: %w", err)
		}
		found[record.RecipientID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocking identities: %w", err)
	}

	var result []*models.RecipientIdentity
	for _, r := range recipientIDs {
		if record, ok := found[r]; ok {
			result = append(result, cloneIdentity(record))
		}
	}
	return result, nil
}

// Approve sets approval flags with a single conditional UPDATE so concurrent
// approvals of the same key serialize on the row and converge.
func (s *PostgresStore) Approve(ctx context.Context, recipientID id.RecipientID, key []byte, blocking, nonBlocking bool) error {
	defer observe("approve", time.Now())
	query := `
		UPDATE recipient_identities
		SET approved_blocking = approved_blocking OR $3,
			approved_non_blocking = approved_non_blocking OR $4
		WHERE recipient_id = $1 AND identity_key = $2
	`
	result, err := s.db.ExecContext(ctx, query, recipientID.String(), key, blocking, nonBlocking)
	if err != nil {
		return fmt.Errorf("approve identity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve identity rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM recipient_identities WHERE recipient_id = $1)`, recipientID.String(),
	).Scan(&exists); err != nil {
		return fmt.Errorf("approve identity lookup: %w", err)
	}
	if exists {
		return sentinel.ErrConflict
	}
	return sentinel.ErrNotFound
}

type identityRow interface {
	Scan(dest ...any) error
}

func scanIdentity(row identityRow) (*models.RecipientIdentity, error) {
	var (
		record    models.RecipientIdentity
		recipient string
	)
	if err := row.Scan(&recipient, &record.IdentityKey, &record.FirstSeenAt, &record.ApprovedBlocking, &record.ApprovedNonBlocking); err != nil {
		return nil, err
	}
	record.RecipientID = id.RecipientID(recipient)
	return &record, nil
}
