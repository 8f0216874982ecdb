package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "sendgate/pkg/domain"
)

// PostgresDirectory stores display names in the contacts table.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) DisplayName(ctx context.Context, recipientID id.RecipientID) (string, bool, error) {
	var name string
	err := d.db.QueryRowContext(ctx,
		`SELECT display_name FROM contacts WHERE recipient_id = $1`, recipientID.String()).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find contact: %w", err)
	}
	return name, true, nil
}

func (d *PostgresDirectory) Put(ctx context.Context, recipientID id.RecipientID, name string) error {
	name, err := NormalizeDisplayName(name)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO contacts (recipient_id, display_name, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (recipient_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			updated_at = EXCLUDED.updated_at
	`, recipientID.String(), name)
	if err != nil {
		return fmt.Errorf("save contact: %w", err)
	}
	return nil
}
