package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConsentDataRepository stores the opaque per-payment session blob. The
// blob is written verbatim and never inspected.
type ConsentDataRepository struct {
	db *pgxpool.Pool
}

func NewConsentDataRepository(db *pgxpool.Pool) *ConsentDataRepository {
	return &ConsentDataRepository{db: db}
}

// Read returns the stored blob, or an empty one when nothing has been
// written for the payment yet.
func (r *ConsentDataRepository) Read(ctx context.Context, paymentID string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRow(ctx,
		`SELECT blob FROM consent_data WHERE payment_id = $1`,
		paymentID,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read consent data: %w", err)
	}
	return blob, nil
}

func (r *ConsentDataRepository) Write(ctx context.Context, paymentID string, blob []byte) error {
	query := `
		INSERT INTO consent_data (payment_id, blob, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (payment_id) DO UPDATE SET blob = $2, updated_at = $3
	`

	_, err := r.db.Exec(ctx, query, paymentID, blob, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write consent data: %w", err)
	}
	return nil
}
