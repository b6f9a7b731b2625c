package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// finalisedStatuses is the SQL-side mirror of TransactionStatus.Finalised.
const finalisedStatuses = `'ACSC', 'ACCC', 'RJCT', 'CANC'`

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreatePayment persists the payment and, for bulk payments, one entry
// row per instruction. The allocated identifier doubles as the
// externally-visible one.
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *domain.Payment) (string, error) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	m, err := toPaymentModel(payment)
	if err != nil {
		return "", err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin create payment: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO payments (
			id, payment_type, payment_product, variant, raw_data, status,
			tpp, psu, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		m.ID,
		m.PaymentType,
		m.PaymentProduct,
		m.Variant,
		m.RawData,
		m.Status,
		m.Tpp,
		m.Psu,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}

	if payment.PaymentType == domain.PaymentTypeBulk && payment.Bulk != nil {
		for i, entry := range payment.Bulk.Entries {
			status := entry.TransactionStatus
			if status == "" {
				status = payment.TransactionStatus
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO payment_entries (payment_id, entry_index, status) VALUES ($1, $2, $3)`,
				m.ID, i, string(status),
			)
			if err != nil {
				return "", fmt.Errorf("failed to create payment entry: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit create payment: %w", err)
	}
	return m.ID, nil
}

func (r *PaymentRepository) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT id, payment_type, payment_product, variant, raw_data, status,
		       tpp, psu, created_at, updated_at
		FROM payments WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, paymentID)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, err
	}

	if payment.PaymentType == domain.PaymentTypeBulk && payment.Bulk != nil {
		if err := r.overlayEntryStatuses(ctx, payment); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// overlayEntryStatuses replaces the stored bulk entry statuses with the
// ones tracked per entry in payment_entries.
func (r *PaymentRepository) overlayEntryStatuses(ctx context.Context, payment *domain.Payment) error {
	rows, err := r.db.Query(ctx,
		`SELECT entry_index, status FROM payment_entries WHERE payment_id = $1 ORDER BY entry_index`,
		payment.ID,
	)
	if err != nil {
		return fmt.Errorf("query payment entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			index  int
			status string
		)
		if err := rows.Scan(&index, &status); err != nil {
			return fmt.Errorf("scan payment entry: %w", err)
		}
		if index >= 0 && index < len(payment.Bulk.Entries) {
			payment.Bulk.Entries[index].TransactionStatus = domain.TransactionStatus(status)
		}
	}
	return rows.Err()
}

// UpdatePaymentStatus commits a status change. The update is guarded by
// the finalised-status set: zero affected rows on an existing payment
// means that payment is already terminal.
func (r *PaymentRepository) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.TransactionStatus) error {
	return r.guardedStatusUpdate(ctx, paymentID, status)
}

// RevokePayment marks the payment cancelled. A payment that already
// reached a terminal status cannot be revoked.
func (r *PaymentRepository) RevokePayment(ctx context.Context, paymentID string) error {
	return r.guardedStatusUpdate(ctx, paymentID, domain.StatusCANC)
}

func (r *PaymentRepository) guardedStatusUpdate(ctx context.Context, paymentID string, status domain.TransactionStatus) error {
	query := `
		UPDATE payments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status NOT IN (` + finalisedStatuses + `)
	`

	result, err := r.db.Exec(ctx, query, string(status), time.Now(), paymentID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var current string
		err := r.db.QueryRow(ctx, `SELECT status FROM payments WHERE id = $1`, paymentID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPaymentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read payment status: %w", err)
		}
		return domain.ErrPaymentFinalised
	}

	// A batch-level status reported by the backend applies to every
	// still-open instruction of a bulk payment.
	_, err = r.db.Exec(ctx,
		`UPDATE payment_entries SET status = $1 WHERE payment_id = $2 AND status NOT IN (`+finalisedStatuses+`)`,
		string(status), paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment entries: %w", err)
	}
	return nil
}

// DecryptPaymentID resolves an externally-visible payment identifier to
// the internal one. Unparseable or unknown identifiers resolve to blank,
// not to an error.
func (r *PaymentRepository) DecryptPaymentID(ctx context.Context, encryptedID string) (string, error) {
	if _, err := uuid.Parse(encryptedID); err != nil {
		return "", nil
	}

	var id string
	err := r.db.QueryRow(ctx, `SELECT id FROM payments WHERE id = $1`, encryptedID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve payment id: %w", err)
	}
	return id, nil
}

// scanPayment converts a database row into a domain Payment.
// Returns domain.ErrPaymentNotFound if the row doesn't exist.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.PaymentType, &m.PaymentProduct, &m.Variant, &m.RawData, &m.Status,
		&m.Tpp, &m.Psu, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainPayment(&m)
}
