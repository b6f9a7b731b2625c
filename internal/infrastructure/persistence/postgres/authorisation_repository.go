package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

type AuthorisationRepository struct {
	db *pgxpool.Pool
}

func NewAuthorisationRepository(db *pgxpool.Pool) *AuthorisationRepository {
	return &AuthorisationRepository{db: db}
}

func (r *AuthorisationRepository) CreateAuthorisation(ctx context.Context, auth *domain.Authorisation) error {
	m, err := toAuthorisationModel(auth)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO authorisations (
			id, payment_id, auth_type, sca_status, sca_approach,
			psu, chosen_sca_method, redirect_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		m.ID,
		m.PaymentID,
		m.AuthType,
		m.ScaStatus,
		m.ScaApproach,
		m.Psu,
		m.ChosenScaMethod,
		m.RedirectToken,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create authorisation: %w", err)
	}
	return nil
}

func (r *AuthorisationRepository) GetAuthorisation(ctx context.Context, authorisationID string) (*domain.Authorisation, error) {
	query := `
		SELECT id, payment_id, auth_type, sca_status, sca_approach,
		       psu, chosen_sca_method, redirect_token, created_at, updated_at
		FROM authorisations WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, authorisationID)
	return scanAuthorisation(row)
}

func (r *AuthorisationRepository) UpdateAuthorisation(ctx context.Context, auth *domain.Authorisation) error {
	m, err := toAuthorisationModel(auth)
	if err != nil {
		return err
	}

	query := `
		UPDATE authorisations
		SET sca_status = $1, psu = $2, chosen_sca_method = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.Exec(ctx, query,
		m.ScaStatus,
		m.Psu,
		m.ChosenScaMethod,
		time.Now(),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update authorisation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAuthorisationNotFound
	}
	return nil
}

func (r *AuthorisationRepository) ListAuthorisations(ctx context.Context, paymentID string, authType domain.AuthorisationType) ([]*domain.Authorisation, error) {
	query := `
		SELECT id, payment_id, auth_type, sca_status, sca_approach,
		       psu, chosen_sca_method, redirect_token, created_at, updated_at
		FROM authorisations
		WHERE payment_id = $1 AND auth_type = $2
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, paymentID, string(authType))
	if err != nil {
		return nil, fmt.Errorf("query authorisations: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Authorisation, error) {
		var m AuthorisationModel
		err := row.Scan(
			&m.ID, &m.PaymentID, &m.AuthType, &m.ScaStatus, &m.ScaApproach,
			&m.Psu, &m.ChosenScaMethod, &m.RedirectToken, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		return toDomainAuthorisation(&m)
	})
	if err != nil {
		return nil, fmt.Errorf("scan authorisations: %w", err)
	}
	return results, nil
}

func scanAuthorisation(row pgx.Row) (*domain.Authorisation, error) {
	var m AuthorisationModel
	err := row.Scan(
		&m.ID, &m.PaymentID, &m.AuthType, &m.ScaStatus, &m.ScaApproach,
		&m.Psu, &m.ChosenScaMethod, &m.RedirectToken, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuthorisationNotFound
		}
		return nil, fmt.Errorf("failed to scan authorisation: %w", err)
	}
	return toDomainAuthorisation(&m)
}
