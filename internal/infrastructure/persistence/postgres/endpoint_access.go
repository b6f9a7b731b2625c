package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// EndpointAccessChecker gates PSU-data updates: an authorisation that
// does not exist under the addressed type, or that already failed, does
// not accept updates.
type EndpointAccessChecker struct {
	db *pgxpool.Pool
}

func NewEndpointAccessChecker(db *pgxpool.Pool) *EndpointAccessChecker {
	return &EndpointAccessChecker{db: db}
}

func (c *EndpointAccessChecker) Accessible(ctx context.Context, authorisationID string, authType domain.AuthorisationType) bool {
	var accessible bool
	err := c.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM authorisations
			WHERE id = $1 AND auth_type = $2 AND sca_status <> 'failed'
		)
	`, authorisationID, string(authType)).Scan(&accessible)
	if err != nil {
		return false
	}
	return accessible
}
