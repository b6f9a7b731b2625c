package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry combines the payment and authorisation repositories into the
// single store the orchestration core depends on.
type Registry struct {
	*PaymentRepository
	*AuthorisationRepository
}

func NewRegistry(db *pgxpool.Pool) *Registry {
	return &Registry{
		PaymentRepository:       NewPaymentRepository(db),
		AuthorisationRepository: NewAuthorisationRepository(db),
	}
}
