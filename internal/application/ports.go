package application

import (
	"context"

	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// PaymentRegistry is the consent/payment store the orchestration core
// records payments and authorisations in. Implementations must return
// domain sentinel errors (ErrPaymentNotFound, ErrPaymentFinalised,
// ErrAuthorisationNotFound) for the corresponding conditions.
type PaymentRegistry interface {
	// CreatePayment persists a new payment record and returns its
	// allocated identifier. A blank identifier is a registry failure the
	// caller must surface as a payment-creation error.
	CreatePayment(ctx context.Context, payment *domain.Payment) (string, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	// UpdatePaymentStatus commits a status change. It fails with
	// domain.ErrPaymentFinalised when the stored payment is already in a
	// terminal status; it never silently ignores the write.
	UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.TransactionStatus) error
	RevokePayment(ctx context.Context, paymentID string) error
	// DecryptPaymentID resolves an externally-visible payment identifier
	// to the internal one. A blank result means the identifier is not
	// resolvable.
	DecryptPaymentID(ctx context.Context, encryptedID string) (string, error)

	CreateAuthorisation(ctx context.Context, auth *domain.Authorisation) error
	GetAuthorisation(ctx context.Context, authorisationID string) (*domain.Authorisation, error)
	UpdateAuthorisation(ctx context.Context, auth *domain.Authorisation) error
	ListAuthorisations(ctx context.Context, paymentID string, authType domain.AuthorisationType) ([]*domain.Authorisation, error)
}

// ConsentDataGateway stores the opaque per-payment session blob. Read
// returns an empty blob and no error when nothing has been stored yet.
// A Write failure is fatal to the enclosing operation.
type ConsentDataGateway interface {
	Read(ctx context.Context, paymentID string) ([]byte, error)
	Write(ctx context.Context, paymentID string, blob []byte) error
}

// TppValidator compares a payment's stored TPP identity against the
// current caller. A mismatch is fatal to the call before any connector
// interaction.
type TppValidator interface {
	Validate(stored domain.TppInfo, caller domain.TppInfo) error
}

// EndpointAccessChecker gates PSU-data updates on closed or blocked
// authorisations.
type EndpointAccessChecker interface {
	Accessible(ctx context.Context, authorisationID string, authType domain.AuthorisationType) bool
}
