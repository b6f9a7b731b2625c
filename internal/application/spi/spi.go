// Package spi defines the boundary toward the bank-specific execution
// engine. The orchestration core consumes these contracts; concrete
// connectors live under internal/infrastructure/connector.
package spi

import (
	"context"
	"errors"
	"fmt"

	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// FailureStatus enumerates the failure reasons a connector may report.
type FailureStatus string

const (
	TechnicalFailure    FailureStatus = "TECHNICAL_FAILURE"
	UnauthorizedFailure FailureStatus = "UNAUTHORIZED_FAILURE"
	LogicalFailure      FailureStatus = "LOGICAL_FAILURE"
	NotSupported        FailureStatus = "NOT_SUPPORTED"
)

// Failure is the typed error a connector operation returns instead of a
// payload. Operations never panic and never return untyped errors for
// backend-reported conditions.
type Failure struct {
	Status  FailureStatus
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("spi failure: %s", f.Status)
	}
	return fmt.Sprintf("spi failure: %s: %s", f.Status, f.Message)
}

// AsFailure unwraps a connector failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}

// NewNotSupported is the fixed failure returned by operations a connector
// does not implement for the active payment type.
func NewNotSupported(op string) *Failure {
	return &Failure{Status: NotSupported, Message: op + " is not supported"}
}

// Context carries the caller identity every connector operation runs
// under.
type Context struct {
	Psu PsuData
	Tpp domain.TppInfo
}

// PsuData is the connector-facing projection of a PSU identity.
type PsuData struct {
	PsuID          string
	PsuIDType      string
	PsuCorporateID string
}

// Result pairs an operation payload with the consent data blob the
// connector returned. The blob is opaque: it must be persisted verbatim
// and supplied unchanged on the next call for the same payment.
type Result[T any] struct {
	Payload     T
	ConsentData []byte
}

// ScaConfirmation carries the PSU's authentication evidence for
// verify-and-execute.
type ScaConfirmation struct {
	PaymentID        string
	AuthorisationID  string
	ChosenScaMethod  string
	ConfirmationCode string
}

// InitiationResponse is the connector's answer to a payment initiation.
type InitiationResponse struct {
	PaymentID         string
	TransactionStatus string
	AspspAccountID    string
	ScaMethods        []string
}

// ExecutionResponse reports the transaction status after an execution
// step.
type ExecutionResponse struct {
	TransactionStatus string
}

// CancellationResponse reports the outcome of a cancellation initiation.
type CancellationResponse struct {
	TransactionStatus        string
	CancellationAuthRequired bool
}

// PaymentConnector is the per-variant lifecycle contract. P is the
// connector-facing payment representation produced by the type router.
type PaymentConnector[P any] interface {
	Initiate(ctx context.Context, sctx Context, payment P, consentData []byte) (Result[InitiationResponse], error)
	GetPayment(ctx context.Context, sctx Context, payment P, consentData []byte) (Result[P], error)
	GetStatus(ctx context.Context, sctx Context, payment P, consentData []byte) (Result[string], error)
	ExecuteWithoutSca(ctx context.Context, sctx Context, payment P, consentData []byte) (Result[ExecutionResponse], error)
	VerifyScaAndExecute(ctx context.Context, sctx Context, confirmation ScaConfirmation, payment P, consentData []byte) (Result[ExecutionResponse], error)
	CancelWithoutSca(ctx context.Context, sctx Context, payment P, consentData []byte) (Result[CancellationResponse], error)
	InitiateCancellation(ctx context.Context, sctx Context, payment P, consentData []byte) (Result[CancellationResponse], error)
}

// Typed connector aliases, one per payment variant. The common connector
// receives the stored raw payload and defers structural parsing to the
// backend.
type (
	SinglePaymentConnector   = PaymentConnector[SinglePaymentRequest]
	PeriodicPaymentConnector = PaymentConnector[PeriodicPaymentRequest]
	BulkPaymentConnector     = PaymentConnector[BulkPaymentRequest]
	CommonPaymentConnector   = PaymentConnector[CommonPaymentRequest]
)
