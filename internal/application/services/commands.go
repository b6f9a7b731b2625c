package services

import (
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// InitiationParameters are the request-level inputs of a payment
// initiation, resolved by the transport layer.
type InitiationParameters struct {
	PaymentType    domain.PaymentType
	PaymentProduct string
	TppRedirectURI string
}

// PaymentPayload is the typed payment body of an initiation request.
// Exactly one variant must be set and must agree with the declared
// payment type; raw products carry Raw instead of a structured variant.
type PaymentPayload struct {
	Single   *domain.SinglePayment
	Periodic *domain.PeriodicPayment
	Bulk     *domain.BulkPayment
	Raw      []byte
}

// PaymentCreated is the success result of a payment initiation.
type PaymentCreated struct {
	PaymentID         string
	TransactionStatus domain.TransactionStatus
	ScaMethods        []string
}

// CancelResponse is the success result of a cancellation request. When
// the deployment mandates SCA for cancellation, Authorisation references
// the newly created cancellation authorisation and the transaction status
// reports the pending state instead of CANC.
type CancelResponse struct {
	TransactionStatus domain.TransactionStatus
	Authorisation     *domain.Authorisation
}
