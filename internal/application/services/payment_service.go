// Package services implements the payment orchestration entry points:
// create, read, status and cancel.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// CancellationAuthorisationStarter begins an SCA-gated cancellation for a
// payment. Implemented by the authorisation service.
type CancellationAuthorisationStarter interface {
	StartCancellationAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error)
}

// PaymentService orchestrates the payment lifecycle against the registry,
// the consent-data gateway and the per-variant connectors. All
// collaborators are injected; the service holds no ambient state.
type PaymentService struct {
	registry     application.PaymentRegistry
	consentData  application.ConsentDataGateway
	router       *application.PaymentTypeRouter
	tppValidator application.TppValidator

	singleConnector   spi.SinglePaymentConnector
	periodicConnector spi.PeriodicPaymentConnector
	bulkConnector     spi.BulkPaymentConnector
	commonConnector   spi.CommonPaymentConnector

	cancellationStarter CancellationAuthorisationStarter
	profile             application.Profile
	logger              *slog.Logger
}

func NewPaymentService(
	registry application.PaymentRegistry,
	consentData application.ConsentDataGateway,
	router *application.PaymentTypeRouter,
	tppValidator application.TppValidator,
	singleConnector spi.SinglePaymentConnector,
	periodicConnector spi.PeriodicPaymentConnector,
	bulkConnector spi.BulkPaymentConnector,
	commonConnector spi.CommonPaymentConnector,
	cancellationStarter CancellationAuthorisationStarter,
	profile application.Profile,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		registry:            registry,
		consentData:         consentData,
		router:              router,
		tppValidator:        tppValidator,
		singleConnector:     singleConnector,
		periodicConnector:   periodicConnector,
		bulkConnector:       bulkConnector,
		commonConnector:     commonConnector,
		cancellationStarter: cancellationStarter,
		profile:             profile,
		logger:              logger,
	}
}

func spiContext(caller application.CallerContext) spi.Context {
	return spi.Context{
		Psu: spi.PsuData{
			PsuID:          caller.Psu.PsuID,
			PsuIDType:      caller.Psu.PsuIDType,
			PsuCorporateID: caller.Psu.PsuCorporateID,
		},
		Tpp: caller.Tpp,
	}
}

// loadPayment fetches the stored payment and enforces, before any
// connector interaction, that the declared payment service matches the
// stored record and that the caller is the initiating TPP. A registry
// failure that is not a missing payment surfaces as a service failure,
// never as "not found".
func (s *PaymentService) loadPayment(ctx context.Context, caller application.CallerContext, paymentType domain.PaymentType, paymentID string) (*domain.Payment, error) {
	payment, err := s.registry.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, application.NewPaymentNotFoundError()
		}
		s.logger.Error("payment lookup failed", "payment_id", paymentID, "error", err)
		return nil, application.NewServiceFailedError()
	}
	if payment.PaymentType != paymentType {
		return nil, application.NewPaymentTypeMismatchError()
	}
	if err := s.tppValidator.Validate(payment.Tpp, caller.Tpp); err != nil {
		return nil, err
	}
	return payment, nil
}

// readConsentData loads the stored session blob. Absence is not an
// error; a gateway failure is.
func (s *PaymentService) readConsentData(ctx context.Context, paymentID string) ([]byte, error) {
	blob, err := s.consentData.Read(ctx, paymentID)
	if err != nil {
		s.logger.Error("consent data read failed", "payment_id", paymentID, "error", err)
		return nil, application.NewServiceFailedError()
	}
	return blob, nil
}

// persistConsentData writes the blob the connector returned. A write
// failure is fatal to the enclosing operation.
func (s *PaymentService) persistConsentData(ctx context.Context, paymentID string, blob []byte) error {
	if err := s.consentData.Write(ctx, paymentID, blob); err != nil {
		s.logger.Error("consent data write failed", "payment_id", paymentID, "error", err)
		return application.NewMessageError(application.ErrorTypePIS400, application.CodeServiceFailed,
			"Consent data could not be stored")
	}
	return nil
}
