package services

import (
	"context"
	"errors"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// GetPaymentStatusByID asks the backend for the payment's current
// transaction status, persists the returned consent data, maps the
// reported status onto the protocol enumeration and commits it to the
// payment record. The commit fails, rather than silently succeeding, if
// the payment is already finalised.
func (s *PaymentService) GetPaymentStatusByID(ctx context.Context, caller application.CallerContext, paymentType domain.PaymentType, paymentID string) (domain.TransactionStatus, error) {
	blob, err := s.readConsentData(ctx, paymentID)
	if err != nil {
		return "", err
	}

	payment, err := s.loadPayment(ctx, caller, paymentType, paymentID)
	if err != nil {
		return "", err
	}

	result, err := s.readStatus(ctx, spiContext(caller), payment, paymentType, blob)
	if err != nil {
		return "", application.NormalizeSpiError(err, application.ServiceTypePIS)
	}

	if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
		return "", err
	}

	status, ok := domain.ParseTransactionStatus(result.Payload)
	if !ok {
		return "", application.NewResourceUnknownError()
	}

	if err := s.registry.UpdatePaymentStatus(ctx, paymentID, status); err != nil {
		if errors.Is(err, domain.ErrPaymentFinalised) {
			return "", application.NewStatusAlreadyFinalError()
		}
		return "", application.NewPaymentFailedError()
	}

	return status, nil
}

func (s *PaymentService) readStatus(ctx context.Context, sctx spi.Context, payment *domain.Payment, paymentType domain.PaymentType, blob []byte) (spi.Result[string], error) {
	if payment.IsRaw() {
		return s.commonConnector.GetStatus(ctx, sctx, application.MapCommonPayment(payment), blob)
	}
	switch paymentType {
	case domain.PaymentTypePeriodic:
		return s.periodicConnector.GetStatus(ctx, sctx, application.MapPeriodicPayment(payment.ID, payment.PaymentProduct, payment.Periodic), blob)
	case domain.PaymentTypeBulk:
		return s.bulkConnector.GetStatus(ctx, sctx, application.MapBulkPayment(payment.ID, payment.PaymentProduct, payment.Bulk), blob)
	default:
		return s.singleConnector.GetStatus(ctx, sctx, application.MapSinglePayment(payment.ID, payment.PaymentProduct, payment.Single), blob)
	}
}
