package services

import (
	"context"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// CancelPayment cancels a payment. A payment with any finalised
// constituent is rejected outright; for a bulk payment one finalised
// entry blocks the whole batch. When the deployment mandates SCA for
// cancellation the call starts a cancellation authorisation instead of
// cancelling immediately; otherwise the backend cancels at once and the
// registry entry is revoked.
func (s *PaymentService) CancelPayment(ctx context.Context, caller application.CallerContext, paymentType domain.PaymentType, paymentID string) (*CancelResponse, error) {
	blob, err := s.readConsentData(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	payment, err := s.loadPayment(ctx, caller, paymentType, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.HasFinalisedConstituent() {
		return nil, application.NewPaymentAlreadyFinalisedError()
	}

	sctx := spiContext(caller)

	if s.profile.PaymentCancellationAuthorisationMandated {
		result, err := s.initiateCancellation(ctx, sctx, payment, paymentType, blob)
		if err != nil {
			return nil, application.NormalizeSpiError(err, application.ServiceTypePIS)
		}
		if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
			return nil, err
		}

		auth, err := s.cancellationStarter.StartCancellationAuthorisation(ctx, caller, paymentID)
		if err != nil {
			return nil, err
		}

		status, ok := domain.ParseTransactionStatus(result.Payload.TransactionStatus)
		if !ok {
			status = domain.StatusACTC
		}
		return &CancelResponse{TransactionStatus: status, Authorisation: auth}, nil
	}

	result, err := s.cancelWithoutSca(ctx, sctx, payment, paymentType, blob)
	if err != nil {
		return nil, application.NormalizeSpiError(err, application.ServiceTypePIS)
	}
	if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
		return nil, err
	}

	if err := s.registry.RevokePayment(ctx, paymentID); err != nil {
		s.logger.Error("payment revocation failed", "payment_id", paymentID, "error", err)
		return nil, application.NewPaymentFailedError()
	}

	s.logger.Info("payment cancelled", "payment_id", paymentID)

	return &CancelResponse{TransactionStatus: domain.StatusCANC}, nil
}

func (s *PaymentService) initiateCancellation(ctx context.Context, sctx spi.Context, payment *domain.Payment, paymentType domain.PaymentType, blob []byte) (spi.Result[spi.CancellationResponse], error) {
	if payment.IsRaw() {
		return s.commonConnector.InitiateCancellation(ctx, sctx, application.MapCommonPayment(payment), blob)
	}
	switch paymentType {
	case domain.PaymentTypePeriodic:
		return s.periodicConnector.InitiateCancellation(ctx, sctx, application.MapPeriodicPayment(payment.ID, payment.PaymentProduct, payment.Periodic), blob)
	case domain.PaymentTypeBulk:
		return s.bulkConnector.InitiateCancellation(ctx, sctx, application.MapBulkPayment(payment.ID, payment.PaymentProduct, payment.Bulk), blob)
	default:
		return s.singleConnector.InitiateCancellation(ctx, sctx, application.MapSinglePayment(payment.ID, payment.PaymentProduct, payment.Single), blob)
	}
}

func (s *PaymentService) cancelWithoutSca(ctx context.Context, sctx spi.Context, payment *domain.Payment, paymentType domain.PaymentType, blob []byte) (spi.Result[spi.CancellationResponse], error) {
	if payment.IsRaw() {
		return s.commonConnector.CancelWithoutSca(ctx, sctx, application.MapCommonPayment(payment), blob)
	}
	switch paymentType {
	case domain.PaymentTypePeriodic:
		return s.periodicConnector.CancelWithoutSca(ctx, sctx, application.MapPeriodicPayment(payment.ID, payment.PaymentProduct, payment.Periodic), blob)
	case domain.PaymentTypeBulk:
		return s.bulkConnector.CancelWithoutSca(ctx, sctx, application.MapBulkPayment(payment.ID, payment.PaymentProduct, payment.Bulk), blob)
	default:
		return s.singleConnector.CancelWithoutSca(ctx, sctx, application.MapSinglePayment(payment.ID, payment.PaymentProduct, payment.Single), blob)
	}
}
