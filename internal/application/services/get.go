package services

import (
	"context"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// GetPaymentByID returns the backend's current view of a payment. The
// stored consent data blob is supplied to the connector and the returned
// blob is persisted back untouched.
func (s *PaymentService) GetPaymentByID(ctx context.Context, caller application.CallerContext, paymentType domain.PaymentType, paymentID string) (*domain.Payment, error) {
	blob, err := s.readConsentData(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	payment, err := s.loadPayment(ctx, caller, paymentType, paymentID)
	if err != nil {
		return nil, err
	}

	sctx := spiContext(caller)
	view := &domain.Payment{
		ID:                payment.ID,
		PaymentType:       payment.PaymentType,
		PaymentProduct:    payment.PaymentProduct,
		TransactionStatus: payment.TransactionStatus,
		Tpp:               payment.Tpp,
		PsuData:           payment.PsuData,
		CreatedAt:         payment.CreatedAt,
	}

	// A stored raw payload takes the common payment path regardless of
	// the declared type.
	if payment.IsRaw() {
		result, err := s.commonConnector.GetPayment(ctx, sctx, application.MapCommonPayment(payment), blob)
		if err != nil {
			return nil, application.NormalizeSpiError(err, application.ServiceTypePIS)
		}
		if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
			return nil, err
		}
		view.RawData = result.Payload.PaymentData
		return view, nil
	}

	switch paymentType {
	case domain.PaymentTypePeriodic:
		result, err := s.periodicConnector.GetPayment(ctx, sctx, application.MapPeriodicPayment(payment.ID, payment.PaymentProduct, payment.Periodic), blob)
		if err != nil {
			return nil, application.NormalizeSpiError(err, application.ServiceTypePIS)
		}
		if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
			return nil, err
		}
		periodic, err := application.ParsePeriodicPayment(result.Payload)
		if err != nil {
			return nil, application.NewResourceUnknownError()
		}
		view.Periodic = periodic
	case domain.PaymentTypeBulk:
		result, err := s.bulkConnector.GetPayment(ctx, sctx, application.MapBulkPayment(payment.ID, payment.PaymentProduct, payment.Bulk), blob)
		if err != nil {
			return nil, application.NormalizeSpiError(err, application.ServiceTypePIS)
		}
		if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
			return nil, err
		}
		bulk, err := application.ParseBulkPayment(result.Payload)
		if err != nil {
			return nil, application.NewResourceUnknownError()
		}
		view.Bulk = bulk
	default:
		result, err := s.singleConnector.GetPayment(ctx, sctx, application.MapSinglePayment(payment.ID, payment.PaymentProduct, payment.Single), blob)
		if err != nil {
			return nil, application.NormalizeSpiError(err, application.ServiceTypePIS)
		}
		if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
			return nil, err
		}
		single, err := application.ParseSinglePayment(result.Payload)
		if err != nil {
			return nil, application.NewResourceUnknownError()
		}
		view.Single = single
	}

	return view, nil
}
