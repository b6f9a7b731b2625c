package services

import (
	"context"
	"time"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// CreatePayment initiates a payment. The payload is validated against the
// declared payment type, the caller's TPP identity is attached, the
// registry allocates an identifier and the request is routed to the
// type-specific initiation path. On success the connector's consent data
// blob is persisted as the payment's initial session state.
func (s *PaymentService) CreatePayment(ctx context.Context, caller application.CallerContext, payload PaymentPayload, params InitiationParameters) (*PaymentCreated, error) {
	route := s.router.Route(params.PaymentType, params.PaymentProduct)
	if err := validatePayload(payload, route); err != nil {
		return nil, err
	}

	tpp := caller.Tpp
	tpp.RedirectURI = params.TppRedirectURI

	payment := &domain.Payment{
		PaymentType:       params.PaymentType,
		PaymentProduct:    params.PaymentProduct,
		Single:            payload.Single,
		Periodic:          payload.Periodic,
		Bulk:              payload.Bulk,
		RawData:           payload.Raw,
		TransactionStatus: domain.StatusRCVD,
		Tpp:               tpp,
		PsuData:           []domain.PsuIdData{caller.Psu},
		CreatedAt:         time.Now(),
	}

	paymentID, err := s.registry.CreatePayment(ctx, payment)
	if err == nil && paymentID == "" {
		err = domain.ErrBlankPaymentID
	}
	if err != nil {
		s.logger.Error("payment id allocation failed", "payment_type", params.PaymentType, "error", err)
		return nil, application.NewPaymentFailedError()
	}
	payment.ID = paymentID

	result, err := s.initiate(ctx, spiContext(caller), payment, route)
	if err != nil {
		return nil, application.NormalizeSpiError(err, application.ServiceTypePIS)
	}

	if err := s.persistConsentData(ctx, paymentID, result.ConsentData); err != nil {
		return nil, err
	}

	status, ok := domain.ParseTransactionStatus(result.Payload.TransactionStatus)
	if !ok {
		return nil, application.NewResourceUnknownError()
	}
	if err := s.registry.UpdatePaymentStatus(ctx, paymentID, status); err != nil {
		return nil, application.NewPaymentFailedError()
	}

	s.logger.Info("payment created",
		"payment_id", paymentID,
		"payment_type", params.PaymentType,
		"transaction_status", status,
	)

	return &PaymentCreated{
		PaymentID:         paymentID,
		TransactionStatus: status,
		ScaMethods:        result.Payload.ScaMethods,
	}, nil
}

func (s *PaymentService) initiate(ctx context.Context, sctx spi.Context, payment *domain.Payment, route application.PaymentRoute) (spi.Result[spi.InitiationResponse], error) {
	switch route {
	case application.RouteRaw:
		return s.commonConnector.Initiate(ctx, sctx, application.MapCommonPayment(payment), nil)
	case application.RoutePeriodic:
		return s.periodicConnector.Initiate(ctx, sctx, application.MapPeriodicPayment(payment.ID, payment.PaymentProduct, payment.Periodic), nil)
	case application.RouteBulk:
		return s.bulkConnector.Initiate(ctx, sctx, application.MapBulkPayment(payment.ID, payment.PaymentProduct, payment.Bulk), nil)
	default:
		return s.singleConnector.Initiate(ctx, sctx, application.MapSinglePayment(payment.ID, payment.PaymentProduct, payment.Single), nil)
	}
}

// validatePayload rejects payloads that do not agree with the declared
// payment type before any side effect happens.
func validatePayload(payload PaymentPayload, route application.PaymentRoute) error {
	switch route {
	case application.RouteRaw:
		if len(payload.Raw) == 0 {
			return application.NewFormatError("Raw payment product requires a payment body")
		}
	case application.RoutePeriodic:
		if payload.Periodic == nil {
			return application.NewFormatError("Periodic payment body is missing")
		}
	case application.RouteBulk:
		if payload.Bulk == nil || len(payload.Bulk.Entries) == 0 {
			return application.NewFormatError("Bulk payment body is missing")
		}
	default:
		if payload.Single == nil {
			return application.NewFormatError("Single payment body is missing")
		}
	}
	return nil
}
