// Package authorisation implements the SCA authorisation state machine
// for payment initiation and payment cancellation.
package authorisation

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// UpdatePsuDataRequest carries one PSU-data update step. Which fields are
// expected depends on the authorisation's current SCA status.
type UpdatePsuDataRequest struct {
	PaymentID             string
	AuthorisationID       string
	Psu                   domain.PsuIdData
	Password              string
	ChosenScaMethod       string
	ScaAuthenticationData string
}

// UpdatePsuDataResponse reports the SCA status reached by an update and,
// on finalisation, the resulting transaction status of the payment.
type UpdatePsuDataResponse struct {
	AuthorisationID     string
	ScaStatus           domain.ScaStatus
	ScaApproach         domain.ScaApproach
	AvailableScaMethods []string
	TransactionStatus   domain.TransactionStatus
}

// Service is the shared authorisation state machine core. The
// approach-specific services in approach.go delegate to it; the approach
// is fixed per service instance, never inspected at call time.
type Service struct {
	registry      application.PaymentRegistry
	consentData   application.ConsentDataGateway
	tppValidator  application.TppValidator
	accessChecker application.EndpointAccessChecker

	singleConnector   spi.SinglePaymentConnector
	periodicConnector spi.PeriodicPaymentConnector
	bulkConnector     spi.BulkPaymentConnector
	commonConnector   spi.CommonPaymentConnector

	profile application.Profile
	logger  *slog.Logger
}

func NewService(
	registry application.PaymentRegistry,
	consentData application.ConsentDataGateway,
	tppValidator application.TppValidator,
	accessChecker application.EndpointAccessChecker,
	singleConnector spi.SinglePaymentConnector,
	periodicConnector spi.PeriodicPaymentConnector,
	bulkConnector spi.BulkPaymentConnector,
	commonConnector spi.CommonPaymentConnector,
	profile application.Profile,
	logger *slog.Logger,
) *Service {
	return &Service{
		registry:          registry,
		consentData:       consentData,
		tppValidator:      tppValidator,
		accessChecker:     accessChecker,
		singleConnector:   singleConnector,
		periodicConnector: periodicConnector,
		bulkConnector:     bulkConnector,
		commonConnector:   commonConnector,
		profile:           profile,
		logger:            logger,
	}
}

// createAuthorisation starts a new SCA attempt of the given type against
// a payment. It is rejected when the payment is finalised or the caller's
// TPP identity does not match.
func (s *Service) createAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string, authType domain.AuthorisationType, approach domain.ScaApproach) (*domain.Authorisation, error) {
	payment, err := s.registry.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, application.NewPaymentNotFoundError()
		}
		s.logger.Error("payment lookup failed", "payment_id", paymentID, "error", err)
		return nil, application.NewServiceFailedError()
	}
	if err := s.tppValidator.Validate(payment.Tpp, caller.Tpp); err != nil {
		return nil, err
	}
	if payment.HasFinalisedConstituent() {
		return nil, application.NewResourceExpiredError()
	}

	now := time.Now()
	auth := &domain.Authorisation{
		ID:          uuid.New().String(),
		PaymentID:   paymentID,
		Type:        authType,
		ScaStatus:   domain.ScaStatusReceived,
		ScaApproach: approach,
		Psu:         caller.Psu,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if approach == domain.ScaApproachRedirect || approach == domain.ScaApproachDecoupled {
		auth.RedirectToken = uuid.New().String()
	}

	if err := s.registry.CreateAuthorisation(ctx, auth); err != nil {
		s.logger.Error("authorisation creation failed", "payment_id", paymentID, "error", err)
		return nil, application.NewPaymentFailedError()
	}

	s.logger.Info("authorisation created",
		"payment_id", paymentID,
		"authorisation_id", auth.ID,
		"authorisation_type", authType,
		"sca_approach", approach,
	)
	return auth, nil
}

// loadAuthorisation fetches an authorisation, checking endpoint
// accessibility and the (payment, type) addressing before anything else.
func (s *Service) loadAuthorisation(ctx context.Context, req UpdatePsuDataRequest, authType domain.AuthorisationType) (*domain.Authorisation, *domain.Payment, error) {
	if !s.accessChecker.Accessible(ctx, req.AuthorisationID, authType) {
		return nil, nil, application.NewServiceBlockedError()
	}

	auth, err := s.registry.GetAuthorisation(ctx, req.AuthorisationID)
	if err != nil || auth.PaymentID != req.PaymentID || auth.Type != authType {
		return nil, nil, application.NewResourceUnknownError()
	}
	if auth.ScaStatus.Finalised() {
		return nil, nil, application.NewResourceExpiredError()
	}

	payment, err := s.registry.GetPayment(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, nil, application.NewPaymentNotFoundError()
		}
		s.logger.Error("payment lookup failed", "payment_id", req.PaymentID, "error", err)
		return nil, nil, application.NewServiceFailedError()
	}
	return auth, payment, nil
}

// updatePsuData advances the authorisation by one stage. Input that does
// not fit the current stage moves the authorisation to failed and returns
// a normalized error; it is never silently retried. stageAllowed is the
// approach's rule for which stages accept PSU-data updates at all.
func (s *Service) updatePsuData(ctx context.Context, caller application.CallerContext, req UpdatePsuDataRequest, authType domain.AuthorisationType, stageAllowed func(domain.ScaStatus) bool) (*UpdatePsuDataResponse, error) {
	auth, payment, err := s.loadAuthorisation(ctx, req, authType)
	if err != nil {
		return nil, err
	}
	if err := s.tppValidator.Validate(payment.Tpp, caller.Tpp); err != nil {
		return nil, err
	}
	if !stageAllowed(auth.ScaStatus) {
		return nil, application.NewMessageError(application.ErrorTypePIS400, application.CodeNotSupported,
			"PSU data updates are not supported at this stage for the active SCA approach")
	}

	switch auth.ScaStatus {
	case domain.ScaStatusReceived:
		return s.handleIdentification(ctx, auth, req)
	case domain.ScaStatusPsuIdentified:
		return s.handleAuthentication(ctx, auth, req)
	case domain.ScaStatusPsuAuthenticated:
		return s.handleMethodSelection(ctx, auth, req)
	case domain.ScaStatusScaMethodSelected:
		return s.handleScaConfirmation(ctx, caller, auth, payment, req)
	default:
		return nil, application.NewResourceExpiredError()
	}
}

func (s *Service) handleIdentification(ctx context.Context, auth *domain.Authorisation, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error) {
	if req.Psu.IsEmpty() {
		return nil, s.failAuthorisation(ctx, auth, application.NewPsuCredentialsInvalidError())
	}
	auth.Psu = req.Psu
	if err := auth.Advance(domain.ScaStatusPsuIdentified); err != nil {
		return nil, application.NewResourceExpiredError()
	}

	// Identification and authentication may arrive in one request.
	if req.Password != "" {
		return s.handleAuthentication(ctx, auth, req)
	}

	if err := s.registry.UpdateAuthorisation(ctx, auth); err != nil {
		return nil, application.NewPaymentFailedError()
	}
	return s.response(auth, ""), nil
}

func (s *Service) handleAuthentication(ctx context.Context, auth *domain.Authorisation, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error) {
	if req.Password == "" {
		return nil, s.failAuthorisation(ctx, auth, application.NewPsuCredentialsInvalidError())
	}
	if err := auth.Advance(domain.ScaStatusPsuAuthenticated); err != nil {
		return nil, application.NewResourceExpiredError()
	}
	if err := s.registry.UpdateAuthorisation(ctx, auth); err != nil {
		return nil, application.NewPaymentFailedError()
	}
	return s.response(auth, ""), nil
}

func (s *Service) handleMethodSelection(ctx context.Context, auth *domain.Authorisation, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error) {
	if !slices.Contains(s.profile.AvailableScaMethods, req.ChosenScaMethod) {
		return nil, s.failAuthorisation(ctx, auth, application.NewScaMethodUnknownError(req.ChosenScaMethod))
	}
	auth.ChosenScaMethod = req.ChosenScaMethod
	if err := auth.Advance(domain.ScaStatusScaMethodSelected); err != nil {
		return nil, application.NewResourceExpiredError()
	}
	if err := s.registry.UpdateAuthorisation(ctx, auth); err != nil {
		return nil, application.NewPaymentFailedError()
	}
	return s.response(auth, ""), nil
}

// handleScaConfirmation verifies the PSU's authentication data against
// the backend and executes the payment (or its cancellation). This is the
// only stage that reaches the connector.
func (s *Service) handleScaConfirmation(ctx context.Context, caller application.CallerContext, auth *domain.Authorisation, payment *domain.Payment, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error) {
	if req.ScaAuthenticationData == "" {
		return nil, s.failAuthorisation(ctx, auth, application.NewPsuCredentialsInvalidError())
	}

	blob, err := s.consentData.Read(ctx, payment.ID)
	if err != nil {
		s.logger.Error("consent data read failed", "payment_id", payment.ID, "error", err)
		return nil, application.NewServiceFailedError()
	}

	confirmation := spi.ScaConfirmation{
		PaymentID:        payment.ID,
		AuthorisationID:  auth.ID,
		ChosenScaMethod:  auth.ChosenScaMethod,
		ConfirmationCode: req.ScaAuthenticationData,
	}

	result, err := s.verifyAndExecute(ctx, spiContext(caller), payment, confirmation, blob)
	if err != nil {
		return nil, s.failAuthorisation(ctx, auth, application.NormalizeSpiError(err, application.ServiceTypePIS))
	}

	if err := s.consentData.Write(ctx, payment.ID, result.ConsentData); err != nil {
		return nil, application.NewMessageError(application.ErrorTypePIS400, application.CodeServiceFailed,
			"Consent data could not be stored")
	}

	status, ok := domain.ParseTransactionStatus(result.Payload.TransactionStatus)
	if !ok {
		return nil, application.NewResourceUnknownError()
	}

	if auth.Type == domain.AuthorisationTypeCancellation {
		if err := s.registry.RevokePayment(ctx, payment.ID); err != nil {
			return nil, application.NewPaymentFailedError()
		}
		status = domain.StatusCANC
	} else if err := s.registry.UpdatePaymentStatus(ctx, payment.ID, status); err != nil {
		if errors.Is(err, domain.ErrPaymentFinalised) {
			return nil, application.NewStatusAlreadyFinalError()
		}
		return nil, application.NewPaymentFailedError()
	}

	if err := auth.Advance(domain.ScaStatusFinalised); err != nil {
		return nil, application.NewResourceExpiredError()
	}
	if err := s.registry.UpdateAuthorisation(ctx, auth); err != nil {
		return nil, application.NewPaymentFailedError()
	}

	s.logger.Info("authorisation finalised",
		"payment_id", payment.ID,
		"authorisation_id", auth.ID,
		"transaction_status", status,
	)
	return s.response(auth, status), nil
}

// failAuthorisation moves the authorisation to failed, persists it and
// returns the caller's error. The stored state must reflect the failure;
// a rejected update is never left looking like the previous stage.
func (s *Service) failAuthorisation(ctx context.Context, auth *domain.Authorisation, cause *application.MessageError) error {
	if err := auth.Fail(); err != nil {
		return application.NewResourceExpiredError()
	}
	if err := s.registry.UpdateAuthorisation(ctx, auth); err != nil {
		s.logger.Error("authorisation failure could not be persisted",
			"authorisation_id", auth.ID, "error", err)
	}
	return cause
}

func (s *Service) verifyAndExecute(ctx context.Context, sctx spi.Context, payment *domain.Payment, confirmation spi.ScaConfirmation, blob []byte) (spi.Result[spi.ExecutionResponse], error) {
	if payment.IsRaw() {
		return s.commonConnector.VerifyScaAndExecute(ctx, sctx, confirmation, application.MapCommonPayment(payment), blob)
	}
	switch payment.PaymentType {
	case domain.PaymentTypePeriodic:
		return s.periodicConnector.VerifyScaAndExecute(ctx, sctx, confirmation, application.MapPeriodicPayment(payment.ID, payment.PaymentProduct, payment.Periodic), blob)
	case domain.PaymentTypeBulk:
		return s.bulkConnector.VerifyScaAndExecute(ctx, sctx, confirmation, application.MapBulkPayment(payment.ID, payment.PaymentProduct, payment.Bulk), blob)
	default:
		return s.singleConnector.VerifyScaAndExecute(ctx, sctx, confirmation, application.MapSinglePayment(payment.ID, payment.PaymentProduct, payment.Single), blob)
	}
}

func (s *Service) response(auth *domain.Authorisation, status domain.TransactionStatus) *UpdatePsuDataResponse {
	resp := &UpdatePsuDataResponse{
		AuthorisationID:   auth.ID,
		ScaStatus:         auth.ScaStatus,
		ScaApproach:       auth.ScaApproach,
		TransactionStatus: status,
	}
	if auth.ScaStatus == domain.ScaStatusPsuAuthenticated {
		resp.AvailableScaMethods = s.profile.AvailableScaMethods
	}
	return resp
}

// getScaStatus is a pure lookup: it reports absence instead of failing.
func (s *Service) getScaStatus(ctx context.Context, paymentID, authorisationID string, authType domain.AuthorisationType) (domain.ScaStatus, bool) {
	auth, err := s.registry.GetAuthorisation(ctx, authorisationID)
	if err != nil || auth.PaymentID != paymentID || auth.Type != authType {
		return "", false
	}
	return auth.ScaStatus, true
}

func (s *Service) listAuthorisations(ctx context.Context, paymentID string, authType domain.AuthorisationType) ([]*domain.Authorisation, error) {
	return s.registry.ListAuthorisations(ctx, paymentID, authType)
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
