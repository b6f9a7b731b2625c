// Package testhelpers provides in-memory test doubles for the
// orchestration core's collaborators. Every mock keeps a working default
// behaviour and exposes per-method function fields for overrides.
package testhelpers

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRegistry is an in-memory payment registry.
type MockRegistry struct {
	mu       sync.RWMutex
	Payments map[string]*domain.Payment
	Auths    map[string]*domain.Authorisation

	CreatePaymentFn       func(ctx context.Context, payment *domain.Payment) (string, error)
	GetPaymentFn          func(ctx context.Context, paymentID string) (*domain.Payment, error)
	UpdatePaymentStatusFn func(ctx context.Context, paymentID string, status domain.TransactionStatus) error
	RevokePaymentFn       func(ctx context.Context, paymentID string) error
	DecryptPaymentIDFn    func(ctx context.Context, encryptedID string) (string, error)
	CreateAuthorisationFn func(ctx context.Context, auth *domain.Authorisation) error
	GetAuthorisationFn    func(ctx context.Context, authorisationID string) (*domain.Authorisation, error)
	UpdateAuthorisationFn func(ctx context.Context, auth *domain.Authorisation) error
	ListAuthorisationsFn  func(ctx context.Context, paymentID string, authType domain.AuthorisationType) ([]*domain.Authorisation, error)
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		Payments: make(map[string]*domain.Payment),
		Auths:    make(map[string]*domain.Authorisation),
	}
}

func (m *MockRegistry) CreatePayment(ctx context.Context, payment *domain.Payment) (string, error) {
	if m.CreatePaymentFn != nil {
		return m.CreatePaymentFn(ctx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	stored := *payment
	m.Payments[payment.ID] = &stored
	return payment.ID, nil
}

func (m *MockRegistry) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if m.GetPaymentFn != nil {
		return m.GetPaymentFn(ctx, paymentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.Payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	view := *p
	return &view, nil
}

func (m *MockRegistry) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.TransactionStatus) error {
	if m.UpdatePaymentStatusFn != nil {
		return m.UpdatePaymentStatusFn(ctx, paymentID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Payments[paymentID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	return p.UpdateStatus(status)
}

func (m *MockRegistry) RevokePayment(ctx context.Context, paymentID string) error {
	if m.RevokePaymentFn != nil {
		return m.RevokePaymentFn(ctx, paymentID)
	}
	return m.UpdatePaymentStatus(ctx, paymentID, domain.StatusCANC)
}

func (m *MockRegistry) DecryptPaymentID(ctx context.Context, encryptedID string) (string, error) {
	if m.DecryptPaymentIDFn != nil {
		return m.DecryptPaymentIDFn(ctx, encryptedID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.Payments[encryptedID]; !ok {
		return "", nil
	}
	return encryptedID, nil
}

func (m *MockRegistry) CreateAuthorisation(ctx context.Context, auth *domain.Authorisation) error {
	if m.CreateAuthorisationFn != nil {
		return m.CreateAuthorisationFn(ctx, auth)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *auth
	m.Auths[auth.ID] = &stored
	return nil
}

func (m *MockRegistry) GetAuthorisation(ctx context.Context, authorisationID string) (*domain.Authorisation, error) {
	if m.GetAuthorisationFn != nil {
		return m.GetAuthorisationFn(ctx, authorisationID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.Auths[authorisationID]
	if !ok {
		return nil, domain.ErrAuthorisationNotFound
	}
	view := *a
	return &view, nil
}

func (m *MockRegistry) UpdateAuthorisation(ctx context.Context, auth *domain.Authorisation) error {
	if m.UpdateAuthorisationFn != nil {
		return m.UpdateAuthorisationFn(ctx, auth)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Auths[auth.ID]; !ok {
		return domain.ErrAuthorisationNotFound
	}
	stored := *auth
	m.Auths[auth.ID] = &stored
	return nil
}

func (m *MockRegistry) ListAuthorisations(ctx context.Context, paymentID string, authType domain.AuthorisationType) ([]*domain.Authorisation, error) {
	if m.ListAuthorisationsFn != nil {
		return m.ListAuthorisationsFn(ctx, paymentID, authType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Authorisation
	for _, a := range m.Auths {
		if a.PaymentID == paymentID && a.Type == authType {
			view := *a
			result = append(result, &view)
		}
	}
	return result, nil
}

// MockConsentData is an in-memory consent-data gateway.
type MockConsentData struct {
	mu    sync.RWMutex
	Blobs map[string][]byte

	ReadFn  func(ctx context.Context, paymentID string) ([]byte, error)
	WriteFn func(ctx context.Context, paymentID string, blob []byte) error
}

func NewMockConsentData() *MockConsentData {
	return &MockConsentData{Blobs: make(map[string][]byte)}
}

func (m *MockConsentData) Read(ctx context.Context, paymentID string) ([]byte, error) {
	if m.ReadFn != nil {
		return m.ReadFn(ctx, paymentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Blobs[paymentID], nil
}

func (m *MockConsentData) Write(ctx context.Context, paymentID string, blob []byte) error {
	if m.WriteFn != nil {
		return m.WriteFn(ctx, paymentID, blob)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.Blobs[paymentID] = stored
	return nil
}

// MockConnector is a connector double for one payment variant. Unset
// operations report NOT_SUPPORTED like a real partial connector would.
type MockConnector[P any] struct {
	InitiateFn             func(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.InitiationResponse], error)
	GetPaymentFn           func(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[P], error)
	GetStatusFn            func(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[string], error)
	ExecuteWithoutScaFn    func(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.ExecutionResponse], error)
	VerifyScaAndExecuteFn  func(ctx context.Context, sctx spi.Context, confirmation spi.ScaConfirmation, payment P, consentData []byte) (spi.Result[spi.ExecutionResponse], error)
	CancelWithoutScaFn     func(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.CancellationResponse], error)
	InitiateCancellationFn func(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.CancellationResponse], error)
}

func (m *MockConnector[P]) Initiate(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
	if m.InitiateFn != nil {
		return m.InitiateFn(ctx, sctx, payment, consentData)
	}
	return spi.Result[spi.InitiationResponse]{}, spi.NewNotSupported("initiate")
}

func (m *MockConnector[P]) GetPayment(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[P], error) {
	if m.GetPaymentFn != nil {
		return m.GetPaymentFn(ctx, sctx, payment, consentData)
	}
	return spi.Result[P]{}, spi.NewNotSupported("get payment")
}

func (m *MockConnector[P]) GetStatus(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[string], error) {
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, sctx, payment, consentData)
	}
	return spi.Result[string]{}, spi.NewNotSupported("get status")
}

func (m *MockConnector[P]) ExecuteWithoutSca(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.ExecutionResponse], error) {
	if m.ExecuteWithoutScaFn != nil {
		return m.ExecuteWithoutScaFn(ctx, sctx, payment, consentData)
	}
	return spi.Result[spi.ExecutionResponse]{}, spi.NewNotSupported("execute")
}

func (m *MockConnector[P]) VerifyScaAndExecute(ctx context.Context, sctx spi.Context, confirmation spi.ScaConfirmation, payment P, consentData []byte) (spi.Result[spi.ExecutionResponse], error) {
	if m.VerifyScaAndExecuteFn != nil {
		return m.VerifyScaAndExecuteFn(ctx, sctx, confirmation, payment, consentData)
	}
	return spi.Result[spi.ExecutionResponse]{}, spi.NewNotSupported("verify sca")
}

func (m *MockConnector[P]) CancelWithoutSca(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
	if m.CancelWithoutScaFn != nil {
		return m.CancelWithoutScaFn(ctx, sctx, payment, consentData)
	}
	return spi.Result[spi.CancellationResponse]{}, spi.NewNotSupported("cancel")
}

func (m *MockConnector[P]) InitiateCancellation(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
	if m.InitiateCancellationFn != nil {
		return m.InitiateCancellationFn(ctx, sctx, payment, consentData)
	}
	return spi.Result[spi.CancellationResponse]{}, spi.NewNotSupported("initiate cancellation")
}

// MockAccessChecker allows everything unless overridden.
type MockAccessChecker struct {
	AccessibleFn func(ctx context.Context, authorisationID string, authType domain.AuthorisationType) bool
}

func (m *MockAccessChecker) Accessible(ctx context.Context, authorisationID string, authType domain.AuthorisationType) bool {
	if m.AccessibleFn != nil {
		return m.AccessibleFn(ctx, authorisationID, authType)
	}
	return true
}

// MockCancellationStarter records cancellation authorisation starts.
type MockCancellationStarter struct {
	StartFn func(ctx context.Context, paymentID string) (*domain.Authorisation, error)
}

func (m *MockCancellationStarter) StartCancellationAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error) {
	if m.StartFn != nil {
		return m.StartFn(ctx, paymentID)
	}
	return &domain.Authorisation{
		ID:        uuid.New().String(),
		PaymentID: paymentID,
		Type:      domain.AuthorisationTypeCancellation,
		ScaStatus: domain.ScaStatusReceived,
	}, nil
}
