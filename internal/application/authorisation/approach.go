package authorisation

import (
	"context"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// ScaAuthorisationService is the approach-facing contract the transport
// layer consumes. One concrete implementation exists per SCA approach;
// the active one is chosen once, at construction, from the deployment
// profile.
type ScaAuthorisationService interface {
	Approach() domain.ScaApproach

	CreateAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error)
	UpdatePsuData(ctx context.Context, caller application.CallerContext, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error)
	GetScaStatus(ctx context.Context, paymentID, authorisationID string) (domain.ScaStatus, bool)
	ListAuthorisations(ctx context.Context, paymentID string) ([]*domain.Authorisation, error)

	CreateCancellationAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error)
	UpdateCancellationPsuData(ctx context.Context, caller application.CallerContext, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error)
	GetCancellationScaStatus(ctx context.Context, paymentID, authorisationID string) (domain.ScaStatus, bool)
	ListCancellationAuthorisations(ctx context.Context, paymentID string) ([]*domain.Authorisation, error)

	// StartCancellationAuthorisation opens the cancellation leg on behalf
	// of the payment orchestrator when cancellation authorisation is
	// mandated by the profile.
	StartCancellationAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error)
}

// base carries the behaviour shared by the three approach services. The
// approach and the set of stages that accept PSU-data updates are fixed
// per instance.
type base struct {
	core         *Service
	approach     domain.ScaApproach
	stageAllowed func(domain.ScaStatus) bool
}

func (b *base) Approach() domain.ScaApproach { return b.approach }

func (b *base) CreateAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error) {
	return b.core.createAuthorisation(ctx, caller, paymentID, domain.AuthorisationTypeInitiation, b.approach)
}

func (b *base) UpdatePsuData(ctx context.Context, caller application.CallerContext, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error) {
	return b.core.updatePsuData(ctx, caller, req, domain.AuthorisationTypeInitiation, b.stageAllowed)
}

func (b *base) GetScaStatus(ctx context.Context, paymentID, authorisationID string) (domain.ScaStatus, bool) {
	return b.core.getScaStatus(ctx, paymentID, authorisationID, domain.AuthorisationTypeInitiation)
}

func (b *base) ListAuthorisations(ctx context.Context, paymentID string) ([]*domain.Authorisation, error) {
	return b.core.listAuthorisations(ctx, paymentID, domain.AuthorisationTypeInitiation)
}

func (b *base) CreateCancellationAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error) {
	return b.core.createAuthorisation(ctx, caller, paymentID, domain.AuthorisationTypeCancellation, b.approach)
}

func (b *base) UpdateCancellationPsuData(ctx context.Context, caller application.CallerContext, req UpdatePsuDataRequest) (*UpdatePsuDataResponse, error) {
	return b.core.updatePsuData(ctx, caller, req, domain.AuthorisationTypeCancellation, b.stageAllowed)
}

func (b *base) GetCancellationScaStatus(ctx context.Context, paymentID, authorisationID string) (domain.ScaStatus, bool) {
	return b.core.getScaStatus(ctx, paymentID, authorisationID, domain.AuthorisationTypeCancellation)
}

func (b *base) ListCancellationAuthorisations(ctx context.Context, paymentID string) ([]*domain.Authorisation, error) {
	return b.core.listAuthorisations(ctx, paymentID, domain.AuthorisationTypeCancellation)
}

func (b *base) StartCancellationAuthorisation(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error) {
	return b.CreateCancellationAuthorisation(ctx, caller, paymentID)
}

// EmbeddedScaService walks the full staged flow inline: identification,
// authentication, method selection and OTP all arrive through the API.
type EmbeddedScaService struct {
	base
}

func NewEmbeddedScaService(core *Service) *EmbeddedScaService {
	return &EmbeddedScaService{base{
		core:         core,
		approach:     domain.ScaApproachEmbedded,
		stageAllowed: func(domain.ScaStatus) bool { return true },
	}}
}

// RedirectScaService only identifies the PSU through the API; every
// later stage happens on the redirect channel against the token minted
// at creation.
type RedirectScaService struct {
	base
}

func NewRedirectScaService(core *Service) *RedirectScaService {
	return &RedirectScaService{base{
		core:     core,
		approach: domain.ScaApproachRedirect,
		stageAllowed: func(status domain.ScaStatus) bool {
			return status == domain.ScaStatusReceived
		},
	}}
}

// DecoupledScaService identifies and authenticates the PSU through the
// API; confirmation is pushed to the PSU's device out of band.
type DecoupledScaService struct {
	base
}

func NewDecoupledScaService(core *Service) *DecoupledScaService {
	return &DecoupledScaService{base{
		core:     core,
		approach: domain.ScaApproachDecoupled,
		stageAllowed: func(status domain.ScaStatus) bool {
			return status == domain.ScaStatusReceived || status == domain.ScaStatusPsuIdentified
		},
	}}
}

// NewScaAuthorisationService picks the approach service matching the
// deployment profile. Unknown approaches fall back to embedded.
func NewScaAuthorisationService(core *Service, profile application.Profile) ScaAuthorisationService {
	switch profile.ScaApproach {
	case domain.ScaApproachRedirect:
		return NewRedirectScaService(core)
	case domain.ScaApproachDecoupled:
		return NewDecoupledScaService(core)
	default:
		return NewEmbeddedScaService(core)
	}
}
