package application

import "github.com/psd2gate/xs2a-payment-engine/internal/domain"

// Profile carries the deployment-level behaviour switches of the account
// servicer: which SCA approach is active, whether payment cancellation is
// SCA-gated, which SCA methods a PSU may select and which payment
// products are treated as raw formats.
type Profile struct {
	ScaApproach                              domain.ScaApproach
	PaymentCancellationAuthorisationMandated bool
	AvailableScaMethods                      []string
	RawProductPrefixes                       []string
}

// CallerContext is the authenticated identity of the requesting TPP and
// the PSU it acts for. The transport layer resolves it per request and
// passes it explicitly; the core never reads ambient state.
type CallerContext struct {
	Tpp domain.TppInfo
	Psu domain.PsuIdData
}
