package domain

import "time"

// ScaApproach is the strong-customer-authentication flavour bound to an
// authorisation at creation time. It never changes for the lifetime of
// that authorisation.
type ScaApproach string

const (
	ScaApproachEmbedded  ScaApproach = "EMBEDDED"
	ScaApproachRedirect  ScaApproach = "REDIRECT"
	ScaApproachDecoupled ScaApproach = "DECOUPLED"
)

// ScaStatus is the state of an SCA authorisation sub-resource.
type ScaStatus string

const (
	ScaStatusReceived          ScaStatus = "received"
	ScaStatusPsuIdentified     ScaStatus = "psuIdentified"
	ScaStatusPsuAuthenticated  ScaStatus = "psuAuthenticated"
	ScaStatusScaMethodSelected ScaStatus = "scaMethodSelected"
	ScaStatusFinalised         ScaStatus = "finalised"
	ScaStatusFailed            ScaStatus = "failed"
	ScaStatusExempted          ScaStatus = "exempted"
)

func (s ScaStatus) Finalised() bool {
	switch s {
	case ScaStatusFinalised, ScaStatusFailed, ScaStatusExempted:
		return true
	default:
		return false
	}
}

// scaRank orders the non-terminal SCA statuses. An authorisation only
// moves forward through this sequence, one step per PSU-data update.
var scaRank = map[ScaStatus]int{
	ScaStatusReceived:          0,
	ScaStatusPsuIdentified:     1,
	ScaStatusPsuAuthenticated:  2,
	ScaStatusScaMethodSelected: 3,
}

// AuthorisationType separates initiation authorisations from cancellation
// authorisations of the same payment. The two lifecycles mirror each
// other but are stored and addressed independently.
type AuthorisationType string

const (
	AuthorisationTypeInitiation   AuthorisationType = "CREATED"
	AuthorisationTypeCancellation AuthorisationType = "CANCELLED"
)

// Authorisation is one SCA attempt against a payment.
type Authorisation struct {
	ID        string
	PaymentID string
	Type      AuthorisationType

	ScaStatus   ScaStatus
	ScaApproach ScaApproach
	Psu         PsuIdData

	ChosenScaMethod string
	RedirectToken   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanAdvanceTo validates a status transition. Forward moves advance by
// exactly one step; any non-terminal state may fall to failed or jump to
// a terminal outcome; terminal states never change.
func (a *Authorisation) CanAdvanceTo(next ScaStatus) error {
	if a.ScaStatus.Finalised() {
		return ErrAuthorisationFinalised
	}
	if next == ScaStatusFailed || next == ScaStatusFinalised || next == ScaStatusExempted {
		return nil
	}
	from, ok := scaRank[a.ScaStatus]
	if !ok {
		return ErrInvalidScaTransition
	}
	to, ok := scaRank[next]
	if !ok || to != from+1 {
		return ErrInvalidScaTransition
	}
	return nil
}

// Advance applies a validated transition.
func (a *Authorisation) Advance(next ScaStatus) error {
	if err := a.CanAdvanceTo(next); err != nil {
		return err
	}
	a.ScaStatus = next
	a.UpdatedAt = time.Now()
	return nil
}

// Fail moves the authorisation to its terminal failed state. Failing an
// already-finalised authorisation is rejected like any other transition.
func (a *Authorisation) Fail() error {
	return a.Advance(ScaStatusFailed)
}
