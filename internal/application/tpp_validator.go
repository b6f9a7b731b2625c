package application

import "github.com/psd2gate/xs2a-payment-engine/internal/domain"

// PisTppValidator rejects requests whose caller identity differs from the
// TPP stored on the payment at creation time.
type PisTppValidator struct{}

func NewPisTppValidator() *PisTppValidator {
	return &PisTppValidator{}
}

func (v *PisTppValidator) Validate(stored domain.TppInfo, caller domain.TppInfo) error {
	if !stored.Matches(caller) {
		return NewTppMismatchError()
	}
	return nil
}
