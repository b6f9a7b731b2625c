package domain

import "errors"

var (
	ErrPaymentFinalised       = errors.New("payment is finalised already")
	ErrAuthorisationFinalised = errors.New("authorisation is finalised already")
	ErrInvalidScaTransition   = errors.New("invalid sca status transition")
	ErrUnknownStatus          = errors.New("unknown transaction status")
	ErrBlankPaymentID         = errors.New("blank payment id")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrAuthorisationNotFound  = errors.New("authorisation not found")
)
