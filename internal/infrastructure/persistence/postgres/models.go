package postgres

import (
	"time"
)

// PaymentModel mirrors the payments table. The typed payment variant is
// stored as one jsonb document, the raw payload as bytea; exactly one of
// the two is non-null.
type PaymentModel struct {
	ID             string
	PaymentType    string
	PaymentProduct string
	Variant        []byte
	RawData        []byte
	Status         string
	Tpp            []byte
	Psu            []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AuthorisationModel mirrors the authorisations table. Initiation and
// cancellation authorisations share the table, separated by AuthType.
type AuthorisationModel struct {
	ID              string
	PaymentID       string
	AuthType        string
	ScaStatus       string
	ScaApproach     string
	Psu             []byte
	ChosenScaMethod string
	RedirectToken   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
