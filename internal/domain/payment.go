// Package domain defines the payment and authorisation entities of the
// payment initiation engine.
package domain

import "time"

// PaymentType is the payment service category addressed by a request.
type PaymentType string

const (
	PaymentTypeSingle   PaymentType = "payments"
	PaymentTypePeriodic PaymentType = "periodic-payments"
	PaymentTypeBulk     PaymentType = "bulk-payments"
)

func ParsePaymentType(raw string) (PaymentType, bool) {
	switch t := PaymentType(raw); t {
	case PaymentTypeSingle, PaymentTypePeriodic, PaymentTypeBulk:
		return t, true
	default:
		return "", false
	}
}

// SinglePayment is one credit transfer instruction.
type SinglePayment struct {
	EndToEndIdentification string
	DebtorAccount          AccountReference
	CreditorAccount        AccountReference
	CreditorAgent          string
	CreditorName           string
	CreditorAddress        Address
	InstructedAmount       Amount
	RemittanceInformation  string
	RequestedExecutionDate time.Time

	TransactionStatus TransactionStatus
}

// PeriodicPayment is a standing order: a single payment plus its
// recurrence schedule.
type PeriodicPayment struct {
	SinglePayment

	StartDate      time.Time
	EndDate        time.Time
	Frequency      string
	ExecutionRule  string
	DayOfExecution int
}

// BulkPayment groups several credit transfers submitted together.
type BulkPayment struct {
	BatchBookingPreferred  bool
	DebtorAccount          AccountReference
	RequestedExecutionDate time.Time
	Entries                []SinglePayment
}

// Payment is the registry-stored form of any payment variant, tagged by
// PaymentType. Exactly one of Single, Periodic, Bulk or RawData is set;
// RawData carries an unparsed payload for raw payment products and is
// never interpreted by this engine.
type Payment struct {
	ID             string
	PaymentType    PaymentType
	PaymentProduct string

	Single   *SinglePayment
	Periodic *PeriodicPayment
	Bulk     *BulkPayment
	RawData  []byte

	TransactionStatus TransactionStatus
	Tpp               TppInfo
	PsuData           []PsuIdData

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRaw reports whether the payment was stored as an opaque payload and
// must take the common-payment path on read, status and cancellation.
func (p *Payment) IsRaw() bool {
	return p.RawData != nil
}

// ConstituentStatuses lists the transaction statuses of every instruction
// carried by the payment. A bulk payment contributes one status per entry;
// all other variants contribute exactly their own status.
func (p *Payment) ConstituentStatuses() []TransactionStatus {
	if p.PaymentType == PaymentTypeBulk && p.Bulk != nil {
		statuses := make([]TransactionStatus, 0, len(p.Bulk.Entries))
		for _, e := range p.Bulk.Entries {
			statuses = append(statuses, e.TransactionStatus)
		}
		return statuses
	}
	return []TransactionStatus{p.TransactionStatus}
}

// HasFinalisedConstituent reports whether any instruction of the payment
// has reached a terminal status. Cancellation of a bulk payment is gated
// on all entries: one finalised entry blocks the whole batch.
func (p *Payment) HasFinalisedConstituent() bool {
	for _, s := range p.ConstituentStatuses() {
		if s.Finalised() {
			return true
		}
	}
	return false
}

// UpdateStatus commits a new transaction status. It fails with
// ErrPaymentFinalised instead of silently succeeding once the payment is
// in a terminal status, and refuses codes outside the enumeration so a
// raw backend string never ends up persisted.
func (p *Payment) UpdateStatus(status TransactionStatus) error {
	if _, ok := ParseTransactionStatus(string(status)); !ok {
		return ErrUnknownStatus
	}
	if p.TransactionStatus.Finalised() {
		return ErrPaymentFinalised
	}
	p.TransactionStatus = status
	return nil
}
