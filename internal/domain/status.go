package domain

// TransactionStatus is the ISO 20022 transaction status of a payment as
// reported to the TPP.
type TransactionStatus string

const (
	StatusACCC TransactionStatus = "ACCC" // AcceptedSettlementCompletedCreditor
	StatusACCP TransactionStatus = "ACCP" // AcceptedCustomerProfile
	StatusACSC TransactionStatus = "ACSC" // AcceptedSettlementCompleted
	StatusACSP TransactionStatus = "ACSP" // AcceptedSettlementInProcess
	StatusACTC TransactionStatus = "ACTC" // AcceptedTechnicalValidation
	StatusACWC TransactionStatus = "ACWC" // AcceptedWithChange
	StatusACWP TransactionStatus = "ACWP" // AcceptedWithoutPosting
	StatusACFC TransactionStatus = "ACFC" // AcceptedFundsChecked
	StatusPATC TransactionStatus = "PATC" // PartiallyAcceptedTechnicalCorrect
	StatusRCVD TransactionStatus = "RCVD" // Received
	StatusPDNG TransactionStatus = "PDNG" // Pending
	StatusRJCT TransactionStatus = "RJCT" // Rejected
	StatusCANC TransactionStatus = "CANC" // Cancelled
)

// Finalised reports whether the status is terminal. A finalised payment
// accepts no further status change, cancellation or authorisation.
func (s TransactionStatus) Finalised() bool {
	switch s {
	case StatusACSC, StatusACCC, StatusRJCT, StatusCANC:
		return true
	default:
		return false
	}
}

// ParseTransactionStatus maps a connector-reported status string onto the
// protocol enumeration. The second return value is false for codes outside
// the enumeration; callers must treat that as an unknown resource, not as
// a pass-through value.
func ParseTransactionStatus(raw string) (TransactionStatus, bool) {
	switch s := TransactionStatus(raw); s {
	case StatusACCC, StatusACCP, StatusACSC, StatusACSP, StatusACTC,
		StatusACWC, StatusACWP, StatusACFC, StatusPATC,
		StatusRCVD, StatusPDNG, StatusRJCT, StatusCANC:
		return s, true
	default:
		return "", false
	}
}
