package spi

// Connector-facing payment representations. The type router maps the
// protocol-level domain structs onto these field by field; amounts stay
// decimal strings on the wire.

type AmountRequest struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type AccountReferenceRequest struct {
	IBAN     string `json:"iban,omitempty"`
	BBAN     string `json:"bban,omitempty"`
	PAN      string `json:"pan,omitempty"`
	MSISDN   string `json:"msisdn,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type AddressRequest struct {
	Street      string `json:"street,omitempty"`
	BuildingNo  string `json:"buildingNumber,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	CountryCode string `json:"country,omitempty"`
}

type SinglePaymentRequest struct {
	PaymentID              string                  `json:"paymentId,omitempty"`
	PaymentProduct         string                  `json:"paymentProduct"`
	EndToEndIdentification string                  `json:"endToEndIdentification,omitempty"`
	DebtorAccount          AccountReferenceRequest `json:"debtorAccount"`
	CreditorAccount        AccountReferenceRequest `json:"creditorAccount"`
	CreditorAgent          string                  `json:"creditorAgent,omitempty"`
	CreditorName           string                  `json:"creditorName,omitempty"`
	CreditorAddress        AddressRequest          `json:"creditorAddress,omitempty"`
	InstructedAmount       AmountRequest           `json:"instructedAmount"`
	RemittanceInformation  string                  `json:"remittanceInformationUnstructured,omitempty"`
	RequestedExecutionDate string                  `json:"requestedExecutionDate,omitempty"`
	TransactionStatus      string                  `json:"transactionStatus,omitempty"`
}

type PeriodicPaymentRequest struct {
	SinglePaymentRequest

	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate,omitempty"`
	Frequency      string `json:"frequency"`
	ExecutionRule  string `json:"executionRule,omitempty"`
	DayOfExecution int    `json:"dayOfExecution,omitempty"`
}

type BulkPaymentRequest struct {
	PaymentID              string                  `json:"paymentId,omitempty"`
	PaymentProduct         string                  `json:"paymentProduct"`
	BatchBookingPreferred  bool                    `json:"batchBookingPreferred"`
	DebtorAccount          AccountReferenceRequest `json:"debtorAccount"`
	RequestedExecutionDate string                  `json:"requestedExecutionDate,omitempty"`
	Payments               []SinglePaymentRequest  `json:"payments"`
}

type CommonPaymentRequest struct {
	PaymentID      string `json:"paymentId,omitempty"`
	PaymentType    string `json:"paymentType"`
	PaymentProduct string `json:"paymentProduct"`
	PaymentData    []byte `json:"paymentData"`
}
