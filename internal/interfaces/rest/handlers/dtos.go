package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

const dateLayout = "2006-01-02"

type amountDTO struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type accountReferenceDTO struct {
	IBAN     string `json:"iban,omitempty"`
	BBAN     string `json:"bban,omitempty"`
	PAN      string `json:"pan,omitempty"`
	MSISDN   string `json:"msisdn,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type addressDTO struct {
	StreetName     string `json:"streetName,omitempty"`
	BuildingNumber string `json:"buildingNumber,omitempty"`
	TownName       string `json:"townName,omitempty"`
	PostCode       string `json:"postCode,omitempty"`
	Country        string `json:"country,omitempty"`
}

type singlePaymentDTO struct {
	EndToEndIdentification            string              `json:"endToEndIdentification,omitempty"`
	DebtorAccount                     accountReferenceDTO `json:"debtorAccount"`
	InstructedAmount                  amountDTO           `json:"instructedAmount"`
	CreditorAccount                   accountReferenceDTO `json:"creditorAccount"`
	CreditorAgent                     string              `json:"creditorAgent,omitempty"`
	CreditorName                      string              `json:"creditorName"`
	CreditorAddress                   *addressDTO         `json:"creditorAddress,omitempty"`
	RemittanceInformationUnstructured string              `json:"remittanceInformationUnstructured,omitempty"`
	RequestedExecutionDate            string              `json:"requestedExecutionDate,omitempty"`
	TransactionStatus                 string              `json:"transactionStatus,omitempty"`
}

type periodicPaymentDTO struct {
	singlePaymentDTO

	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate,omitempty"`
	Frequency      string `json:"frequency"`
	ExecutionRule  string `json:"executionRule,omitempty"`
	DayOfExecution string `json:"dayOfExecution,omitempty"`
}

type bulkPaymentDTO struct {
	BatchBookingPreferred  bool                `json:"batchBookingPreferred,omitempty"`
	DebtorAccount          accountReferenceDTO `json:"debtorAccount"`
	RequestedExecutionDate string              `json:"requestedExecutionDate,omitempty"`
	Payments               []singlePaymentDTO  `json:"payments"`
}

func parseAccountReference(dto accountReferenceDTO) domain.AccountReference {
	return domain.AccountReference{
		IBAN:     dto.IBAN,
		BBAN:     dto.BBAN,
		PAN:      dto.PAN,
		MSISDN:   dto.MSISDN,
		Currency: dto.Currency,
	}
}

func parseDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("'%s' is not an ISO date", field)
	}
	return t, nil
}

func parseSinglePayment(dto singlePaymentDTO) (*domain.SinglePayment, error) {
	amount, err := domain.NewAmount(dto.InstructedAmount.Currency, dto.InstructedAmount.Amount)
	if err != nil {
		return nil, err
	}
	execDate, err := parseDate(dto.RequestedExecutionDate, "requestedExecutionDate")
	if err != nil {
		return nil, err
	}

	p := &domain.SinglePayment{
		EndToEndIdentification: dto.EndToEndIdentification,
		DebtorAccount:          parseAccountReference(dto.DebtorAccount),
		CreditorAccount:        parseAccountReference(dto.CreditorAccount),
		CreditorAgent:          dto.CreditorAgent,
		CreditorName:           dto.CreditorName,
		InstructedAmount:       amount,
		RemittanceInformation:  dto.RemittanceInformationUnstructured,
		RequestedExecutionDate: execDate,
	}
	if dto.CreditorAddress != nil {
		p.CreditorAddress = domain.Address{
			Street:      dto.CreditorAddress.StreetName,
			BuildingNo:  dto.CreditorAddress.BuildingNumber,
			City:        dto.CreditorAddress.TownName,
			PostalCode:  dto.CreditorAddress.PostCode,
			CountryCode: dto.CreditorAddress.Country,
		}
	}
	return p, nil
}

func parsePeriodicPayment(dto periodicPaymentDTO) (*domain.PeriodicPayment, error) {
	single, err := parseSinglePayment(dto.singlePaymentDTO)
	if err != nil {
		return nil, err
	}
	startDate, err := parseDate(dto.StartDate, "startDate")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(dto.EndDate, "endDate")
	if err != nil {
		return nil, err
	}

	p := &domain.PeriodicPayment{
		SinglePayment: *single,
		StartDate:     startDate,
		EndDate:       endDate,
		Frequency:     dto.Frequency,
		ExecutionRule: dto.ExecutionRule,
	}
	if dto.DayOfExecution != "" {
		day, err := strconv.Atoi(dto.DayOfExecution)
		if err != nil {
			return nil, fmt.Errorf("'dayOfExecution' is not a number")
		}
		p.DayOfExecution = day
	}
	return p, nil
}

func parseBulkPayment(dto bulkPaymentDTO) (*domain.BulkPayment, error) {
	execDate, err := parseDate(dto.RequestedExecutionDate, "requestedExecutionDate")
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SinglePayment, 0, len(dto.Payments))
	for _, entryDTO := range dto.Payments {
		entry, err := parseSinglePayment(entryDTO)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return &domain.BulkPayment{
		BatchBookingPreferred:  dto.BatchBookingPreferred,
		DebtorAccount:          parseAccountReference(dto.DebtorAccount),
		RequestedExecutionDate: execDate,
		Entries:                entries,
	}, nil
}

func presentAccountReference(ref domain.AccountReference) accountReferenceDTO {
	return accountReferenceDTO{
		IBAN:     ref.IBAN,
		BBAN:     ref.BBAN,
		PAN:      ref.PAN,
		MSISDN:   ref.MSISDN,
		Currency: ref.Currency,
	}
}

func presentDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func presentSinglePayment(p *domain.SinglePayment) singlePaymentDTO {
	dto := singlePaymentDTO{
		EndToEndIdentification: p.EndToEndIdentification,
		DebtorAccount:          presentAccountReference(p.DebtorAccount),
		InstructedAmount: amountDTO{
			Currency: p.InstructedAmount.Currency,
			Amount:   p.InstructedAmount.Value.String(),
		},
		CreditorAccount:                   presentAccountReference(p.CreditorAccount),
		CreditorAgent:                     p.CreditorAgent,
		CreditorName:                      p.CreditorName,
		RemittanceInformationUnstructured: p.RemittanceInformation,
		RequestedExecutionDate:            presentDate(p.RequestedExecutionDate),
		TransactionStatus:                 string(p.TransactionStatus),
	}
	if p.CreditorAddress != (domain.Address{}) {
		dto.CreditorAddress = &addressDTO{
			StreetName:     p.CreditorAddress.Street,
			BuildingNumber: p.CreditorAddress.BuildingNo,
			TownName:       p.CreditorAddress.City,
			PostCode:       p.CreditorAddress.PostalCode,
			Country:        p.CreditorAddress.CountryCode,
		}
	}
	return dto
}

func presentPeriodicPayment(p *domain.PeriodicPayment) periodicPaymentDTO {
	dto := periodicPaymentDTO{
		singlePaymentDTO: presentSinglePayment(&p.SinglePayment),
		StartDate:        presentDate(p.StartDate),
		EndDate:          presentDate(p.EndDate),
		Frequency:        p.Frequency,
		ExecutionRule:    p.ExecutionRule,
	}
	if p.DayOfExecution != 0 {
		dto.DayOfExecution = strconv.Itoa(p.DayOfExecution)
	}
	return dto
}

func presentBulkPayment(p *domain.BulkPayment) bulkPaymentDTO {
	payments := make([]singlePaymentDTO, 0, len(p.Entries))
	for i := range p.Entries {
		payments = append(payments, presentSinglePayment(&p.Entries[i]))
	}
	return bulkPaymentDTO{
		BatchBookingPreferred:  p.BatchBookingPreferred,
		DebtorAccount:          presentAccountReference(p.DebtorAccount),
		RequestedExecutionDate: presentDate(p.RequestedExecutionDate),
		Payments:               payments,
	}
}
