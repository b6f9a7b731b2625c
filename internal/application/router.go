package application

import (
	"strings"
	"time"

	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentRoute is the strategy a request is dispatched to. Exactly one
// route matches any (payment type, payment product) pair.
type PaymentRoute string

const (
	RouteSingle   PaymentRoute = "single"
	RoutePeriodic PaymentRoute = "periodic"
	RouteBulk     PaymentRoute = "bulk"
	RouteRaw      PaymentRoute = "raw"
)

// PaymentTypeRouter resolves the handling strategy for a payment. It is a
// pure function of its inputs: no state, no I/O. Raw-product detection is
// a configured prefix list rather than a hardcoded substring check.
type PaymentTypeRouter struct {
	rawProductPrefixes []string
}

func NewPaymentTypeRouter(rawProductPrefixes []string) *PaymentTypeRouter {
	if len(rawProductPrefixes) == 0 {
		rawProductPrefixes = []string{"pain."}
	}
	return &PaymentTypeRouter{rawProductPrefixes: rawProductPrefixes}
}

// IsRawProduct reports whether the payment product denotes an
// unstructured format whose payload is stored verbatim and parsed only by
// the backend.
func (r *PaymentTypeRouter) IsRawProduct(paymentProduct string) bool {
	for _, prefix := range r.rawProductPrefixes {
		if strings.HasPrefix(paymentProduct, prefix) {
			return true
		}
	}
	return false
}

// Route dispatches to exactly one of the four strategies.
func (r *PaymentTypeRouter) Route(paymentType domain.PaymentType, paymentProduct string) PaymentRoute {
	if r.IsRawProduct(paymentProduct) {
		return RouteRaw
	}
	switch paymentType {
	case domain.PaymentTypePeriodic:
		return RoutePeriodic
	case domain.PaymentTypeBulk:
		return RouteBulk
	default:
		return RouteSingle
	}
}

// Mapping between protocol-level payment structs and connector requests.
// Every field is named explicitly; absence stays an explicit zero value,
// not an implicit fallthrough.

const dateLayout = "2006-01-02"

func mapAmount(a domain.Amount) spi.AmountRequest {
	return spi.AmountRequest{Currency: a.Currency, Amount: a.Value.String()}
}

func parseAmount(req spi.AmountRequest) (domain.Amount, error) {
	v, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return domain.Amount{}, err
	}
	return domain.Amount{Currency: req.Currency, Value: v}, nil
}

func mapAccountReference(ref domain.AccountReference) spi.AccountReferenceRequest {
	return spi.AccountReferenceRequest{
		IBAN:     ref.IBAN,
		BBAN:     ref.BBAN,
		PAN:      ref.PAN,
		MSISDN:   ref.MSISDN,
		Currency: ref.Currency,
	}
}

func parseAccountReference(req spi.AccountReferenceRequest) domain.AccountReference {
	return domain.AccountReference{
		IBAN:     req.IBAN,
		BBAN:     req.BBAN,
		PAN:      req.PAN,
		MSISDN:   req.MSISDN,
		Currency: req.Currency,
	}
}

func mapAddress(a domain.Address) spi.AddressRequest {
	return spi.AddressRequest{
		Street:      a.Street,
		BuildingNo:  a.BuildingNo,
		City:        a.City,
		PostalCode:  a.PostalCode,
		CountryCode: a.CountryCode,
	}
}

func mapDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// MapSinglePayment builds the connector request for a single payment.
func MapSinglePayment(paymentID, paymentProduct string, p *domain.SinglePayment) spi.SinglePaymentRequest {
	return spi.SinglePaymentRequest{
		PaymentID:              paymentID,
		PaymentProduct:         paymentProduct,
		EndToEndIdentification: p.EndToEndIdentification,
		DebtorAccount:          mapAccountReference(p.DebtorAccount),
		CreditorAccount:        mapAccountReference(p.CreditorAccount),
		CreditorAgent:          p.CreditorAgent,
		CreditorName:           p.CreditorName,
		CreditorAddress:        mapAddress(p.CreditorAddress),
		InstructedAmount:       mapAmount(p.InstructedAmount),
		RemittanceInformation:  p.RemittanceInformation,
		RequestedExecutionDate: mapDate(p.RequestedExecutionDate),
		TransactionStatus:      string(p.TransactionStatus),
	}
}

// ParseSinglePayment rebuilds the protocol view from a connector
// response.
func ParseSinglePayment(req spi.SinglePaymentRequest) (*domain.SinglePayment, error) {
	amount, err := parseAmount(req.InstructedAmount)
	if err != nil {
		return nil, err
	}
	p := &domain.SinglePayment{
		EndToEndIdentification: req.EndToEndIdentification,
		DebtorAccount:          parseAccountReference(req.DebtorAccount),
		CreditorAccount:        parseAccountReference(req.CreditorAccount),
		CreditorAgent:          req.CreditorAgent,
		CreditorName:           req.CreditorName,
		CreditorAddress: domain.Address{
			Street:      req.CreditorAddress.Street,
			BuildingNo:  req.CreditorAddress.BuildingNo,
			City:        req.CreditorAddress.City,
			PostalCode:  req.CreditorAddress.PostalCode,
			CountryCode: req.CreditorAddress.CountryCode,
		},
		InstructedAmount:      amount,
		RemittanceInformation: req.RemittanceInformation,
	}
	if req.RequestedExecutionDate != "" {
		d, err := time.Parse(dateLayout, req.RequestedExecutionDate)
		if err != nil {
			return nil, err
		}
		p.RequestedExecutionDate = d
	}
	if status, ok := domain.ParseTransactionStatus(req.TransactionStatus); ok {
		p.TransactionStatus = status
	}
	return p, nil
}

// MapPeriodicPayment builds the connector request for a standing order.
func MapPeriodicPayment(paymentID, paymentProduct string, p *domain.PeriodicPayment) spi.PeriodicPaymentRequest {
	return spi.PeriodicPaymentRequest{
		SinglePaymentRequest: MapSinglePayment(paymentID, paymentProduct, &p.SinglePayment),
		StartDate:            mapDate(p.StartDate),
		EndDate:              mapDate(p.EndDate),
		Frequency:            p.Frequency,
		ExecutionRule:        p.ExecutionRule,
		DayOfExecution:       p.DayOfExecution,
	}
}

// ParsePeriodicPayment rebuilds the protocol view of a standing order.
func ParsePeriodicPayment(req spi.PeriodicPaymentRequest) (*domain.PeriodicPayment, error) {
	single, err := ParseSinglePayment(req.SinglePaymentRequest)
	if err != nil {
		return nil, err
	}
	p := &domain.PeriodicPayment{
		SinglePayment:  *single,
		Frequency:      req.Frequency,
		ExecutionRule:  req.ExecutionRule,
		DayOfExecution: req.DayOfExecution,
	}
	if req.StartDate != "" {
		d, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return nil, err
		}
		p.StartDate = d
	}
	if req.EndDate != "" {
		d, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return nil, err
		}
		p.EndDate = d
	}
	return p, nil
}

// MapBulkPayment builds the connector request for a bulk payment.
func MapBulkPayment(paymentID, paymentProduct string, p *domain.BulkPayment) spi.BulkPaymentRequest {
	entries := make([]spi.SinglePaymentRequest, 0, len(p.Entries))
	for i := range p.Entries {
		entries = append(entries, MapSinglePayment("", paymentProduct, &p.Entries[i]))
	}
	return spi.BulkPaymentRequest{
		PaymentID:              paymentID,
		PaymentProduct:         paymentProduct,
		BatchBookingPreferred:  p.BatchBookingPreferred,
		DebtorAccount:          mapAccountReference(p.DebtorAccount),
		RequestedExecutionDate: mapDate(p.RequestedExecutionDate),
		Payments:               entries,
	}
}

// ParseBulkPayment rebuilds the protocol view of a bulk payment.
func ParseBulkPayment(req spi.BulkPaymentRequest) (*domain.BulkPayment, error) {
	entries := make([]domain.SinglePayment, 0, len(req.Payments))
	for _, e := range req.Payments {
		single, err := ParseSinglePayment(e)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *single)
	}
	p := &domain.BulkPayment{
		BatchBookingPreferred: req.BatchBookingPreferred,
		DebtorAccount:         parseAccountReference(req.DebtorAccount),
		Entries:               entries,
	}
	if req.RequestedExecutionDate != "" {
		d, err := time.Parse(dateLayout, req.RequestedExecutionDate)
		if err != nil {
			return nil, err
		}
		p.RequestedExecutionDate = d
	}
	return p, nil
}

// MapCommonPayment builds the connector request for a raw payment: the
// payload travels verbatim.
func MapCommonPayment(p *domain.Payment) spi.CommonPaymentRequest {
	return spi.CommonPaymentRequest{
		PaymentID:      p.ID,
		PaymentType:    string(p.PaymentType),
		PaymentProduct: p.PaymentProduct,
		PaymentData:    p.RawData,
	}
}
