package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Amount is an instructed amount with its currency. Monetary values are
// carried as decimals end to end; floats would drift on conversion.
type Amount struct {
	Currency string
	Value    decimal.Decimal
}

func NewAmount(currency, value string) (Amount, error) {
	if currency == "" {
		return Amount{}, errors.New("currency is required")
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, errors.New("amount is not a valid decimal")
	}
	if v.IsNegative() {
		return Amount{}, errors.New("amount cannot be negative")
	}
	return Amount{Currency: currency, Value: v}, nil
}

// AccountReference identifies a debtor or creditor account.
type AccountReference struct {
	IBAN     string
	BBAN     string
	PAN      string
	MSISDN   string
	Currency string
}

func (r AccountReference) IsEmpty() bool {
	return r.IBAN == "" && r.BBAN == "" && r.PAN == "" && r.MSISDN == ""
}

// Address is the postal address of a creditor.
type Address struct {
	Street      string
	BuildingNo  string
	City        string
	PostalCode  string
	CountryCode string
}
