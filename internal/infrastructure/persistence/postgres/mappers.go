package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// paymentVariant is the jsonb envelope for the typed payment body. At
// most one field is set, matching the tag on the payments row.
type paymentVariant struct {
	Single   *domain.SinglePayment   `json:"single,omitempty"`
	Periodic *domain.PeriodicPayment `json:"periodic,omitempty"`
	Bulk     *domain.BulkPayment     `json:"bulk,omitempty"`
}

// toPaymentModel: maps domain entity to db model
func toPaymentModel(p *domain.Payment) (*PaymentModel, error) {
	variant, err := json.Marshal(paymentVariant{
		Single:   p.Single,
		Periodic: p.Periodic,
		Bulk:     p.Bulk,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payment variant: %w", err)
	}
	tpp, err := json.Marshal(p.Tpp)
	if err != nil {
		return nil, fmt.Errorf("marshal tpp info: %w", err)
	}
	psu, err := json.Marshal(p.PsuData)
	if err != nil {
		return nil, fmt.Errorf("marshal psu data: %w", err)
	}

	return &PaymentModel{
		ID:             p.ID,
		PaymentType:    string(p.PaymentType),
		PaymentProduct: p.PaymentProduct,
		Variant:        variant,
		RawData:        p.RawData,
		Status:         string(p.TransactionStatus),
		Tpp:            tpp,
		Psu:            psu,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}, nil
}

// toDomainPayment: maps db model to domain entity
func toDomainPayment(m *PaymentModel) (*domain.Payment, error) {
	var variant paymentVariant
	if len(m.Variant) > 0 {
		if err := json.Unmarshal(m.Variant, &variant); err != nil {
			return nil, fmt.Errorf("unmarshal payment variant: %w", err)
		}
	}

	p := &domain.Payment{
		ID:                m.ID,
		PaymentType:       domain.PaymentType(m.PaymentType),
		PaymentProduct:    m.PaymentProduct,
		Single:            variant.Single,
		Periodic:          variant.Periodic,
		Bulk:              variant.Bulk,
		RawData:           m.RawData,
		TransactionStatus: domain.TransactionStatus(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if len(m.Tpp) > 0 {
		if err := json.Unmarshal(m.Tpp, &p.Tpp); err != nil {
			return nil, fmt.Errorf("unmarshal tpp info: %w", err)
		}
	}
	if len(m.Psu) > 0 {
		if err := json.Unmarshal(m.Psu, &p.PsuData); err != nil {
			return nil, fmt.Errorf("unmarshal psu data: %w", err)
		}
	}
	return p, nil
}

func toAuthorisationModel(a *domain.Authorisation) (*AuthorisationModel, error) {
	psu, err := json.Marshal(a.Psu)
	if err != nil {
		return nil, fmt.Errorf("marshal psu data: %w", err)
	}
	return &AuthorisationModel{
		ID:              a.ID,
		PaymentID:       a.PaymentID,
		AuthType:        string(a.Type),
		ScaStatus:       string(a.ScaStatus),
		ScaApproach:     string(a.ScaApproach),
		Psu:             psu,
		ChosenScaMethod: a.ChosenScaMethod,
		RedirectToken:   a.RedirectToken,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}, nil
}

func toDomainAuthorisation(m *AuthorisationModel) (*domain.Authorisation, error) {
	a := &domain.Authorisation{
		ID:              m.ID,
		PaymentID:       m.PaymentID,
		Type:            domain.AuthorisationType(m.AuthType),
		ScaStatus:       domain.ScaStatus(m.ScaStatus),
		ScaApproach:     domain.ScaApproach(m.ScaApproach),
		ChosenScaMethod: m.ChosenScaMethod,
		RedirectToken:   m.RedirectToken,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if len(m.Psu) > 0 {
		if err := json.Unmarshal(m.Psu, &a.Psu); err != nil {
			return nil, fmt.Errorf("unmarshal psu data: %w", err)
		}
	}
	return a, nil
}
