package connector

import (
	"encoding/base64"

	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

// requestEnvelope is the wire form of one backend call. The consent data
// blob travels base64-encoded and is never interpreted on this side.
type requestEnvelope[P any] struct {
	Psu              psuDTO           `json:"psuData"`
	Tpp              tppDTO           `json:"tppInfo"`
	Payment          P                `json:"payment"`
	AspspConsentData string           `json:"aspspConsentData,omitempty"`
	ScaConfirmation  *confirmationDTO `json:"scaConfirmation,omitempty"`
}

type responseEnvelope[T any] struct {
	Payload          T      `json:"payload"`
	AspspConsentData string `json:"aspspConsentData,omitempty"`
}

type failureResponse struct {
	FailureStatus string `json:"failureStatus"`
	Message       string `json:"message"`
}

type psuDTO struct {
	PsuID          string `json:"psuId,omitempty"`
	PsuIDType      string `json:"psuIdType,omitempty"`
	PsuCorporateID string `json:"psuCorporateId,omitempty"`
}

type tppDTO struct {
	AuthorisationNumber string `json:"authorisationNumber"`
	TppName             string `json:"tppName,omitempty"`
	AuthorityID         string `json:"authorityId,omitempty"`
	RedirectURI         string `json:"redirectUri,omitempty"`
	NokRedirectURI      string `json:"nokRedirectUri,omitempty"`
}

type confirmationDTO struct {
	PaymentID        string `json:"paymentId"`
	AuthorisationID  string `json:"authorisationId"`
	ChosenScaMethod  string `json:"chosenScaMethod,omitempty"`
	ConfirmationCode string `json:"confirmationCode"`
}

func toPsuDTO(p spi.PsuData) psuDTO {
	return psuDTO{
		PsuID:          p.PsuID,
		PsuIDType:      p.PsuIDType,
		PsuCorporateID: p.PsuCorporateID,
	}
}

func toTppDTO(t domain.TppInfo) tppDTO {
	return tppDTO{
		AuthorisationNumber: t.AuthorisationNumber,
		TppName:             t.TppName,
		AuthorityID:         t.AuthorityID,
		RedirectURI:         t.RedirectURI,
		NokRedirectURI:      t.NokRedirectURI,
	}
}

func toConfirmationDTO(c spi.ScaConfirmation) *confirmationDTO {
	return &confirmationDTO{
		PaymentID:        c.PaymentID,
		AuthorisationID:  c.AuthorisationID,
		ChosenScaMethod:  c.ChosenScaMethod,
		ConfirmationCode: c.ConfirmationCode,
	}
}

func encodeConsentData(blob []byte) string {
	if len(blob) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(blob)
}

func decodeConsentData(encoded string, fallback []byte) []byte {
	if encoded == "" {
		return fallback
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fallback
	}
	return blob
}
