package connector

import (
	"context"
	"fmt"

	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
)

// wire DTOs for the non-payment operation payloads.
type initiationDTO struct {
	PaymentID         string   `json:"paymentId"`
	TransactionStatus string   `json:"transactionStatus"`
	AspspAccountID    string   `json:"aspspAccountId,omitempty"`
	ScaMethods        []string `json:"scaMethods,omitempty"`
}

type statusDTO struct {
	TransactionStatus string `json:"transactionStatus"`
}

type cancellationDTO struct {
	TransactionStatus        string `json:"transactionStatus"`
	CancellationAuthRequired bool   `json:"cancellationAuthorisationRequired"`
}

// HTTPConnector implements the connector contract for one payment
// variant against one backend path segment.
type HTTPConnector[P any] struct {
	client  *Client
	segment string
}

func NewSingleConnector(client *Client) spi.SinglePaymentConnector {
	return &HTTPConnector[spi.SinglePaymentRequest]{client: client, segment: "payments"}
}

func NewPeriodicConnector(client *Client) spi.PeriodicPaymentConnector {
	return &HTTPConnector[spi.PeriodicPaymentRequest]{client: client, segment: "periodic-payments"}
}

func NewBulkConnector(client *Client) spi.BulkPaymentConnector {
	return &HTTPConnector[spi.BulkPaymentRequest]{client: client, segment: "bulk-payments"}
}

func NewCommonConnector(client *Client) spi.CommonPaymentConnector {
	return &HTTPConnector[spi.CommonPaymentRequest]{client: client, segment: "common-payments"}
}

func (c *HTTPConnector[P]) envelope(sctx spi.Context, payment P, consentData []byte) *requestEnvelope[P] {
	return &requestEnvelope[P]{
		Psu:              toPsuDTO(sctx.Psu),
		Tpp:              toTppDTO(sctx.Tpp),
		Payment:          payment,
		AspspConsentData: encodeConsentData(consentData),
	}
}

func (c *HTTPConnector[P]) path(op string) string {
	return fmt.Sprintf("/api/v1/%s/%s", c.segment, op)
}

func (c *HTTPConnector[P]) Initiate(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
	resp, err := sendRequest[requestEnvelope[P], responseEnvelope[initiationDTO]](c.client, ctx, c.path("initiate"), c.envelope(sctx, payment, consentData))
	if err != nil {
		return spi.Result[spi.InitiationResponse]{}, err
	}
	return spi.Result[spi.InitiationResponse]{
		Payload: spi.InitiationResponse{
			PaymentID:         resp.Payload.PaymentID,
			TransactionStatus: resp.Payload.TransactionStatus,
			AspspAccountID:    resp.Payload.AspspAccountID,
			ScaMethods:        resp.Payload.ScaMethods,
		},
		ConsentData: decodeConsentData(resp.AspspConsentData, consentData),
	}, nil
}

func (c *HTTPConnector[P]) GetPayment(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[P], error) {
	resp, err := sendRequest[requestEnvelope[P], responseEnvelope[P]](c.client, ctx, c.path("read"), c.envelope(sctx, payment, consentData))
	if err != nil {
		return spi.Result[P]{}, err
	}
	return spi.Result[P]{
		Payload:     resp.Payload,
		ConsentData: decodeConsentData(resp.AspspConsentData, consentData),
	}, nil
}

func (c *HTTPConnector[P]) GetStatus(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[string], error) {
	resp, err := sendRequest[requestEnvelope[P], responseEnvelope[statusDTO]](c.client, ctx, c.path("status"), c.envelope(sctx, payment, consentData))
	if err != nil {
		return spi.Result[string]{}, err
	}
	return spi.Result[string]{
		Payload:     resp.Payload.TransactionStatus,
		ConsentData: decodeConsentData(resp.AspspConsentData, consentData),
	}, nil
}

func (c *HTTPConnector[P]) ExecuteWithoutSca(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.ExecutionResponse], error) {
	return c.execute(ctx, sctx, payment, consentData, c.path("execute"), nil)
}

func (c *HTTPConnector[P]) VerifyScaAndExecute(ctx context.Context, sctx spi.Context, confirmation spi.ScaConfirmation, payment P, consentData []byte) (spi.Result[spi.ExecutionResponse], error) {
	return c.execute(ctx, sctx, payment, consentData, c.path("verify-sca"), toConfirmationDTO(confirmation))
}

func (c *HTTPConnector[P]) execute(ctx context.Context, sctx spi.Context, payment P, consentData []byte, path string, confirmation *confirmationDTO) (spi.Result[spi.ExecutionResponse], error) {
	env := c.envelope(sctx, payment, consentData)
	env.ScaConfirmation = confirmation
	resp, err := sendRequest[requestEnvelope[P], responseEnvelope[statusDTO]](c.client, ctx, path, env)
	if err != nil {
		return spi.Result[spi.ExecutionResponse]{}, err
	}
	return spi.Result[spi.ExecutionResponse]{
		Payload:     spi.ExecutionResponse{TransactionStatus: resp.Payload.TransactionStatus},
		ConsentData: decodeConsentData(resp.AspspConsentData, consentData),
	}, nil
}

func (c *HTTPConnector[P]) CancelWithoutSca(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
	return c.cancel(ctx, sctx, payment, consentData, c.path("cancel"))
}

func (c *HTTPConnector[P]) InitiateCancellation(ctx context.Context, sctx spi.Context, payment P, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
	return c.cancel(ctx, sctx, payment, consentData, c.path("initiate-cancellation"))
}

func (c *HTTPConnector[P]) cancel(ctx context.Context, sctx spi.Context, payment P, consentData []byte, path string) (spi.Result[spi.CancellationResponse], error) {
	resp, err := sendRequest[requestEnvelope[P], responseEnvelope[cancellationDTO]](c.client, ctx, path, c.envelope(sctx, payment, consentData))
	if err != nil {
		return spi.Result[spi.CancellationResponse]{}, err
	}
	return spi.Result[spi.CancellationResponse]{
		Payload: spi.CancellationResponse{
			TransactionStatus:        resp.Payload.TransactionStatus,
			CancellationAuthRequired: resp.Payload.CancellationAuthRequired,
		},
		ConsentData: decodeConsentData(resp.AspspConsentData, consentData),
	}, nil
}
