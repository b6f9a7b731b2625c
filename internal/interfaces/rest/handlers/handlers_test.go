package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/authorisation"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/services"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/testhelpers"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest/handlers"
)

// restFixture wires the full API stack on in-memory collaborators: only
// the registry, the consent store and the connectors are doubled.
type restFixture struct {
	registry *testhelpers.MockRegistry
	single   *testhelpers.MockConnector[spi.SinglePaymentRequest]
	common   *testhelpers.MockConnector[spi.CommonPaymentRequest]
	mux      *http.ServeMux
}

func newRestFixture(t *testing.T, profile application.Profile) *restFixture {
	t.Helper()
	f := &restFixture{
		registry: testhelpers.NewMockRegistry(),
		single:   &testhelpers.MockConnector[spi.SinglePaymentRequest]{},
		common:   &testhelpers.MockConnector[spi.CommonPaymentRequest]{},
	}
	consentData := testhelpers.NewMockConsentData()
	periodic := &testhelpers.MockConnector[spi.PeriodicPaymentRequest]{}
	bulk := &testhelpers.MockConnector[spi.BulkPaymentRequest]{}
	router := application.NewPaymentTypeRouter(profile.RawProductPrefixes)
	tppValidator := application.NewPisTppValidator()
	logger := testhelpers.DiscardLogger()

	core := authorisation.NewService(
		f.registry, consentData, tppValidator, &testhelpers.MockAccessChecker{},
		f.single, periodic, bulk, f.common, profile, logger,
	)
	authService := authorisation.NewScaAuthorisationService(core, profile)

	paymentService := services.NewPaymentService(
		f.registry, consentData, router, tppValidator,
		f.single, periodic, bulk, f.common,
		authService, profile, logger,
	)

	f.mux = http.NewServeMux()
	handlers.NewHandlers(paymentService, authService, f.registry, router, logger).Register(f.mux)
	return f
}

func (f *restFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("TPP-Authorisation-Number", "PSDDE-BAFIN-123456")
	req.Header.Set("TPP-Authority-ID", "BAFIN")
	req.Header.Set("PSU-ID", "psu-1")
	req.Header.Set("PSU-IP-Address", "192.0.2.1")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) rest.ErrorResponse {
	t.Helper()
	var resp rest.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.TppMessages)
	return resp
}

func singlePaymentBody() map[string]any {
	return map[string]any{
		"endToEndIdentification": "E2E-1",
		"debtorAccount":          map[string]any{"iban": "DE52500105173911841934"},
		"creditorAccount":        map[string]any{"iban": "DE15500105172295759744"},
		"creditorName":           "Merchant GmbH",
		"instructedAmount":       map[string]any{"currency": "EUR", "amount": "520.00"},
	}
}

func (f *restFixture) createPayment(t *testing.T) string {
	t.Helper()
	f.single.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
		return spi.Result[spi.InitiationResponse]{
			Payload: spi.InitiationResponse{TransactionStatus: "RCVD", ScaMethods: []string{"SMS_OTP"}},
		}, nil
	}
	rec := f.do(t, http.MethodPost, "/v1/payments/sepa-credit-transfers", singlePaymentBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		PaymentID string `json:"paymentId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.PaymentID)
	return resp.PaymentID
}

func embeddedTestProfile() application.Profile {
	return application.Profile{
		ScaApproach:         domain.ScaApproachEmbedded,
		AvailableScaMethods: []string{"SMS_OTP"},
	}
}

func TestCreatePaymentEndpoint(t *testing.T) {
	t.Run("returns 201 with the created payment", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())
		f.single.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
			assert.Equal(t, "psu-1", sctx.Psu.PsuID)
			return spi.Result[spi.InitiationResponse]{
				Payload: spi.InitiationResponse{TransactionStatus: "RCVD", ScaMethods: []string{"SMS_OTP"}},
			}, nil
		}

		rec := f.do(t, http.MethodPost, "/v1/payments/sepa-credit-transfers", singlePaymentBody())

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "RCVD", resp["transactionStatus"])
		assert.NotEmpty(t, resp["paymentId"])
		assert.Equal(t, []any{"SMS_OTP"}, resp["scaMethods"])
	})

	t.Run("requires the PSU-IP-Address header", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/sepa-credit-transfers", bytes.NewReader(nil))
		req.Header.Set("TPP-Authorisation-Number", "PSDDE-BAFIN-123456")
		rec := httptest.NewRecorder()
		f.mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeErr(t, rec)
		assert.Equal(t, "FORMAT_ERROR", resp.TppMessages[0].Code)
		assert.Contains(t, resp.TppMessages[0].Text, "PSU-IP-Address")
	})

	t.Run("requires a redirect URI under the redirect approach", func(t *testing.T) {
		profile := embeddedTestProfile()
		profile.ScaApproach = domain.ScaApproachRedirect
		f := newRestFixture(t, profile)

		rec := f.do(t, http.MethodPost, "/v1/payments/sepa-credit-transfers", singlePaymentBody())

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeErr(t, rec)
		assert.Contains(t, resp.TppMessages[0].Text, "TPP-Redirect-URI")
	})

	t.Run("rejects an unknown payment service", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())

		rec := f.do(t, http.MethodPost, "/v1/instant-payments/sepa-credit-transfers", singlePaymentBody())

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeErr(t, rec)
		assert.Equal(t, "ERROR", resp.TppMessages[0].Category)
		assert.Contains(t, resp.TppMessages[0].Text, "Wrong payment service")
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/sepa-credit-transfers", bytes.NewReader([]byte("{not json")))
		req.Header.Set("TPP-Authorisation-Number", "PSDDE-BAFIN-123456")
		req.Header.Set("PSU-IP-Address", "192.0.2.1")
		rec := httptest.NewRecorder()
		f.mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeErr(t, rec)
		assert.Equal(t, "FORMAT_ERROR", resp.TppMessages[0].Code)
	})

	t.Run("accepts a raw product body verbatim", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())
		raw := []byte("<Document>pain.001 content</Document>")
		f.common.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.CommonPaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
			assert.Equal(t, raw, req.PaymentData)
			return spi.Result[spi.InitiationResponse]{
				Payload: spi.InitiationResponse{TransactionStatus: "RCVD"},
			}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/payments/pain.001-sepa-credit-transfers", bytes.NewReader(raw))
		req.Header.Set("TPP-Authorisation-Number", "PSDDE-BAFIN-123456")
		req.Header.Set("PSU-IP-Address", "192.0.2.1")
		rec := httptest.NewRecorder()
		f.mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestPaymentStatusEndpoint(t *testing.T) {
	t.Run("returns the committed status", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())
		paymentID := f.createPayment(t)
		f.single.GetStatusFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[string], error) {
			return spi.Result[string]{Payload: "ACCP"}, nil
		}

		rec := f.do(t, http.MethodGet, "/v1/payments/sepa-credit-transfers/"+paymentID+"/status", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"transactionStatus":"ACCP"}`, rec.Body.String())
	})

	t.Run("unknown payment identifier reads as payment not found", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())

		rec := f.do(t, http.MethodGet, "/v1/payments/sepa-credit-transfers/does-not-exist/status", nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeErr(t, rec)
		assert.Contains(t, resp.TppMessages[0].Text, "Payment not found")
	})
}

func TestGetPaymentEndpoint(t *testing.T) {
	f := newRestFixture(t, embeddedTestProfile())
	paymentID := f.createPayment(t)
	f.single.GetPaymentFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.SinglePaymentRequest], error) {
		return spi.Result[spi.SinglePaymentRequest]{Payload: req}, nil
	}

	rec := f.do(t, http.MethodGet, "/v1/payments/sepa-credit-transfers/"+paymentID, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Merchant GmbH", resp["creditorName"])
	assert.Equal(t, "RCVD", resp["transactionStatus"])
}

func TestCancelPaymentEndpoint(t *testing.T) {
	t.Run("returns 204 when cancellation completes immediately", func(t *testing.T) {
		f := newRestFixture(t, embeddedTestProfile())
		paymentID := f.createPayment(t)
		f.single.CancelWithoutScaFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
			return spi.Result[spi.CancellationResponse]{Payload: spi.CancellationResponse{TransactionStatus: "CANC"}}, nil
		}

		rec := f.do(t, http.MethodDelete, "/v1/payments/sepa-credit-transfers/"+paymentID, nil)

		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("returns 202 with the cancellation authorisation when SCA is mandated", func(t *testing.T) {
		profile := embeddedTestProfile()
		profile.PaymentCancellationAuthorisationMandated = true
		f := newRestFixture(t, profile)
		paymentID := f.createPayment(t)
		f.single.InitiateCancellationFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
			return spi.Result[spi.CancellationResponse]{Payload: spi.CancellationResponse{TransactionStatus: "ACTC"}}, nil
		}

		rec := f.do(t, http.MethodDelete, "/v1/payments/sepa-credit-transfers/"+paymentID, nil)

		require.Equal(t, http.StatusAccepted, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ACTC", resp["transactionStatus"])
		assert.NotEmpty(t, resp["cancellationId"])
		assert.Equal(t, "received", resp["scaStatus"])
	})
}

func TestAuthorisationEndpoints(t *testing.T) {
	f := newRestFixture(t, embeddedTestProfile())
	paymentID := f.createPayment(t)

	rec := f.do(t, http.MethodPost, "/v1/payments/sepa-credit-transfers/"+paymentID+"/authorisations", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	authID, _ := created["authorisationId"].(string)
	require.NotEmpty(t, authID)
	assert.Equal(t, "received", created["scaStatus"])
	assert.Equal(t, "EMBEDDED", created["scaApproach"])

	base := "/v1/payments/sepa-credit-transfers/" + paymentID + "/authorisations/" + authID

	rec = f.do(t, http.MethodPut, base, map[string]any{
		"psuData": map[string]any{"password": "secret"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "psuAuthenticated", updated["scaStatus"])
	assert.Equal(t, []any{"SMS_OTP"}, updated["availableScaMethods"])

	rec = f.do(t, http.MethodPut, base, map[string]any{"authenticationMethodId": "SMS_OTP"})
	require.Equal(t, http.StatusOK, rec.Code)

	f.single.VerifyScaAndExecuteFn = func(ctx context.Context, sctx spi.Context, confirmation spi.ScaConfirmation, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.ExecutionResponse], error) {
		return spi.Result[spi.ExecutionResponse]{Payload: spi.ExecutionResponse{TransactionStatus: "ACSC"}}, nil
	}
	rec = f.do(t, http.MethodPut, base, map[string]any{"scaAuthenticationData": "123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "finalised", updated["scaStatus"])
	assert.Equal(t, "ACSC", updated["transactionStatus"])

	rec = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scaStatus":"finalised"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/payments/sepa-credit-transfers/"+paymentID+"/authorisations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{authID}, list["authorisationIds"])

	// The cancellation namespace does not see initiation authorisations.
	rec = f.do(t, http.MethodGet, "/v1/payments/sepa-credit-transfers/"+paymentID+"/cancellation-authorisations/"+authID, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeErr(t, rec)
	assert.Equal(t, "RESOURCE_UNKNOWN", resp.TppMessages[0].Code)
}
