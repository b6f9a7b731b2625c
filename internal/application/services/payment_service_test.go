package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/services"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/spi"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/testhelpers"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
)

var errConnRefused = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

type serviceFixture struct {
	registry    *testhelpers.MockRegistry
	consentData *testhelpers.MockConsentData
	single      *testhelpers.MockConnector[spi.SinglePaymentRequest]
	periodic    *testhelpers.MockConnector[spi.PeriodicPaymentRequest]
	bulk        *testhelpers.MockConnector[spi.BulkPaymentRequest]
	common      *testhelpers.MockConnector[spi.CommonPaymentRequest]
	starter     *testhelpers.MockCancellationStarter
	service     *services.PaymentService
}

func newServiceFixture(t *testing.T, profile application.Profile) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		registry:    testhelpers.NewMockRegistry(),
		consentData: testhelpers.NewMockConsentData(),
		single:      &testhelpers.MockConnector[spi.SinglePaymentRequest]{},
		periodic:    &testhelpers.MockConnector[spi.PeriodicPaymentRequest]{},
		bulk:        &testhelpers.MockConnector[spi.BulkPaymentRequest]{},
		common:      &testhelpers.MockConnector[spi.CommonPaymentRequest]{},
		starter:     &testhelpers.MockCancellationStarter{},
	}
	f.service = services.NewPaymentService(
		f.registry,
		f.consentData,
		application.NewPaymentTypeRouter(profile.RawProductPrefixes),
		application.NewPisTppValidator(),
		f.single,
		f.periodic,
		f.bulk,
		f.common,
		f.starter,
		profile,
		testhelpers.DiscardLogger(),
	)
	return f
}

func embeddedProfile() application.Profile {
	return application.Profile{
		ScaApproach:         domain.ScaApproachEmbedded,
		AvailableScaMethods: []string{"SMS_OTP", "PHOTO_OTP"},
	}
}

func testCaller() application.CallerContext {
	return application.CallerContext{
		Tpp: domain.TppInfo{
			AuthorisationNumber: "PSDDE-BAFIN-123456",
			TppName:             "Test TPP",
			AuthorityID:         "BAFIN",
		},
		Psu: domain.PsuIdData{PsuID: "psu-1"},
	}
}

func testSinglePayment() *domain.SinglePayment {
	return &domain.SinglePayment{
		EndToEndIdentification: "E2E-1",
		DebtorAccount:          domain.AccountReference{IBAN: "DE52500105173911841934", Currency: "EUR"},
		CreditorAccount:        domain.AccountReference{IBAN: "DE15500105172295759744", Currency: "EUR"},
		CreditorName:           "Merchant GmbH",
		InstructedAmount:       domain.Amount{Currency: "EUR", Value: decimal.RequireFromString("520.00")},
	}
}

func singleParams() services.InitiationParameters {
	return services.InitiationParameters{
		PaymentType:    domain.PaymentTypeSingle,
		PaymentProduct: "sepa-credit-transfers",
	}
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores payment and persists the connector blob", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		blob := []byte("session-state-1")
		f.single.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
			assert.Nil(t, consentData)
			assert.Equal(t, "sepa-credit-transfers", req.PaymentProduct)
			assert.Equal(t, "520", req.InstructedAmount.Amount)
			return spi.Result[spi.InitiationResponse]{
				Payload:     spi.InitiationResponse{TransactionStatus: "RCVD", ScaMethods: []string{"SMS_OTP"}},
				ConsentData: blob,
			}, nil
		}

		created, err := f.service.CreatePayment(ctx, testCaller(), services.PaymentPayload{Single: testSinglePayment()}, singleParams())
		require.NoError(t, err)
		require.NotEmpty(t, created.PaymentID)
		assert.Equal(t, domain.StatusRCVD, created.TransactionStatus)
		assert.Equal(t, []string{"SMS_OTP"}, created.ScaMethods)

		stored, err := f.registry.GetPayment(ctx, created.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRCVD, stored.TransactionStatus)
		assert.Equal(t, "PSDDE-BAFIN-123456", stored.Tpp.AuthorisationNumber)
		assert.Equal(t, blob, f.consentData.Blobs[created.PaymentID])
	})

	t.Run("routes a raw product to the common connector", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		raw := []byte("<pain.001 payload>")
		f.common.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.CommonPaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
			assert.Equal(t, raw, req.PaymentData)
			return spi.Result[spi.InitiationResponse]{
				Payload: spi.InitiationResponse{TransactionStatus: "RCVD"},
			}, nil
		}

		params := services.InitiationParameters{
			PaymentType:    domain.PaymentTypeSingle,
			PaymentProduct: "pain.001-sepa-credit-transfers",
		}
		created, err := f.service.CreatePayment(ctx, testCaller(), services.PaymentPayload{Raw: raw}, params)
		require.NoError(t, err)

		stored, err := f.registry.GetPayment(ctx, created.PaymentID)
		require.NoError(t, err)
		assert.True(t, stored.IsRaw())
		assert.Nil(t, stored.Single)
	})

	t.Run("rejects a payload that disagrees with the payment type", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())

		_, err := f.service.CreatePayment(ctx, testCaller(), services.PaymentPayload{Bulk: &domain.BulkPayment{}}, singleParams())

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.CodeFormatError, msgErr.First())
		assert.Empty(t, f.registry.Payments)
	})

	t.Run("normalizes a connector failure without leaking its message", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		f.single.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
			return spi.Result[spi.InitiationResponse]{}, &spi.Failure{Status: spi.UnauthorizedFailure, Message: "core banking says: card 4444-xxxx blocked"}
		}

		_, err := f.service.CreatePayment(ctx, testCaller(), services.PaymentPayload{Single: testSinglePayment()}, singleParams())

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrorTypePIS401, msgErr.ErrorType)
		assert.NotContains(t, msgErr.Error(), "card 4444")
	})

	t.Run("fails when the backend reports an unknown status", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		f.single.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
			return spi.Result[spi.InitiationResponse]{Payload: spi.InitiationResponse{TransactionStatus: "BOGUS"}}, nil
		}

		_, err := f.service.CreatePayment(ctx, testCaller(), services.PaymentPayload{Single: testSinglePayment()}, singleParams())

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.CodeResourceUnknown, msgErr.First())
	})
}

func TestGetPaymentStatusByID(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, f *serviceFixture, status domain.TransactionStatus) string {
		t.Helper()
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "sepa-credit-transfers",
			Single:            testSinglePayment(),
			TransactionStatus: status,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)
		return id
	}

	t.Run("commits the reported status", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seed(t, f, domain.StatusRCVD)
		f.single.GetStatusFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[string], error) {
			return spi.Result[string]{Payload: "ACCP", ConsentData: []byte("s2")}, nil
		}

		status, err := f.service.GetPaymentStatusByID(ctx, testCaller(), domain.PaymentTypeSingle, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusACCP, status)

		stored, err := f.registry.GetPayment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusACCP, stored.TransactionStatus)
		assert.Equal(t, []byte("s2"), f.consentData.Blobs[id])
	})

	t.Run("fails loudly once the payment is finalised", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seed(t, f, domain.StatusRJCT)
		f.single.GetStatusFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[string], error) {
			return spi.Result[string]{Payload: "ACSC"}, nil
		}

		_, err := f.service.GetPaymentStatusByID(ctx, testCaller(), domain.PaymentTypeSingle, id)

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Contains(t, msgErr.Error(), "finalised already")

		stored, err := f.registry.GetPayment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRJCT, stored.TransactionStatus)
	})

	t.Run("rejects a caller with a different TPP identity", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seed(t, f, domain.StatusRCVD)

		other := testCaller()
		other.Tpp.AuthorisationNumber = "PSDDE-BAFIN-999999"
		_, err := f.service.GetPaymentStatusByID(ctx, other, domain.PaymentTypeSingle, id)

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrorTypePIS401, msgErr.ErrorType)
		assert.Equal(t, application.CodeUnauthorized, msgErr.First())
	})

	t.Run("reports unknown payments as not found", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())

		_, err := f.service.GetPaymentStatusByID(ctx, testCaller(), domain.PaymentTypeSingle, "missing")

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.CodeFormatError, msgErr.First())
		assert.Contains(t, msgErr.Error(), "Payment not found")
	})
}

func TestGetPaymentByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the backend view and hands back the stored blob", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "sepa-credit-transfers",
			Single:            testSinglePayment(),
			TransactionStatus: domain.StatusACCP,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)
		require.NoError(t, f.consentData.Write(ctx, id, []byte("s1")))

		f.single.GetPaymentFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.SinglePaymentRequest], error) {
			assert.Equal(t, []byte("s1"), consentData)
			req.TransactionStatus = "ACCP"
			return spi.Result[spi.SinglePaymentRequest]{Payload: req, ConsentData: []byte("s2")}, nil
		}

		view, err := f.service.GetPaymentByID(ctx, testCaller(), domain.PaymentTypeSingle, id)
		require.NoError(t, err)
		require.NotNil(t, view.Single)
		assert.Equal(t, "Merchant GmbH", view.Single.CreditorName)
		assert.True(t, view.Single.InstructedAmount.Value.Equal(decimal.RequireFromString("520.00")))
		assert.Equal(t, []byte("s2"), f.consentData.Blobs[id])
	})

	t.Run("returns the raw payload verbatim for raw products", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		raw := []byte("<pain.001 payload>")
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "pain.001-sepa-credit-transfers",
			RawData:           raw,
			TransactionStatus: domain.StatusRCVD,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)

		f.common.GetPaymentFn = func(ctx context.Context, sctx spi.Context, req spi.CommonPaymentRequest, consentData []byte) (spi.Result[spi.CommonPaymentRequest], error) {
			return spi.Result[spi.CommonPaymentRequest]{Payload: req}, nil
		}

		view, err := f.service.GetPaymentByID(ctx, testCaller(), domain.PaymentTypeSingle, id)
		require.NoError(t, err)
		assert.Equal(t, raw, view.RawData)
	})

	t.Run("reading does not change the stored payment", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "sepa-credit-transfers",
			Single:            testSinglePayment(),
			TransactionStatus: domain.StatusACCP,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)

		f.single.GetPaymentFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.SinglePaymentRequest], error) {
			return spi.Result[spi.SinglePaymentRequest]{Payload: req}, nil
		}

		first, err := f.service.GetPaymentByID(ctx, testCaller(), domain.PaymentTypeSingle, id)
		require.NoError(t, err)
		second, err := f.service.GetPaymentByID(ctx, testCaller(), domain.PaymentTypeSingle, id)
		require.NoError(t, err)

		assert.Equal(t, first.TransactionStatus, second.TransactionStatus)
		stored, err := f.registry.GetPayment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusACCP, stored.TransactionStatus)
	})
}

func TestCancelPayment(t *testing.T) {
	ctx := context.Background()

	seedBulk := func(t *testing.T, f *serviceFixture, entryStatuses ...domain.TransactionStatus) string {
		t.Helper()
		entries := make([]domain.SinglePayment, 0, len(entryStatuses))
		for _, s := range entryStatuses {
			e := *testSinglePayment()
			e.TransactionStatus = s
			entries = append(entries, e)
		}
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeBulk,
			PaymentProduct:    "sepa-credit-transfers",
			Bulk:              &domain.BulkPayment{Entries: entries},
			TransactionStatus: domain.StatusACTC,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)
		return id
	}

	t.Run("cancels immediately when no authorisation is mandated", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "sepa-credit-transfers",
			Single:            testSinglePayment(),
			TransactionStatus: domain.StatusACTC,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)

		f.single.CancelWithoutScaFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
			return spi.Result[spi.CancellationResponse]{Payload: spi.CancellationResponse{TransactionStatus: "CANC"}}, nil
		}

		resp, err := f.service.CancelPayment(ctx, testCaller(), domain.PaymentTypeSingle, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCANC, resp.TransactionStatus)
		assert.Nil(t, resp.Authorisation)

		stored, err := f.registry.GetPayment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCANC, stored.TransactionStatus)
	})

	t.Run("starts a cancellation authorisation when mandated", func(t *testing.T) {
		profile := embeddedProfile()
		profile.PaymentCancellationAuthorisationMandated = true
		f := newServiceFixture(t, profile)
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "sepa-credit-transfers",
			Single:            testSinglePayment(),
			TransactionStatus: domain.StatusACTC,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)

		f.single.InitiateCancellationFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
			return spi.Result[spi.CancellationResponse]{Payload: spi.CancellationResponse{TransactionStatus: "ACTC", CancellationAuthRequired: true}}, nil
		}

		resp, err := f.service.CancelPayment(ctx, testCaller(), domain.PaymentTypeSingle, id)
		require.NoError(t, err)
		require.NotNil(t, resp.Authorisation)
		assert.Equal(t, domain.AuthorisationTypeCancellation, resp.Authorisation.Type)
		assert.Equal(t, domain.ScaStatusReceived, resp.Authorisation.ScaStatus)
		assert.Equal(t, domain.StatusACTC, resp.TransactionStatus)

		// The payment itself stays untouched until the authorisation
		// finalises.
		stored, err := f.registry.GetPayment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusACTC, stored.TransactionStatus)
	})

	t.Run("one finalised bulk entry blocks the whole batch", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seedBulk(t, f, domain.StatusACTC, domain.StatusACSC, domain.StatusACTC)

		_, err := f.service.CancelPayment(ctx, testCaller(), domain.PaymentTypeBulk, id)

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Contains(t, msgErr.Error(), "cannot be cancelled")
	})

	t.Run("a bulk payment with only open entries may be cancelled", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seedBulk(t, f, domain.StatusACTC, domain.StatusACTC)

		f.bulk.CancelWithoutScaFn = func(ctx context.Context, sctx spi.Context, req spi.BulkPaymentRequest, consentData []byte) (spi.Result[spi.CancellationResponse], error) {
			return spi.Result[spi.CancellationResponse]{Payload: spi.CancellationResponse{TransactionStatus: "CANC"}}, nil
		}

		resp, err := f.service.CancelPayment(ctx, testCaller(), domain.PaymentTypeBulk, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCANC, resp.TransactionStatus)
	})

	t.Run("a finalised single payment cannot be cancelled", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "sepa-credit-transfers",
			Single:            testSinglePayment(),
			TransactionStatus: domain.StatusACSC,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)

		_, err = f.service.CancelPayment(ctx, testCaller(), domain.PaymentTypeSingle, id)

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.CodeFormatError, msgErr.First())
	})
}

func TestDeclaredPaymentTypeMismatch(t *testing.T) {
	ctx := context.Background()

	seedSingle := func(t *testing.T, f *serviceFixture) string {
		t.Helper()
		payment := &domain.Payment{
			PaymentType:       domain.PaymentTypeSingle,
			PaymentProduct:    "sepa-credit-transfers",
			Single:            testSinglePayment(),
			TransactionStatus: domain.StatusACCP,
			Tpp:               testCaller().Tpp,
		}
		id, err := f.registry.CreatePayment(ctx, payment)
		require.NoError(t, err)
		return id
	}

	assertMismatch := func(t *testing.T, err error) {
		t.Helper()
		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.ErrorTypePIS405, msgErr.ErrorType)
		assert.Equal(t, application.CodeServiceInvalid, msgErr.First())
	}

	t.Run("status request under the wrong payment service is rejected", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seedSingle(t, f)

		_, err := f.service.GetPaymentStatusByID(ctx, testCaller(), domain.PaymentTypePeriodic, id)
		assertMismatch(t, err)
	})

	t.Run("get request under the wrong payment service is rejected", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seedSingle(t, f)

		_, err := f.service.GetPaymentByID(ctx, testCaller(), domain.PaymentTypeBulk, id)
		assertMismatch(t, err)
	})

	t.Run("cancel request under the wrong payment service is rejected", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		id := seedSingle(t, f)

		_, err := f.service.CancelPayment(ctx, testCaller(), domain.PaymentTypePeriodic, id)
		assertMismatch(t, err)

		stored, err := f.registry.GetPayment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusACCP, stored.TransactionStatus)
	})
}

func TestStorageFailuresAreNotNotFound(t *testing.T) {
	ctx := context.Background()

	t.Run("a registry outage is a service failure", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		f.registry.GetPaymentFn = func(ctx context.Context, paymentID string) (*domain.Payment, error) {
			return nil, errConnRefused
		}

		_, err := f.service.GetPaymentStatusByID(ctx, testCaller(), domain.PaymentTypeSingle, "p-1")

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.CodeServiceFailed, msgErr.First())
		assert.NotContains(t, msgErr.Error(), "Payment not found")
	})

	t.Run("a consent data read failure is a service failure", func(t *testing.T) {
		f := newServiceFixture(t, embeddedProfile())
		f.consentData.ReadFn = func(ctx context.Context, paymentID string) ([]byte, error) {
			return nil, errConnRefused
		}

		_, err := f.service.GetPaymentByID(ctx, testCaller(), domain.PaymentTypeSingle, "p-1")

		msgErr, ok := application.AsMessageError(err)
		require.True(t, ok)
		assert.Equal(t, application.CodeServiceFailed, msgErr.First())
	})
}

func TestConsentDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t, embeddedProfile())

	blob := []byte{0x00, 0x01, 0xfe, 0xff, 0x10}
	f.single.InitiateFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[spi.InitiationResponse], error) {
		return spi.Result[spi.InitiationResponse]{
			Payload:     spi.InitiationResponse{TransactionStatus: "RCVD"},
			ConsentData: blob,
		}, nil
	}
	created, err := f.service.CreatePayment(ctx, testCaller(), services.PaymentPayload{Single: testSinglePayment()}, singleParams())
	require.NoError(t, err)

	var seen []byte
	f.single.GetStatusFn = func(ctx context.Context, sctx spi.Context, req spi.SinglePaymentRequest, consentData []byte) (spi.Result[string], error) {
		seen = consentData
		return spi.Result[string]{Payload: "ACCP", ConsentData: consentData}, nil
	}
	_, err = f.service.GetPaymentStatusByID(ctx, testCaller(), domain.PaymentTypeSingle, created.PaymentID)
	require.NoError(t, err)

	// The blob must reach the connector byte for byte, uninterpreted.
	assert.Equal(t, blob, seen)
	assert.Equal(t, blob, f.consentData.Blobs[created.PaymentID])
}
