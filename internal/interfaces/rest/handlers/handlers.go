// Package handlers exposes the payment initiation API over HTTP.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/authorisation"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/services"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest"
)

// PaymentIDResolver resolves externally-visible payment identifiers to
// internal ones before any service call.
type PaymentIDResolver interface {
	DecryptPaymentID(ctx context.Context, encryptedID string) (string, error)
}

type Handlers struct {
	paymentService *services.PaymentService
	authService    authorisation.ScaAuthorisationService
	idResolver     PaymentIDResolver
	router         *application.PaymentTypeRouter
	logger         *slog.Logger
}

func NewHandlers(
	paymentService *services.PaymentService,
	authService authorisation.ScaAuthorisationService,
	idResolver PaymentIDResolver,
	router *application.PaymentTypeRouter,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		paymentService: paymentService,
		authService:    authService,
		idResolver:     idResolver,
		router:         router,
		logger:         logger,
	}
}

// Register wires every endpoint onto the mux. The payment service path
// segment selects the payment type; the product segment stays opaque
// until routing.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/{paymentService}/{paymentProduct}", h.CreatePayment)
	mux.HandleFunc("GET /v1/{paymentService}/{paymentProduct}/{paymentId}", h.GetPayment)
	mux.HandleFunc("GET /v1/{paymentService}/{paymentProduct}/{paymentId}/status", h.GetPaymentStatus)
	mux.HandleFunc("DELETE /v1/{paymentService}/{paymentProduct}/{paymentId}", h.CancelPayment)

	mux.HandleFunc("POST /v1/{paymentService}/{paymentProduct}/{paymentId}/authorisations", h.CreateAuthorisation)
	mux.HandleFunc("GET /v1/{paymentService}/{paymentProduct}/{paymentId}/authorisations", h.ListAuthorisations)
	mux.HandleFunc("PUT /v1/{paymentService}/{paymentProduct}/{paymentId}/authorisations/{authorisationId}", h.UpdatePsuData)
	mux.HandleFunc("GET /v1/{paymentService}/{paymentProduct}/{paymentId}/authorisations/{authorisationId}", h.GetScaStatus)

	mux.HandleFunc("POST /v1/{paymentService}/{paymentProduct}/{paymentId}/cancellation-authorisations", h.CreateCancellationAuthorisation)
	mux.HandleFunc("GET /v1/{paymentService}/{paymentProduct}/{paymentId}/cancellation-authorisations", h.ListCancellationAuthorisations)
	mux.HandleFunc("PUT /v1/{paymentService}/{paymentProduct}/{paymentId}/cancellation-authorisations/{authorisationId}", h.UpdateCancellationPsuData)
	mux.HandleFunc("GET /v1/{paymentService}/{paymentProduct}/{paymentId}/cancellation-authorisations/{authorisationId}", h.GetCancellationScaStatus)
}

// callerContext builds the caller identity from the request headers. The
// TPP fields come from the gateway-verified certificate headers.
func callerContext(r *http.Request) application.CallerContext {
	return application.CallerContext{
		Tpp: domain.TppInfo{
			AuthorisationNumber: r.Header.Get("TPP-Authorisation-Number"),
			TppName:             r.Header.Get("TPP-Name"),
			AuthorityID:         r.Header.Get("TPP-Authority-ID"),
			RedirectURI:         r.Header.Get("TPP-Redirect-URI"),
			NokRedirectURI:      r.Header.Get("TPP-Nok-Redirect-URI"),
		},
		Psu: domain.PsuIdData{
			PsuID:              r.Header.Get("PSU-ID"),
			PsuIDType:          r.Header.Get("PSU-ID-Type"),
			PsuCorporateID:     r.Header.Get("PSU-Corporate-ID"),
			PsuCorporateIDType: r.Header.Get("PSU-Corporate-ID-Type"),
		},
	}
}

// paymentType reads and validates the payment service path segment.
func (h *Handlers) paymentType(w http.ResponseWriter, r *http.Request) (domain.PaymentType, bool) {
	paymentType, ok := domain.ParsePaymentType(r.PathValue("paymentService"))
	if !ok {
		rest.WriteError(w, application.NewFormatError("Wrong payment service"), h.logger)
		return "", false
	}
	return paymentType, true
}

// paymentID resolves the external payment identifier from the path. An
// unresolvable identifier reads as an unknown payment.
func (h *Handlers) paymentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	encrypted := r.PathValue("paymentId")
	paymentID, err := h.idResolver.DecryptPaymentID(r.Context(), encrypted)
	if err != nil {
		rest.WriteError(w, application.NewMessageError(
			application.ErrorTypePIS400, application.CodeServiceFailed, "Payment identifier could not be resolved",
		), h.logger)
		return "", false
	}
	if paymentID == "" {
		rest.WriteError(w, application.NewPaymentNotFoundError(), h.logger)
		return "", false
	}
	return paymentID, true
}
