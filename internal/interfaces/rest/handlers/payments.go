package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/services"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest"
)

const maxBodySize = 1 << 20

type paymentCreatedResponse struct {
	TransactionStatus string   `json:"transactionStatus"`
	PaymentID         string   `json:"paymentId"`
	ScaMethods        []string `json:"scaMethods,omitempty"`
}

type transactionStatusResponse struct {
	TransactionStatus string `json:"transactionStatus"`
}

type cancellationStartedResponse struct {
	TransactionStatus string `json:"transactionStatus"`
	CancellationID    string `json:"cancellationId"`
	ScaStatus         string `json:"scaStatus"`
}

func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	paymentType, ok := h.paymentType(w, r)
	if !ok {
		return
	}
	paymentProduct := r.PathValue("paymentProduct")

	if r.Header.Get("PSU-IP-Address") == "" {
		rest.WriteError(w, application.NewFormatError("Header 'PSU-IP-Address' is missing"), h.logger)
		return
	}

	caller := callerContext(r)
	if h.authService.Approach() == domain.ScaApproachRedirect && caller.Tpp.RedirectURI == "" {
		rest.WriteError(w, application.NewFormatError("Header 'TPP-Redirect-URI' is missing"), h.logger)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		rest.WriteError(w, application.NewFormatError("Request body could not be read"), h.logger)
		return
	}

	payload, err := h.parsePayload(paymentType, paymentProduct, body)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	created, err := h.paymentService.CreatePayment(r.Context(), caller, payload, services.InitiationParameters{
		PaymentType:    paymentType,
		PaymentProduct: paymentProduct,
		TppRedirectURI: caller.Tpp.RedirectURI,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, paymentCreatedResponse{
		TransactionStatus: string(created.TransactionStatus),
		PaymentID:         created.PaymentID,
		ScaMethods:        created.ScaMethods,
	})
}

// parsePayload decodes the request body into the variant the payment
// type calls for. Raw products skip structural parsing entirely.
func (h *Handlers) parsePayload(paymentType domain.PaymentType, paymentProduct string, body []byte) (services.PaymentPayload, error) {
	if h.router.IsRawProduct(paymentProduct) {
		if len(body) == 0 {
			return services.PaymentPayload{}, application.NewFormatError("Request body is empty")
		}
		return services.PaymentPayload{Raw: body}, nil
	}

	switch paymentType {
	case domain.PaymentTypePeriodic:
		var dto periodicPaymentDTO
		if err := json.Unmarshal(body, &dto); err != nil {
			return services.PaymentPayload{}, application.NewFormatError("Request body is not valid JSON")
		}
		periodic, err := parsePeriodicPayment(dto)
		if err != nil {
			return services.PaymentPayload{}, application.NewFormatError(err.Error())
		}
		return services.PaymentPayload{Periodic: periodic}, nil

	case domain.PaymentTypeBulk:
		var dto bulkPaymentDTO
		if err := json.Unmarshal(body, &dto); err != nil {
			return services.PaymentPayload{}, application.NewFormatError("Request body is not valid JSON")
		}
		bulk, err := parseBulkPayment(dto)
		if err != nil {
			return services.PaymentPayload{}, application.NewFormatError(err.Error())
		}
		return services.PaymentPayload{Bulk: bulk}, nil

	default:
		var dto singlePaymentDTO
		if err := json.Unmarshal(body, &dto); err != nil {
			return services.PaymentPayload{}, application.NewFormatError("Request body is not valid JSON")
		}
		single, err := parseSinglePayment(dto)
		if err != nil {
			return services.PaymentPayload{}, application.NewFormatError(err.Error())
		}
		return services.PaymentPayload{Single: single}, nil
	}
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentType, ok := h.paymentType(w, r)
	if !ok {
		return
	}
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPaymentByID(r.Context(), callerContext(r), paymentType, paymentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	if payment.IsRaw() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(payment.RawData) //nolint:errcheck // headers already sent
		return
	}

	switch {
	case payment.Periodic != nil:
		rest.WriteJSON(w, http.StatusOK, presentPeriodicPayment(payment.Periodic))
	case payment.Bulk != nil:
		rest.WriteJSON(w, http.StatusOK, presentBulkPayment(payment.Bulk))
	case payment.Single != nil:
		dto := presentSinglePayment(payment.Single)
		dto.TransactionStatus = string(payment.TransactionStatus)
		rest.WriteJSON(w, http.StatusOK, dto)
	default:
		rest.WriteError(w, application.NewResourceUnknownError(), h.logger)
	}
}

func (h *Handlers) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentType, ok := h.paymentType(w, r)
	if !ok {
		return
	}
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	status, err := h.paymentService.GetPaymentStatusByID(r.Context(), callerContext(r), paymentType, paymentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, transactionStatusResponse{TransactionStatus: string(status)})
}

func (h *Handlers) CancelPayment(w http.ResponseWriter, r *http.Request) {
	paymentType, ok := h.paymentType(w, r)
	if !ok {
		return
	}
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	resp, err := h.paymentService.CancelPayment(r.Context(), callerContext(r), paymentType, paymentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	// An immediate cancellation deletes the resource; one that still
	// needs SCA is only accepted.
	if resp.Authorisation == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rest.WriteJSON(w, http.StatusAccepted, cancellationStartedResponse{
		TransactionStatus: string(resp.TransactionStatus),
		CancellationID:    resp.Authorisation.ID,
		ScaStatus:         string(resp.Authorisation.ScaStatus),
	})
}
