package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/authorisation"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest"
)

type authorisationCreatedResponse struct {
	AuthorisationID string `json:"authorisationId"`
	ScaStatus       string `json:"scaStatus"`
	ScaApproach     string `json:"scaApproach"`
	RedirectToken   string `json:"redirectToken,omitempty"`
}

type updatePsuDataRequest struct {
	PsuData *struct {
		Password string `json:"password,omitempty"`
	} `json:"psuData,omitempty"`
	AuthenticationMethodID string `json:"authenticationMethodId,omitempty"`
	ScaAuthenticationData  string `json:"scaAuthenticationData,omitempty"`
}

type updatePsuDataResponse struct {
	ScaStatus           string   `json:"scaStatus"`
	AvailableScaMethods []string `json:"availableScaMethods,omitempty"`
	TransactionStatus   string   `json:"transactionStatus,omitempty"`
}

type scaStatusResponse struct {
	ScaStatus string `json:"scaStatus"`
}

type authorisationListResponse struct {
	AuthorisationIDs []string `json:"authorisationIds"`
}

func (h *Handlers) CreateAuthorisation(w http.ResponseWriter, r *http.Request) {
	h.createAuthorisation(w, r, h.authService.CreateAuthorisation)
}

func (h *Handlers) CreateCancellationAuthorisation(w http.ResponseWriter, r *http.Request) {
	h.createAuthorisation(w, r, h.authService.CreateCancellationAuthorisation)
}

func (h *Handlers) createAuthorisation(w http.ResponseWriter, r *http.Request, create func(ctx context.Context, caller application.CallerContext, paymentID string) (*domain.Authorisation, error)) {
	if _, ok := h.paymentType(w, r); !ok {
		return
	}
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	auth, err := create(r.Context(), callerContext(r), paymentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, authorisationCreatedResponse{
		AuthorisationID: auth.ID,
		ScaStatus:       string(auth.ScaStatus),
		ScaApproach:     string(auth.ScaApproach),
		RedirectToken:   auth.RedirectToken,
	})
}

func (h *Handlers) UpdatePsuData(w http.ResponseWriter, r *http.Request) {
	h.updatePsuData(w, r, h.authService.UpdatePsuData)
}

func (h *Handlers) UpdateCancellationPsuData(w http.ResponseWriter, r *http.Request) {
	h.updatePsuData(w, r, h.authService.UpdateCancellationPsuData)
}

func (h *Handlers) updatePsuData(w http.ResponseWriter, r *http.Request, update func(ctx context.Context, caller application.CallerContext, req authorisation.UpdatePsuDataRequest) (*authorisation.UpdatePsuDataResponse, error)) {
	if _, ok := h.paymentType(w, r); !ok {
		return
	}
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	var body updatePsuDataRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, application.NewFormatError("Request body is not valid JSON"), h.logger)
		return
	}

	caller := callerContext(r)
	req := authorisation.UpdatePsuDataRequest{
		PaymentID:             paymentID,
		AuthorisationID:       r.PathValue("authorisationId"),
		Psu:                   caller.Psu,
		ChosenScaMethod:       body.AuthenticationMethodID,
		ScaAuthenticationData: body.ScaAuthenticationData,
	}
	if body.PsuData != nil {
		req.Password = body.PsuData.Password
	}

	resp, err := update(r.Context(), caller, req)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, updatePsuDataResponse{
		ScaStatus:           string(resp.ScaStatus),
		AvailableScaMethods: resp.AvailableScaMethods,
		TransactionStatus:   string(resp.TransactionStatus),
	})
}

func (h *Handlers) GetScaStatus(w http.ResponseWriter, r *http.Request) {
	h.getScaStatus(w, r, h.authService.GetScaStatus)
}

func (h *Handlers) GetCancellationScaStatus(w http.ResponseWriter, r *http.Request) {
	h.getScaStatus(w, r, h.authService.GetCancellationScaStatus)
}

func (h *Handlers) getScaStatus(w http.ResponseWriter, r *http.Request, lookup func(ctx context.Context, paymentID, authorisationID string) (domain.ScaStatus, bool)) {
	if _, ok := h.paymentType(w, r); !ok {
		return
	}
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	status, found := lookup(r.Context(), paymentID, r.PathValue("authorisationId"))
	if !found {
		rest.WriteError(w, application.NewResourceUnknownError(), h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, scaStatusResponse{ScaStatus: string(status)})
}

func (h *Handlers) ListAuthorisations(w http.ResponseWriter, r *http.Request) {
	h.listAuthorisations(w, r, h.authService.ListAuthorisations)
}

func (h *Handlers) ListCancellationAuthorisations(w http.ResponseWriter, r *http.Request) {
	h.listAuthorisations(w, r, h.authService.ListCancellationAuthorisations)
}

func (h *Handlers) listAuthorisations(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, paymentID string) ([]*domain.Authorisation, error)) {
	if _, ok := h.paymentType(w, r); !ok {
		return
	}
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	auths, err := list(r.Context(), paymentID)
	if err != nil {
		rest.WriteError(w, application.NewPaymentFailedError(), h.logger)
		return
	}

	ids := make([]string, 0, len(auths))
	for _, a := range auths {
		ids = append(ids, a.ID)
	}
	rest.WriteJSON(w, http.StatusOK, authorisationListResponse{AuthorisationIDs: ids})
}
