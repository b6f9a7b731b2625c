// Package rest carries the transport-level helpers shared by the
// handlers and middleware.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
)

type TppMessageDTO struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Text     string `json:"text,omitempty"`
}

type ErrorResponse struct {
	TppMessages []TppMessageDTO `json:"tppMessages"`
}

// WriteError maps application errors to HTTP responses
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	msgErr, ok := application.AsMessageError(err)
	if !ok {
		logger.Error("unclassified error reached transport", "error", err)
		msgErr = application.NewMessageError(
			application.ErrorTypeGeneral400,
			application.CodeServiceFailed,
			"Internal server error",
		)
	}

	messages := make([]TppMessageDTO, 0, len(msgErr.Messages))
	for _, m := range msgErr.Messages {
		messages = append(messages, TppMessageDTO{
			Category: "ERROR",
			Code:     string(m.Code),
			Text:     m.Text,
		})
	}

	WriteJSON(w, msgErr.HTTPStatus(), ErrorResponse{TppMessages: messages})
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body) //nolint:errcheck // headers already sent
}
