package application

import "github.com/psd2gate/xs2a-payment-engine/internal/application/spi"

// ServiceType selects the error namespace a normalized failure surfaces
// under. The same connector failure maps to a payment-class or a
// consent-class error depending on call context.
type ServiceType string

const (
	ServiceTypePIS ServiceType = "PIS"
	ServiceTypeAIS ServiceType = "AIS"
)

// NormalizeSpiFailure translates a connector failure into the protocol
// error taxonomy. The mapping is total: a failure status without an
// explicit target falls back to a generic service-failed error rather
// than leaking an undefined state. Connector-internal diagnostic text is
// never forwarded; only the fixed protocol texts are.
func NormalizeSpiFailure(f *spi.Failure, serviceType ServiceType) *MessageError {
	switch f.Status {
	case spi.UnauthorizedFailure:
		return NewMessageError(errorType(serviceType, 401), CodePsuCredentialsInvalid,
			"PSU credentials are invalid")
	case spi.LogicalFailure:
		return NewMessageError(errorType(serviceType, 400), CodeFormatError,
			"Request was rejected by the account servicer")
	case spi.NotSupported:
		return NewMessageError(errorType(serviceType, 400), CodeNotSupported,
			"Operation is not supported")
	case spi.TechnicalFailure:
		return NewMessageError(errorType(serviceType, 400), CodeServiceFailed,
			"Service failed on the account servicer side")
	default:
		return NewMessageError(errorType(serviceType, 400), CodeServiceFailed,
			"Service failed on the account servicer side")
	}
}

// NormalizeSpiError is NormalizeSpiFailure for plain errors: typed
// connector failures are normalized by status, anything else (transport
// breakage, context cancellation) becomes a technical service failure.
func NormalizeSpiError(err error, serviceType ServiceType) *MessageError {
	if f, ok := spi.AsFailure(err); ok {
		return NormalizeSpiFailure(f, serviceType)
	}
	return NewMessageError(errorType(serviceType, 400), CodeServiceFailed,
		"Service failed on the account servicer side")
}

func errorType(serviceType ServiceType, class int) ErrorType {
	if serviceType == ServiceTypeAIS {
		switch class {
		case 401:
			return ErrorTypeAIS401
		case 403:
			return ErrorTypeAIS403
		case 404:
			return ErrorTypeAIS404
		default:
			return ErrorTypeAIS400
		}
	}
	switch class {
	case 401:
		return ErrorTypePIS401
	case 403:
		return ErrorTypePIS403
	case 404:
		return ErrorTypePIS404
	default:
		return ErrorTypePIS400
	}
}
