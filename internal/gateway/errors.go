package gateway

// Kind classifies a request failure. Every error leaving the gateway
// is exactly one of these; the HTTP layer maps kinds to status codes
// and never sees raw internal errors.
type Kind int

const (
	KindUnauthenticated Kind = iota
	KindQuotaExceeded
	KindUnsupportedType
	KindTooLarge
	KindEmptyPayload
	KindProviderFailure
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindUnsupportedType:
		return "unsupported_type"
	case KindTooLarge:
		return "too_large"
	case KindEmptyPayload:
		return "empty_payload"
	case KindProviderFailure:
		return "provider_failure"
	default:
		return "internal"
	}
}

// Error carries a caller-safe message plus the underlying cause.
// Message is what the client sees; Err is logged only. Server-side
// kinds always get a generic Message so no internal detail leaks.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
