package vision

// ErrorKind categorizes a failed request for retry decisions and for the
// short message rendered on the device display.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	// ErrEncoding: image too large before or after base64 expansion. No
	// network call is made.
	ErrEncoding
	// ErrAuth: HTTP 401, surfaced immediately.
	ErrAuth
	// ErrBadRequest: HTTP 400, surfaced immediately with the (truncated)
	// server message.
	ErrBadRequest
	// ErrRateLimited: HTTP 429, retried with doubled backoff.
	ErrRateLimited
	// ErrTransientNetwork: connect/timeout failure, retried.
	ErrTransientNetwork
	// ErrParse: structurally invalid 200 response, never retried.
	ErrParse
	// ErrRetriesExhausted: all attempts consumed without a terminal outcome.
	ErrRetriesExhausted
	// ErrHardware: capture or autofocus failure. Produced by the controller,
	// not by the client.
	ErrHardware
	// ErrStorage: removable storage missing or failing.
	ErrStorage
)

// String returns the kind name used in log records.
func (k ErrorKind) String() string {
	switch k {
	case ErrEncoding:
		return "encoding_error"
	case ErrAuth:
		return "auth_error"
	case ErrBadRequest:
		return "bad_request"
	case ErrRateLimited:
		return "rate_limited"
	case ErrTransientNetwork:
		return "transient_network"
	case ErrParse:
		return "parse_error"
	case ErrRetriesExhausted:
		return "retries_exhausted"
	case ErrHardware:
		return "hardware_error"
	case ErrStorage:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one analysis: either the response text
// or a categorized failure. Exactly one of Text / Kind+Message is
// meaningful, discriminated by OK.
type Outcome struct {
	OK      bool
	Text    string
	Kind    ErrorKind
	Message string
}

// Success wraps response text in a successful outcome.
func Success(text string) Outcome {
	return Outcome{OK: true, Text: text}
}

// Failure builds a failed outcome.
func Failure(kind ErrorKind, message string) Outcome {
	return Outcome{Kind: kind, Message: message}
}
