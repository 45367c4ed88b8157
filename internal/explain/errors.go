package explain

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindInvalidParameter
	KindFetch
	KindService
	KindContentBlocked
	KindEmptyResponse
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindFetch:
		return "fetch_error"
	case KindService:
		return "service_error"
	case KindContentBlocked:
		return "content_blocked"
	case KindEmptyResponse:
		return "empty_response"
	case KindConfiguration:
		return "configuration_error"
	default:
		return "unknown"
	}
}

// ServiceReason refines KindService.
type ServiceReason int

const (
	ReasonNone ServiceReason = iota
	ReasonAuth
	ReasonRateLimited
	ReasonUnavailable
	ReasonOther
)

func (r ServiceReason) String() string {
	switch r {
	case ReasonAuth:
		return "auth"
	case ReasonRateLimited:
		return "rate_limited"
	case ReasonUnavailable:
		return "unavailable"
	case ReasonOther:
		return "other"
	default:
		return ""
	}
}

// Error is the single error type returned by the pipeline. Message is safe to
// show to the caller; Err holds the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Reason  ServiceReason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Reason when the target sets one, so sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == ReasonNone || t.Reason == e.Reason
}

var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
	ErrFetch            = &Error{Kind: KindFetch}
	ErrService          = &Error{Kind: KindService}
	ErrAuth             = &Error{Kind: KindService, Reason: ReasonAuth}
	ErrRateLimited      = &Error{Kind: KindService, Reason: ReasonRateLimited}
	ErrUnavailable      = &Error{Kind: KindService, Reason: ReasonUnavailable}
	ErrContentBlocked   = &Error{Kind: KindContentBlocked}
	ErrEmptyResponse    = &Error{Kind: KindEmptyResponse}
	ErrConfiguration    = &Error{Kind: KindConfiguration}
)

// User-facing messages.
const (
	MsgTextEmpty         = "Invalid input: Text cannot be empty"
	MsgTextTooLong       = "Invalid input: Text is too long (max 10,000 characters)"
	MsgTextOrFiles       = "Invalid input: Text or files are required"
	MsgHarmfulInput      = "Content appears to contain harmful or inappropriate material. Please provide different content."
	MsgInvalidSimplicity = "Invalid simplicity level"
	MsgInvalidTone       = "Invalid tone level"
	MsgNoContent         = "No content to explain. Please provide text or files."
	MsgBlocked           = "Content was blocked due to safety settings. Please try different content."
	MsgEmptyResponse     = "No explanation generated"
	MsgAuth              = "Invalid API key. Please check your configuration."
	MsgRateLimited       = "API quota exceeded. Please try again later."
	MsgUnavailable       = "Service temporarily unavailable. Please try again later."
	MsgServiceFailed     = "Failed to generate explanation. Please try again."
	MsgMissingAPIKey     = "GEMINI_API_KEY environment variable is not set"
)

func invalidInput(msg string) error     { return &Error{Kind: KindInvalidInput, Message: msg} }
func invalidParameter(msg string) error { return &Error{Kind: KindInvalidParameter, Message: msg} }

// FetchFailed wraps a URL retrieval failure.
func FetchFailed(msg string, err error) error {
	return &Error{Kind: KindFetch, Message: msg, Err: err}
}

// Blocked reports a safety block; cause may be nil.
func Blocked(cause error) error {
	return &Error{Kind: KindContentBlocked, Message: MsgBlocked, Err: cause}
}

// ServiceFailure wraps a model-call failure with its reason.
func ServiceFailure(reason ServiceReason, err error) error {
	msg := MsgServiceFailed
	switch reason {
	case ReasonAuth:
		msg = MsgAuth
	case ReasonRateLimited:
		msg = MsgRateLimited
	case ReasonUnavailable:
		msg = MsgUnavailable
	}
	return &Error{Kind: KindService, Reason: reason, Message: msg, Err: err}
}

// MissingAPIKey is the configuration error surfaced when no Gemini key is set.
func MissingAPIKey() error {
	return &Error{Kind: KindConfiguration, Message: MsgMissingAPIKey}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
