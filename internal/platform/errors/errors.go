package errors

import (
	stderrors "errors"
	"maps"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain is the ErrorInfo domain of every legions error.
const Domain = "github.com/louisbranch/legions"

// Error is a rules or lobby failure carrying a stable code. Message is for
// logs; players see the catalog text for Code rendered with Metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so callers can test against a
// bare New(code, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New returns an error with no metadata or cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata returns an error whose metadata fills the localized template.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap returns an error caused by cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WrapWithMetadata combines WithMetadata and Wrap.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata, Cause: cause}
}

// With returns a copy of e with key set in its metadata.
func (e *Error) With(key, value string) *Error {
	out := *e
	out.Metadata = maps.Clone(e.Metadata)
	if out.Metadata == nil {
		out.Metadata = make(map[string]string, 1)
	}
	out.Metadata[key] = value
	return &out
}

// ToGRPCStatus builds the wire status for e. The status message keeps the
// internal text; userMessage travels as a LocalizedMessage detail next to an
// ErrorInfo holding the code and metadata.
func (e *Error) ToGRPCStatus(locale string, userMessage string) error {
	base := status.New(e.Code.GRPCCode(), e.Message)
	info := &errdetails.ErrorInfo{Reason: string(e.Code), Domain: Domain, Metadata: e.Metadata}
	localized := &errdetails.LocalizedMessage{Locale: locale, Message: userMessage}
	if detailed, err := base.WithDetails(info, localized); err == nil {
		return detailed.Err()
	}
	return base.Err()
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCode returns the code of the first *Error in err's chain, or
// CodeUnknown.
func GetCode(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeUnknown
}
