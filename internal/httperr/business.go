package httperr

import "errors"

type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
)

// BusinessError is an expected, user-correctable failure. Anything that is
// not a BusinessError is treated as transient.
type BusinessError struct {
	Kind      Kind
	Code      string
	Retryable bool
}

func (e BusinessError) Error() string {
	return e.Code
}

// ErrBusiness is a validation failure identified by code.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func Validation(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func Conflict(code string) error {
	return BusinessError{Kind: KindConflict, Code: code}
}

// RetryableConflict is a conflict the client may retry unchanged.
func RetryableConflict(code string) error {
	return BusinessError{Kind: KindConflict, Code: code, Retryable: true}
}

func NotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) (Kind, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}

func IsConflict(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConflict
}

func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindValidation
}
