package httperr

import "errors"

type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindInvalidOperation Kind = "invalid_operation"
	KindInvalidState     Kind = "invalid_state"
	KindScheduleConflict Kind = "schedule_conflict"
	KindUnauthorized     Kind = "unauthorized"
)

type BusinessError struct {
	Kind   Kind
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Detail
	}
	return e.Code
}

// ErrBusiness builds an invalid_operation error, the catch-all for rules
// that forbid an action in the current context.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindInvalidOperation, Code: code}
}

func New(kind Kind, code, detail string) error {
	return BusinessError{Kind: kind, Code: code, Detail: detail}
}

func ErrNotFound(code, detail string) error {
	return New(KindNotFound, code, detail)
}

func ErrForbidden(code, detail string) error {
	return New(KindForbidden, code, detail)
}

func ErrConflict(code, detail string) error {
	return New(KindConflict, code, detail)
}

func ErrInvalidOperation(code, detail string) error {
	return New(KindInvalidOperation, code, detail)
}

func ErrInvalidState(code, detail string) error {
	return New(KindInvalidState, code, detail)
}

func ErrScheduleConflict(code, detail string) error {
	return New(KindScheduleConflict, code, detail)
}

func ErrUnauthorized(code, detail string) error {
	return New(KindUnauthorized, code, detail)
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
