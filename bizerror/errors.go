package bizerror

import (
	"crudcore/common"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("persistence conflict")
	ErrInvalidSecret   = errors.New("invalid name or secret")
)

// ConflictOf wraps a storage failure so it surfaces as a persistence
// conflict while the original detail stays available for server side logs.
func ConflictOf(cause error) error {
	return fmt.Errorf("%w: %v", ErrConflict, cause)
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}

func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}

func (e *ErrBadParam) Respond() *common.BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &common.BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
