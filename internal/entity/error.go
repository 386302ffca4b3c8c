package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDataNotFound     = errors.New("data not found")
	ErrConflictingData  = errors.New("data conflicts with existing data in unique column")
	ErrInvalidData      = errors.New("invalid data")
	ErrConfigPathNotSet = errors.New("CONFIG_PATH not set and -config flag not provided")

	ErrTermsNotAgreed       = errors.New("terms and conditions not agreed")
	ErrConfigMissing        = errors.New("payment configuration missing")
	ErrInvalidCheckoutData  = errors.New("invalid checkout data")
	ErrHashGenerationFailed = errors.New("payment hash generation failed")
	ErrSMSDispatchFailed    = errors.New("sms dispatch failed")
)

// ViolationsError carries the list of concrete failures behind a sentinel
// error so transports can report which fields or config keys are broken
// without losing errors.Is matching.
type ViolationsError struct {
	Sentinel   error
	Violations []string
}

func NewViolationsError(sentinel error, violations []string) *ViolationsError {
	return &ViolationsError{Sentinel: sentinel, Violations: violations}
}

func (e *ViolationsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Sentinel.Error(), strings.Join(e.Violations, "; "))
}

func (e *ViolationsError) Unwrap() error {
	return e.Sentinel
}
