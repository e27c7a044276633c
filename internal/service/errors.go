package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConcurrentUpdate   = errors.New("record changed concurrently")

	ErrInquiryNotFound = fmt.Errorf("inquiry %w", ErrNotFound)
	ErrNewsNotFound    = fmt.Errorf("news %w", ErrNotFound)
	ErrGalleryNotFound = fmt.Errorf("gallery image %w", ErrNotFound)
)

const (
	RuleMissing   = "missing"
	RuleMalformed = "malformed"
)

// ValidationError 描述单个字段未通过校验的原因，Rule 区分缺失与格式错误。
type ValidationError struct {
	Field   string
	Rule    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Missing 构造字段缺失错误。
func Missing(field string) *ValidationError {
	return &ValidationError{Field: field, Rule: RuleMissing, Message: field + " is required"}
}

// Malformed 构造字段格式错误。
func Malformed(field, message string) *ValidationError {
	return &ValidationError{Field: field, Rule: RuleMalformed, Message: message}
}

// AsValidationError 是 errors.As 的简写。
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
