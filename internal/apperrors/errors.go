// Package apperrors holds the sentinel errors shared across the expense,
// split and ledger services. Service-level errors wrap these with %w so the
// HTTP layer can map any failure to a status code with a single errors.Is
// check per sentinel.
package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")
