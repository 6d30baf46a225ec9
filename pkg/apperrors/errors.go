package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrGenerationFailed = errors.New("query generation failed")
	ErrValidationFailed = errors.New("query validation failed")
	ErrExecutionFailed  = errors.New("query execution failed")
)
