package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrToolArguments   = errors.New("tool arguments are invalid")
	ErrProfileNotFound = errors.New("profile not found")
	ErrChargeNotFound  = errors.New("charge not found")
	ErrProductNotFound = errors.New("product not found")
)
