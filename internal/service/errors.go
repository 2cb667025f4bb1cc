package service

import "errors"

var (
	// ErrForbidden covers both true authorization failures and missing
	// resources, so callers cannot probe for conversation or message
	// existence.
	ErrForbidden          = errors.New("not authorized")
	ErrInvalidKeyMaterial = errors.New("invalid key material")
	ErrDeviceKeyConflict  = errors.New("device key conflict")
	ErrInvalidEnvelope    = errors.New("invalid envelope")
)
