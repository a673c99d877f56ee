package models

import "errors"

// Domain errors shared by the service, repository and handler layers.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidCoordinates      = errors.New("invalid coordinates")
	ErrDuplicateWaitlistEntry  = errors.New("waitlist entry already exists for this email and location")
	ErrRegistryUnavailable     = errors.New("service area registry unavailable")
	ErrNotFound                = errors.New("requested item not found")
	ErrInvalidServiceArea      = errors.New("invalid service area")
	ErrInvalidStatusTransition = errors.New("invalid waitlist status transition")
)
