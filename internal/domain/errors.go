package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCredentialsMissing = errors.New("garmin credentials not configured")
	ErrAuthFailed         = errors.New("garmin authentication failed")
	ErrNotAuthenticated   = errors.New("garmin client not authenticated")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
