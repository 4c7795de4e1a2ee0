package domain

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrMalformedResponse    = errors.New("malformed model response")
	ErrSchemaMismatch       = errors.New("model response schema mismatch")
	ErrSegmentationFailed   = errors.New("segmentation failed")
	ErrNoCategoriesProduced = errors.New("no valid categories produced")
	ErrIllegalTransition    = errors.New("illegal status transition")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrPersistenceFailed    = errors.New("persistence failed")
)
