package domain

import "errors"

var (
	// Engine errors.
	ErrNotFound          = errors.New("procflow: not found")
	ErrEngineUnavailable = errors.New("procflow: engine unavailable")

	// Shadow store errors.
	ErrStoreUnavailable = errors.New("procflow: shadow store unavailable")
	ErrVersionConflict  = errors.New("procflow: shadow row version conflict")

	// ErrTrackingDegraded is returned alongside a successful engine action
	// whose local bookkeeping failed. The engine action is not undone.
	ErrTrackingDegraded = errors.New("procflow: tracking degraded")

	ErrInvalidInput      = errors.New("procflow: invalid input")
	ErrInvalidTransition = errors.New("procflow: invalid state transition")
)
