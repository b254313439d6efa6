package apperr

import "errors"

// Invalid is returned when the input fails domain validation.
var Invalid = errors.New("invalid input")

// NotFound indicates that the requested resource does not exist.
var NotFound = errors.New("not found")

// Conflict indicates a uniqueness or state conflict (duplicate phone, used token).
var Conflict = errors.New("conflict")

// AlreadyAssigned is returned to the loser of an acceptance race:
// the order already left the pending state.
var AlreadyAssigned = errors.New("order already assigned")

// InvalidTransition is returned when a requested order status change
// is not a legal successor of the current status.
var InvalidTransition = errors.New("invalid status transition")

// Timeout indicates that waiting on a dispatched task exceeded its bound.
// The underlying task is not cancelled; the caller should retry the outer action.
var Timeout = errors.New("dispatch timeout")
