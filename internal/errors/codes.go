// Package errors provides structured error handling for the game engine.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Game lifecycle errors
	CodeGameNotStarted Code = "GAME_NOT_STARTED"
	CodeGameOver       Code = "GAME_OVER"
	CodeRosterEmpty    Code = "ROSTER_EMPTY"

	// Catalog errors
	CodeRoleUnknown   Code = "ROLE_UNKNOWN"
	CodeEventUnknown  Code = "EVENT_UNKNOWN"
	CodeEffectUnknown Code = "EFFECT_UNKNOWN"

	// Action/input errors
	CodeActionUnknown    Code = "ACTION_UNKNOWN"
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeChoiceOutOfRange Code = "CHOICE_OUT_OF_RANGE"
	CodeTargetInvalid    Code = "TARGET_INVALID"

	// Pending-transaction errors
	CodeNoPending       Code = "NO_PENDING"
	CodePendingMismatch Code = "PENDING_MISMATCH"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Internal errors
	CodeInternal Code = "INTERNAL"
)

// HTTPStatus maps domain codes to HTTP status codes for client responses.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input, state disallows operation
	case CodeGameNotStarted,
		CodeGameOver,
		CodeRosterEmpty,
		CodeRoleUnknown,
		CodeEventUnknown,
		CodeActionUnknown,
		CodeInvalidArgument,
		CodeChoiceOutOfRange,
		CodeTargetInvalid,
		CodeNoPending,
		CodePendingMismatch:
		return http.StatusBadRequest

	// Not found - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
