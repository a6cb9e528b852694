// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"

	// Lobby errors
	CodeGameNameEmpty    Code = "GAME_NAME_EMPTY"
	CodeGameExists       Code = "GAME_EXISTS"
	CodeGameNotFound     Code = "GAME_NOT_FOUND"
	CodeGameFull         Code = "GAME_FULL"
	CodeGameStarted      Code = "GAME_STARTED"
	CodeGameNotStarted   Code = "GAME_NOT_STARTED"
	CodeGameOver         Code = "GAME_OVER"
	CodeGameFailed       Code = "GAME_FAILED"
	CodeNotAuthoritative Code = "NOT_AUTHORITATIVE"
	CodePlayerNameEmpty  Code = "PLAYER_NAME_EMPTY"
	CodePlayerExists     Code = "PLAYER_EXISTS"
	CodePlayerNotFound   Code = "PLAYER_NOT_FOUND"
	CodeNotOwner         Code = "NOT_OWNER"
	CodeNotEnoughPlayers Code = "NOT_ENOUGH_PLAYERS"

	// Setup errors
	CodeColorUnavailable  Code = "COLOR_UNAVAILABLE"
	CodeMarkerUnavailable Code = "MARKER_UNAVAILABLE"
	CodeNotYourPick       Code = "NOT_YOUR_PICK"

	// Turn errors
	CodeNotYourTurn         Code = "NOT_YOUR_TURN"
	CodeWrongPhase          Code = "WRONG_PHASE"
	CodePlayerDead          Code = "PLAYER_DEAD"
	CodeLegionNotFound      Code = "LEGION_NOT_FOUND"
	CodeNotYourLegion       Code = "NOT_YOUR_LEGION"
	CodeIllegalSplit        Code = "ILLEGAL_SPLIT"
	CodeIllegalMove         Code = "ILLEGAL_MOVE"
	CodeIllegalRecruit      Code = "ILLEGAL_RECRUIT"
	CodeIllegalSummon       Code = "ILLEGAL_SUMMON"
	CodeIllegalAcquire      Code = "ILLEGAL_ACQUIRE"
	CodeMulliganUnavailable Code = "MULLIGAN_UNAVAILABLE"
	CodePhaseIncomplete     Code = "PHASE_INCOMPLETE"
	CodePendingDecision     Code = "PENDING_DECISION"
	CodeNothingToUndo       Code = "NOTHING_TO_UNDO"

	// Engagement errors
	CodeNoEngagement    Code = "NO_ENGAGEMENT"
	CodeIllegalFlee     Code = "ILLEGAL_FLEE"
	CodeIllegalProposal Code = "ILLEGAL_PROPOSAL"

	// Battle errors
	CodeNoBattle          Code = "NO_BATTLE"
	CodeCreatureNotFound  Code = "CREATURE_NOT_FOUND"
	CodeIllegalBattleMove Code = "ILLEGAL_BATTLE_MOVE"
	CodeIllegalStrike     Code = "ILLEGAL_STRIKE"
	CodeIllegalCarry      Code = "ILLEGAL_CARRY"

	// Storage errors
	CodeNotFound   Code = "NOT_FOUND"
	CodeCorruptLog Code = "CORRUPT_LOG"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidArgument,
		CodeUnknownOperation,
		CodeGameNameEmpty,
		CodePlayerNameEmpty,
		CodeIllegalSplit,
		CodeIllegalMove,
		CodeIllegalRecruit,
		CodeIllegalSummon,
		CodeIllegalAcquire,
		CodeIllegalFlee,
		CodeIllegalProposal,
		CodeIllegalBattleMove,
		CodeIllegalStrike,
		CodeIllegalCarry,
		CodeColorUnavailable,
		CodeMarkerUnavailable:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeGameFull,
		CodeGameStarted,
		CodeGameNotStarted,
		CodeGameOver,
		CodeGameFailed,
		CodeNotAuthoritative,
		CodeNotEnoughPlayers,
		CodeWrongPhase,
		CodePlayerDead,
		CodeMulliganUnavailable,
		CodePhaseIncomplete,
		CodePendingDecision,
		CodeNothingToUndo,
		CodeNoEngagement,
		CodeNoBattle:
		return codes.FailedPrecondition

	// PermissionDenied - actor may not perform the operation
	case CodeNotOwner,
		CodeNotYourTurn,
		CodeNotYourPick,
		CodeNotYourLegion:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeGameNotFound,
		CodePlayerNotFound,
		CodeLegionNotFound,
		CodeCreatureNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeGameExists,
		CodePlayerExists:
		return codes.AlreadyExists

	case CodeCorruptLog:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
