package duel

import "github.com/krishanu7/geoduel-backend/internal/apperr"

var (
	ErrDuelNotFound = apperr.New(apperr.KindNotFound, "DUEL_NOT_FOUND", "duel not found")
	ErrDuelFull     = apperr.New(apperr.KindConflict, "DUEL_FULL", "duel already full")
	ErrSelfJoin     = apperr.New(apperr.KindValidation, "SELF_JOIN", "cannot join your own duel")
	ErrForbidden    = apperr.New(apperr.KindForbidden, "FORBIDDEN", "only the creator can delete this duel")
)
