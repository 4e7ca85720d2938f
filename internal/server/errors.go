package server

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidTransition    = errors.New("invalid lobby status for requested action")
	ErrAlreadyAffiliated    = errors.New("player is already in a lobby")
	ErrLobbyFull            = errors.New("lobby is full")
	ErrLobbyNotJoinable     = errors.New("lobby is not joinable")
	ErrNotInLobby           = errors.New("player is not in a lobby")
	ErrNoQuestionsRemaining = errors.New("no more questions")
	ErrEntityNotFound       = errors.New("entity not found")
	ErrInvalidToken         = errors.New("security token is invalid")
	ErrGameNotActive        = errors.New("game is not active")
	ErrMalformedRequest     = errors.New("malformed request")
	ErrCodeSpaceExhausted   = errors.New("join code space exhausted")
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, ErrMalformedRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrAlreadyAffiliated),
		errors.Is(err, ErrLobbyFull),
		errors.Is(err, ErrLobbyNotJoinable),
		errors.Is(err, ErrNotInLobby),
		errors.Is(err, ErrNoQuestionsRemaining),
		errors.Is(err, ErrGameNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
