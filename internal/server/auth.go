package server

import (
	"crypto/subtle"
	"strings"
)

// authorizeLobby validates the caller-supplied bearer token against the
// lobby's stored token. This is the sole authorization gate for start,
// finish, next-round, answer and get-answers; it runs before any state
// mutation. The comparison is constant-time, exact match only.
func (s *Server) authorizeLobby(idOrCode, token string) (Lobby, error) {
	lobby, ok := s.store.GetLobby(idOrCode)
	if !ok {
		return Lobby{}, ErrEntityNotFound
	}
	provided := strings.TrimSpace(token)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(lobby.SecurityToken)) != 1 {
		return Lobby{}, ErrInvalidToken
	}
	return lobby, nil
}
