package server

import "time"

// snapshot builds the public view of a lobby. The security token is never
// part of it: the token is handed out only by lobby creation and by a
// successful join.
func (s *Server) snapshot(lobby Lobby) map[string]any {
	players := s.store.LobbyPlayers(lobby.ID)
	roster := make([]map[string]any, 0, len(players))
	for _, player := range players {
		roster = append(roster, map[string]any{
			"id":        player.ID,
			"name":      player.Name,
			"joined_at": player.JoinedAt.Format(time.RFC3339),
		})
	}
	return map[string]any{
		"id":                  lobby.ID,
		"name":                lobby.Name,
		"join_code":           lobby.JoinCode,
		"status":              lobby.Status,
		"max_players":         lobby.MaxPlayers,
		"created_at":          lobby.CreatedAt.Format(time.RFC3339),
		"game_started_at":     formatTimePtr(lobby.GameStartedAt),
		"finished_at":         formatTimePtr(lobby.FinishedAt),
		"players":             roster,
		"questions_served":    len(lobby.ServedOrder),
		"current_question_id": lobby.openQuestionID(),
	}
}

func formatTimePtr(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.Format(time.RFC3339)
}
