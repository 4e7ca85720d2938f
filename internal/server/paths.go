package server

import "strings"

func parseLobbyPath(path string) (string, string, bool) {
	const prefix = "/api/lobbies/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}
	lobbyID := parts[0]
	if len(parts) == 1 {
		return lobbyID, "", true
	}
	if len(parts) == 2 {
		return lobbyID, parts[1], true
	}
	return "", "", false
}

// parseQuestionPath matches /api/lobbies/{id}/questions/{qid}/{answer|answers}.
func parseQuestionPath(path string) (string, string, string, bool) {
	const prefix = "/api/lobbies/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 4 {
		return "", "", "", false
	}
	if parts[1] != "questions" {
		return "", "", "", false
	}
	if parts[0] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[2], parts[3], true
}

func parsePlayerPath(path string) (string, string, bool) {
	const prefix = "/api/players/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}
	playerID := parts[0]
	if len(parts) == 1 {
		return playerID, "", true
	}
	if len(parts) == 2 {
		return playerID, parts[1], true
	}
	return "", "", false
}

func parseWebsocketPath(path string) (string, bool) {
	const prefix = "/ws/lobbies/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
