package server

const (
	eventNewQuestion        = "new question"
	eventGameStarted        = "game started"
	eventGameFinished       = "game finished"
	eventJoinedLobby        = "joined lobby"
	eventLeftLobby          = "left lobby"
	eventNewAnswer          = "new answer"
	eventAllAnswersReceived = "all answers received"
)

// Publisher delivers a typed event to every connection subscribed to a
// lobby's channel. Delivery is fire-and-forget: no acknowledgement, and
// late subscribers do not receive history.
type Publisher interface {
	Publish(lobbyID string, action string, data map[string]any)
}

func (s *Server) publish(lobbyID, action string, data map[string]any) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(lobbyID, action, data)
}

func answerListPayload(answers []Answer) map[string]any {
	entries := make([]map[string]any, 0, len(answers))
	for _, answer := range answers {
		entries = append(entries, map[string]any{
			"text":   answer.Text,
			"player": answer.PlayerName,
		})
	}
	return map[string]any{"answers": entries}
}
