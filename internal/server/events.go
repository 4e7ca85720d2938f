package server

// EventPayload is the JSON body stored with each event-log row. Broadcast
// frames are built separately; this log is the durable audit trail.
type EventPayload struct {
	LobbyName  string `json:"lobby,omitempty"`
	JoinCode   string `json:"join_code,omitempty"`
	PlayerName string `json:"player,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Remaining  int    `json:"remaining,omitempty"`
	Round      int    `json:"round,omitempty"`
}
