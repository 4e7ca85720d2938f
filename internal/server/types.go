package server

import "time"

const (
	statusWaiting  = "waiting"
	statusActive   = "active"
	statusFinished = "finished"
)

type Lobby struct {
	ID            string
	DBID          uint
	Name          string
	JoinCode      string
	Status        string
	MaxPlayers    int
	SecurityToken string
	CreatedAt     time.Time
	GameStartedAt *time.Time
	FinishedAt    *time.Time

	// Served holds question ids already presented to this lobby; ServedOrder
	// preserves presentation order, with the last entry being the open round.
	Served      map[string]struct{}
	ServedOrder []string
}

func (l *Lobby) openQuestionID() string {
	if len(l.ServedOrder) == 0 {
		return ""
	}
	return l.ServedOrder[len(l.ServedOrder)-1]
}

type Player struct {
	ID        string
	DBID      uint
	Name      string
	LobbyID   string
	JoinedAt  time.Time
	CreatedAt time.Time
}

type Question struct {
	ID        string
	DBID      uint
	Text      string
	CreatedAt time.Time
}

type Answer struct {
	ID         string
	DBID       uint
	LobbyID    string
	QuestionID string
	PlayerID   string
	PlayerName string
	Text       string
	CreatedAt  time.Time
}

// SubmitResult carries everything the caller needs to broadcast after an
// answer insert: the aggregate is computed atomically with the insert.
type SubmitResult struct {
	Lobby        Lobby
	Answer       Answer
	TotalPlayers int
	Answered     int
	Remaining    int
	AllAnswered  bool
	Answers      []Answer
}
