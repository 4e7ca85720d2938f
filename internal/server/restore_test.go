package server

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

// Rebuilds an active lobby mid-game the way RestoreFromDB does and checks
// that commands pick up exactly where the state left off.
func TestRestoredLobbyResumesPlay(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	defer ts.Close()

	started := time.Now().UTC().Add(-time.Minute)
	srv.store.RestoreQuestion(Question{ID: "q-1", Text: "Q1"})
	srv.store.RestoreQuestion(Question{ID: "q-2", Text: "Q2"})
	srv.store.RestoreLobby(Lobby{
		ID:            "lobby-1",
		Name:          "Quiz Night",
		JoinCode:      "RESTORED42",
		Status:        statusActive,
		MaxPlayers:    4,
		SecurityToken: "AB12CD",
		CreatedAt:     started,
		GameStartedAt: &started,
		Served:        map[string]struct{}{"q-1": {}},
		ServedOrder:   []string{"q-1"},
	})
	srv.store.RestorePlayer(Player{ID: "player-1", Name: "Ada", LobbyID: "lobby-1", JoinedAt: started})
	srv.store.RestorePlayer(Player{ID: "player-2", Name: "Ben", LobbyID: "lobby-1", JoinedAt: started})
	srv.store.RestoreAnswer(Answer{
		ID:         "answer-1",
		LobbyID:    "lobby-1",
		QuestionID: "q-1",
		PlayerID:   "player-1",
		PlayerName: "Ada",
		Text:       "blue",
		CreatedAt:  started,
	})

	lobby, ok := srv.store.GetLobby("RESTORED42")
	if !ok || lobby.ID != "lobby-1" {
		t.Fatalf("restored join code did not resolve: %v", ok)
	}
	if lobby.openQuestionID() != "q-1" {
		t.Fatalf("expected q-1 open, got %q", lobby.openQuestionID())
	}

	// The open round already has one of two answers, so advancing is a no-op.
	_, question, advanced, err := srv.store.SelectQuestion("lobby-1")
	if err != nil || advanced || question.ID != "q-1" {
		t.Fatalf("expected idempotent advance on restored round, got %s advanced=%v err=%v", question.ID, advanced, err)
	}

	resp := doRequest(t, ts, http.MethodPost, "/api/lobbies/lobby-1/questions/q-1/answer", map[string]any{
		"security_token": "AB12CD",
		"player_id":      "player-2",
		"answer":         "red",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer on restored lobby: %d", resp.StatusCode)
	}
	resp.Body.Close()

	answers, err := srv.store.AnswersFor("lobby-1", "q-1")
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 2 || answers[0].Text != "blue" || answers[1].Text != "red" {
		t.Fatalf("restored answers lost ordering: %#v", answers)
	}

	// Completed round: the selector moves to the one unseen question.
	_, next, advanced, err := srv.store.SelectQuestion("lobby-1")
	if err != nil || !advanced || next.ID != "q-2" {
		t.Fatalf("expected advance to q-2, got %s advanced=%v err=%v", next.ID, advanced, err)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/lobbies/lobby-1/finish", map[string]any{"security_token": "AB12CD"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finish restored lobby: %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestJoinCodeGenerationIsBounded(t *testing.T) {
	cfg := testConfig()
	cfg.JoinCodeLength = 1
	cfg.JoinCodeAttempts = 4
	store := NewStore(cfg)

	var sawExhaustion bool
	for i := 0; i < len(joinCodeAlphabet)+1; i++ {
		if _, err := store.CreateLobby("Quiz Night", 2); err != nil {
			if !errors.Is(err, ErrCodeSpaceExhausted) {
				t.Fatalf("unexpected error: %v", err)
			}
			sawExhaustion = true
			break
		}
	}
	if !sawExhaustion {
		t.Fatalf("expected bounded generation to give up on a saturated code space")
	}
}
