package server

import (
	"testing"
)

func TestSnapshotFields(t *testing.T) {
	srv := New(nil, testConfig())
	srv.store.CreateQuestion("Q1")
	lobby, err := srv.store.CreateLobby("Quiz Night", 4)
	if err != nil {
		t.Fatalf("create lobby: %v", err)
	}
	ada := srv.store.CreatePlayer("Ada")
	ben := srv.store.CreatePlayer("Ben")
	if _, _, err := srv.store.JoinLobby(lobby.ID, ada.ID); err != nil {
		t.Fatalf("join ada: %v", err)
	}
	if _, _, err := srv.store.JoinLobby(lobby.ID, ben.ID); err != nil {
		t.Fatalf("join ben: %v", err)
	}

	waiting, _ := srv.store.GetLobby(lobby.ID)
	view := srv.snapshot(waiting)
	if view["status"] != statusWaiting || view["questions_served"] != 0 || view["current_question_id"] != "" {
		t.Fatalf("unexpected waiting snapshot %v", view)
	}
	if view["game_started_at"] != nil || view["finished_at"] != nil {
		t.Fatalf("expected unset timestamps, got %v / %v", view["game_started_at"], view["finished_at"])
	}
	if _, present := view["security_token"]; present {
		t.Fatalf("snapshot must not carry the security token")
	}
	roster, ok := view["players"].([]map[string]any)
	if !ok || len(roster) != 2 {
		t.Fatalf("expected roster of two, got %v", view["players"])
	}
	if roster[0]["name"] != "Ada" || roster[1]["name"] != "Ben" {
		t.Fatalf("roster out of join order: %v", roster)
	}

	started, question, err := srv.store.StartGame(lobby.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	view = srv.snapshot(started)
	if view["status"] != statusActive || view["questions_served"] != 1 || view["current_question_id"] != question.ID {
		t.Fatalf("unexpected active snapshot %v", view)
	}
	if view["game_started_at"] == nil {
		t.Fatalf("expected start timestamp")
	}

	finished, err := srv.store.FinishGame(lobby.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	view = srv.snapshot(finished)
	if view["status"] != statusFinished || view["finished_at"] == nil {
		t.Fatalf("unexpected finished snapshot %v", view)
	}
}
