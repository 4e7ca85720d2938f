package server

import (
	"encoding/json"
	"errors"
	"log"

	"trivia-lobby/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The in-memory store is authoritative; these write-throughs keep Postgres
// in sync. Creation paths surface errors to the caller. Mid-game writes are
// best-effort after the in-memory commit: failures are logged, never rolled
// back into the command, and always happen before the broadcast publish.

func (s *Server) persistLobby(lobby *Lobby) error {
	if s.db == nil {
		return nil
	}
	record := db.Lobby{
		PublicID:      lobby.ID,
		Name:          lobby.Name,
		JoinCode:      lobby.JoinCode,
		Status:        lobby.Status,
		MaxPlayers:    lobby.MaxPlayers,
		SecurityToken: lobby.SecurityToken,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	lobby.DBID = record.ID
	s.store.SetLobbyDBID(lobby.ID, record.ID)
	s.persistEvent(lobby, nil, nil, "lobby_created", EventPayload{
		LobbyName: lobby.Name,
		JoinCode:  lobby.JoinCode,
	})
	return nil
}

func (s *Server) persistPlayer(player *Player) error {
	if s.db == nil {
		return nil
	}
	record := db.Player{
		PublicID: player.ID,
		Name:     player.Name,
		JoinedAt: player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	player.DBID = record.ID
	s.store.SetPlayerDBID(player.ID, record.ID)
	return nil
}

func (s *Server) persistQuestion(question *Question) error {
	if s.db == nil {
		return nil
	}
	record := db.Question{
		PublicID: question.ID,
		Text:     question.Text,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	question.DBID = record.ID
	s.store.SetQuestionDBID(question.ID, record.ID)
	return nil
}

func (s *Server) persistStatus(lobby *Lobby, eventType string) {
	if s.db == nil {
		return
	}
	if !s.ensureLobbyDBID(lobby) {
		return
	}
	updates := map[string]any{
		"status":          lobby.Status,
		"game_started_at": lobby.GameStartedAt,
		"finished_at":     lobby.FinishedAt,
	}
	if err := s.db.Model(&db.Lobby{}).Where("id = ?", lobby.DBID).Updates(updates).Error; err != nil {
		log.Printf("persist status failed lobby_id=%s error=%v", lobby.ID, err)
		return
	}
	s.persistEvent(lobby, nil, nil, eventType, EventPayload{LobbyName: lobby.Name})
}

func (s *Server) persistServed(lobby *Lobby, question Question) {
	if s.db == nil {
		return
	}
	if !s.ensureLobbyDBID(lobby) {
		return
	}
	questionDBID := s.questionDBID(question)
	if questionDBID == 0 {
		log.Printf("persist served failed lobby_id=%s question_id=%s error=question row missing", lobby.ID, question.ID)
		return
	}
	record := db.LobbyQuestion{
		LobbyID:    lobby.DBID,
		QuestionID: questionDBID,
		Round:      len(lobby.ServedOrder),
	}
	if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
		log.Printf("persist served failed lobby_id=%s question_id=%s error=%v", lobby.ID, question.ID, err)
		return
	}
	s.persistEvent(lobby, nil, &questionDBID, "question_served", EventPayload{
		QuestionID: question.ID,
		Round:      len(lobby.ServedOrder),
	})
}

func (s *Server) persistAffiliation(lobby *Lobby, player *Player, eventType string) {
	if s.db == nil {
		return
	}
	if !s.ensureLobbyDBID(lobby) || !s.ensurePlayerDBID(player) {
		return
	}
	var lobbyRef *uint
	if player.LobbyID != "" {
		lobbyRef = &lobby.DBID
	}
	updates := map[string]any{
		"lobby_id":  lobbyRef,
		"joined_at": player.JoinedAt,
	}
	if err := s.db.Model(&db.Player{}).Where("id = ?", player.DBID).Updates(updates).Error; err != nil {
		log.Printf("persist affiliation failed player_id=%s error=%v", player.ID, err)
		return
	}
	s.persistEvent(lobby, &player.DBID, nil, eventType, EventPayload{PlayerName: player.Name})
}

func (s *Server) persistAnswer(lobby *Lobby, answer *Answer) {
	if s.db == nil {
		return
	}
	if !s.ensureLobbyDBID(lobby) {
		return
	}
	player, _ := s.store.GetPlayer(answer.PlayerID)
	if !s.ensurePlayerDBID(&player) {
		return
	}
	question, _ := s.store.GetQuestion(answer.QuestionID)
	questionDBID := s.questionDBID(question)
	if questionDBID == 0 {
		log.Printf("persist answer failed lobby_id=%s question_id=%s error=question row missing", lobby.ID, answer.QuestionID)
		return
	}
	record := db.Answer{
		PublicID:   answer.ID,
		LobbyID:    lobby.DBID,
		QuestionID: questionDBID,
		PlayerID:   player.DBID,
		Text:       answer.Text,
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("persist answer failed lobby_id=%s answer_id=%s error=%v", lobby.ID, answer.ID, err)
		return
	}
	answer.DBID = record.ID
	s.store.SetAnswerDBID(answer.ID, record.ID)
	s.persistEvent(lobby, &player.DBID, &questionDBID, "answer_submitted", EventPayload{
		PlayerName: answer.PlayerName,
		QuestionID: answer.QuestionID,
		Answer:     answer.Text,
	})
}

func (s *Server) persistEvent(lobby *Lobby, playerID, questionID *uint, eventType string, payload EventPayload) {
	if s.db == nil || lobby.DBID == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	event := db.Event{
		LobbyID:    lobby.DBID,
		PlayerID:   playerID,
		QuestionID: questionID,
		Type:       eventType,
		Payload:    datatypes.JSON(data),
	}
	if err := s.db.Create(&event).Error; err != nil {
		log.Printf("persist event failed lobby_id=%s type=%s error=%v", lobby.ID, eventType, err)
	}
}

func (s *Server) ensureLobbyDBID(lobby *Lobby) bool {
	if lobby.DBID != 0 {
		return true
	}
	var record db.Lobby
	if err := s.db.Where("public_id = ?", lobby.ID).First(&record).Error; err != nil {
		log.Printf("lobby row missing lobby_id=%s error=%v", lobby.ID, err)
		return false
	}
	lobby.DBID = record.ID
	s.store.SetLobbyDBID(lobby.ID, record.ID)
	return true
}

func (s *Server) ensurePlayerDBID(player *Player) bool {
	if player.DBID != 0 {
		return true
	}
	var record db.Player
	if err := s.db.Where("public_id = ?", player.ID).First(&record).Error; err != nil {
		log.Printf("player row missing player_id=%s error=%v", player.ID, err)
		return false
	}
	player.DBID = record.ID
	s.store.SetPlayerDBID(player.ID, record.ID)
	return true
}

func (s *Server) questionDBID(question Question) uint {
	if question.DBID != 0 {
		return question.DBID
	}
	var record db.Question
	if err := s.db.Where("public_id = ?", question.ID).First(&record).Error; err != nil {
		return 0
	}
	s.store.SetQuestionDBID(question.ID, record.ID)
	return record.ID
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
