package server

import (
	"log"

	"trivia-lobby/internal/db"
)

// RestoreFromDB reloads the question pool, lobbies, rosters, served sets and
// answers from Postgres into the in-memory store. Called once at boot,
// before the server accepts traffic.
func (s *Server) RestoreFromDB() error {
	if s.db == nil {
		return nil
	}

	var questionRecords []db.Question
	if err := s.db.Order("id").Find(&questionRecords).Error; err != nil {
		return err
	}
	questionByDBID := make(map[uint]Question, len(questionRecords))
	for _, record := range questionRecords {
		question := Question{
			ID:        record.PublicID,
			DBID:      record.ID,
			Text:      record.Text,
			CreatedAt: record.CreatedAt,
		}
		questionByDBID[record.ID] = question
		s.store.RestoreQuestion(question)
	}

	var lobbyRecords []db.Lobby
	if err := s.db.Order("id").Find(&lobbyRecords).Error; err != nil {
		return err
	}
	lobbyByDBID := make(map[uint]string, len(lobbyRecords))
	for _, record := range lobbyRecords {
		lobby := Lobby{
			ID:            record.PublicID,
			DBID:          record.ID,
			Name:          record.Name,
			JoinCode:      record.JoinCode,
			Status:        record.Status,
			MaxPlayers:    record.MaxPlayers,
			SecurityToken: record.SecurityToken,
			CreatedAt:     record.CreatedAt,
			GameStartedAt: record.GameStartedAt,
			FinishedAt:    record.FinishedAt,
			Served:        make(map[string]struct{}),
		}
		var servedRecords []db.LobbyQuestion
		if err := s.db.Where("lobby_id = ?", record.ID).Order("round").Find(&servedRecords).Error; err != nil {
			return err
		}
		for _, served := range servedRecords {
			question, ok := questionByDBID[served.QuestionID]
			if !ok {
				continue
			}
			lobby.Served[question.ID] = struct{}{}
			lobby.ServedOrder = append(lobby.ServedOrder, question.ID)
		}
		lobbyByDBID[record.ID] = lobby.ID
		s.store.RestoreLobby(lobby)
	}

	var playerRecords []db.Player
	if err := s.db.Order("id").Find(&playerRecords).Error; err != nil {
		return err
	}
	playerByDBID := make(map[uint]Player, len(playerRecords))
	for _, record := range playerRecords {
		player := Player{
			ID:        record.PublicID,
			DBID:      record.ID,
			Name:      record.Name,
			JoinedAt:  record.JoinedAt,
			CreatedAt: record.CreatedAt,
		}
		if record.LobbyID != nil {
			player.LobbyID = lobbyByDBID[*record.LobbyID]
		}
		playerByDBID[record.ID] = player
		s.store.RestorePlayer(player)
	}

	var answerRecords []db.Answer
	if err := s.db.Order("id").Find(&answerRecords).Error; err != nil {
		return err
	}
	for _, record := range answerRecords {
		lobbyID, ok := lobbyByDBID[record.LobbyID]
		if !ok {
			continue
		}
		question, ok := questionByDBID[record.QuestionID]
		if !ok {
			continue
		}
		player := playerByDBID[record.PlayerID]
		s.store.RestoreAnswer(Answer{
			ID:         record.PublicID,
			DBID:       record.ID,
			LobbyID:    lobbyID,
			QuestionID: question.ID,
			PlayerID:   player.ID,
			PlayerName: player.Name,
			Text:       record.Text,
			CreatedAt:  record.CreatedAt,
		})
	}

	log.Printf("restore complete lobbies=%d players=%d questions=%d answers=%d",
		len(lobbyRecords), len(playerRecords), len(questionRecords), len(answerRecords))
	return nil
}
