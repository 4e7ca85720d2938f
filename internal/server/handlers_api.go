package server

import (
	"log"
	"net/http"
	"strings"
)

type createLobbyRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

type createPlayerRequest struct {
	Name string `json:"name"`
}

type createQuestionRequest struct {
	Text string `json:"text"`
}

type joinRequest struct {
	LobbyID string `json:"lobby_id"`
}

type tokenRequest struct {
	SecurityToken string `json:"security_token"`
}

type answerRequest struct {
	SecurityToken string `json:"security_token"`
	PlayerID      string `json:"player_id"`
	Answer        string `json:"answer"`
}

func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req createLobbyRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if req.MaxPlayers <= 0 || req.MaxPlayers > maxLobbyPlayers {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	lobby, err := s.store.CreateLobby(name, req.MaxPlayers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.persistLobby(&lobby); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create lobby")
		return
	}
	log.Printf("lobby created lobby_id=%s join_code=%s max_players=%d", lobby.ID, lobby.JoinCode, lobby.MaxPlayers)
	resp := s.snapshot(lobby)
	resp["security_token"] = lobby.SecurityToken
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLobbySubroutes(w http.ResponseWriter, r *http.Request) {
	if lobbyID, questionID, tail, ok := parseQuestionPath(r.URL.Path); ok {
		switch {
		case r.Method == http.MethodPost && tail == "answer":
			s.handleAnswer(w, r, lobbyID, questionID)
		case r.Method == http.MethodGet && tail == "answers":
			s.handleGetAnswers(w, r, lobbyID, questionID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	lobbyID, action, ok := parseLobbyPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if action == "" {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.handleGetLobby(w, r, lobbyID)
		return
	}
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch action {
	case "start":
		s.handleStart(w, r, lobbyID)
	case "finish":
		s.handleFinish(w, r, lobbyID)
	case "next-round":
		s.handleNextRound(w, r, lobbyID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetLobby(w http.ResponseWriter, _ *http.Request, lobbyID string) {
	lobby, ok := s.store.GetLobby(lobbyID)
	if !ok {
		writeDomainError(w, ErrEntityNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(lobby))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, lobbyID string) {
	var req tokenRequest
	_ = readJSON(r.Body, &req)
	lobby, err := s.authorizeLobby(lobbyID, req.SecurityToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	unlock := s.lockLobby(lobby.ID)
	defer unlock()

	started, question, err := s.store.StartGame(lobby.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persistStatus(&started, "game_started")
	s.persistServed(&started, question)
	log.Printf("game started lobby_id=%s question_id=%s", started.ID, question.ID)
	s.publish(started.ID, eventGameStarted, map[string]any{"lobby": started.Name})
	s.publish(started.ID, eventNewQuestion, map[string]any{
		"question": question.Text,
		"id":       question.ID,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "game started"})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request, lobbyID string) {
	var req tokenRequest
	_ = readJSON(r.Body, &req)
	lobby, err := s.authorizeLobby(lobbyID, req.SecurityToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	unlock := s.lockLobby(lobby.ID)
	defer unlock()

	finished, err := s.store.FinishGame(lobby.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persistStatus(&finished, "game_finished")
	log.Printf("game finished lobby_id=%s", finished.ID)
	s.publish(finished.ID, eventGameFinished, map[string]any{"lobby": finished.Name})
	writeJSON(w, http.StatusOK, map[string]string{"message": "game finished"})
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request, lobbyID string) {
	var req tokenRequest
	_ = readJSON(r.Body, &req)
	lobby, err := s.authorizeLobby(lobbyID, req.SecurityToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	unlock := s.lockLobby(lobby.ID)
	defer unlock()

	advancedLobby, question, advanced, err := s.store.SelectQuestion(lobby.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if advanced {
		s.persistServed(&advancedLobby, question)
		log.Printf("next round lobby_id=%s question_id=%s round=%d", advancedLobby.ID, question.ID, len(advancedLobby.ServedOrder))
		s.publish(advancedLobby.ID, eventNewQuestion, map[string]any{
			"question": question.Text,
			"id":       question.ID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "next round started",
		"id":      question.ID,
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request, lobbyID, questionID string) {
	var req answerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	lobby, err := s.authorizeLobby(lobbyID, req.SecurityToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	text, err := validateAnswerText(req.Answer)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	unlock := s.lockLobby(lobby.ID)
	defer unlock()

	result, err := s.store.SubmitAnswer(lobby.ID, questionID, req.PlayerID, text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persistAnswer(&result.Lobby, &result.Answer)
	s.publish(result.Lobby.ID, eventNewAnswer, map[string]any{
		"answer":    result.Answer.Text,
		"player":    result.Answer.PlayerName,
		"remaining": result.Remaining,
	})
	if result.AllAnswered {
		s.publish(result.Lobby.ID, eventAllAnswersReceived, answerListPayload(result.Answers))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "question answered"})
}

func (s *Server) handleGetAnswers(w http.ResponseWriter, r *http.Request, lobbyID, questionID string) {
	token := r.URL.Query().Get("security_token")
	if token == "" {
		token = r.Header.Get("X-Security-Token")
	}
	lobby, err := s.authorizeLobby(lobbyID, token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	answers, err := s.store.AnswersFor(lobby.ID, questionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerListPayload(answers))
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	player := s.store.CreatePlayer(name)
	if err := s.persistPlayer(&player); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create player")
		return
	}
	writeJSON(w, http.StatusCreated, playerPayload(player))
}

func (s *Server) handlePlayerSubroutes(w http.ResponseWriter, r *http.Request) {
	playerID, action, ok := parsePlayerPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if action == "" {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.handleGetPlayer(w, r, playerID)
		return
	}
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch action {
	case "join":
		s.handleJoin(w, r, playerID)
	case "leave":
		s.handleLeave(w, r, playerID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, _ *http.Request, playerID string) {
	player, ok := s.store.GetPlayer(playerID)
	if !ok {
		writeDomainError(w, ErrEntityNotFound)
		return
	}
	writeJSON(w, http.StatusOK, playerPayload(player))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, playerID string) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	if strings.TrimSpace(req.LobbyID) == "" {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	lobby, ok := s.store.GetLobby(req.LobbyID)
	if !ok {
		writeDomainError(w, ErrEntityNotFound)
		return
	}

	unlock := s.lockLobby(lobby.ID)
	defer unlock()

	joined, player, err := s.store.JoinLobby(lobby.ID, playerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persistAffiliation(&joined, &player, "player_joined")
	log.Printf("player joined lobby_id=%s player_id=%s", joined.ID, player.ID)
	s.publish(joined.ID, eventJoinedLobby, map[string]any{"player": player.Name})
	resp := s.snapshot(joined)
	resp["security_token"] = joined.SecurityToken
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, playerID string) {
	player, ok := s.store.GetPlayer(playerID)
	if !ok {
		writeDomainError(w, ErrEntityNotFound)
		return
	}
	if player.LobbyID == "" {
		writeDomainError(w, ErrNotInLobby)
		return
	}

	unlock := s.lockLobby(player.LobbyID)
	defer unlock()

	left, departed, err := s.store.LeaveLobby(playerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.persistAffiliation(&left, &departed, "player_left")
	log.Printf("player left lobby_id=%s player_id=%s", left.ID, departed.ID)
	s.publish(left.ID, eventLeftLobby, map[string]any{"player": departed.Name})
	writeJSON(w, http.StatusOK, map[string]string{"message": "player left lobby"})
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeDomainError(w, ErrMalformedRequest)
		return
	}
	text, err := validateQuestionText(req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	question := s.store.CreateQuestion(text)
	if err := s.persistQuestion(&question); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create question")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   question.ID,
		"text": question.Text,
	})
}

func (s *Server) handleListQuestions(w http.ResponseWriter, _ *http.Request) {
	questions := s.store.Questions()
	entries := make([]map[string]string, 0, len(questions))
	for _, question := range questions {
		entries = append(entries, map[string]string{
			"id":   question.ID,
			"text": question.Text,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": entries})
}

func playerPayload(player Player) map[string]any {
	var lobbyID any
	if player.LobbyID != "" {
		lobbyID = player.LobbyID
	}
	return map[string]any{
		"id":        player.ID,
		"name":      player.Name,
		"lobby":     lobbyID,
		"joined_at": player.JoinedAt,
	}
}
