package server

import (
	"encoding/hex"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"trivia-lobby/internal/config"

	"github.com/google/uuid"
)

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Store is the authoritative in-memory entity store. Every mutation runs
// under one mutex, which is what serializes state-changing operations on a
// lobby and makes the answer-threshold check atomic with the insert that
// triggered it. Read accessors return copies so callers never observe a
// torn write.
type Store struct {
	mu           sync.Mutex
	rng          *rand.Rand
	codeLength   int
	codeAttempts int

	lobbies     map[string]*Lobby
	codes       map[string]string
	tokens      map[string]struct{}
	players     map[string]*Player
	questions   map[string]*Question
	questionIDs []string
	answers     []*Answer
}

func NewStore(cfg config.Config) *Store {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Store{
		rng:          rand.New(rand.NewSource(seed)),
		codeLength:   cfg.JoinCodeLength,
		codeAttempts: cfg.JoinCodeAttempts,
		lobbies:      make(map[string]*Lobby),
		codes:        make(map[string]string),
		tokens:       make(map[string]struct{}),
		players:      make(map[string]*Player),
		questions:    make(map[string]*Question),
	}
}

func (s *Store) CreateLobby(name string, maxPlayers int) (Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.newJoinCodeLocked()
	if err != nil {
		return Lobby{}, err
	}
	token, err := s.newSecurityTokenLocked()
	if err != nil {
		return Lobby{}, err
	}
	lobby := &Lobby{
		ID:            uuid.NewString(),
		Name:          name,
		JoinCode:      code,
		Status:        statusWaiting,
		MaxPlayers:    maxPlayers,
		SecurityToken: token,
		CreatedAt:     timeNowUTC(),
		Served:        make(map[string]struct{}),
	}
	s.lobbies[lobby.ID] = lobby
	s.codes[code] = lobby.ID
	s.tokens[token] = struct{}{}
	return cloneLobby(lobby), nil
}

// newJoinCodeLocked draws short codes until an unused one appears, giving up
// after a fixed attempt cap rather than recursing forever.
func (s *Store) newJoinCodeLocked() (string, error) {
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		buf := make([]byte, s.codeLength)
		for i := range buf {
			buf[i] = joinCodeAlphabet[s.rng.Intn(len(joinCodeAlphabet))]
		}
		code := string(buf)
		if _, taken := s.codes[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func (s *Store) newSecurityTokenLocked() (string, error) {
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		id := uuid.New()
		token := strings.ToUpper(hex.EncodeToString(id[:])[:6])
		if _, taken := s.tokens[token]; !taken {
			return token, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// GetLobby resolves a lobby by id or by join code.
func (s *Store) GetLobby(idOrCode string) (Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lookupLobbyLocked(idOrCode)
	if !ok {
		return Lobby{}, false
	}
	return cloneLobby(lobby), true
}

func (s *Store) lookupLobbyLocked(idOrCode string) (*Lobby, bool) {
	if lobby, ok := s.lobbies[idOrCode]; ok {
		return lobby, true
	}
	if id, ok := s.codes[idOrCode]; ok {
		return s.lobbies[id], true
	}
	return nil, false
}

func (s *Store) UpdateLobby(id string, update func(lobby *Lobby) error) (Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lookupLobbyLocked(id)
	if !ok {
		return Lobby{}, ErrEntityNotFound
	}
	if err := update(lobby); err != nil {
		return Lobby{}, err
	}
	return cloneLobby(lobby), nil
}

func (s *Store) CreatePlayer(name string) Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	player := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		JoinedAt:  timeNowUTC(),
		CreatedAt: timeNowUTC(),
	}
	s.players[player.ID] = player
	return *player
}

func (s *Store) GetPlayer(id string) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return *player, true
}

// JoinLobby affiliates a player with a waiting lobby. The capacity check and
// the affiliation write happen under the same lock, so two racing joins can
// never both read count < max.
func (s *Store) JoinLobby(lobbyIDOrCode, playerID string) (Lobby, Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return Lobby{}, Player{}, ErrEntityNotFound
	}
	lobby, ok := s.lookupLobbyLocked(lobbyIDOrCode)
	if !ok {
		return Lobby{}, Player{}, ErrEntityNotFound
	}
	if player.LobbyID != "" {
		return Lobby{}, Player{}, ErrAlreadyAffiliated
	}
	if lobby.Status != statusWaiting {
		return Lobby{}, Player{}, ErrLobbyNotJoinable
	}
	if s.countPlayersLocked(lobby.ID) >= lobby.MaxPlayers {
		return Lobby{}, Player{}, ErrLobbyFull
	}

	player.LobbyID = lobby.ID
	player.JoinedAt = timeNowUTC()
	return cloneLobby(lobby), *player, nil
}

// LeaveLobby clears the player's affiliation regardless of lobby status and
// returns the lobby that was left.
func (s *Store) LeaveLobby(playerID string) (Lobby, Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return Lobby{}, Player{}, ErrEntityNotFound
	}
	if player.LobbyID == "" {
		return Lobby{}, Player{}, ErrNotInLobby
	}
	lobby, ok := s.lobbies[player.LobbyID]
	if !ok {
		return Lobby{}, Player{}, ErrEntityNotFound
	}
	player.LobbyID = ""
	return cloneLobby(lobby), *player, nil
}

func (s *Store) CreateQuestion(text string) Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	question := &Question{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: timeNowUTC(),
	}
	s.questions[question.ID] = question
	s.questionIDs = append(s.questionIDs, question.ID)
	return *question
}

func (s *Store) GetQuestion(id string) (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[id]
	if !ok {
		return Question{}, false
	}
	return *question, true
}

func (s *Store) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Question, 0, len(s.questionIDs))
	for _, id := range s.questionIDs {
		list = append(list, *s.questions[id])
	}
	return list
}

// StartGame flips a waiting lobby to active, stamps the start time, and
// opens round one in the same atomic step. The question is picked before the
// transition so an exhausted pool fails the whole command with no state
// change.
func (s *Store) StartGame(lobbyID string) (Lobby, Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lookupLobbyLocked(lobbyID)
	if !ok {
		return Lobby{}, Question{}, ErrEntityNotFound
	}
	if lobby.Status != statusWaiting {
		return Lobby{}, Question{}, ErrInvalidTransition
	}
	question, err := s.pickQuestionLocked(lobby)
	if err != nil {
		return Lobby{}, Question{}, err
	}

	now := timeNowUTC()
	lobby.Status = statusActive
	lobby.GameStartedAt = &now
	s.serveQuestionLocked(lobby, question)
	return cloneLobby(lobby), *question, nil
}

func (s *Store) FinishGame(lobbyID string) (Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lookupLobbyLocked(lobbyID)
	if !ok {
		return Lobby{}, ErrEntityNotFound
	}
	if lobby.Status != statusActive {
		return Lobby{}, ErrInvalidTransition
	}
	now := timeNowUTC()
	lobby.Status = statusFinished
	lobby.FinishedAt = &now
	return cloneLobby(lobby), nil
}

// SelectQuestion advances the lobby to the next unseen question. When the
// open round is still incomplete the call is treated as a duplicate advance:
// it returns the open question unchanged with advanced=false, so two racing
// next-round commands grow the served-set by exactly one.
func (s *Store) SelectQuestion(lobbyID string) (Lobby, Question, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lookupLobbyLocked(lobbyID)
	if !ok {
		return Lobby{}, Question{}, false, ErrEntityNotFound
	}
	if open := lobby.openQuestionID(); open != "" {
		if s.countAnswersLocked(lobby.ID, open) < s.countPlayersLocked(lobby.ID) {
			return cloneLobby(lobby), *s.questions[open], false, nil
		}
	}
	question, err := s.pickQuestionLocked(lobby)
	if err != nil {
		return Lobby{}, Question{}, false, err
	}
	s.serveQuestionLocked(lobby, question)
	return cloneLobby(lobby), *question, true, nil
}

func (s *Store) pickQuestionLocked(lobby *Lobby) (*Question, error) {
	candidates := make([]string, 0, len(s.questionIDs))
	for _, id := range s.questionIDs {
		if _, served := lobby.Served[id]; !served {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoQuestionsRemaining
	}
	return s.questions[candidates[s.rng.Intn(len(candidates))]], nil
}

func (s *Store) serveQuestionLocked(lobby *Lobby, question *Question) {
	lobby.Served[question.ID] = struct{}{}
	lobby.ServedOrder = append(lobby.ServedOrder, question.ID)
}

// SubmitAnswer records an answer and computes the round aggregate in the
// same atomic step.
func (s *Store) SubmitAnswer(lobbyID, questionID, playerID, text string) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lookupLobbyLocked(lobbyID)
	if !ok {
		return SubmitResult{}, ErrEntityNotFound
	}
	if lobby.Status != statusActive {
		return SubmitResult{}, ErrGameNotActive
	}
	if _, ok := s.questions[questionID]; !ok {
		return SubmitResult{}, ErrEntityNotFound
	}
	player, ok := s.players[playerID]
	if !ok {
		return SubmitResult{}, ErrEntityNotFound
	}

	answer := &Answer{
		ID:         uuid.NewString(),
		LobbyID:    lobby.ID,
		QuestionID: questionID,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Text:       text,
		CreatedAt:  timeNowUTC(),
	}
	s.answers = append(s.answers, answer)

	answers := s.answersForLocked(lobby.ID, questionID)
	total := s.countPlayersLocked(lobby.ID)
	answered := len(answers)
	return SubmitResult{
		Lobby:        cloneLobby(lobby),
		Answer:       *answer,
		TotalPlayers: total,
		Answered:     answered,
		Remaining:    total - answered,
		AllAnswered:  answered >= total,
		Answers:      answers,
	}, nil
}

// AnswersFor returns the answers for one (lobby, question) pair in
// submission order. Valid only while the game is active.
func (s *Store) AnswersFor(lobbyID, questionID string) ([]Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobby, ok := s.lookupLobbyLocked(lobbyID)
	if !ok {
		return nil, ErrEntityNotFound
	}
	if lobby.Status != statusActive {
		return nil, ErrGameNotActive
	}
	if _, ok := s.questions[questionID]; !ok {
		return nil, ErrEntityNotFound
	}
	return s.answersForLocked(lobby.ID, questionID), nil
}

func (s *Store) answersForLocked(lobbyID, questionID string) []Answer {
	var list []Answer
	for _, answer := range s.answers {
		if answer.LobbyID == lobbyID && answer.QuestionID == questionID {
			list = append(list, *answer)
		}
	}
	return list
}

func (s *Store) CountPlayers(lobbyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countPlayersLocked(lobbyID)
}

func (s *Store) countPlayersLocked(lobbyID string) int {
	count := 0
	for _, player := range s.players {
		if player.LobbyID == lobbyID {
			count++
		}
	}
	return count
}

// LobbyPlayers returns the lobby roster ordered by join time.
func (s *Store) LobbyPlayers(lobbyID string) []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []Player
	for _, player := range s.players {
		if player.LobbyID == lobbyID {
			list = append(list, *player)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list
}

func (s *Store) countAnswersLocked(lobbyID, questionID string) int {
	count := 0
	for _, answer := range s.answers {
		if answer.LobbyID == lobbyID && answer.QuestionID == questionID {
			count++
		}
	}
	return count
}

func (s *Store) SetLobbyDBID(id string, dbid uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lobby, ok := s.lobbies[id]; ok {
		lobby.DBID = dbid
	}
}

func (s *Store) SetPlayerDBID(id string, dbid uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player, ok := s.players[id]; ok {
		player.DBID = dbid
	}
}

func (s *Store) SetQuestionDBID(id string, dbid uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if question, ok := s.questions[id]; ok {
		question.DBID = dbid
	}
}

func (s *Store) SetAnswerDBID(id string, dbid uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, answer := range s.answers {
		if answer.ID == id {
			answer.DBID = dbid
			return
		}
	}
}

// RestoreLobby inserts a lobby loaded from the database.
func (s *Store) RestoreLobby(lobby Lobby) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lobby.Served == nil {
		lobby.Served = make(map[string]struct{})
	}
	copied := cloneLobby(&lobby)
	s.lobbies[copied.ID] = &copied
	s.codes[copied.JoinCode] = copied.ID
	s.tokens[copied.SecurityToken] = struct{}{}
}

func (s *Store) RestorePlayer(player Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := player
	s.players[copied.ID] = &copied
}

func (s *Store) RestoreQuestion(question Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; ok {
		return
	}
	copied := question
	s.questions[copied.ID] = &copied
	s.questionIDs = append(s.questionIDs, copied.ID)
}

func (s *Store) RestoreAnswer(answer Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := answer
	s.answers = append(s.answers, &copied)
}

func cloneLobby(lobby *Lobby) Lobby {
	copied := *lobby
	copied.Served = make(map[string]struct{}, len(lobby.Served))
	for id := range lobby.Served {
		copied.Served[id] = struct{}{}
	}
	copied.ServedOrder = append([]string(nil), lobby.ServedOrder...)
	return copied
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
