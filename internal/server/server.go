package server

import (
	"net/http"
	"sync"

	"trivia-lobby/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store   *Store
	db      *gorm.DB
	ws      *wsHub
	pub     Publisher
	cfg     config.Config
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	hub := newWSHub()
	return &Server{
		store: NewStore(cfg),
		db:    conn,
		ws:    hub,
		pub:   hub,
		cfg:   cfg,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/lobbies", s.handleCreateLobby)
	mux.HandleFunc("GET /api/lobbies/", s.handleLobbySubroutes)
	mux.HandleFunc("POST /api/lobbies/", s.handleLobbySubroutes)
	mux.HandleFunc("POST /api/players", s.handleCreatePlayer)
	mux.HandleFunc("GET /api/players/", s.handlePlayerSubroutes)
	mux.HandleFunc("POST /api/players/", s.handlePlayerSubroutes)
	mux.HandleFunc("POST /api/questions", s.handleCreateQuestion)
	mux.HandleFunc("GET /api/questions", s.handleListQuestions)
	mux.HandleFunc("GET /ws/lobbies/", s.handleWebsocket)
	return mux
}

// lockLobby serializes commands against one lobby. Persistence writes and
// broadcast publishes run inside the locked scope, so each lobby observes a
// single ordered event stream and writes always precede their events.
func (s *Server) lockLobby(lobbyID string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[lobbyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[lobbyID] = lock
	}
	s.locksMu.Unlock()
	lock.Lock()
	return lock.Unlock
}
