package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// wsHub is the production Publisher: a set of websocket connections per
// lobby channel, managed entirely by the transport layer.
type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(lobbyID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[lobbyID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[lobbyID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(lobbyID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[lobbyID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, lobbyID)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

// Publish fans an event frame out to every current subscriber of the lobby.
func (h *wsHub) Publish(lobbyID string, action string, data map[string]any) {
	h.mu.Lock()
	group := h.groups[lobbyID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	frame, err := json.Marshal(map[string]any{
		"action": action,
		"data":   data,
	})
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.Remove(lobbyID, conn)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	idOrCode, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	lobby, exists := s.store.GetLobby(idOrCode)
	if !exists {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected lobby_id=%s remote=%s", lobby.ID, r.RemoteAddr)
	s.ws.Add(lobby.ID, conn)
	if current, ok := s.store.GetLobby(lobby.ID); ok {
		s.ws.Send(conn, map[string]any{
			"action": "snapshot",
			"data":   s.snapshot(current),
		})
	}
	go s.readWS(lobby.ID, conn)
}

func (s *Server) readWS(lobbyID string, conn *websocket.Conn) {
	defer s.ws.Remove(lobbyID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected lobby_id=%s error=%v", lobbyID, err)
			return
		}
	}
}
