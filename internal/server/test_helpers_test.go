package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"trivia-lobby/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.RandomSeed = 1
	return cfg
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func assertString(t *testing.T, value any) string {
	t.Helper()
	text, ok := value.(string)
	if !ok || text == "" {
		t.Fatalf("expected non-empty string, got %#v", value)
	}
	return text
}

func createLobby(t *testing.T, ts *httptest.Server, name string, maxPlayers int) (string, string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/lobbies", map[string]any{
		"name":        name,
		"max_players": maxPlayers,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return assertString(t, body["id"]), assertString(t, body["security_token"])
}

func createPlayer(t *testing.T, ts *httptest.Server, name string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/players", map[string]any{
		"name": name,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return assertString(t, body["id"])
}

func joinLobby(t *testing.T, ts *httptest.Server, playerID, lobbyID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/players/"+playerID+"/join", map[string]any{
		"lobby_id": lobbyID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func seedQuestions(srv *Server, texts ...string) []Question {
	questions := make([]Question, 0, len(texts))
	for _, text := range texts {
		questions = append(questions, srv.store.CreateQuestion(text))
	}
	return questions
}

type recordedEvent struct {
	LobbyID string
	Action  string
	Data    map[string]any
}

// eventRecorder is the test Publisher: it captures the per-lobby event
// stream so tests can assert emitted sequences.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) Publish(lobbyID string, action string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{LobbyID: lobbyID, Action: action, Data: data})
}

func (r *eventRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]string, 0, len(r.events))
	for _, event := range r.events {
		list = append(list, event.Action)
	}
	return list
}

func (r *eventRecorder) byAction(action string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []recordedEvent
	for _, event := range r.events {
		if event.Action == action {
			list = append(list, event)
		}
	}
	return list
}
