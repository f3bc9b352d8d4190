package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
	"github.com/wricardo/mcp-training/mazechase/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, mapName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	StartFunc  func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	PauseFunc  func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	ResumeFunc func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	ResetFunc  func(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	MoveFunc        func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error)
	TickFunc        func(ctx context.Context, sessionID string) (*service.TickResult, error)
	GetSnapshotFunc func(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	ListMapsFunc func(ctx context.Context) ([]*service.MapInfo, error)
	LoadMapFunc  func(ctx context.Context, mapName string) (*engine.MapDefinition, error)
}

func testSnapshot(state engine.State) *engine.Snapshot {
	return &engine.Snapshot{
		Width:            5,
		Height:           3,
		State:            state,
		RemainingPellets: 1,
		Rows:             []string{"#####", "#P.G#", "#####"},
		Player:           &engine.UnitView{X: 1, Y: 1},
	}
}

func (m *MockGameService) CreateSession(ctx context.Context, mapName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, mapName)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		MapName:   mapName,
		CreatedAt: time.Now(),
		Snapshot:  testSnapshot(engine.NotStarted),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		MapName:   "test-map",
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Start(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, sessionID)
	}
	return testSnapshot(engine.Running), nil
}

func (m *MockGameService) Pause(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.PauseFunc != nil {
		return m.PauseFunc(ctx, sessionID)
	}
	return testSnapshot(engine.Suspended), nil
}

func (m *MockGameService) Resume(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.ResumeFunc != nil {
		return m.ResumeFunc(ctx, sessionID)
	}
	return testSnapshot(engine.Running), nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return testSnapshot(engine.NotStarted), nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction)
	}
	return &service.MoveResult{
		Success:   true,
		Direction: direction,
		Message:   "Moved " + direction,
		Snapshot:  testSnapshot(engine.Running),
	}, nil
}

func (m *MockGameService) Tick(ctx context.Context, sessionID string) (*service.TickResult, error) {
	if m.TickFunc != nil {
		return m.TickFunc(ctx, sessionID)
	}
	return &service.TickResult{Advanced: true, Snapshot: testSnapshot(engine.Running)}, nil
}

func (m *MockGameService) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetSnapshotFunc != nil {
		return m.GetSnapshotFunc(ctx, sessionID)
	}
	return testSnapshot(engine.Running), nil
}

func (m *MockGameService) ListMaps(ctx context.Context) ([]*service.MapInfo, error) {
	if m.ListMapsFunc != nil {
		return m.ListMapsFunc(ctx)
	}
	return []*service.MapInfo{}, nil
}

func (m *MockGameService) LoadMap(ctx context.Context, mapName string) (*engine.MapDefinition, error) {
	if m.LoadMapFunc != nil {
		return m.LoadMapFunc(ctx, mapName)
	}
	return &engine.MapDefinition{Name: mapName}, nil
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestNewServer(t *testing.T) {
	server := NewServer(&MockGameService{}, websocket.NewHub(nil), nil)

	if server == nil {
		t.Fatal("NewServer returned nil")
	}
	if server.router == nil {
		t.Error("Router not initialized")
	}
}

func TestHandleCreateSession(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		mockFunc   func(ctx context.Context, mapName string) (*service.SessionInfo, error)
		wantStatus int
		wantMap    string
	}{
		{
			name:       "named map",
			body:       map[string]string{"map_id": "classic"},
			wantStatus: http.StatusCreated,
			wantMap:    "classic",
		},
		{
			name:       "empty body uses default",
			body:       nil,
			wantStatus: http.StatusCreated,
			wantMap:    "",
		},
		{
			name:       "malformed body",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown map",
			body: map[string]string{"map_id": "nope"},
			mockFunc: func(ctx context.Context, mapName string) (*service.SessionInfo, error) {
				return nil, fmt.Errorf("%w: '%s'", service.ErrMapNotFound, mapName)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMap string
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, mapName string) (*service.SessionInfo, error) {
					gotMap = mapName
					if tt.mockFunc != nil {
						return tt.mockFunc(ctx, mapName)
					}
					return &service.SessionInfo{ID: "abc12345", MapName: mapName}, nil
				},
			}
			server := NewServer(mock, nil, nil)

			rr := doRequest(t, server, "POST", "/api/sessions", tt.body)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				var info service.SessionInfo
				decodeBody(t, rr, &info)
				if info.ID != "abc12345" {
					t.Errorf("Expected session ID abc12345, got %s", info.ID)
				}
				if gotMap != tt.wantMap {
					t.Errorf("Expected map %q, got %q", tt.wantMap, gotMap)
				}
			}
		})
	}
}

func TestHandleListSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Minute)},
				{ID: "b", CreatedAt: base.Add(time.Minute), LastAccessedAt: base.Add(time.Minute)},
				{ID: "c", CreatedAt: base.Add(2 * time.Minute), LastAccessedAt: base.Add(2 * time.Minute)},
			}, nil
		},
	}
	server := NewServer(mock, nil, nil)

	tests := []struct {
		query   string
		wantIDs []string
	}{
		{"", []string{"a", "c", "b"}},
		{"?sort=created&order=asc", []string{"a", "b", "c"}},
		{"?sort=created&limit=2", []string{"c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := doRequest(t, server, "GET", "/api/sessions"+tt.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			decodeBody(t, rr, &resp)

			if resp.Total != 3 {
				t.Errorf("Expected total 3, got %d", resp.Total)
			}
			if resp.Count != len(tt.wantIDs) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.wantIDs), resp.Count)
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("Expected session %d to be %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestHandleGetAndDeleteSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "known" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: sessionID, MapName: "classic"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "known" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return nil
		},
	}
	server := NewServer(mock, websocket.NewHub(nil), nil)

	rr := doRequest(t, server, "GET", "/api/sessions/known", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	rr = doRequest(t, server, "GET", "/api/sessions/unknown", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}

	rr = doRequest(t, server, "DELETE", "/api/sessions/known", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Session known deleted") {
		t.Errorf("Unexpected body %s", rr.Body.String())
	}

	rr = doRequest(t, server, "DELETE", "/api/sessions/unknown", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestHandleLifecycle(t *testing.T) {
	tests := []struct {
		path       string
		mock       *MockGameService
		wantStatus int
		wantState  engine.State
	}{
		{"/api/sessions/s1/start", &MockGameService{}, http.StatusOK, engine.Running},
		{"/api/sessions/s1/pause", &MockGameService{}, http.StatusOK, engine.Suspended},
		{"/api/sessions/s1/resume", &MockGameService{}, http.StatusOK, engine.Running},
		{"/api/sessions/s1/reset", &MockGameService{}, http.StatusOK, engine.NotStarted},
		{
			"/api/sessions/s1/start",
			&MockGameService{StartFunc: func(ctx context.Context, id string) (*engine.Snapshot, error) {
				return nil, fmt.Errorf("%w: cannot start a won level", engine.ErrInvalidTransition)
			}},
			http.StatusConflict, "",
		},
		{
			"/api/sessions/s1/pause",
			&MockGameService{PauseFunc: func(ctx context.Context, id string) (*engine.Snapshot, error) {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, id)
			}},
			http.StatusNotFound, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			server := NewServer(tt.mock, nil, nil)

			rr := doRequest(t, server, "POST", tt.path, nil)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp struct {
				State    engine.State     `json:"state"`
				Snapshot *engine.Snapshot `json:"snapshot"`
			}
			decodeBody(t, rr, &resp)
			if resp.State != tt.wantState || resp.Snapshot == nil {
				t.Errorf("Expected state %s with snapshot, got %+v", tt.wantState, resp)
			}
		})
	}

	t.Run("lifecycle routes are POST only", func(t *testing.T) {
		called := false
		server := NewServer(&MockGameService{
			StartFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
				called = true
				return testSnapshot(engine.Running), nil
			},
		}, nil, nil)

		// The /api subrouter reports a method mismatch as not found
		rr := doRequest(t, server, "GET", "/api/sessions/s1/start", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rr.Code)
		}
		if called {
			t.Error("Expected GET not to reach the start handler")
		}
	})
}

func TestHandleMove(t *testing.T) {
	var gotDirection string
	mock := &MockGameService{
		MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
			gotDirection = direction
			if direction == "sideways" {
				return nil, fmt.Errorf("%w: %q", service.ErrInvalidDirection, direction)
			}
			return &service.MoveResult{Success: true, Direction: direction, Snapshot: testSnapshot(engine.Running)}, nil
		},
	}
	server := NewServer(mock, nil, nil)

	rr := doRequest(t, server, "POST", "/api/sessions/s1/move", map[string]string{"direction": "left"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if gotDirection != "left" {
		t.Errorf("Expected direction left, got %s", gotDirection)
	}
	var result service.MoveResult
	decodeBody(t, rr, &result)
	if !result.Success || result.Snapshot.Rows[1] != "#P.G#" {
		t.Errorf("Unexpected result %+v", result)
	}

	rr = doRequest(t, server, "POST", "/api/sessions/s1/move", map[string]string{"direction": "sideways"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}

	rr = doRequest(t, server, "POST", "/api/sessions/s1/move", "nope")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed body, got %d", rr.Code)
	}
}

func TestHandleStateAndTick(t *testing.T) {
	server := NewServer(&MockGameService{}, nil, nil)

	rr := doRequest(t, server, "GET", "/api/sessions/s1/state", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var snap engine.Snapshot
	decodeBody(t, rr, &snap)
	if snap.Width != 5 || snap.State != engine.Running {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	rr = doRequest(t, server, "POST", "/api/sessions/s1/tick", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var tick service.TickResult
	decodeBody(t, rr, &tick)
	if !tick.Advanced {
		t.Error("Expected tick to advance")
	}
}

func TestHandleMaps(t *testing.T) {
	mock := &MockGameService{
		ListMapsFunc: func(ctx context.Context) ([]*service.MapInfo, error) {
			return []*service.MapInfo{{MapID: "classic", Name: "classic", Width: 19, Height: 19}}, nil
		},
		LoadMapFunc: func(ctx context.Context, mapName string) (*engine.MapDefinition, error) {
			if mapName != "classic" {
				return nil, service.ErrMapNotFound
			}
			return engine.DefaultDefinition(), nil
		},
	}
	server := NewServer(mock, nil, nil)

	rr := doRequest(t, server, "GET", "/api/maps", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var maps []*service.MapInfo
	decodeBody(t, rr, &maps)
	if len(maps) != 1 || maps[0].MapID != "classic" {
		t.Errorf("Unexpected maps %+v", maps)
	}

	rr = doRequest(t, server, "GET", "/api/maps/classic", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var def engine.MapDefinition
	decodeBody(t, rr, &def)
	if def.Name != "classic" || len(def.Layout) != 19 {
		t.Errorf("Unexpected map %+v", def)
	}

	rr = doRequest(t, server, "GET", "/api/maps/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	server := NewServer(&MockGameService{}, nil, nil)

	rr := doRequest(t, server, "GET", "/healthz", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "healthy") {
		t.Errorf("Unexpected body %s", rr.Body.String())
	}
}

func TestHandleWebSocketRejects(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}

	tests := []struct {
		name       string
		server     *Server
		path       string
		wantStatus int
	}{
		{"no hub", NewServer(mock, nil, nil), "/ws?session=x", http.StatusServiceUnavailable},
		{"no session parameter", NewServer(mock, websocket.NewHub(nil), nil), "/ws", http.StatusBadRequest},
		{"unknown session", NewServer(mock, websocket.NewHub(nil), nil), "/ws?session=x", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, tt.server, "GET", tt.path, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}
