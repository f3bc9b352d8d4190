package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/mazechase/api"
	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/config"
	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
	"github.com/wricardo/mcp-training/mazechase/game/session"
	"github.com/wricardo/mcp-training/mazechase/logging"
	"github.com/wricardo/mcp-training/mazechase/transport/websocket"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}

	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s: expected text content, got %T", name, result.Content[0])
	}
	return text.Text, result.IsError
}

// newGameAPI serves the real REST API over a single corridor map
func newGameAPI(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	corridor := `{"name": "corridor", "description": "Straight corridor", "tick_interval_ms": 0, "layout": ["#P.. G#"]}`
	if err := os.WriteFile(filepath.Join(dir, "corridor.json"), []byte(corridor), 0644); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}

	log := logging.Nop()
	maps, err := config.NewManager(dir, log)
	if err != nil {
		t.Fatalf("Failed to create map manager: %v", err)
	}
	sessions := session.NewManager(log)
	t.Cleanup(sessions.CloseAll)

	hub := websocket.NewHub(log)
	svc := service.NewGameService(sessions, maps, hub, log)

	server := httptest.NewServer(api.NewServer(svc, hub, log))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/abc/move" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"direction": body["direction"],
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response service.MoveResult
	err := client.apiCall(context.Background(), "POST", "/api/sessions/abc/move", map[string]string{"direction": "up"}, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if !response.Success || response.Direction != "up" {
		t.Errorf("Unexpected response %+v", response)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/with-message":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found: abc"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/with-message", nil, nil)
	if err == nil || err.Error() != "session not found: abc" {
		t.Errorf("Expected API error message, got %v", err)
	}

	err = client.apiCall(context.Background(), "GET", "/plain", nil, nil)
	if err == nil || err.Error() != "API error: 500" {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestHandlers_RequireSessionID(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_session":   client.handleGetSession,
		"game_state":    client.handleGameState,
		"move":          client.handleMove,
		"tick":          client.handleTick,
		"describe_cell": client.handleDescribeCell,
		"start_game":    client.lifecycleHandler("start", "Game started"),
	}

	for name, handler := range handlers {
		text, isError := callTool(t, handler, name, map[string]interface{}{})
		if !isError {
			t.Errorf("%s: expected error result without session_id", name)
		}
		if text != "session_id is required" {
			t.Errorf("%s: unexpected message %q", name, text)
		}
	}
}

func TestHandleMove_RequiresDirection(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	text, isError := callTool(t, client.handleMove, "move", map[string]interface{}{"session_id": "abc"})
	if !isError {
		t.Error("Expected error without direction")
	}
	if !strings.Contains(text, "direction is required") {
		t.Errorf("Unexpected message %q", text)
	}
}

func TestHandleDescribeCell_RequiresCoordinates(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	_, isError := callTool(t, client.handleDescribeCell, "describe_cell", map[string]interface{}{
		"session_id": "abc",
		"x":          "one",
	})
	if !isError {
		t.Error("Expected error for non-numeric coordinates")
	}
}

func TestHandleGameInstructions(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	text, isError := callTool(t, client.handleGameInstructions, "game_instructions", nil)
	if isError {
		t.Fatal("Instructions should not fail")
	}
	for _, want := range []string{"#  wall", "chaser", "ambusher", "wanderer", "wary", "reset_game"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in instructions", want)
		}
	}
}

// TestGameFlow plays the corridor map end to end through the REST API
func TestGameFlow(t *testing.T) {
	server := newGameAPI(t)
	client := NewClient(server.URL)

	text, isError := callTool(t, client.handleCreateSession, "create_session", map[string]interface{}{"map_id": "corridor"})
	if isError {
		t.Fatalf("create_session failed: %s", text)
	}
	if !strings.HasPrefix(text, "Created session: ") {
		t.Fatalf("Unexpected create output: %s", text)
	}
	sessionID := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(text, "Created session: "), "\n", 2)[0])
	if !strings.Contains(text, "Map: corridor") || !strings.Contains(text, "#P.. G#") {
		t.Errorf("Expected map and board in output: %s", text)
	}
	args := map[string]interface{}{"session_id": sessionID}

	text, _ = callTool(t, client.handleMove, "move", map[string]interface{}{"session_id": sessionID, "direction": "right"})
	if !strings.Contains(text, "✗ Move failed") || !strings.Contains(text, "Start it first") {
		t.Errorf("Expected move before start to fail: %s", text)
	}

	text, isError = callTool(t, client.lifecycleHandler("start", "Game started"), "start_game", args)
	if isError || !strings.Contains(text, "Game started") || !strings.Contains(text, "State: running") {
		t.Fatalf("start_game failed: %s", text)
	}

	text, _ = callTool(t, client.handleMove, "move", map[string]interface{}{
		"session_id": sessionID,
		"direction":  "right",
		"intent":     "eat the first pellet",
	})
	if !strings.Contains(text, "✓ Move successful") || !strings.Contains(text, "Score: 10") {
		t.Errorf("Expected successful move: %s", text)
	}
	if !strings.Contains(text, "Player: (2,0) facing right") {
		t.Errorf("Expected player position: %s", text)
	}

	text, _ = callTool(t, client.handleDescribeCell, "describe_cell", map[string]interface{}{"session_id": sessionID, "x": float64(2), "y": float64(0)})
	if text != "(2,0) is ground holding: player" {
		t.Errorf("Unexpected cell description: %s", text)
	}
	text, _ = callTool(t, client.handleDescribeCell, "describe_cell", map[string]interface{}{"session_id": sessionID, "x": float64(0), "y": float64(0)})
	if text != "(0,0) is a wall; nobody can enter it" {
		t.Errorf("Unexpected wall description: %s", text)
	}
	text, _ = callTool(t, client.handleDescribeCell, "describe_cell", map[string]interface{}{"session_id": sessionID, "x": float64(9), "y": float64(0)})
	if text != "(9,0) is outside the 7x1 board" {
		t.Errorf("Unexpected outside description: %s", text)
	}

	text, _ = callTool(t, client.handleTick, "tick", args)
	if !strings.Contains(text, "✓ Ghosts moved") || !strings.Contains(text, "chaser (4,0)") {
		t.Errorf("Expected chaser to step towards the player: %s", text)
	}

	text, _ = callTool(t, client.handleMove, "move", map[string]interface{}{"session_id": sessionID, "direction": "right"})
	if !strings.Contains(text, "State: won") || !strings.Contains(text, "VICTORY") {
		t.Errorf("Expected victory after the last pellet: %s", text)
	}

	text, _ = callTool(t, client.handleGameState, "game_state", args)
	if !strings.Contains(text, "Pellets left: 0") {
		t.Errorf("Expected no pellets left: %s", text)
	}

	text, isError = callTool(t, client.lifecycleHandler("pause", "Game paused"), "pause_game", args)
	if !isError {
		t.Errorf("Expected pause of a finished game to fail: %s", text)
	}

	text, isError = callTool(t, client.lifecycleHandler("reset", "Game reset"), "reset_game", args)
	if isError || !strings.Contains(text, "State: not_started") || !strings.Contains(text, "Score: 0") {
		t.Errorf("Expected fresh level after reset: %s", text)
	}

	text, _ = callTool(t, client.handleGetSession, "get_session", args)
	if !strings.Contains(text, "Session: "+sessionID) || !strings.Contains(text, "Map: corridor") {
		t.Errorf("Unexpected session details: %s", text)
	}

	text, _ = callTool(t, client.handleListSessions, "list_sessions", nil)
	if !strings.Contains(text, "Active Sessions (1)") || !strings.Contains(text, sessionID) {
		t.Errorf("Unexpected session list: %s", text)
	}

	text, _ = callTool(t, client.handleListMaps, "list_maps", nil)
	if !strings.Contains(text, "- corridor: Straight corridor (7x1, 1 ghosts, 2 pellets, manual ticks)") {
		t.Errorf("Unexpected map list: %s", text)
	}
}

func TestGameFlow_UnknownSession(t *testing.T) {
	server := newGameAPI(t)
	client := NewClient(server.URL)

	text, isError := callTool(t, client.handleGameState, "game_state", map[string]interface{}{"session_id": "missing"})
	if !isError {
		t.Fatalf("Expected error for unknown session: %s", text)
	}
	if !strings.Contains(text, "session not found") {
		t.Errorf("Unexpected error text: %s", text)
	}

	text, isError = callTool(t, client.handleCreateSession, "create_session", map[string]interface{}{"map_id": "nope"})
	if !isError || !strings.Contains(text, "corridor") {
		t.Errorf("Expected unknown map error listing available maps: %s", text)
	}
}

func TestFormatSnapshot(t *testing.T) {
	if got := formatSnapshot(nil); got != "No game state available" {
		t.Errorf("Unexpected nil snapshot output: %s", got)
	}

	snap := &engine.Snapshot{
		Width:            4,
		Height:           1,
		State:            engine.Lost,
		Score:            20,
		RemainingPellets: 1,
		Ticks:            3,
		Moves:            2,
		Rows:             []string{"#G.#"},
		Player:           &engine.UnitView{Kind: board.PlayerUnit, X: 1, Y: 0},
		Ghosts:           []engine.UnitView{{Kind: board.GhostUnit, Name: "wary", X: 1, Y: 0}},
	}

	got := formatSnapshot(snap)
	for _, want := range []string{
		"State: lost | Score: 20 | Pellets left: 1 | Ticks: 3 | Moves: 2",
		"Player: (1,0)\n",
		"Ghosts: wary (1,0)",
		"#G.#",
		"CAUGHT BY A GHOST",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in:\n%s", want, got)
		}
	}
}

func TestFormatMoveResult(t *testing.T) {
	result := &service.MoveResult{
		Success: true,
		Message: "Moved right",
		Events: []service.GameEvent{
			{Type: "pellet", Message: "Ate a pellet (+10)"},
		},
	}

	got := formatMoveResult(result)
	if !strings.HasPrefix(got, "✓ Move successful\nMoved right\nEvents:\n- pellet: Ate a pellet (+10)\n") {
		t.Errorf("Unexpected move output:\n%s", got)
	}
	if !strings.HasSuffix(got, "No game state available") {
		t.Errorf("Expected missing snapshot note:\n%s", got)
	}
}
