package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Chase Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Chase Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Eat every pellet (.) on the board without being caught by a ghost (G).
You are P. Walls (#) block everyone.

FLOW:
1. create_session (optionally with map_id from list_maps)
2. start_game
3. move up/down/left/right, checking game_state as ghosts move
4. reset_game to play again after winning or losing

Ghosts move on a timer while the game is running. Pause with pause_game
to think, then resume_game. Maps with tick_interval_ms 0 only move the
ghosts when you call tick.

AVAILABLE TOOLS:
- create_session, list_sessions, get_session
- start_game, pause_game, resume_game, reset_game
- game_state, move, tick, describe_cell
- list_maps, game_instructions`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// sessionTool declares a tool whose only argument is the session ID
func sessionTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally on a named map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map_id": map[string]interface{}{
					"type":        "string",
					"description": "Map to play (see list_maps). Uses the default map when omitted",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionTool("get_session", "Get details of a specific session"), c.handleGetSession)

	// Lifecycle
	c.mcpServer.AddTool(sessionTool("start_game", "Start the level so the player can move and ghosts begin to chase"),
		c.lifecycleHandler("start", "Game started"))
	c.mcpServer.AddTool(sessionTool("pause_game", "Pause a running level; ghosts stop moving"),
		c.lifecycleHandler("pause", "Game paused"))
	c.mcpServer.AddTool(sessionTool("resume_game", "Resume a paused level"),
		c.lifecycleHandler("resume", "Game resumed"))
	c.mcpServer.AddTool(sessionTool("reset_game", "Rebuild the level from its map; the new level must be started again"),
		c.lifecycleHandler("reset", "Game reset"))

	// Game operations
	c.mcpServer.AddTool(sessionTool("game_state", "Get the current board, score and unit positions"), c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one square in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Direction to move",
					"enum":        []string{"up", "down", "left", "right"},
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Why you are making this move (which pellet, which ghost you avoid)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(sessionTool("tick", "Advance the ghosts by one step"), c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe the square at (x,y): wall or ground and what stands on it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column, 0 is the left edge",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row, 0 is the top edge",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	// Maps
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List available maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and strategy hints",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func requireSessionID(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	mapID, _ := args["map_id"].(string)

	body := map[string]string{}
	if mapID != "" {
		body["map_id"] = mapID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nMap: %s\nCall start_game to begin.\n\n%s",
		session.ID, session.MapName, formatSnapshot(session.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := "unknown"
		score := 0
		if s.Snapshot != nil {
			state = string(s.Snapshot.State)
			score = s.Snapshot.Score
		}
		fmt.Fprintf(&result, "- %s (Map: %s, State: %s, Score: %d, Created: %s)\n",
			s.ID, s.MapName, state, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

// lifecycleHandler proxies one of the POST lifecycle endpoints
func (c *Client) lifecycleHandler(action, done string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, errResult := requireSessionID(arguments(request))
		if errResult != nil {
			return errResult, nil
		}

		var response struct {
			Snapshot *engine.Snapshot `json:"snapshot"`
		}
		path := fmt.Sprintf("/api/sessions/%s/%s", sessionID, action)
		if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(done + "\n\n" + formatSnapshot(response.Snapshot)), nil
	}
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}
	direction, _ := args["direction"].(string)
	if direction == "" {
		return mcp.NewToolResultError("direction is required (up, down, left or right)"), nil
	}

	body := map[string]interface{}{
		"direction": direction,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var result service.TickResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/tick", sessionID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response strings.Builder
	if result.Advanced {
		response.WriteString("✓ Ghosts moved\n")
	} else {
		response.WriteString("✗ Nothing moved\n")
	}
	if result.Message != "" {
		response.WriteString(result.Message + "\n")
	}
	writeEvents(&response, result.Events)
	response.WriteString("\n" + formatSnapshot(result.Snapshot))
	return mcp.NewToolResultText(response.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}
	xf, okX := args["x"].(float64)
	yf, okY := args["y"].(float64)
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}
	x, y := int(xf), int(yf)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&snap, x, y)), nil
}

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []service.MapInfo
	if err := c.apiCall(ctx, "GET", "/api/maps", nil, &maps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Maps:\n\n")
	for _, m := range maps {
		ticks := fmt.Sprintf("ghosts every %dms", m.TickIntervalMS)
		if m.TickIntervalMS == 0 {
			ticks = "manual ticks"
		}
		fmt.Fprintf(&result, "- %s: %s (%dx%d, %d ghosts, %d pellets, %s)\n",
			m.MapID, m.Description, m.Width, m.Height, m.Ghosts, m.Pellets, ticks)
	}
	result.WriteString("\nUse the map id with create_session.")

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `MAZE CHASE - RULES

BOARD
  #  wall, nobody can enter it
  (space)  empty ground
  P  you, the player
  G  a ghost
  .  a pellet, worth 10 points

Coordinates are (x,y) with (0,0) in the top left corner; x grows to the
right and y grows downwards. "up" decreases y.

GOAL
  Eat every pellet to win. If a ghost reaches your square, or you walk into
  a ghost, you lose.

LIFECYCLE
  A new session is not started: call start_game first. pause_game freezes
  the ghosts, resume_game continues. A won or lost game stays finished until
  reset_game rebuilds it.

MOVES
  move shifts you one square. A move into a wall is rejected and changes
  nothing. Ghosts move on a timer while the game runs; on maps with manual
  ticks they only move when tick is called.

GHOSTS
  chaser    walks the shortest path to you
  ambusher  aims a few squares ahead of where you are facing
  wanderer  picks random turns and never reverses unless stuck
  wary      chases from afar but backs off when close
  Ghosts never share a square with each other; they can stand on pellets
  without eating them.

TIPS
  - Read game_state often; ghost positions change between your moves.
  - Pause before planning a long route.
  - Corridors with two exits are safer than dead ends.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nMap: %s\nCreated: %s\n\n%s",
		session.ID, session.MapName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(session.Snapshot))
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "State: %s | Score: %d | Pellets left: %d | Ticks: %d | Moves: %d\n",
		snap.State, snap.Score, snap.RemainingPellets, snap.Ticks, snap.Moves)

	if p := snap.Player; p != nil {
		fmt.Fprintf(&result, "Player: (%d,%d)", p.X, p.Y)
		if p.Direction != "" {
			fmt.Fprintf(&result, " facing %s", p.Direction)
		}
		result.WriteString("\n")
	}
	if len(snap.Ghosts) > 0 {
		ghosts := make([]string, 0, len(snap.Ghosts))
		for _, g := range snap.Ghosts {
			ghosts = append(ghosts, fmt.Sprintf("%s (%d,%d)", g.Name, g.X, g.Y))
		}
		fmt.Fprintf(&result, "Ghosts: %s\n", strings.Join(ghosts, ", "))
	}

	result.WriteString("\n")
	for _, row := range snap.Rows {
		result.WriteString(row + "\n")
	}

	switch snap.State {
	case engine.Won:
		result.WriteString("\n🎉 VICTORY!")
	case engine.Lost:
		result.WriteString("\n💀 CAUGHT BY A GHOST")
	}

	return result.String()
}

func writeEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var response strings.Builder
	if result.Success {
		response.WriteString("✓ Move successful\n")
	} else {
		response.WriteString("✗ Move failed\n")
	}
	if result.Message != "" {
		response.WriteString(result.Message + "\n")
	}
	writeEvents(&response, result.Events)

	response.WriteString("\n" + formatSnapshot(result.Snapshot))
	return response.String()
}

func describeCell(snap *engine.Snapshot, x, y int) string {
	if y < 0 || y >= len(snap.Cells) || x < 0 || x >= len(snap.Cells[y]) {
		return fmt.Sprintf("(%d,%d) is outside the %dx%d board", x, y, snap.Width, snap.Height)
	}

	cell := snap.Cells[y][x]
	if cell.Square == board.Wall {
		return fmt.Sprintf("(%d,%d) is a wall; nobody can enter it", x, y)
	}
	if len(cell.Occupants) == 0 {
		return fmt.Sprintf("(%d,%d) is empty ground", x, y)
	}

	names := make([]string, 0, len(cell.Occupants))
	for _, o := range cell.Occupants {
		names = append(names, string(o))
	}
	return fmt.Sprintf("(%d,%d) is ground holding: %s", x, y, strings.Join(names, ", "))
}
