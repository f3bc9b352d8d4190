package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
)

const (
	cellSize          = 28
	headerHeight      = 80 // Taller header for multi-session stats
	screenWidth       = 800
	screenHeight      = 720
	defaultBaseURL    = "http://localhost:8080"
	animationDuration = 120 * time.Millisecond
)

var logger = zap.NewNop().Sugar()

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// Ghost colors, by strategy name
var ghostColors = map[string]color.RGBA{
	"chaser":   {255, 60, 60, 255},
	"ambusher": {255, 150, 220, 255},
	"wanderer": {80, 220, 255, 255},
	"wary":     {255, 170, 60, 255},
}

var (
	wallColor   = color.RGBA{30, 40, 160, 255}
	groundColor = color.RGBA{10, 10, 20, 255}
	pelletColor = color.RGBA{250, 220, 180, 255}
	playerColor = color.RGBA{255, 230, 0, 255}
)

// SessionData holds data for a single session
type SessionData struct {
	sessionID     string
	state         *Snapshot
	wsConn        *websocket.Conn
	lastUpdate    time.Time
	prevPos       [2]int // Previous player position for interpolation
	targetPos     [2]int
	moveStartTime time.Time
	animationTime float64 // Animation progress 0.0 to 1.0
	lastError     string
}

// Game represents the desktop game client
type Game struct {
	api              *APIClient
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to play
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableMaps     []MapListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionMap     string // selected map for new session
}

// NewGame creates a new game instance with initial sessions
func NewGame(api *APIClient, sessionIDs []string) *Game {
	g := &Game{
		api:              api,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen:    &WelcomeScreen{},
	}

	// If session IDs provided, skip welcome screen and go straight to game
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g
}

// addSession adds a session, creating one on the map selected in the
// session menu when sessionID is empty
func (g *Game) addSession(sessionID string) {
	if sessionID == "" {
		created, err := g.api.CreateSession(g.welcomeScreen.newSessionMap)
		if err != nil {
			logger.Errorf("Failed to create session: %v", err)
			return
		}
		sessionID = created.ID
		logger.Infof("Created new session: %s (map: %s)", created.ID, created.MapName)
	}

	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}
	g.sessions = append(g.sessions, session)

	conn, err := g.api.Dial(sessionID)
	if err != nil {
		logger.Warnf("Failed to connect WebSocket for %s: %v (falling back to polling)", sessionID, err)
	} else {
		session.wsConn = conn
		go g.listenWebSocket(session)
	}

	g.fetchGameState(session)
}

// applySnapshot stores a new snapshot and starts the player animation
func (g *Game) applySnapshot(session *SessionData, snap *Snapshot) {
	if snap == nil {
		return
	}

	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	if snap.Player != nil {
		pos := [2]int{snap.Player.X, snap.Player.Y}
		if session.state == nil || session.state.Player == nil {
			session.prevPos, session.targetPos = pos, pos
			session.animationTime = 1.0
		} else if pos != session.targetPos {
			session.prevPos = session.targetPos
			session.targetPos = pos
			session.moveStartTime = time.Now()
			session.animationTime = 0.0
		}
	}
	session.state = snap
	session.lastUpdate = time.Now()
	session.lastError = ""
}

// listenWebSocket applies pushed snapshots until the connection drops
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		session.wsConn.Close()
		g.stateMutex.Lock()
		session.wsConn = nil
		g.stateMutex.Unlock()
	}()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			logger.Warnf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			logger.Errorf("WebSocket JSON parse error: %v", err)
			continue
		}

		switch wsMsg.Event {
		case "snapshot":
			g.applySnapshot(session, wsMsg.Snapshot)
		case "session_deleted":
			logger.Infof("Session %s was deleted", session.sessionID)
			return
		}
	}
}

// fetchGameState gets the current snapshot from the server
func (g *Game) fetchGameState(session *SessionData) {
	snap, err := g.api.State(session.sessionID)
	if err != nil {
		g.stateMutex.Lock()
		session.lastError = err.Error()
		session.lastUpdate = time.Now()
		g.stateMutex.Unlock()
		return
	}
	g.applySnapshot(session, snap)
}

// loadWelcomeData fetches available sessions and maps from server
func (g *Game) loadWelcomeData() {
	ws := g.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	sessions, err := g.api.ListSessions()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.availableSessions = sessions

	maps, err := g.api.ListMaps()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading maps: %v", err)
		return
	}
	ws.availableMaps = maps
}

// sendAction sends a move or lifecycle action for the active session
func (g *Game) sendAction(action string) {
	if len(g.sessions) == 0 {
		return
	}
	session := g.sessions[g.activeSession]

	var snap *Snapshot
	var err error
	switch action {
	case "up", "down", "left", "right":
		snap, err = g.api.Move(session.sessionID, action)
	default:
		snap, err = g.api.Action(session.sessionID, action)
	}
	if err != nil {
		g.stateMutex.Lock()
		session.lastError = err.Error()
		g.stateMutex.Unlock()
		return
	}
	g.applySnapshot(session, snap)
}

// togglePlay starts, pauses or resumes the active session
func (g *Game) togglePlay() {
	if len(g.sessions) == 0 {
		return
	}
	g.stateMutex.RLock()
	state := ""
	if s := g.sessions[g.activeSession].state; s != nil {
		state = s.State
	}
	g.stateMutex.RUnlock()

	switch state {
	case "not_started":
		g.sendAction("start")
	case "running":
		g.sendAction("pause")
	case "suspended":
		g.sendAction("resume")
	case "won", "lost":
		g.sendAction("reset")
	}
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < totalItems-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	// Toggle selection with Space
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && ws.cursorPos < totalItems {
		sessionID := ws.availableSessions[ws.cursorPos].ID
		if g.selectedSessions[sessionID] {
			delete(g.selectedSessions, sessionID)
		} else {
			g.selectedSessions[sessionID] = true
		}
	}

	// Cycle through maps with Tab; past the last one means the default map
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableMaps) > 0 {
		next := 0
		for i, m := range ws.availableMaps {
			if m.MapID == ws.newSessionMap {
				next = i + 1
				break
			}
		}
		if next >= len(ws.availableMaps) {
			ws.newSessionMap = ""
		} else {
			ws.newSessionMap = ws.availableMaps[next].MapID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		created, err := g.api.CreateSession(ws.newSessionMap)
		if err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		} else {
			g.selectedSessions[created.ID] = true
			g.loadWelcomeData()
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if len(g.selectedSessions) == 0 {
			ws.errorMsg = "Please select at least one session"
		} else {
			for sessionID := range g.selectedSessions {
				g.addSession(sessionID)
			}
			g.selectedSessions = make(map[string]bool)
			g.currentScreen = ScreenGame
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.currentScreen = ScreenWelcome
			g.loadWelcomeData()
		}
		return nil
	}

	g.stateMutex.Lock()
	for _, session := range g.sessions {
		if session.animationTime < 1.0 {
			session.animationTime = float64(time.Since(session.moveStartTime)) / float64(animationDuration)
			if session.animationTime > 1.0 {
				session.animationTime = 1.0
			}
		}
	}
	g.stateMutex.Unlock()

	// Poll sessions without a WebSocket
	for _, session := range g.sessions {
		g.stateMutex.RLock()
		stale := session.wsConn == nil && time.Since(session.lastUpdate) > 300*time.Millisecond
		g.stateMutex.RUnlock()
		if stale {
			g.fetchGameState(session)
		}
	}

	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			if idx := int(i - ebiten.Key1); idx < len(g.sessions) {
				g.activeSession = idx
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(g.sessions) < 9 {
		g.addSession("")
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.sendAction("up")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.sendAction("down")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.sendAction("left")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.sendAction("right")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePlay()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.sendAction("tick")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sendAction("reset")
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== MAZE CHASE - SESSION SELECT ===", 240, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}
	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20
	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, s := range ws.availableSessions {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}
		mark := "[ ]"
		if g.selectedSessions[s.ID] {
			mark = "[x]"
		}
		status := ""
		if s.Snapshot != nil {
			status = fmt.Sprintf("%s score:%d left:%d", s.Snapshot.State, s.Snapshot.Score, s.Snapshot.RemainingPellets)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s%s %s (%s) %s", cursor, mark, s.ID, s.MapName, status), 20, y)
		y += 18
	}

	y += 12
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20
	selected := ws.newSessionMap
	if selected == "" {
		selected = "(default)"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Map: %s", selected), 20, y)
	y += 20
	for _, m := range ws.availableMaps {
		marker := "  "
		if m.MapID == ws.newSessionMap {
			marker = "* "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s (%d ghosts, %d pellets)", marker, m.MapID, m.Description, m.Ghosts, m.Pellets), 20, y)
		y += 18
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	for _, line := range []string{
		"  ↑/↓      - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle map for new session",
		"  N        - Create new session with selected map",
		"  ENTER    - Play selected sessions",
		"  F5       - Refresh",
	} {
		y += 18
		ebitenutil.DebugPrintAt(screen, line, 20, y)
	}
}

// drawGameScreen renders the active session's board
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0, 0, 0, 255})

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	g.drawSessionStats(screen)

	session := g.sessions[g.activeSession]
	snap := session.state
	if snap == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", 10, headerHeight)
		return
	}

	size := float32(cellSize)
	if fit := float32(screenWidth-20) / float32(max(snap.Width, 1)); fit < size {
		size = fit
	}
	if fit := float32(screenHeight-headerHeight-40) / float32(max(snap.Height, 1)); fit < size {
		size = fit
	}
	offsetX := (float32(screenWidth) - size*float32(snap.Width)) / 2
	offsetY := float32(headerHeight + 10)

	for y, row := range snap.Cells {
		for x, cell := range row {
			px, py := offsetX+float32(x)*size, offsetY+float32(y)*size
			if cell.Square == "wall" {
				vector.DrawFilledRect(screen, px, py, size, size, wallColor, false)
				continue
			}
			vector.DrawFilledRect(screen, px, py, size, size, groundColor, false)
			for _, o := range cell.Occupants {
				if o == "pellet" {
					vector.DrawFilledCircle(screen, px+size/2, py+size/2, size/8, pelletColor, true)
				}
			}
		}
	}

	for _, ghost := range snap.Ghosts {
		clr, ok := ghostColors[ghost.Name]
		if !ok {
			clr = color.RGBA{200, 200, 200, 255}
		}
		cx := offsetX + float32(ghost.X)*size + size/2
		cy := offsetY + float32(ghost.Y)*size + size/2
		vector.DrawFilledCircle(screen, cx, cy-size/10, size*0.4, clr, true)
		vector.DrawFilledRect(screen, cx-size*0.4, cy-size/10, size*0.8, size*0.45, clr, false)
	}

	if snap.Player != nil {
		t := float32(session.animationTime)
		fx := float32(session.prevPos[0]) + (float32(session.targetPos[0])-float32(session.prevPos[0]))*t
		fy := float32(session.prevPos[1]) + (float32(session.targetPos[1])-float32(session.prevPos[1]))*t
		clr := playerColor
		if snap.State == "lost" {
			clr = color.RGBA{120, 120, 120, 255}
		}
		vector.DrawFilledCircle(screen, offsetX+fx*size+size/2, offsetY+fy*size+size/2, size*0.42, clr, true)
	}

	switch snap.State {
	case "won":
		ebitenutil.DebugPrintAt(screen, "VICTORY! Press SPACE or R to play again", 260, screenHeight-40)
	case "lost":
		ebitenutil.DebugPrintAt(screen, "CAUGHT! Press SPACE or R to play again", 260, screenHeight-40)
	case "not_started":
		ebitenutil.DebugPrintAt(screen, "Press SPACE to start", 320, screenHeight-40)
	case "suspended":
		ebitenutil.DebugPrintAt(screen, "PAUSED - press SPACE to resume", 290, screenHeight-40)
	}
	ebitenutil.DebugPrintAt(screen, "1-9: Switch | N: New | Arrows/WASD: Move | SPACE: Start/Pause | T: Tick | R: Reset | ESC: Menu", 10, screenHeight-20)
}

// drawSessionStats renders one status line per session in the header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	for idx, session := range g.sessions {
		if idx >= 5 {
			break
		}

		marker := " "
		if idx == g.activeSession {
			marker = ">"
		}
		conn := "POLL"
		if session.wsConn != nil {
			conn = "WS"
		}

		info := fmt.Sprintf("%s [%d] %s [%s]", marker, idx+1, session.sessionID, conn)
		if s := session.state; s != nil {
			info += fmt.Sprintf(" %s SC:%d LEFT:%d MV:%d TK:%d", s.State, s.Score, s.RemainingPellets, s.Moves, s.Ticks)
		}
		if session.lastError != "" {
			info += " ERR: " + session.lastError
		}
		ebitenutil.DebugPrintAt(screen, info, 10, 5+idx*16)
	}
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	if l, err := zap.NewDevelopment(); err == nil {
		logger = l.Sugar()
		defer func() { _ = logger.Sync() }()
	}

	baseURL := os.Getenv("MAZECHASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Accept multiple session IDs as arguments
	game := NewGame(NewAPIClient(baseURL), os.Args[1:])

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Maze Chase - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal(err)
	}
}
