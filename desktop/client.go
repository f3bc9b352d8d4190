package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// CellView is one square of a snapshot
type CellView struct {
	Square    string   `json:"square"`
	Occupants []string `json:"occupants,omitempty"`
}

// UnitView is a player or ghost in a snapshot
type UnitView struct {
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Direction string `json:"direction,omitempty"`
}

// Snapshot mirrors the server's level snapshot
type Snapshot struct {
	Width            int          `json:"width"`
	Height           int          `json:"height"`
	State            string       `json:"state"`
	Score            int          `json:"score"`
	RemainingPellets int          `json:"remaining_pellets"`
	Ticks            int          `json:"ticks"`
	Moves            int          `json:"moves"`
	Rows             []string     `json:"rows"`
	Cells            [][]CellView `json:"cells"`
	Player           *UnitView    `json:"player,omitempty"`
	Ghosts           []UnitView   `json:"ghosts"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string    `json:"session_id"`
	Event     string    `json:"event"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID             string    `json:"id"`
	MapName        string    `json:"map_name"`
	CreatedAt      time.Time `json:"created_at"`
	TickIntervalMS int       `json:"tick_interval_ms"`
	Snapshot       *Snapshot `json:"snapshot"`
}

// MapListItem represents a map the server can load
type MapListItem struct {
	MapID       string `json:"map_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Ghosts      int    `json:"ghosts"`
	Pellets     int    `json:"pellets"`
}

// APIClient talks to the game server's REST and WebSocket endpoints
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *APIClient) call(method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(data))
		}
	}
	return nil
}

func (c *APIClient) ListSessions() ([]SessionListItem, error) {
	var resp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	err := c.call("GET", "/api/sessions", nil, &resp)
	return resp.Sessions, err
}

func (c *APIClient) ListMaps() ([]MapListItem, error) {
	var maps []MapListItem
	err := c.call("GET", "/api/maps", nil, &maps)
	return maps, err
}

func (c *APIClient) CreateSession(mapID string) (*SessionListItem, error) {
	body := map[string]string{}
	if mapID != "" {
		body["map_id"] = mapID
	}
	var session SessionListItem
	if err := c.call("POST", "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *APIClient) State(sessionID string) (*Snapshot, error) {
	var snap Snapshot
	if err := c.call("GET", "/api/sessions/"+sessionID+"/state", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Action posts start, pause, resume, reset or tick and returns the new snapshot
func (c *APIClient) Action(sessionID, action string) (*Snapshot, error) {
	var resp struct {
		Snapshot *Snapshot `json:"snapshot"`
	}
	if err := c.call("POST", "/api/sessions/"+sessionID+"/"+action, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Snapshot, nil
}

func (c *APIClient) Move(sessionID, direction string) (*Snapshot, error) {
	var resp struct {
		Snapshot *Snapshot `json:"snapshot"`
	}
	if err := c.call("POST", "/api/sessions/"+sessionID+"/move", map[string]string{"direction": direction}, &resp); err != nil {
		return nil, err
	}
	return resp.Snapshot, nil
}

// Dial opens the live update stream for a session
func (c *APIClient) Dial(sessionID string) (*websocket.Conn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	return conn, err
}
