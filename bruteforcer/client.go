package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/mazechase/game/board"
	"github.com/wricardo/mcp-training/mazechase/game/engine"
	"github.com/wricardo/mcp-training/mazechase/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// lifecycleResponse is the body of start, pause, resume and reset
type lifecycleResponse struct {
	State    engine.State     `json:"state"`
	Snapshot *engine.Snapshot `json:"snapshot"`
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, errResp.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// CreateSession starts a new session on mapID, or the default map when empty
func (c *Client) CreateSession(ctx context.Context, mapID string) (*service.SessionInfo, error) {
	body := map[string]string{}
	if mapID != "" {
		body["map_id"] = mapID
	}

	var session service.SessionInfo
	if err := c.do(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return &session, nil
}

// GetSession loads the current session, used to resume an existing one
func (c *Client) GetSession(ctx context.Context) (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(ctx, "GET", "/api/sessions/"+c.sessionID, nil, &session); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// GetState returns the latest snapshot
func (c *Client) GetState(ctx context.Context) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := c.do(ctx, "GET", c.sessionPath("state"), nil, &snap); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &snap, nil
}

func (c *Client) Start(ctx context.Context) (*engine.Snapshot, error) {
	return c.lifecycle(ctx, "start")
}

func (c *Client) Reset(ctx context.Context) (*engine.Snapshot, error) {
	return c.lifecycle(ctx, "reset")
}

func (c *Client) lifecycle(ctx context.Context, action string) (*engine.Snapshot, error) {
	var resp lifecycleResponse
	if err := c.do(ctx, "POST", c.sessionPath(action), nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return resp.Snapshot, nil
}

func (c *Client) Move(ctx context.Context, dir board.Direction) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, "POST", c.sessionPath("move"), map[string]string{"direction": string(dir)}, &result); err != nil {
		return nil, fmt.Errorf("execute move: %w", err)
	}
	return &result, nil
}

func (c *Client) Tick(ctx context.Context) (*service.TickResult, error) {
	var result service.TickResult
	if err := c.do(ctx, "POST", c.sessionPath("tick"), nil, &result); err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	return &result, nil
}

func (c *Client) sessionPath(action string) string {
	return fmt.Sprintf("/api/sessions/%s/%s", c.sessionID, action)
}
