// Package websocket pushes level snapshots to browser clients.
//
// A central Hub owns every connection. Clients join a session with the
// session query parameter when the connection is upgraded, and receive a
// JSON Message for each snapshot the session's level publishes: player
// moves, ghost ticks, state changes and resets.
//
// Outgoing messages look like:
//
//	{"session_id":"1f3a9c2e","event":"snapshot","snapshot":{...}}
//
// Clients do not send commands over the socket; moves go through the REST
// API or the MCP tools, and the resulting snapshot comes back here.
//
// Usage:
//
//	hub := websocket.NewHub(log)
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, maps, hub, log)
//
// Concurrency:
//
// Only the Run goroutine touches the client registry. BroadcastSnapshot is
// called from level timer goroutines and never blocks: when the hub falls
// behind, snapshots are dropped and the next one catches the client up.
package websocket
