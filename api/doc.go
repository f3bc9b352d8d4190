// Package api provides the HTTP REST API of the maze chase game server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"map_id": "classic"}, optional)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Level Lifecycle:
//   - POST /api/sessions/{id}/start - Start or resume the level
//   - POST /api/sessions/{id}/pause - Suspend a running level
//   - POST /api/sessions/{id}/resume - Resume a suspended level
//   - POST /api/sessions/{id}/reset - Rebuild the level from its map
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/move - Move the player ({"direction": "up"})
//   - POST /api/sessions/{id}/tick - Advance the ghosts one step by hand
//
// Maps:
//   - GET /api/maps - List available maps
//   - GET /api/maps/{name} - Get one map definition
//
// Other:
//   - GET /healthz - Liveness probe
//   - GET /ws?session={id} - WebSocket snapshot stream
//
// Errors are returned as {"error": "..."} with 400 for bad input, 404 for
// unknown sessions or maps and 409 for lifecycle transitions the level does
// not allow.
package api
