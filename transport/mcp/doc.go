// Package mcp exposes the maze chase game to AI agents over the Model
// Context Protocol.
//
// The Client is a thin MCP server that proxies every tool call to the REST
// API, so an agent and a browser watching /ws share the same sessions.
//
// MCP Tools:
//   - create_session: Create a session, optionally on a named map
//   - list_sessions / get_session: Inspect sessions
//   - start_game / pause_game / resume_game / reset_game: Level lifecycle
//   - game_state: Current board rows, score and unit positions
//   - move: Move the player one square
//   - tick: Advance the ghosts by hand (maps with manual ticks)
//   - describe_cell: What stands on one square
//   - list_maps: Available maps
//   - game_instructions: Rules and strategy hints
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: the server's /mcp endpoint feeds JSON-RPC bodies to
//     GetMCPServer().HandleMessage
package mcp
