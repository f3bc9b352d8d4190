// Package service provides the business logic layer for the maze chase game.
//
// The service package implements:
//   - Multi-session game management
//   - Map loading through a ConfigManager
//   - Level lifecycle (start, pause, resume, reset) and player moves
//   - Snapshot publication to a Broadcaster
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads map definitions.
// Broadcaster receives every snapshot a level publishes.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns one engine.Level; the level's ghost timer
// publishes snapshots through the change hook the service installs, so
// WebSocket clients see ghost moves without polling.
//
// Usage:
//
//	sessions := session.NewManager(log)
//	maps, _ := config.NewManager("maps", log)
//	svc := service.NewGameService(sessions, maps, hub, log)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	_, _ = svc.Start(ctx, info.ID)
//	result, err := svc.Move(ctx, info.ID, "left")
package service
