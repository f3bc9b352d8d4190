// Package session manages the in-memory game sessions of the maze chase
// server.
//
// Each session owns one engine.Level built from a map definition. Session IDs
// are short, case-insensitive identifiers taken from a random UUID, so they
// are easy to type into an MCP client or a URL.
//
// Usage:
//
//	manager := session.NewManager(log)
//	sess, err := manager.Create("", def, nil)
//	if err != nil {
//		return err
//	}
//	defer manager.Delete(sess.ID)
//
// Deleting a session, or expiring it through CleanupExpiredSessions, stops
// the level's ghost timer.
package session
