// Package service provides the business logic layer for the One-Stroke game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration loading and listing
//   - Stroke submission, preview and reward selection
//   - Turn history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP) and the
// game engine. Each session owns its own engine and an event recorder; engine
// calls for a session are serialized by the session mutex and the events a
// call produced are returned with its result.
//
// Usage:
//
//	sessionMgr := session.NewManager(persistence)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.SubmitPath(ctx, info.ID, []engine.Position{{X: 0, Y: 0}, {X: 1, Y: 0}})
package service
