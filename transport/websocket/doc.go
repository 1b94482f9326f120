// Package websocket provides WebSocket transport for the One-Stroke game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every accepted stroke or reward choice
//   - Forwarding of engine events (tile effects, enemy actions, stage clears)
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub owns all connections. Registration, removal and broadcast all
// go through the hub's Run loop; each client has a read pump and a write pump
// goroutine.
//
// Message Protocol:
//
// The server only pushes; client frames are read and discarded. Each frame is
// one JSON Message:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "enemy_action", "data": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Shutdown:
//
// Cancelling the context given to Run closes every client and makes later
// broadcasts no-ops.
package websocket
