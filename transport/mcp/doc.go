// Package mcp exposes One Stroke to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package, and the JSON answer is rendered as plain text an agent can
// read (board drawing, threat line, reward offers).
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, player stats, enemy intents, threat level
//   - preview_path: simulate a stroke without applying it
//   - submit_path: commit a stroke (with an intent note)
//   - choose_reward: pick an offered reward by index
//   - restart_run: new run with the same config
//   - turn_history: paginated stroke log
//   - list_configs, describe_cell, game_instructions
//
// Paths may be sent as a list of {"x","y"} objects, a list of [x,y] pairs or
// a "x,y x,y" string. Numeric arguments are coerced, so "3" and 3.0 both work.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp on the main server, handled by HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.WaitReady(ctx); err != nil {
//		return err
//	}
//	server.ServeStdio(client.GetMCPServer())
package mcp
