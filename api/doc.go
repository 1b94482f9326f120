// Package api provides the HTTP REST API for One Stroke sessions.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions             - Create a session {config_id, seed}
//   - GET    /api/sessions             - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET    /api/sessions/unified     - Side by side run summary (?sessionIds=a,b or ?configName=x)
//   - GET    /api/sessions/{id}        - Get a session
//   - DELETE /api/sessions/{id}        - Delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state        - Current game state
//   - POST /api/sessions/{id}/path         - Submit a stroke {"path":[{"x":0,"y":0},...]}
//   - POST /api/sessions/{id}/preview      - Simulate a stroke without applying it
//   - POST /api/sessions/{id}/reward       - Pick an offered reward {"index":n}
//   - POST /api/sessions/{id}/restart      - Start a new run with the same config
//   - GET  /api/sessions/{id}/history      - Turn history (?page&limit&order)
//   - GET  /api/sessions/{id}/cells/{x}/{y} - Describe one board cell (turns_until_action 1 = next enemy turn)
//
// Configuration:
//   - GET  /api/configs        - List configurations
//   - POST /api/configs        - Save a configuration
//   - GET  /api/configs/{name} - Get a configuration
//
// Other:
//   - GET /ws?session={id} - WebSocket stream of state updates and game events
//   - GET /health          - Liveness check
//
// A rejected stroke is not an HTTP error: the response is 200 with
// "accepted": false and the reason.
//
// Errors are returned as JSON:
//
//	{"error": "error message"}
//
// Unknown sessions map to 404, actions in the wrong phase to 409, bad reward
// indexes or coordinates to 400.
package api
