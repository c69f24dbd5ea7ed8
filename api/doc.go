// Package api provides the HTTP REST API of the rule workbench.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session, body {"level_id": "baba"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session with its snapshot
//   - DELETE /api/sessions/{id} - Delete a session
//
// Board:
//   - GET /api/sessions/{id}/rules - Current board and rules (?format=text for plain lines)
//   - POST /api/sessions/{id}/cells - Set a cell, body {"row": 0, "col": 2, "glyph": "*"}
//   - DELETE /api/sessions/{id}/cells/{row}/{col} - Empty a cell
//   - POST /api/sessions/{id}/reset - Restore the board as loaded
//
// Levels:
//   - GET /api/levels - List stored levels
//   - POST /api/levels - Store a level, body {"name": "mine", "source": "..."}
//   - GET /api/levels/{name} - Level source, info and derived rules
//   - POST /api/evaluate - Derive the rules of level text without a session
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws?session={id} - WebSocket rule updates
//
// Edits answer with the rules they added and removed, plus the new
// snapshot, and are pushed to the session's WebSocket clients.
//
// Usage:
//
//	server := api.NewServer(ruleService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as {"error": "message"}. Unknown sessions and levels
// answer 404, malformed levels, glyphs and cells 400.
package api
