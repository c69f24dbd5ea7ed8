// Package mcp exposes the rule workbench to AI agents over the Model Context
// Protocol.
//
// The Client registers one MCP tool per workbench operation and answers each
// call by calling the REST API, so a stdio MCP process can drive a server
// running elsewhere.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - get_rules: board, rules and contributing statements
//   - set_cell, clear_cell, reset_board: board edits with rule differences
//   - list_levels, evaluate_level: level library and one-shot evaluation
//   - rule_instructions: level format and glyph legend
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
