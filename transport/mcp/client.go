package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/babarules/game/engine"
	"github.com/wricardo/babarules/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Baba Rule Workbench",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Baba Rule Workbench - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Boards are grids of words. Words in a row or column such as BABA IS YOU
form rules. Edit cells and watch which rules appear and disappear.

AVAILABLE TOOLS:
- create_session: Open a level for editing
- list_sessions / get_session: Inspect open sessions
- get_rules: Current board, rules and the statements behind them
- set_cell / clear_cell: Edit one cell, reports rules added and removed
- reset_board: Restore the level as loaded
- list_levels: Stored levels
- evaluate_level: Derive the rules of level text without a session
- rule_instructions: Level format and glyph legend`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func cellProperties(withGlyph bool) map[string]interface{} {
	props := map[string]interface{}{
		"session_id": sessionIDProperty(),
		"row": map[string]interface{}{
			"type":        "integer",
			"description": "Board row, 0-based, not counting the border",
		},
		"col": map[string]interface{}{
			"type":        "integer",
			"description": "Board column, 0-based, not counting the border",
		},
	}
	if withGlyph {
		props["glyph"] = map[string]interface{}{
			"type":        "string",
			"description": "Single glyph to place, see rule_instructions. A space empties the cell.",
		}
	}
	return props
}

func (c *Client) registerTools() {
	// Sessions
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Open a stored level in a new editing session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to open (optional, defaults to the server's default level)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all open sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Board
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_rules",
		Description: "Get the current board, its active rules and the statements that produce them",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_cell",
		Description: "Replace the contents of a cell with one object and report how the rules changed",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(true),
			Required:   []string{"session_id", "row", "col", "glyph"},
		},
	}, c.handleSetCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_cell",
		Description: "Empty a cell and report how the rules changed",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(false),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleClearCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_board",
		Description: "Restore the board to the level as loaded",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the stored levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "evaluate_level",
		Description: "Derive the rules of level text without opening a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Level text: header lines, a blank line, then the '#'-framed board",
				},
			},
			Required: []string{"source"},
		},
	}, c.handleEvaluate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rule_instructions",
		Description: "Explain the level format, the glyph legend and how rules are formed",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRuleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads an integer argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

func sessionPath(sessionID string, rest string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + rest
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	levelID, _ := arguments(request)["level_id"].(string)

	body := map[string]string{}
	if levelID != "" {
		body["level_id"] = levelID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\n\n%s", info.ID, formatSessionInfo(&info))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		rules := 0
		if s.Snapshot != nil {
			rules = len(s.Snapshot.Rules)
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Rules: %d, Created: %s)\n",
			s.ID, s.LevelName, rules, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGetRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/rules"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap, true)), nil
}

func (c *Client) handleSetCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	glyph, _ := args["glyph"].(string)

	row, err := intArg(args, "row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := intArg(args, "col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{"row": row, "col": col, "glyph": glyph}

	var result service.EditResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/cells"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatEditResult(&result)), nil
}

func (c *Client) handleClearCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	row, err := intArg(args, "row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := intArg(args, "col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.EditResult
	path := sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", row, col))
	if err := c.apiCall(ctx, "DELETE", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatEditResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.EditResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatEditResult(&result)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, lvl := range levels {
		fmt.Fprintf(&b, "• %s\n  Board: %dx%d, Objects: %d, Rules: %d\n  Items: %s\n\n",
			lvl.LevelID, lvl.Rows, lvl.Cols, lvl.Objects, lvl.Rules, strings.Join(lvl.ItemTypes, ", "))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, _ := arguments(request)["source"].(string)

	var eval service.Evaluation
	if err := c.apiCall(ctx, "POST", "/api/evaluate", map[string]string{"source": source}, &eval); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	census := eval.Census
	text := fmt.Sprintf("Objects: %d items, %d item words, %d attributes, %d keywords\nStatements: %d\n\n%s",
		census.Items, census.Words, census.Attributes, census.Keywords, census.Statements,
		formatSnapshot(&eval.Snapshot, true))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleRuleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ruleInstructions()), nil
}

func ruleInstructions() string {
	sym := engine.DefaultSymbols()

	var b strings.Builder
	b.WriteString(`Baba Rule Workbench - Instructions

LEVEL FORMAT:
One header line per item type, a lowercase glyph, a space and the name,
then a blank line, then the board framed by '#':

  b baba
  f flag

  #######
  #B=@  #
  #F=*  #
  # b f #
  #######

GLYPH LEGEND:
• lowercase letter: a piece of that item (b = a baba)
• uppercase letter: the word naming that item (B = BABA)
`)

	b.WriteString("• keywords: ")
	for k := 0; k < engine.NumKeywordKinds; k++ {
		if k > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%c %s", sym.KeywordGlyph(engine.KeywordKind(k)), engine.KeywordKind(k))
	}
	b.WriteString("\n• attributes: ")
	for a := 0; a < engine.NumAttrKinds; a++ {
		if a > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%c %s", sym.AttrGlyph(engine.AttrKind(a)), engine.AttrKind(a))
	}

	b.WriteString(`

HOW RULES FORM:
• Read left to right or top to bottom: NOUN [AND NOUN]... IS PREDICATE [AND PREDICATE]...
• Nouns are item words or TEXT. Predicates are item words or attributes.
• NOUN IS ATTRIBUTE grants the attribute. Attributes accumulate.
• NOUN IS NOUN transforms the item. The first target found wins,
  except that X IS X always takes over and freezes X.
• TEXT can carry attributes but never transforms.
• HAS is recognised but forms no rule. A gap or a stray word ends a phrase.

EDITING:
• Rows and columns are 0-based and do not count the '#' border.
• set_cell replaces everything in the cell, clear_cell empties it.
• Every edit reports the rules it added and removed.`)

	return b.String()
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nLevel: %s\nCreated: %s\nLast accessed: %s\n",
		info.ID, info.LevelName,
		info.CreatedAt.Format(time.RFC3339), info.LastAccessedAt.Format(time.RFC3339))
	if info.Snapshot != nil {
		b.WriteString("\n")
		b.WriteString(formatSnapshot(info.Snapshot, false))
	}
	return b.String()
}

func formatSnapshot(snap *engine.Snapshot, withStatements bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Board (%dx%d, %d objects):\n", snap.Rows, snap.Cols, snap.ObjectCount)
	for _, line := range snap.Board {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatRules(snap.Rules))

	if withStatements && len(snap.Statements) > 0 {
		b.WriteString("\nStatements:\n")
		for _, st := range snap.Statements {
			fmt.Fprintf(&b, "  %s\n", st.Text)
		}
	}

	return b.String()
}

func formatRules(rules []string) string {
	if len(rules) == 0 {
		return "Rules: none\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Rules (%d):\n", len(rules))
	for _, r := range rules {
		fmt.Fprintf(&b, "  %s\n", r)
	}
	return b.String()
}

func formatEditResult(result *service.EditResult) string {
	var b strings.Builder

	switch result.Action {
	case "reset":
		b.WriteString("✓ Board reset\n")
	default:
		if result.Cell != nil {
			contents := "empty"
			if len(result.Cell.Objects) > 0 {
				contents = strings.Join(result.Cell.Objects, ", ")
			}
			fmt.Fprintf(&b, "✓ Cell (%d,%d) is now %q (%s)\n",
				result.Cell.Row, result.Cell.Col, result.Cell.Glyph, contents)
		}
	}

	if !result.RulesChanged() {
		b.WriteString("Rules unchanged\n")
	}
	for _, r := range result.Added {
		fmt.Fprintf(&b, "+ %s\n", r)
	}
	for _, r := range result.Removed {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(&result.Snapshot, false))
	return b.String()
}
