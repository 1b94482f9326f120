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

	"github.com/inconshreveable/log15/v3"
	"github.com/jpillora/backoff"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/onestroke/game/engine"
	"github.com/wricardo/onestroke/game/service"
)

var log = log15.New("module", "mcp")

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"One Stroke",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`One Stroke - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Each turn draw ONE stroke across the 5x5 board, starting on your own cell (@)
and ending on an enemy. Tiles along the stroke charge your attack. Clear
stages, pick rewards, survive as deep as you can.

AVAILABLE TOOLS:
- create_session: Create a new run (optional config_id and seed)
- list_sessions / get_session: Inspect runs
- game_state: Board, player stats, enemy intents and threat level
- preview_path: Simulate a stroke without committing it
- submit_path: Commit a stroke - requires intent explanation
- choose_reward: Pick one of the offered rewards after a stage clear
- restart_run: Start over with the same config
- turn_history: Past strokes with pagination
- list_configs: Available run configurations
- describe_cell: Details of one cell (enemy intent, tile value)
- game_instructions: Full rules and strategy notes

NOTE: The 'intent' parameter on submit_path serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": `Ordered cells of the stroke, first = your position, last = an enemy. Items are {"x":0,"y":0} objects or [x,y] pairs. A string like "0,0 1,0 2,0" is also accepted.`,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x": map[string]interface{}{"type": "integer"},
				"y": map[string]interface{}{"type": "integer"},
			},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new run with optional config selection and RNG seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use (see list_configs). Optional",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "RNG seed for a reproducible run. Optional",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active runs",
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

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, player stats, enemies with their next action, and a threat assessment",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "preview_path",
		Description: "Simulate a stroke: attack power, gold and HP deltas, enemies defeated. Nothing is changed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"path":       pathProperty(),
			},
			Required: []string{"session_id", "path"},
		},
	}, c.handlePreviewPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_path",
		Description: "Commit a stroke. Invalid strokes are rejected with a reason and cost nothing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"path":       pathProperty(),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Explain what this stroke is meant to achieve",
				},
			},
			Required: []string{"session_id", "path", "intent"},
		},
	}, c.handleSubmitPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "choose_reward",
		Description: "Pick one of the rewards offered after clearing a stage",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "0-based index into the offered rewards",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleChooseReward)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_run",
		Description: "Start a new run with the same configuration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn_history",
		Description: "Get past strokes with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (1-based, default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Turns per page (default 20)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "asc or desc (default desc, newest first)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTurnHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available run configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules and strategy notes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one board cell: tile, value, enemy stats and its next action. 'in 1 turn' means it fires after your next stroke",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column, 0-4)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row, 0-4)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// WaitReady polls the API health endpoint until it answers or ctx ends
func (c *Client) WaitReady(ctx context.Context) error {
	b := &backoff.Backoff{
		Min:    20 * time.Millisecond,
		Max:    time.Second,
		Factor: 2,
		Jitter: true,
	}
	for {
		err := c.apiCall(ctx, "GET", "/health", nil, nil)
		if err == nil {
			return nil
		}
		d := b.Duration()
		log.Debug("api not ready", "url", c.baseURL, "attempt", b.Attempt(), "retry_in", d, "err", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("api at %s not ready: %w", c.baseURL, err)
		case <-time.After(d):
		}
	}
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

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID := cast.ToString(args["config_id"]); configID != "" {
		body["config_id"] = configID
	}
	if seed := cast.ToInt64(args["seed"]); seed != 0 {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nSeed: %d\n\n", session.ID, session.ConfigName, session.Seed)
	if session.GameState != nil {
		result += formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&sb, "- %s (Config: %s, Created: %s", s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
		if s.GameState != nil {
			fmt.Fprintf(&sb, ", Stage %d, %s", s.GameState.Stage, s.GameState.Phase)
		}
		sb.WriteString(")\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePreviewPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	path, err := parsePath(args["path"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var preview engine.PathPreview
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/preview"), map[string]interface{}{"path": path}, &preview); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPreview(&preview)), nil
}

func (c *Client) handleSubmitPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	path, err := parsePath(args["path"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// intent is for the caller's own reasoning
	log.Debug("submit_path", "session", sessionID, "len", len(path), "intent", cast.ToString(args["intent"]))

	var result service.TurnResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/path"), map[string]interface{}{"path": path}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTurnResult(&result)), nil
}

func (c *Client) handleChooseReward(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	index, err := cast.ToIntE(args["index"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("index must be an integer: %v", err)), nil
	}

	var result service.RewardResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reward"), map[string]int{"index": index}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRewardResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	if order := cast.ToString(args["order"]); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&sb, "• %s (config_id: %s)\n  %s\n  Stage entries: %d, Boss every %d stages, Player HP: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Stages, config.BossStageInterval, config.PlayerMaxHP)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	x, errX := cast.ToIntE(args["x"])
	y, errY := cast.ToIntE(args["y"])
	if errX != nil || errY != nil {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}
	if x < 0 || x >= engine.BoardSize || y < 0 || y >= engine.BoardSize {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. The board is %dx%d (0-%d for both x and y)",
			x, y, engine.BoardSize, engine.BoardSize, engine.BoardSize-1)), nil
	}

	var info engine.CellInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", x, y)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCellInfo(&info)), nil
}

// parsePath accepts the stroke shapes agents tend to send: a list of
// {"x","y"} objects, a list of [x,y] pairs, or a "x,y x,y" string.
func parsePath(raw interface{}) ([]engine.Position, error) {
	if s, ok := raw.(string); ok {
		return parsePathString(s)
	}

	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("path must be a list of cells: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("path must not be empty")
	}

	path := make([]engine.Position, 0, len(items))
	for i, item := range items {
		var x, y int
		var errX, errY error
		switch v := item.(type) {
		case map[string]interface{}:
			x, errX = cast.ToIntE(v["x"])
			y, errY = cast.ToIntE(v["y"])
		case string:
			cells, err := parsePathString(v)
			if err != nil || len(cells) != 1 {
				return nil, fmt.Errorf("path[%d]: expected one \"x,y\" cell, got %q", i, v)
			}
			path = append(path, cells[0])
			continue
		default:
			pair, err := cast.ToIntSliceE(v)
			if err != nil || len(pair) != 2 {
				return nil, fmt.Errorf("path[%d]: expected {x,y} or [x,y], got %v", i, item)
			}
			x, y = pair[0], pair[1]
		}
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("path[%d]: x and y must be integers", i)
		}
		path = append(path, engine.Position{X: x, Y: y})
	}
	return path, nil
}

func parsePathString(s string) ([]engine.Position, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';' || r == '|' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("path must not be empty")
	}
	path := make([]engine.Position, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "()[]")
		parts := strings.Split(f, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad cell %q, want x,y", f)
		}
		x, errX := cast.ToIntE(strings.TrimSpace(parts[0]))
		y, errY := cast.ToIntE(strings.TrimSpace(parts[1]))
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("bad cell %q, want integers", f)
		}
		path = append(path, engine.Position{X: x, Y: y})
	}
	return path, nil
}
