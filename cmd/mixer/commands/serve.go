package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goblinsan/mixer/pkg/engine"
	"github.com/goblinsan/mixer/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

// JSON-RPC 2.0 types for MCP protocol
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCP protocol types
type mcpInitializeResult struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    mcpCapabilities `json:"capabilities"`
	ServerInfo      mcpServerInfo   `json:"serverInfo"`
}

type mcpCapabilities struct {
	Tools *struct{} `json:"tools,omitempty"`
}

type mcpServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type mcpToolsListResult struct {
	Tools []mcpToolDef `json:"tools"`
}

type mcpToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type mcpToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type mcpToolCallResult struct {
	Content []mcpContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

type mcpContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolBackend is the read-only surface the MCP tools use. *engine.Engine
// satisfies it.
type toolBackend interface {
	ListTickets(ctx context.Context, label, status string) ([]types.Ticket, error)
	Load(ctx context.Context, identifier string) (*types.Ticket, error)
	ListBacklog(ctx context.Context) ([]types.BacklogItem, error)
	LoadBacklogItem(ctx context.Context, number int) (*types.BacklogItem, error)
}

var _ toolBackend = (*engine.Engine)(nil)

type toolArgs struct {
	Label      string `json:"label"`
	Status     string `json:"status"`
	Identifier string `json:"identifier"`
	Number     int    `json:"number"`
}

var mcpTools = []mcpToolDef{
	{
		Name:        "list_tickets",
		Description: "Lists goals or plans in Linear. Without a status, returns draft, todo, doing and done tickets.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "label": {"type": "string", "enum": ["goal", "plan"]},
    "status": {"type": "string", "description": "draft, todo, doing, done, closed or a Linear state name"}
  },
  "required": ["label"]
}`),
	},
	{
		Name:        "load_ticket",
		Description: "Loads one goal or plan with its parent and children.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "identifier": {"type": "string", "description": "Linear identifier such as SYS-42"}
  },
  "required": ["identifier"]
}`),
	},
	{
		Name:        "list_backlog",
		Description: "Lists open GitHub backlog issues, pull requests excluded.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	},
	{
		Name:        "load_backlog_item",
		Description: "Loads one GitHub backlog issue by number.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "number": {"type": "integer"}
  },
  "required": ["number"]
}`),
	},
	{
		Name:        "analyze_goal",
		Description: "Suggests implementation areas and plan steps for a goal from its title and description.",
		InputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "identifier": {"type": "string"}
  },
  "required": ["identifier"]
}`),
	},
}

func handleMCPRequest(ctx context.Context, backend toolBackend, req jsonRPCRequest) jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: mcpInitializeResult{
				ProtocolVersion: "2024-11-05",
				Capabilities:    mcpCapabilities{Tools: &struct{}{}},
				ServerInfo:      mcpServerInfo{Name: "mixer", Version: Version},
			},
		}

	case "notifications/initialized":
		// Client acknowledgment, no response needed (notification, no ID)
		return jsonRPCResponse{}

	case "tools/list":
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  mcpToolsListResult{Tools: mcpTools},
		}

	case "tools/call":
		return handleToolCall(ctx, backend, req)

	default:
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonRPCError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)},
		}
	}
}

func handleToolCall(ctx context.Context, backend toolBackend, req jsonRPCRequest) jsonRPCResponse {
	var params mcpToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return jsonRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &jsonRPCError{Code: -32602, Message: fmt.Sprintf("invalid params: %v", err)},
		}
	}

	var args toolArgs
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return toolFailure(req.ID, fmt.Sprintf("failed to parse arguments: %v", err))
		}
	}

	var (
		result any
		err    error
	)
	switch params.Name {
	case "list_tickets":
		if args.Label != types.LabelGoal && args.Label != types.LabelPlan {
			return toolFailure(req.ID, fmt.Sprintf("label must be %q or %q", types.LabelGoal, types.LabelPlan))
		}
		result, err = backend.ListTickets(ctx, args.Label, args.Status)
	case "load_ticket":
		if args.Identifier == "" {
			return toolFailure(req.ID, "identifier is required")
		}
		result, err = backend.Load(ctx, args.Identifier)
	case "list_backlog":
		result, err = backend.ListBacklog(ctx)
	case "load_backlog_item":
		if args.Number <= 0 {
			return toolFailure(req.ID, "number must be a positive issue number")
		}
		result, err = backend.LoadBacklogItem(ctx, args.Number)
	case "analyze_goal":
		if args.Identifier == "" {
			return toolFailure(req.ID, "identifier is required")
		}
		var goal *types.Ticket
		if goal, err = backend.Load(ctx, args.Identifier); err == nil {
			result = struct {
				Goal        string              `json:"goal"`
				Suggestions []engine.Suggestion `json:"suggestions"`
				Outline     []engine.Suggestion `json:"outline"`
			}{goal.Identifier, engine.Analyze(goal), engine.PlanOutline}
		}
	default:
		return toolFailure(req.ID, fmt.Sprintf("unknown tool: %s", params.Name))
	}
	if err != nil {
		return toolFailure(req.ID, fmt.Sprintf("%s failed: %v", params.Name, err))
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return toolFailure(req.ID, fmt.Sprintf("failed to encode result: %v", err))
	}
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: mcpToolCallResult{
			Content: []mcpContent{{Type: "text", Text: string(resultJSON)}},
		},
	}
}

func toolFailure(id json.RawMessage, msg string) jsonRPCResponse {
	return jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: mcpToolCallResult{
			Content: []mcpContent{{Type: "text", Text: msg}},
			IsError: true,
		},
	}
}

// serveMCP answers newline-delimited JSON-RPC requests from r until EOF.
func serveMCP(ctx context.Context, backend toolBackend, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			resp := jsonRPCResponse{
				JSONRPC: "2.0",
				Error:   &jsonRPCError{Code: -32700, Message: fmt.Sprintf("parse error: %v", err)},
			}
			if err := encoder.Encode(resp); err != nil {
				return err
			}
			continue
		}

		resp := handleMCPRequest(ctx, backend, req)
		// Notifications (no ID) don't get a response
		if resp.JSONRPC == "" {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}

	return scanner.Err()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Run the MCP server so AI agents can read goals, plans and backlog issues
via the Model Context Protocol over stdin/stdout. Backlog tools are available
when GitHub is configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(linearService | optionalGitHub)
		if err != nil {
			return err
		}
		return serveMCP(cmd.Context(), a.engine(false), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}
