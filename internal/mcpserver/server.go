// Package mcpserver is the agent-tool front-end. It exposes three tools over
// stdio (open_url, describe_page, execute_plan) against one long-lived page
// session shared across calls. Logging goes to stderr only; stdout carries
// the protocol frames.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
	"github.com/xkilldash9x/marketprobe/internal/store"
)

const (
	serverName    = "marketprobe"
	serverVersion = "0.3.0"
)

// Executor runs a validated plan against a session.
type Executor interface {
	Execute(ctx context.Context, sess schemas.PageSession, plan *schemas.Plan) (*schemas.ExecutionReport, error)
}

// Recorder persists finished runs. Optional.
type Recorder interface {
	SaveRun(ctx context.Context, run store.Run) error
}

// Server hosts the tool handlers over one shared session.
type Server struct {
	logger   *zap.Logger
	session  schemas.PageSession
	exec     Executor
	recorder Recorder
}

// New assembles the agent-tool front-end around an already-acquired session.
func New(logger *zap.Logger, session schemas.PageSession, exec Executor, recorder Recorder) *Server {
	return &Server{
		logger:   logger.Named("mcp"),
		session:  session,
		exec:     exec,
		recorder: recorder,
	}
}

// OpenURLArgs are the arguments for the open_url tool.
type OpenURLArgs struct {
	URL string `json:"url" jsonschema:"The URL to navigate to"`
}

// ExecutePlanArgs are the arguments for the execute_plan tool.
type ExecutePlanArgs struct {
	PlanJSON string `json:"plan_json" jsonschema:"JSON document conforming to the plan schema"`
}

// OpenURL navigates the shared session's page and returns the resulting URL
// with a fixed marker prefix.
func (s *Server) OpenURL(ctx context.Context, req *mcp.CallToolRequest, args OpenURLArgs) (*mcp.CallToolResult, any, error) {
	release, err := s.session.Acquire(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	defer release()

	location, err := s.session.Navigate(ctx, args.URL)
	if err != nil {
		return errorResult(fmt.Errorf("error navigating to %s: %w", args.URL, err)), nil, nil
	}
	return textResult("navigated:" + location), nil, nil
}

// DescribePage returns the structured snapshot of the current page to help a
// plan author target it.
func (s *Server) DescribePage(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, any, error) {
	release, err := s.session.Acquire(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	defer release()

	snap, err := s.session.Describe(ctx)
	if err != nil {
		return errorResult(fmt.Errorf("error describing page: %w", err)), nil, nil
	}
	return jsonResult(snap)
}

// ExecutePlan parses and executes a plan against the shared session. A parse
// failure comes back as a structured {ok:false} payload without touching the
// browser; step-level failures live inside the report.
func (s *Server) ExecutePlan(ctx context.Context, req *mcp.CallToolRequest, args ExecutePlanArgs) (*mcp.CallToolResult, any, error) {
	plan, err := schemas.ParsePlan([]byte(args.PlanJSON))
	if err != nil {
		return jsonResult(map[string]any{"ok": false, "error": err.Error()})
	}

	started := time.Now().UTC()
	report, err := s.exec.Execute(ctx, s.session, plan)
	if err != nil {
		return errorResult(err), nil, nil
	}
	s.record(report, started)
	return jsonResult(report)
}

// record persists the run when a recorder is configured; best-effort.
func (s *Server) record(report *schemas.ExecutionReport, started time.Time) {
	if s.recorder == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run := store.Run{
		ID:         uuid.New().String(),
		Report:     report,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	if err := s.recorder.SaveRun(saveCtx, run); err != nil {
		s.logger.Warn("Failed to record run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// Run serves the tools over stdio until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "open_url",
		Description: "Navigate the browser to a URL",
	}, s.OpenURL)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "describe_page",
		Description: "Return a structured snapshot of the current page (buttons, links, inputs, listing-table hint)",
	}, s.DescribePage)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "execute_plan",
		Description: "Execute a structured plan of browser steps and return per-step results",
	}, s.ExecutePlan)

	s.logger.Info("Agent-tool server ready on stdio",
		zap.String("name", serverName), zap.String("version", serverVersion))
	return mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

func jsonResult(body any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return textResult(string(data)), nil, nil
}
