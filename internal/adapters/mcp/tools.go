// Package mcp exposes the valuation service as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/budget"
	"github.com/okian/gridiron/internal/domain/forecast"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/scenario"
	"github.com/okian/gridiron/internal/domain/summary"
	"github.com/okian/gridiron/pkg/metrics"
)

// Service is the subset of the valuation service the tools call.
type Service interface {
	ComputeValuation(ctx context.Context, policyID, poolID string, persist bool) (scenario.Snapshot, error)
	RunScenario(ctx context.Context, req service.ScenarioRequest) (scenario.Result, error)
	RunSavedScenario(ctx context.Context, id string) (scenario.Result, error)
	BudgetReport(ctx context.Context) (budget.Report, error)
	Forecast(ctx context.Context, years int) ([]forecast.Year, error)
	SuggestReplacement(ctx context.Context, group string) (model.RosterPlayer, error)
	BeforeAfter(ctx context.Context) (summary.State, error)
}

// ValuationArgs is the input of compute_valuation.
type ValuationArgs struct {
	PolicyID string `json:"policy_id,omitempty" jsonschema:"Policy id (default policy when empty)"`
	PoolID   string `json:"pool_id,omitempty" jsonschema:"Pool id (default pool when empty)"`
	Persist  bool   `json:"persist,omitempty" jsonschema:"Replace the stored snapshot rows with the result"`
}

// ScenarioArgs is the input of run_scenario.
type ScenarioArgs struct {
	ScenarioID string           `json:"scenario_id,omitempty" jsonschema:"Saved scenario id; when set the mutations are ignored"`
	PolicyID   string           `json:"policy_id,omitempty" jsonschema:"Policy id (default policy when empty)"`
	PoolID     string           `json:"pool_id,omitempty" jsonschema:"Pool id (default pool when empty)"`
	Mutations  []map[string]any `json:"mutations,omitempty" jsonschema:"Ordered mutations: {type, player_id, patch|payload}"`
	TopN       int              `json:"top_n,omitempty" jsonschema:"Keep only the N largest dollar swings (0 = all)"`
}

// ForecastArgs is the input of forecast.
type ForecastArgs struct {
	Years int `json:"years,omitempty" jsonschema:"Years to project, 1 to 3 (default 3)"`
}

// ReplacementArgs is the input of suggest_replacement.
type ReplacementArgs struct {
	Group string `json:"group,omitempty" jsonschema:"Position group, e.g. OL (default: demo target group)"`
}

// EmptyArgs is the input of tools without parameters.
type EmptyArgs struct{}

// ToolInfo names a registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server wraps an MCP server with the valuation tools registered.
type Server struct {
	server   *sdk.Server
	registry []ToolInfo
}

// NewServer registers every tool against svc.
func NewServer(svc Service, version string) *Server {
	s := &Server{
		server: sdk.NewServer(&sdk.Implementation{Name: "gridiron", Version: version}, nil),
	}

	addTool(s, &sdk.Tool{
		Name:        "compute_valuation",
		Description: "Value every player under a policy and pool: shares, dollar ranges and confidence",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args ValuationArgs) (*sdk.CallToolResult, any, error) {
		return toolJSON(svc.ComputeValuation(ctx, args.PolicyID, args.PoolID, args.Persist))
	})

	addTool(s, &sdk.Tool{
		Name:        "run_scenario",
		Description: "Apply roster mutations (or a saved scenario) and diff against the baseline valuation",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args ScenarioArgs) (*sdk.CallToolResult, any, error) {
		res, err := runScenario(ctx, svc, args)
		if err != nil {
			return toolError(err), nil, nil
		}
		if args.TopN > 0 && len(res.Diff) > args.TopN {
			res.Diff = res.Diff[:args.TopN]
		}
		return toolJSON(res, nil)
	})

	addTool(s, &sdk.Tool{
		Name:        "budget_status",
		Description: "Budget allocations by position group, remaining headroom and guardrail status",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, _ EmptyArgs) (*sdk.CallToolResult, any, error) {
		return toolJSON(svc.BudgetReport(ctx))
	})

	addTool(s, &sdk.Tool{
		Name:        "forecast",
		Description: "Project graduations, expected transfers, spend and headcount gaps for 1 to 3 years",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args ForecastArgs) (*sdk.CallToolResult, any, error) {
		years := args.Years
		if years == 0 {
			years = forecast.MaxYears
		}
		return toolJSON(svc.Forecast(ctx, years))
	})

	addTool(s, &sdk.Tool{
		Name:        "suggest_replacement",
		Description: "Pick the roster spot a recruit in the group would displace",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args ReplacementArgs) (*sdk.CallToolResult, any, error) {
		return toolJSON(svc.SuggestReplacement(ctx, args.Group))
	})

	addTool(s, &sdk.Tool{
		Name:        "before_after",
		Description: "Recruit what-if report: budget, allocation, forecast and risk deltas with a verdict",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, _ EmptyArgs) (*sdk.CallToolResult, any, error) {
		return toolJSON(svc.BeforeAfter(ctx))
	})

	return s
}

// MCP returns the underlying server, e.g. to connect a transport directly.
func (s *Server) MCP() *sdk.Server { return s.server }

// Tools lists the registered tool names and descriptions.
func (s *Server) Tools() []ToolInfo { return s.registry }

// Handler serves the tools over the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return s.server
	}, &sdk.StreamableHTTPOptions{JSONResponse: true})
}

func addTool[T any](s *Server, tool *sdk.Tool, handler func(context.Context, *sdk.CallToolRequest, T) (*sdk.CallToolResult, any, error)) {
	s.registry = append(s.registry, ToolInfo{Name: tool.Name, Description: tool.Description})
	name := tool.Name
	sdk.AddTool(s.server, tool, func(ctx context.Context, req *sdk.CallToolRequest, args T) (*sdk.CallToolResult, any, error) {
		res, out, err := handler(ctx, req, args)
		outcome := "ok"
		if err != nil || (res != nil && res.IsError) {
			outcome = "error"
		}
		metrics.RecordToolCall(name, outcome)
		return res, out, err
	})
}

func runScenario(ctx context.Context, svc Service, args ScenarioArgs) (scenario.Result, error) {
	if args.ScenarioID != "" {
		return svc.RunSavedScenario(ctx, args.ScenarioID)
	}
	raw, err := json.Marshal(args.Mutations)
	if err != nil {
		return scenario.Result{}, fmt.Errorf("encode mutations: %w", err)
	}
	if args.Mutations == nil {
		raw = []byte("[]")
	}
	mutations, err := scenario.DecodeMutations(raw)
	if err != nil {
		return scenario.Result{}, err
	}
	return svc.RunScenario(ctx, service.ScenarioRequest{
		PolicyID:  args.PolicyID,
		PoolID:    args.PoolID,
		Mutations: mutations,
	})
}

func toolJSON(v any, err error) (*sdk.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{
			&sdk.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
