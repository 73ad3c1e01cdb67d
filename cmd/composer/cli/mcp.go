package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/deepnoodle-ai/composer/log"
	"github.com/deepnoodle-ai/composer/section"
	wontoncli "github.com/deepnoodle-ai/wonton/cli"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerMCPCommand(application *wontoncli.App, a *app, version string) {
	application.Command("mcp").
		Description("Serve composer tools over MCP on stdin/stdout").
		NoArgs().
		Run(func(ctx *wontoncli.Context) error {
			a.parseGlobalFlags(ctx)
			goCtx, stop := signal.NotifyContext(log.WithLogger(context.Background(), a.logger), os.Interrupt)
			defer stop()
			return a.serveMCP(goCtx, version)
		})
}

// serveMCP serves the composer tools on the app's stdin and stdout until
// ctx is done or input ends.
func (a *app) serveMCP(ctx context.Context, version string) error {
	stdio := server.NewStdioServer(newMCPServer(a, version))
	return stdio.Listen(ctx, a.stdin, a.stdout)
}

func newMCPServer(a *app, version string) *server.MCPServer {
	s := server.NewMCPServer("composer", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(mcp.NewTool("merge_bundles",
		mcp.WithDescription("Merge configuration bundle directories into one CLAUDE.md document"),
		mcp.WithArray("dirs",
			mcp.Required(),
			mcp.Description("Bundle directories in precedence order"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("exclude",
			mcp.Description("Globs of entity files to skip, relative to each bundle"),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("entities",
			mcp.Description("Also return the merged agents, commands, hooks, and settings"),
		),
	), a.handleMergeBundles)
	s.AddTool(mcp.NewTool("normalize_title",
		mcp.WithDescription("Return the merge key a section title is grouped under"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Section heading text"),
		),
	), a.handleNormalizeTitle)
	return s
}

func (a *app) handleMergeBundles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dirs, err := req.RequireStringSlice("dirs")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(dirs) == 0 {
		return mcp.NewToolResultError("at least one bundle directory is required"), nil
	}
	out, err := a.load(dirs, req.GetStringSlice("exclude", nil))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("merge failed", err), nil
	}
	if !req.GetBool("entities", false) {
		return mcp.NewToolResultText(out.Markdown), nil
	}

	result := map[string]any{
		"markdown": out.Markdown,
		"agents":   out.Agents,
		"commands": out.Commands,
		"hooks":    out.Hooks,
		"settings": out.Settings,
	}
	if len(out.Diagnostics) > 0 {
		var warnings []string
		for _, d := range out.Diagnostics {
			warnings = append(warnings, d.String())
		}
		result["warnings"] = warnings
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (a *app) handleNormalizeTitle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key := section.NormalizeTitle(title)
	if key == "" {
		return mcp.NewToolResultError(fmt.Sprintf("title %q has no letters or digits", title)), nil
	}
	return mcp.NewToolResultText(key), nil
}
