package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listFeaturesTool defines the list_features MCP tool.
var listFeaturesTool = mcp.NewTool("list_features",
	mcp.WithDescription("List the sellable website features with their pricing, dependencies and conflicts."),
	mcp.WithString("website_type",
		mcp.Description("Only list features offered for this website type, e.g. ecommerce or portfolio"),
	),
)

// checkFeaturesTool defines the check_features MCP tool.
var checkFeaturesTool = mcp.NewTool("check_features",
	mcp.WithDescription("Check a feature selection for conflicts and missing dependencies."),
	mcp.WithString("features",
		mcp.Required(),
		mcp.Description("Comma-separated feature ids"),
	),
)

// priceFeaturesTool defines the price_features MCP tool.
var priceFeaturesTool = mcp.NewTool("price_features",
	mcp.WithDescription("Quote a feature selection. Without a tier, the package tier is derived from the website type and selection."),
	mcp.WithString("features",
		mcp.Required(),
		mcp.Description("Comma-separated feature ids"),
	),
	mcp.WithString("tier",
		mcp.Description("Package tier to price in"),
		mcp.Enum("starter", "professional", "custom"),
	),
	mcp.WithString("website_type",
		mcp.Description("Website type used to derive the tier when none is given"),
	),
)

// progressForTool defines the progress_for MCP tool.
var progressForTool = mcp.NewTool("progress_for",
	mcp.WithDescription("Interview progress percentage after a number of answered questions."),
	mcp.WithNumber("question_count",
		mcp.Required(),
		mcp.Description("Number of answered questions"),
	),
	mcp.WithBoolean("complete",
		mcp.Description("Whether the interview was judged complete"),
	),
)
