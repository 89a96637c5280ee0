package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/scopedoc/internal/features"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	catalog, err := features.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	return NewServer(catalog)
}

// resultText returns the text of a single-content tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"list_features", listFeaturesTool, "list_features"},
		{"check_features", checkFeaturesTool, "check_features"},
		{"price_features", priceFeaturesTool, "price_features"},
		{"progress_for", progressForTool, "progress_for"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.catalog == nil || srv.synth == nil {
		t.Error("catalog not wired")
	}
}

func TestHandleListFeatures(t *testing.T) {
	srv := newTestServer(t)

	t.Run("all", func(t *testing.T) {
		text := resultText(t, call(t, srv.handleListFeatures, map[string]any{}))
		if !strings.Contains(text, "(shopping_cart)") || !strings.Contains(text, "(portfolio_gallery)") {
			t.Errorf("expected the whole catalog:\n%s", text)
		}
	})

	t.Run("by website type", func(t *testing.T) {
		text := resultText(t, call(t, srv.handleListFeatures, map[string]any{"website_type": "Online Store"}))
		if !strings.Contains(text, "(shopping_cart)") {
			t.Errorf("ecommerce listing should include the cart:\n%s", text)
		}
		if !strings.Contains(text, "Requires: shopping_cart") {
			t.Errorf("payment processing dependency not shown:\n%s", text)
		}
	})
}

func TestHandleCheckFeatures(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		features  string
		wantError bool
		want      string
	}{
		{"consistent", "product_catalog, shopping_cart, payment_processing", false, "consistent"},
		{"conflict", "chatbot, live_chat", false, "Conflict: "},
		{"missing dependency", "payment_processing", false, "payment_processing requires shopping_cart"},
		{"unknown", "teleporter", true, ""},
		{"empty", " , ", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, srv.handleCheckFeatures, map[string]any{"features": tt.features})
			if result.IsError != tt.wantError {
				t.Fatalf("IsError = %v, want %v (%v)", result.IsError, tt.wantError, result.Content)
			}
			if tt.want != "" {
				if text := resultText(t, result); !strings.Contains(text, tt.want) {
					t.Errorf("expected %q in:\n%s", tt.want, text)
				}
			}
		})
	}

	if result := call(t, srv.handleCheckFeatures, map[string]any{}); !result.IsError {
		t.Error("expected error for missing features")
	}
}

func TestHandlePriceFeatures(t *testing.T) {
	srv := newTestServer(t)
	ecommerce := "responsive_design, product_catalog, shopping_cart, payment_processing, user_accounts, search, contact_form"

	t.Run("derived tier", func(t *testing.T) {
		text := resultText(t, call(t, srv.handlePriceFeatures, map[string]any{
			"features":     ecommerce,
			"website_type": "ecommerce",
		}))
		if !strings.Contains(text, "Tier: Custom (complex complexity") {
			t.Errorf("expected derived custom tier:\n%s", text)
		}
		if !strings.Contains(text, "Project total: $14,230.00") {
			t.Errorf("unexpected total:\n%s", text)
		}
	})

	t.Run("explicit tier", func(t *testing.T) {
		text := resultText(t, call(t, srv.handlePriceFeatures, map[string]any{
			"features": "contact_form",
			"tier":     "starter",
		}))
		if !strings.Contains(text, "Tier: Starter (requested)") || !strings.Contains(text, "Package base: $2,500.00") {
			t.Errorf("unexpected quote:\n%s", text)
		}
	})

	t.Run("unknown tier", func(t *testing.T) {
		result := call(t, srv.handlePriceFeatures, map[string]any{"features": "contact_form", "tier": "platinum"})
		if !result.IsError {
			t.Error("expected error for unknown tier")
		}
	})
}

func TestHandleProgressFor(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		args      map[string]any
		want      string
		wantError bool
	}{
		{map[string]any{"question_count": 0}, "0.00% after 0 question(s)", false},
		{map[string]any{"question_count": 10}, "71.43% after 10 question(s)", false},
		{map[string]any{"question_count": 4, "complete": true}, "100.00%", false},
		{map[string]any{"question_count": -1}, "", true},
		{map[string]any{}, "", true},
	}
	for _, tt := range tests {
		result := call(t, srv.handleProgressFor, tt.args)
		if result.IsError != tt.wantError {
			t.Errorf("%v: IsError = %v, want %v", tt.args, result.IsError, tt.wantError)
			continue
		}
		if tt.want != "" {
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("%v: got %q, want %q", tt.args, text, tt.want)
			}
		}
	}
}
