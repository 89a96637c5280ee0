package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/scopedoc/internal/docs"
	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/progress"
)

// handleListFeatures lists catalog features, optionally for one website type.
func (s *Server) handleListFeatures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	websiteType := request.GetString("website_type", "")

	var list []features.Feature
	if websiteType != "" {
		websiteType = intelligence.NormalizeWebsiteType(websiteType)
		list = s.catalog.ByWebsiteType(websiteType)
	} else {
		list = s.catalog.Features()
	}
	if len(list) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No features are offered for website type %q.", websiteType)), nil
	}

	return mcp.NewToolResultText(formatFeatures(list)), nil
}

// handleCheckFeatures reports conflicts and missing dependencies.
func (s *Server) handleCheckFeatures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, errResult := s.requireFeatures(request)
	if errResult != nil {
		return errResult, nil
	}

	var sb strings.Builder
	conflicts := s.catalog.DetectConflicts(ids)
	deps := s.catalog.ValidateDependencies(ids)
	if len(conflicts) == 0 && deps.Valid {
		sb.WriteString("The selection is consistent: no conflicts and no missing dependencies.\n")
	}
	for _, c := range conflicts {
		fmt.Fprintf(&sb, "Conflict: %s and %s (%s): %s\n", c.FeatureA, c.FeatureB, c.Resolution, c.Reason)
	}
	for _, m := range deps.MissingDependencies {
		fmt.Fprintf(&sb, "Missing dependency: %s requires %s\n", m.Feature, strings.Join(m.MissingDeps, ", "))
	}
	if !deps.Valid {
		fmt.Fprintf(&sb, "With dependencies added: %s\n", strings.Join(s.catalog.WithDependencies(ids), ", "))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// handlePriceFeatures quotes a selection in an explicit or derived tier.
func (s *Server) handlePriceFeatures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, errResult := s.requireFeatures(request)
	if errResult != nil {
		return errResult, nil
	}

	tier := request.GetString("tier", "")
	source := "requested"
	if tier == "" {
		rec := intelligence.New()
		rec.SetFoundation(intelligence.Foundation{WebsiteType: request.GetString("website_type", "")})
		rec.SelectFeatures(ids)
		class, _ := s.synth.Classify(rec)
		tier, source = class.PackageTier, fmt.Sprintf("%s complexity, score %d", class.Complexity, class.ComplexityScore)
	}
	pkg, ok := s.catalog.Package(tier)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown tier %q", tier)), nil
	}

	q := s.catalog.CalculatePricing(ids, tier)
	return mcp.NewToolResultText(formatQuote(q, pkg, source)), nil
}

// handleProgressFor converts a question count into a progress percentage.
func (s *Server) handleProgressFor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := request.RequireInt("question_count")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question_count"), nil
	}
	if n < 0 {
		return mcp.NewToolResultError("question_count must not be negative"), nil
	}
	pct := progress.FromQuestionCount(n, request.GetBool("complete", false))
	return mcp.NewToolResultText(fmt.Sprintf("%.2f%% after %d question(s)", pct, n)), nil
}

func (s *Server) requireFeatures(request mcp.CallToolRequest) ([]string, *mcp.CallToolResult) {
	raw, err := request.RequireString("features")
	if err != nil {
		return nil, mcp.NewToolResultError("missing required parameter: features")
	}
	ids := intelligence.SplitList(raw)
	if len(ids) == 0 {
		return nil, mcp.NewToolResultError("features must name at least one feature id")
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := s.catalog.Feature(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, mcp.NewToolResultError("unknown feature(s): " + strings.Join(unknown, ", "))
	}
	return ids, nil
}

// formatFeatures renders features one block each, for assistant consumption.
func formatFeatures(list []features.Feature) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d feature(s):\n", len(list))
	for _, f := range list {
		fmt.Fprintf(&sb, "\n- %s (%s), %s\n", f.Name, f.ID, f.Category)
		if f.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", f.Description)
		}
		switch {
		case f.Pricing.Type == features.PricingIncluded && len(f.Pricing.Tiers) > 0:
			fmt.Fprintf(&sb, "  Included in: %s", strings.Join(f.Pricing.Tiers, ", "))
			if f.Pricing.AddonPrice > 0 {
				fmt.Fprintf(&sb, "; otherwise %s", docs.Money(f.Pricing.AddonPrice))
			}
			sb.WriteString("\n")
		case f.Pricing.AddonPrice > 0:
			fmt.Fprintf(&sb, "  Add-on: %s\n", docs.Money(f.Pricing.AddonPrice))
		}
		if len(f.Dependencies) > 0 {
			fmt.Fprintf(&sb, "  Requires: %s\n", strings.Join(f.Dependencies, ", "))
		}
		if len(f.Conflicts) > 0 {
			fmt.Fprintf(&sb, "  Conflicts with: %s\n", strings.Join(f.Conflicts, ", "))
		}
	}
	return sb.String()
}

func formatQuote(q features.Quote, pkg features.Package, source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tier: %s (%s)\n", pkg.Name, source)
	fmt.Fprintf(&sb, "Package base: %s\n", docs.Money(pkg.BasePrice))
	for _, item := range q.IncludedFeatures {
		fmt.Fprintf(&sb, "  included  %-28s %s\n", item.Name, docs.Money(item.Price))
	}
	for _, item := range q.AddonFeatures {
		fmt.Fprintf(&sb, "  add-on    %-28s %s\n", item.Name, docs.Money(item.Price))
	}
	fmt.Fprintf(&sb, "Subtotal: %s\n", docs.Money(q.Subtotal))
	for _, d := range q.Discounts {
		fmt.Fprintf(&sb, "Discount %s: -%s\n", d.Name, docs.Money(d.Amount))
	}
	fmt.Fprintf(&sb, "Features total: %s\n", docs.Money(q.Total))
	fmt.Fprintf(&sb, "Project total: %s\n", docs.Money(pkg.BasePrice+q.Total))
	if len(q.Unpriced) > 0 {
		fmt.Fprintf(&sb, "Unpriced: %s\n", strings.Join(q.Unpriced, ", "))
	}
	return sb.String()
}
