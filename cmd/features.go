package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/scopedoc/internal/config"
	"github.com/ziadkadry99/scopedoc/internal/docs"
	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/scope"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Browse, check and price the feature catalog",
}

var featuresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog features",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := catalogForCommand()
		if err != nil {
			return err
		}
		websiteType, _ := cmd.Flags().GetString("website-type")

		list := catalog.Features()
		if websiteType != "" {
			list = catalog.ByWebsiteType(intelligence.NormalizeWebsiteType(websiteType))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICING")
		for _, f := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Category, describePricing(f.Pricing))
		}
		return tw.Flush()
	},
}

var featuresCheckCmd = &cobra.Command{
	Use:   "check <feature-id>...",
	Short: "Report conflicts and missing dependencies in a selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := catalogForCommand()
		if err != nil {
			return err
		}
		ids, err := knownFeatures(catalog, args)
		if err != nil {
			return err
		}

		conflicts := catalog.DetectConflicts(ids)
		deps := catalog.ValidateDependencies(ids)
		if len(conflicts) == 0 && deps.Valid {
			fmt.Println("No conflicts and no missing dependencies.")
			return nil
		}
		for _, c := range conflicts {
			fmt.Printf("Conflict: %s and %s (%s): %s\n", c.FeatureA, c.FeatureB, c.Resolution, c.Reason)
		}
		for _, m := range deps.MissingDependencies {
			fmt.Printf("Missing: %s requires %s\n", m.Feature, strings.Join(m.MissingDeps, ", "))
		}
		if !deps.Valid {
			fmt.Printf("Suggested selection: %s\n", strings.Join(catalog.WithDependencies(ids), " "))
		}
		return nil
	},
}

var featuresPriceCmd = &cobra.Command{
	Use:   "price <feature-id>...",
	Short: "Quote a selection in a package tier",
	Long: `Quotes a feature selection. Without --tier the tier is derived from the
project's complexity, the same way scope documents pick it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := catalogForCommand()
		if err != nil {
			return err
		}
		ids, err := knownFeatures(catalog, args)
		if err != nil {
			return err
		}
		tier, _ := cmd.Flags().GetString("tier")
		websiteType, _ := cmd.Flags().GetString("website-type")

		if tier == "" {
			rec := intelligence.New()
			rec.SetFoundation(intelligence.Foundation{WebsiteType: websiteType})
			rec.SelectFeatures(ids)
			class, _ := scope.NewSynthesizer(catalog).Classify(rec)
			tier = class.PackageTier
			fmt.Printf("Complexity: %s (score %d)\n", class.Complexity, class.ComplexityScore)
		}
		pkg, ok := catalog.Package(tier)
		if !ok {
			return fmt.Errorf("unknown tier %q", tier)
		}

		q := catalog.CalculatePricing(ids, tier)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s package\t%s\n", pkg.Name, docs.Money(pkg.BasePrice))
		for _, item := range q.IncludedFeatures {
			fmt.Fprintf(tw, "  %s (included)\t%s\n", item.Name, docs.Money(item.Price))
		}
		for _, item := range q.AddonFeatures {
			fmt.Fprintf(tw, "  %s\t%s\n", item.Name, docs.Money(item.Price))
		}
		for _, d := range q.Discounts {
			fmt.Fprintf(tw, "  %s\t-%s\n", d.Name, docs.Money(d.Amount))
		}
		fmt.Fprintf(tw, "Project total\t%s\n", docs.Money(pkg.BasePrice+q.Total))
		if err := tw.Flush(); err != nil {
			return err
		}
		if len(q.Unpriced) > 0 {
			fmt.Printf("Unpriced in this tier: %s\n", strings.Join(q.Unpriced, ", "))
		}
		return nil
	},
}

func init() {
	featuresListCmd.Flags().String("website-type", "", "only features offered for this website type")
	featuresPriceCmd.Flags().String("tier", "", "package tier: starter, professional or custom")
	featuresPriceCmd.Flags().String("website-type", "", "website type used to derive the tier")
	featuresCmd.AddCommand(featuresListCmd, featuresCheckCmd, featuresPriceCmd)
	rootCmd.AddCommand(featuresCmd)
}

// catalogForCommand loads the catalog named by the config file, if any.
func catalogForCommand() (*features.Catalog, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return loadFeatureCatalog(cfg)
}

// knownFeatures accepts ids as separate arguments or comma-separated.
func knownFeatures(catalog *features.Catalog, args []string) ([]string, error) {
	ids := intelligence.SplitList(strings.Join(args, ","))
	var unknown []string
	for _, id := range ids {
		if !catalog.Has(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown feature(s): %s (see `scopedoc features list`)", strings.Join(unknown, ", "))
	}
	return ids, nil
}

func describePricing(p features.Pricing) string {
	switch {
	case p.Type == features.PricingIncluded && p.AddonPrice > 0:
		return fmt.Sprintf("in %s, else %s", strings.Join(p.Tiers, "/"), docs.Money(p.AddonPrice))
	case p.Type == features.PricingIncluded:
		return "in " + strings.Join(p.Tiers, "/")
	default:
		return docs.Money(p.AddonPrice)
	}
}
