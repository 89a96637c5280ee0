package features

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Packages  []Package     `yaml:"packages"`
	Hosting   []HostingTier `yaml:"hosting"`
	Features  []Feature     `yaml:"features"`
	Conflicts []Conflict    `yaml:"conflicts"`
	Bundles   []Bundle      `yaml:"bundles"`
}

// Catalog is the immutable feature graph. Build it once and share it; no
// method mutates it.
type Catalog struct {
	features  []Feature
	byID      map[string]int
	conflicts []Conflict
	pairs     map[[2]string]int
	bundles   []Bundle
	packages  []Package
	hosting   []HostingTier
	issues    []Issue
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// ParseCatalog decodes a YAML catalog. Only malformed YAML or duplicate ids
// are errors; broken edges are dropped and reported by Issues.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing feature catalog: %w", err)
	}
	return build(f)
}

func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

func build(f catalogFile) (*Catalog, error) {
	c := &Catalog{
		byID:  make(map[string]int, len(f.Features)),
		pairs: make(map[[2]string]int),
	}

	for _, feat := range f.Features {
		if feat.ID == "" {
			c.issues = append(c.issues, Issue{Message: fmt.Sprintf("feature %q has no id; skipped", feat.Name)})
			continue
		}
		if _, dup := c.byID[feat.ID]; dup {
			return nil, fmt.Errorf("duplicate feature id %q", feat.ID)
		}
		c.byID[feat.ID] = len(c.features)
		c.features = append(c.features, feat)
	}

	for i := range c.features {
		feat := &c.features[i]
		switch feat.Pricing.Type {
		case PricingIncluded, PricingAddon:
		default:
			c.issues = append(c.issues, Issue{FeatureID: feat.ID,
				Message: fmt.Sprintf("unknown pricing type %q; feature will not be priced", feat.Pricing.Type)})
		}
		feat.Dependencies = c.cleanEdges(feat.ID, "dependency", feat.Dependencies)
		feat.Conflicts = c.cleanEdges(feat.ID, "conflict", feat.Conflicts)
	}

	for _, cf := range f.Conflicts {
		if !c.Has(cf.FeatureA) || !c.Has(cf.FeatureB) || cf.FeatureA == cf.FeatureB {
			c.issues = append(c.issues, Issue{FeatureID: cf.FeatureA,
				Message: fmt.Sprintf("conflict %s/%s references a missing or identical feature; skipped", cf.FeatureA, cf.FeatureB)})
			continue
		}
		switch cf.Resolution {
		case ResolutionChooseOne, ResolutionUpgradeRequired, ResolutionMutuallyExclusive:
		default:
			cf.Resolution = ResolutionMutuallyExclusive
		}
		c.addConflict(cf)
	}

	// Conflicts declared on a feature but not in the top-level list.
	for _, feat := range c.features {
		for _, other := range feat.Conflicts {
			c.addConflict(Conflict{
				FeatureA:   feat.ID,
				FeatureB:   other,
				Reason:     fmt.Sprintf("%s and %s cannot be combined.", feat.Name, c.name(other)),
				Resolution: ResolutionMutuallyExclusive,
			})
		}
	}

	for _, b := range f.Bundles {
		ok := len(b.Features) > 0
		for _, id := range b.Features {
			if !c.Has(id) {
				ok = false
			}
		}
		if !ok || b.DiscountPercent <= 0 || b.DiscountPercent >= 100 {
			c.issues = append(c.issues, Issue{Message: fmt.Sprintf("bundle %q is invalid; skipped", b.ID)})
			continue
		}
		c.bundles = append(c.bundles, b)
	}

	c.packages = f.Packages
	c.hosting = f.Hosting
	return c, nil
}

// cleanEdges drops self references, unknown targets and duplicates.
func (c *Catalog) cleanEdges(id, kind string, edges []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range edges {
		switch {
		case e == id:
			c.issues = append(c.issues, Issue{FeatureID: id, Message: fmt.Sprintf("self-referential %s; dropped", kind)})
		case !c.Has(e):
			c.issues = append(c.issues, Issue{FeatureID: id, Message: fmt.Sprintf("%s on unknown feature %q; dropped", kind, e)})
		case seen[e]:
		default:
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// addConflict stores cf once per unordered pair; the first declaration wins.
func (c *Catalog) addConflict(cf Conflict) {
	k := pairKey(cf.FeatureA, cf.FeatureB)
	if _, ok := c.pairs[k]; ok {
		return
	}
	c.pairs[k] = len(c.conflicts)
	c.conflicts = append(c.conflicts, cf)
}

func (c *Catalog) name(id string) string {
	if f, ok := c.Feature(id); ok {
		return f.Name
	}
	return id
}

// Has reports whether id is a catalog feature.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Feature returns the feature with id.
func (c *Catalog) Feature(id string) (Feature, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Feature{}, false
	}
	return c.features[i], true
}

// Features returns every feature in catalog order.
func (c *Catalog) Features() []Feature {
	return append([]Feature(nil), c.features...)
}

// Conflicts returns every known conflict pair.
func (c *Catalog) Conflicts() []Conflict {
	return append([]Conflict(nil), c.conflicts...)
}

// Bundles returns the valid bundles.
func (c *Catalog) Bundles() []Bundle {
	return append([]Bundle(nil), c.bundles...)
}

// Packages returns the priced tiers.
func (c *Catalog) Packages() []Package {
	return append([]Package(nil), c.packages...)
}

// Package returns the package for tier.
func (c *Catalog) Package(tier string) (Package, bool) {
	for _, p := range c.packages {
		if p.Tier == tier {
			return p, true
		}
	}
	return Package{}, false
}

// HostingTiers returns the hosting plans.
func (c *Catalog) HostingTiers() []HostingTier {
	return append([]HostingTier(nil), c.hosting...)
}

// HostingTier returns the hosting plan with id.
func (c *Catalog) HostingTier(id string) (HostingTier, bool) {
	for _, h := range c.hosting {
		if h.ID == id {
			return h, true
		}
	}
	return HostingTier{}, false
}

// Issues returns the authoring defects found while building the catalog.
func (c *Catalog) Issues() []Issue {
	return append([]Issue(nil), c.issues...)
}
