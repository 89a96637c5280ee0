package facts

import "strings"

// Draft is a fact before the extractor stamps identity and provenance on it.
type Draft struct {
	Key        string
	Category   Category
	Value      string
	Confidence float64
}

// Rule pairs a predicate over the lower-cased question text with a builder
// over the trimmed answer. Within a rule set the first rule whose Match
// returns true decides the outcome; rules after it are not consulted.
type Rule struct {
	Name  string
	Match func(question string) bool
	Build func(answer string) []Draft
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func containsAll(s string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(s, n) {
			return false
		}
	}
	return true
}

// keyRule stores the raw answer under key when the question mentions any keyword.
func keyRule(key string, cat Category, conf float64, keywords ...string) Rule {
	return Rule{
		Name:  key,
		Match: func(q string) bool { return containsAny(q, keywords...) },
		Build: func(a string) []Draft {
			return []Draft{{Key: key, Category: cat, Value: a, Confidence: conf}}
		},
	}
}

// chainRule stores the first regex-chain match under key. An answer the
// chain does not understand yields nothing.
func chainRule(key string, cat Category, chain []Pattern, keywords ...string) Rule {
	return Rule{
		Name:  key,
		Match: func(q string) bool { return containsAny(q, keywords...) },
		Build: func(a string) []Draft {
			v, _, ok := FirstMatch(chain, a)
			if !ok {
				return nil
			}
			return []Draft{{Key: key, Category: cat, Value: v, Confidence: 0.85}}
		},
	}
}

var timelineKeywords = []string{"timeline", "launch", "deadline", "go live", "go-live", "when do you", "when would"}
var budgetKeywords = []string{"budget", "invest", "spend", "price range", "afford"}

func foundationRules() []Rule {
	return []Rule{
		keyRule(KeyContactEmail, CategoryBusiness, 0.95, "email"),
		keyRule(KeyContactPhone, CategoryBusiness, 0.95, "phone", "call you", "number to reach"),
		// "company name" must win over the bare "name" rule below.
		keyRule(KeyCompanyName, CategoryBusiness, 0.95, "company", "business name", "organization", "organisation"),
		keyRule(KeyClientName, CategoryBusiness, 0.95, "name"),
		keyRule(KeyWebsiteType, CategoryBusiness, 0.95, "type of website", "kind of website", "website type", "type of site", "kind of site"),
		keyRule(KeyExistingWebsite, CategoryBusiness, 0.9, "existing website", "current website", "current site", "url"),
		keyRule(KeyIndustry, CategoryBusiness, 0.9, "industry", "sector"),
		chainRule(KeyTimeline, CategoryTimeline, TimelinePatterns, timelineKeywords...),
		chainRule(KeyBudgetRange, CategoryBudget, BudgetPatterns, budgetKeywords...),
	}
}

func featureSelectionRules() []Rule {
	return []Rule{
		keyRule(KeyExtraFeatures, CategoryFeature, 0.85, "additional", "anything else", "other feature"),
		keyRule(KeySelectedFeatures, CategoryFeature, 0.9, "feature", "functionality", "select", "need"),
	}
}

func businessContextRules() []Rule {
	return []Rule{
		chainRule(KeyTimeline, CategoryTimeline, TimelinePatterns, timelineKeywords...),
		chainRule(KeyBudgetRange, CategoryBudget, BudgetPatterns, budgetKeywords...),
		keyRule(KeyTargetAudience, CategoryBusiness, 0.9, "audience", "customers", "who will visit", "who are your users"),
		keyRule(KeyCompetitors, CategoryBusiness, 0.9, "competitor", "competition"),
		keyRule(KeyUniqueValue, CategoryBusiness, 0.9, "unique", "different from", "stand out", "sets you apart"),
		keyRule(KeySuccessMetrics, CategoryBusiness, 0.9, "success", "measure", "kpi"),
		keyRule(KeyPrimaryGoal, CategoryBusiness, 0.9, "goal", "objective", "achieve", "purpose of"),
		keyRule(KeyProblem, CategoryBusiness, 0.85, "problem", "challenge", "pain point"),
		keyRule(KeyIndustry, CategoryBusiness, 0.9, "industry", "sector"),
		{
			Name: KeyBusinessDesc,
			Match: func(q string) bool {
				return containsAny(q, "what does your", "tell me about your", "describe your") ||
					containsAll(q, "describe", "business")
			},
			Build: func(a string) []Draft {
				return []Draft{{Key: KeyBusinessDesc, Category: CategoryBusiness, Value: a, Confidence: 0.9}}
			},
		},
	}
}

func technicalRules() []Rule {
	return []Rule{
		keyRule(KeyHosting, CategoryTechnical, 0.9, "hosting", "host the"),
		keyRule(KeyDomain, CategoryTechnical, 0.9, "domain"),
		keyRule(KeyPayments, CategoryTechnical, 0.9, "payment", "checkout", "accept money", "sell online"),
		keyRule(KeyUserAccounts, CategoryTechnical, 0.9, "account", "login", "log in", "sign in", "sign up", "member"),
		{
			Name:  KeyEmailMarketing,
			Match: func(q string) bool { return containsAll(q, "email", "marketing") || containsAny(q, "newsletter", "mailing list") },
			Build: func(a string) []Draft {
				return []Draft{{Key: KeyEmailMarketing, Category: CategoryTechnical, Value: a, Confidence: 0.9}}
			},
		},
		keyRule(KeyIntegrations, CategoryTechnical, 0.9, "integrat", "connect with", "third-party", "third party"),
		// "update content" is caught here before the content-ownership rule.
		keyRule(KeyCMS, CategoryTechnical, 0.9, "cms", "content management", "update content", "edit the site", "edit your site", "update the site"),
		keyRule(KeyCompliance, CategoryTechnical, 0.9, "complian", "gdpr", "hipaa", "accessib", "regulat", "pci"),
		keyRule(KeySEO, CategoryTechnical, 0.9, "seo", "search engine", "google ranking"),
		keyRule(KeyAnalytics, CategoryTechnical, 0.9, "analytics", "tracking", "metrics dashboard"),
		{
			Name:  KeyPageCount,
			Match: func(q string) bool { return containsAny(q, "how many pages", "number of pages", "page count") },
			Build: func(a string) []Draft {
				return []Draft{{Key: KeyPageCount, Category: CategoryTechnical, Value: a, Confidence: 0.9}}
			},
		},
		{
			Name: KeyContentOwner,
			Match: func(q string) bool {
				return strings.Contains(q, "content") && containsAny(q, "who", "provide", "write", "responsible")
			},
			Build: func(a string) []Draft {
				return []Draft{{Key: KeyContentOwner, Category: CategoryTechnical, Value: a, Confidence: 0.85}}
			},
		},
		keyRule(KeyMediaAssets, CategoryTechnical, 0.85, "photo", "image", "video", "media"),
		keyRule(KeyTechPreferences, CategoryTechnical, 0.85, "platform", "technology", "framework", "tech stack"),
	}
}

func designRules() []Rule {
	return []Rule{
		keyRule(KeyLogo, CategoryDesign, 0.9, "logo"),
		keyRule(KeyBrandGuidelines, CategoryDesign, 0.9, "brand"),
		keyRule(KeyColors, CategoryDesign, 0.9, "color", "colour", "palette"),
		keyRule(KeyTypography, CategoryDesign, 0.9, "font", "typography", "typeface"),
		// "dislike" contains "like", so it has to be checked before inspiration.
		keyRule(KeyDesignDislikes, CategoryDesign, 0.85, "avoid", "dislike", "don't like", "do not like"),
		keyRule(KeyDesignStyle, CategoryDesign, 0.9, "style", "look and feel", "feel", "aesthetic", "vibe"),
		keyRule(KeyInspiration, CategoryDesign, 0.85, "inspir", "like", "example", "admire"),
		keyRule(KeyMediaAssets, CategoryDesign, 0.85, "photo", "image", "video"),
	}
}

func timelineRules() []Rule {
	return []Rule{{
		Name:  KeyTimeline,
		Match: func(string) bool { return true },
		Build: chainRule(KeyTimeline, CategoryTimeline, TimelinePatterns).Build,
	}}
}

func budgetRules() []Rule {
	return []Rule{{
		Name:  KeyBudgetRange,
		Match: func(string) bool { return true },
		Build: chainRule(KeyBudgetRange, CategoryBudget, BudgetPatterns).Build,
	}}
}

// DefaultRules returns the rule sets keyed by question category.
func DefaultRules() map[string][]Rule {
	return map[string][]Rule{
		QuestionFoundation:       foundationRules(),
		QuestionFeatureSelection: featureSelectionRules(),
		QuestionBusinessContext:  businessContextRules(),
		QuestionTechnical:        technicalRules(),
		QuestionDesign:           designRules(),
		QuestionTimeline:         timelineRules(),
		QuestionBudget:           budgetRules(),
	}
}
