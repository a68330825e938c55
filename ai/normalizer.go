package ai

import (
	"strings"

	"coachlens/models"
)

// Schema normalization: total functions from arbitrary extracted values to
// complete, typed records. Every field is defaulted or coerced, nothing ever
// fails, and normalizing an already-normalized record is a no-op.

// NormalizeStrategies coerces an extracted value into a full set of strategy
// records. A single object counts as a one-element batch; anything
// unrecognizable yields the built-in default strategies.
func NormalizeStrategies(extracted interface{}, generatedBy string) []models.Strategy {
	var partials []map[string]interface{}
	switch v := extracted.(type) {
	case []interface{}:
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				partials = append(partials, obj)
			}
		}
	case map[string]interface{}:
		partials = append(partials, v)
	}

	if len(partials) == 0 {
		return DefaultStrategies()
	}

	strategies := make([]models.Strategy, 0, len(partials))
	for _, partial := range partials {
		strategies = append(strategies, NormalizeStrategy(partial, generatedBy))
	}
	return strategies
}

// NormalizeStrategy fills one strategy record from a partial object.
func NormalizeStrategy(partial map[string]interface{}, generatedBy string) models.Strategy {
	return models.Strategy{
		Name:           stringOr(partial, "name", "Marketing Strategy"),
		Type:           strategyType(partial),
		TargetAudience: stringOr(partial, "targetAudience", "All customers"),
		Objectives:     stringOr(partial, "objectives", "Increase engagement and sales"),
		Channels:       stringSliceOr(partial, "channels", []string{"Email"}),
		Outcomes:       stringOr(partial, "outcomes", "Improved customer retention and sales"),
		Timeline:       stringOr(partial, "timeline", "3 months"),
		Budget:         stringOr(partial, "budget", "Medium investment required"),
		GeneratedBy:    provenance(partial, generatedBy),
	}
}

// DefaultStrategies returns the three canned strategies used when neither the
// model nor the text fallback produced anything usable.
func DefaultStrategies() []models.Strategy {
	return []models.Strategy{
		{
			Name:           "Customer Retention Campaign",
			Type:           "Retention",
			TargetAudience: "Existing customers who haven't purchased in 30+ days",
			Objectives:     "Re-engage inactive customers and increase repeat purchases",
			Channels:       []string{"Email", "SMS", "Social Media"},
			Outcomes:       "Increase customer retention rate by 15% and boost repeat purchases",
			Timeline:       "3 months",
			Budget:         "Medium investment required",
			GeneratedBy:    models.GeneratedByFallback,
		},
		{
			Name:           "New Customer Acquisition",
			Type:           "Launch",
			TargetAudience: "Potential customers in target demographic",
			Objectives:     "Expand customer base and increase market share",
			Channels:       []string{"Social Media Ads", "Content Marketing", "Referral Program"},
			Outcomes:       "Acquire 20% more customers and increase brand awareness",
			Timeline:       "6 months",
			Budget:         "High investment required",
			GeneratedBy:    models.GeneratedByFallback,
		},
		{
			Name:           "Premium Product Upsell",
			Type:           "Upsell",
			TargetAudience: "Existing customers who regularly purchase standard products",
			Objectives:     "Increase average order value and introduce customers to premium offerings",
			Channels:       []string{"Email", "In-app Notifications", "Personalized Recommendations"},
			Outcomes:       "Increase premium product sales by 25% and boost average order value",
			Timeline:       "4 months",
			Budget:         "Low to medium investment required",
			GeneratedBy:    models.GeneratedByFallback,
		},
	}
}

// PrototypeSeed carries the user-supplied product details that seed prototype
// defaults, so a fully-defaulted record still reflects what was asked for.
type PrototypeSeed struct {
	Name         string
	Description  string
	Category     string
	TargetMarket string
}

// NormalizePrototype fills a prototype record from a partial object.
func NormalizePrototype(partial map[string]interface{}, seed PrototypeSeed, generatedBy string) models.Prototype {
	name := seed.Name
	if name == "" {
		name = "Premium Product Concept"
	}
	description := seed.Description
	if description == "" {
		description = "A high-quality product designed for your target market"
	}
	category := seed.Category
	if category == "" {
		category = "General"
	}

	marketPotential := "Market potential analysis not available"
	if generatedBy == models.GeneratedByFallback {
		market := seed.TargetMarket
		if market == "" {
			market = "your target customers"
		}
		marketPotential = "Growing market for " + strings.ToLower(category) + " especially among " + market + " and other demographics."
	}

	return models.Prototype{
		Name:               stringOr(partial, "name", name),
		Description:        stringOr(partial, "description", description),
		Category:           stringOr(partial, "category", category),
		Features:           stringSliceOr(partial, "features", []string{"Feature information not available"}),
		USPs:               stringSliceOr(partial, "usps", []string{"USP information not available"}),
		Variations:         stringSliceOr(partial, "variations", []string{}),
		Packaging:          stringOr(partial, "packaging", "Standard packaging recommended"),
		Pricing:            stringOr(partial, "pricing", "Pricing information not available"),
		Production:         stringOr(partial, "production", "Production information not available"),
		Marketing:          stringOr(partial, "marketing", "Marketing information not available"),
		MarketPotential:    stringOr(partial, "marketPotential", marketPotential),
		AcceptabilityScore: scoreOr(partial, "acceptabilityScore", 75),
		Status:             stringOr(partial, "status", "Concept"),
		GeneratedBy:        provenance(partial, generatedBy),
	}
}

// NormalizeMarketResearch fills a market research analysis section by section.
// Missing sections, and missing fields within present sections, fall back to
// the default structure.
func NormalizeMarketResearch(partial map[string]interface{}, generatedBy string) models.MarketResearch {
	metrics := sectionOf(partial, "metrics")
	trends := sectionOf(partial, "marketTrends")
	behavior := sectionOf(partial, "customerBehavior")
	journey := sectionOf(behavior, "buyingJourney")
	competitive := sectionOf(partial, "competitiveAnalysis")
	recommendations := sectionOf(partial, "recommendations")

	return models.MarketResearch{
		Metrics: models.ResearchMetrics{
			DataQualityScore:     stringOr(metrics, "dataQualityScore", "85%"),
			ResearchCompleteness: stringOr(metrics, "researchCompleteness", "80%"),
			ConfidenceLevel:      stringOr(metrics, "confidenceLevel", "Medium"),
			DataReliability:      stringOr(metrics, "dataReliability", "82%"),
			InsightQuality:       stringOr(metrics, "insightQuality", "88%"),
		},
		MarketTrends: models.MarketTrends{
			Summary:               stringOr(trends, "summary", "Analysis reveals market trends based on the provided research data."),
			KeyInsights:           stringSliceOr(trends, "keyInsights", []string{"Key insight 1", "Key insight 2", "Key insight 3"}),
			EmergingOpportunities: stringSliceOr(trends, "emergingOpportunities", []string{"Opportunity 1", "Opportunity 2", "Opportunity 3"}),
		},
		CustomerBehavior: models.CustomerBehavior{
			Segments:      stringSliceOr(behavior, "segments", []string{"Segment 1", "Segment 2", "Segment 3"}),
			PainPoints:    stringSliceOr(behavior, "painPoints", []string{"Pain point 1", "Pain point 2", "Pain point 3"}),
			Opportunities: stringSliceOr(behavior, "opportunities", []string{"Opportunity 1", "Opportunity 2", "Opportunity 3"}),
			BuyingJourney: models.BuyingJourney{
				AwarenessChannels: stringSliceOr(journey, "awarenessChannels", []string{"Channel 1", "Channel 2", "Channel 3"}),
				DecisionFactors:   stringSliceOr(journey, "decisionFactors", []string{"Factor 1", "Factor 2", "Factor 3"}),
				PurchaseBarriers:  stringSliceOr(journey, "purchaseBarriers", []string{"Barrier 1", "Barrier 2", "Barrier 3"}),
				LoyaltyDrivers:    stringSliceOr(journey, "loyaltyDrivers", []string{"Driver 1", "Driver 2", "Driver 3"}),
			},
		},
		CompetitiveAnalysis: models.CompetitiveAnalysis{
			MarketLeaders: marketLeadersOr(competitive, defaultMarketLeaders()),
			MarketGaps:    stringSliceOr(competitive, "marketGaps", []string{"Gap 1", "Gap 2", "Gap 3"}),
		},
		Recommendations: models.Recommendations{
			ShortTerm:  stringSliceOr(recommendations, "shortTerm", []string{"Recommendation 1", "Recommendation 2", "Recommendation 3"}),
			MediumTerm: stringSliceOr(recommendations, "mediumTerm", []string{"Recommendation 1", "Recommendation 2", "Recommendation 3"}),
			LongTerm:   stringSliceOr(recommendations, "longTerm", []string{"Recommendation 1", "Recommendation 2", "Recommendation 3"}),
		},
		GeneratedBy: provenance(partial, generatedBy),
	}
}

// NormalizeBCGNarrative fills the narrative commentary over a computed matrix.
func NormalizeBCGNarrative(partial map[string]interface{}, generatedBy string) models.BCGNarrative {
	return models.BCGNarrative{
		Summary:         stringOr(partial, "summary", "Portfolio analysis based on market share and growth classification."),
		Strengths:       stringSliceOr(partial, "strengths", []string{"Established products holding market share"}),
		Risks:           stringSliceOr(partial, "risks", []string{"Low-growth products may consume resources"}),
		Recommendations: stringSliceOr(partial, "recommendations", []string{"Invest in stars", "Harvest cash cows", "Evaluate question marks", "Divest dogs"}),
		GeneratedBy:     provenance(partial, generatedBy),
	}
}

func defaultMarketLeaders() []models.MarketLeader {
	return []models.MarketLeader{
		{Name: "Company 1", Strengths: []string{"Strength 1", "Strength 2"}, Weaknesses: []string{"Weakness 1", "Weakness 2"}},
		{Name: "Company 2", Strengths: []string{"Strength 1", "Strength 2"}, Weaknesses: []string{"Weakness 1", "Weakness 2"}},
	}
}

func marketLeadersOr(section map[string]interface{}, fallback []models.MarketLeader) []models.MarketLeader {
	raw, ok := section["marketLeaders"].([]interface{})
	if !ok || len(raw) == 0 {
		return fallback
	}
	leaders := make([]models.MarketLeader, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := stringOr(obj, "name", "")
		if name == "" {
			continue
		}
		leaders = append(leaders, models.MarketLeader{
			Name:       name,
			Strengths:  stringSliceOr(obj, "strengths", []string{}),
			Weaknesses: stringSliceOr(obj, "weaknesses", []string{}),
		})
	}
	if len(leaders) == 0 {
		return fallback
	}
	return leaders
}

func strategyType(partial map[string]interface{}) string {
	raw := stringOr(partial, "type", "Launch")
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "retention"):
		return "Retention"
	case strings.Contains(lower, "upsell"):
		return "Upsell"
	default:
		return "Launch"
	}
}

// provenance keeps an existing generatedBy tag if re-normalizing an already
// tagged record, otherwise applies the caller's tag.
func provenance(partial map[string]interface{}, generatedBy string) string {
	if existing := stringOr(partial, "generatedBy", ""); existing != "" {
		return existing
	}
	if generatedBy == "" {
		return models.GeneratedByFallback
	}
	return generatedBy
}

func stringOr(partial map[string]interface{}, key, fallback string) string {
	if partial == nil {
		return fallback
	}
	if s, ok := partial[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// stringSliceOr copies a value into a string slice, wrapping a bare string as
// a one-element array and stringifying primitive elements.
func stringSliceOr(partial map[string]interface{}, key string, fallback []string) []string {
	if partial == nil {
		return fallback
	}
	switch v := partial[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 || len(v) == 0 {
			return out
		}
		return fallback
	case []string:
		return v
	case string:
		if strings.TrimSpace(v) != "" {
			return []string{v}
		}
	}
	return fallback
}

// scoreOr pulls a numeric score, clamped to [0,100].
func scoreOr(partial map[string]interface{}, key string, fallback float64) float64 {
	if partial == nil {
		return fallback
	}
	score, ok := partial[key].(float64)
	if !ok {
		return fallback
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func sectionOf(partial map[string]interface{}, key string) map[string]interface{} {
	if partial == nil {
		return nil
	}
	if section, ok := partial[key].(map[string]interface{}); ok {
		return section
	}
	return nil
}
