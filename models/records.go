package models

// GeneratedByFallback is the provenance tag for records produced entirely from
// built-in defaults because the external call or extraction failed.
const GeneratedByFallback = "Fallback System"

// Strategy is a normalized marketing strategy record. After normalization every
// field is present with a valid type regardless of what the model returned.
type Strategy struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"` // Retention | Launch | Upsell
	TargetAudience string   `json:"targetAudience"`
	Objectives     string   `json:"objectives"`
	Channels       []string `json:"channels"`
	Outcomes       string   `json:"outcomes"`
	Timeline       string   `json:"timeline"`
	Budget         string   `json:"budget"`
	GeneratedBy    string   `json:"generatedBy"`
}

// Prototype is a normalized product prototype record.
type Prototype struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Features           []string `json:"features"`
	USPs               []string `json:"usps"`
	Variations         []string `json:"variations"`
	Packaging          string   `json:"packaging"`
	Pricing            string   `json:"pricing"`
	Production         string   `json:"production"`
	Marketing          string   `json:"marketing"`
	MarketPotential    string   `json:"marketPotential"`
	AcceptabilityScore float64  `json:"acceptabilityScore"` // clamped to [0,100]
	Status             string   `json:"status"`
	GeneratedBy        string   `json:"generatedBy"`
}

// MarketResearch is a normalized market research analysis.
type MarketResearch struct {
	Metrics             ResearchMetrics     `json:"metrics"`
	MarketTrends        MarketTrends        `json:"marketTrends"`
	CustomerBehavior    CustomerBehavior    `json:"customerBehavior"`
	CompetitiveAnalysis CompetitiveAnalysis `json:"competitiveAnalysis"`
	Recommendations     Recommendations     `json:"recommendations"`
	GeneratedBy         string              `json:"generatedBy"`
}

type ResearchMetrics struct {
	DataQualityScore     string `json:"dataQualityScore"`
	ResearchCompleteness string `json:"researchCompleteness"`
	ConfidenceLevel      string `json:"confidenceLevel"`
	DataReliability      string `json:"dataReliability"`
	InsightQuality       string `json:"insightQuality"`
}

type MarketTrends struct {
	Summary               string   `json:"summary"`
	KeyInsights           []string `json:"keyInsights"`
	EmergingOpportunities []string `json:"emergingOpportunities"`
}

type CustomerBehavior struct {
	Segments      []string      `json:"segments"`
	PainPoints    []string      `json:"painPoints"`
	Opportunities []string      `json:"opportunities"`
	BuyingJourney BuyingJourney `json:"buyingJourney"`
}

type BuyingJourney struct {
	AwarenessChannels []string `json:"awarenessChannels"`
	DecisionFactors   []string `json:"decisionFactors"`
	PurchaseBarriers  []string `json:"purchaseBarriers"`
	LoyaltyDrivers    []string `json:"loyaltyDrivers"`
}

type CompetitiveAnalysis struct {
	MarketLeaders []MarketLeader `json:"marketLeaders"`
	MarketGaps    []string       `json:"marketGaps"`
}

type MarketLeader struct {
	Name       string   `json:"name"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

type Recommendations struct {
	ShortTerm  []string `json:"shortTerm"`
	MediumTerm []string `json:"mediumTerm"`
	LongTerm   []string `json:"longTerm"`
}

// BCGNarrative is the normalized narrative commentary generated over a computed
// BCG matrix summary.
type BCGNarrative struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
	GeneratedBy     string   `json:"generatedBy"`
}
