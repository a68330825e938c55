package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"coachlens/domain/dataset"
)

// TaskKind selects which analysis prompt template to render.
type TaskKind string

const (
	TaskStrategy       TaskKind = "strategy"
	TaskPrototype      TaskKind = "prototype"
	TaskMarketResearch TaskKind = "market_research"
	TaskBCGNarrative   TaskKind = "bcg_narrative"
)

const (
	maxSampleRows  = 5
	maxFieldLength = 5000
	topCategories  = 3
)

// PromptRequest is the structured input to BuildPrompt. Pure value object:
// the same request always renders the same prompt.
type PromptRequest struct {
	Task       TaskKind
	Aggregates dataset.AggregateSummary
	SampleRows []dataset.Row
	FreeText   map[string]string
	Columns    []string
	TotalRows  int
}

// BuildPrompt renders the prompt for one analysis task. Deterministic and
// side-effect-free: map iteration happens over sorted keys, and every
// interpolated field is truncated to a bounded length.
func BuildPrompt(req PromptRequest) string {
	switch req.Task {
	case TaskStrategy:
		return buildStrategyPrompt(req)
	case TaskPrototype:
		return buildPrototypePrompt(req)
	case TaskMarketResearch:
		return buildMarketResearchPrompt(req)
	case TaskBCGNarrative:
		return buildBCGNarrativePrompt(req)
	default:
		return buildStrategyPrompt(req)
	}
}

func buildStrategyPrompt(req PromptRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert marketing strategist analyzing customer data to generate marketing strategies.\n\n")

	b.WriteString("DATA SUMMARY:\n")
	fmt.Fprintf(&b, "- Total customers: %d\n", req.TotalRows)
	fmt.Fprintf(&b, "- Data columns: %s\n\n", strings.Join(req.Columns, ", "))

	b.WriteString("SAMPLE DATA:\n")
	b.WriteString(formatSampleRows(req.SampleRows))
	b.WriteString("\n\n")

	b.WriteString("KEY METRICS AND INSIGHTS:\n")
	b.WriteString(formatAggregates(req.Aggregates, req.TotalRows))
	b.WriteString("\n")

	writeFreeText(&b, req.FreeText)

	b.WriteString(`Based on this customer data, generate 3 detailed marketing strategies that would be effective for this business.

For each strategy, provide:
1. Strategy name (short, catchy title)
2. Type (choose one: Retention, Launch, or Upsell)
3. Target audience (specific customer segments to target based on the data)
4. Key objectives (what the strategy aims to achieve)
5. Recommended marketing channels (specific platforms or methods)
6. Expected outcomes (measurable results)
7. Implementation timeline (realistic timeframe)
8. Budget considerations (relative cost level)

IMPORTANT: Format your response as a valid JSON array of strategy objects with these exact field names:
name, type, targetAudience, objectives, channels (as array), outcomes, timeline, budget

Example format:
[
  {
    "name": "Strategy Name",
    "type": "Retention",
    "targetAudience": "Target description",
    "objectives": "Detailed objectives",
    "channels": ["Channel 1", "Channel 2"],
    "outcomes": "Expected outcomes",
    "timeline": "Timeline description",
    "budget": "Budget information"
  }
]

Make sure your strategies are specifically tailored to the customer data provided.
`)
	return b.String()
}

func buildPrototypePrompt(req PromptRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert product development consultant analyzing a product idea to generate a detailed product prototype.\n\n")

	b.WriteString("PRODUCT INFORMATION:\n")
	fmt.Fprintf(&b, "- Product name: %s\n", freeTextOr(req.FreeText, "productName", "Not specified"))
	fmt.Fprintf(&b, "- Description: %s\n", freeTextOr(req.FreeText, "productDescription", "Not specified"))
	fmt.Fprintf(&b, "- Category: %s\n", freeTextOr(req.FreeText, "category", "Not specified"))
	fmt.Fprintf(&b, "- Target market: %s\n\n", freeTextOr(req.FreeText, "targetMarket", "Not specified"))

	b.WriteString(`Based on this information, generate a comprehensive product prototype that includes:

1. Detailed product features and specifications
2. Unique selling points (USPs)
3. Potential variations or product line extensions
4. Packaging suggestions
5. Pricing strategy recommendations
6. Production and sourcing considerations
7. Marketing positioning recommendations
8. Market potential analysis

IMPORTANT: Format your response as a valid JSON object with these exact field names:
name, description, category, features (as array), usps (as array), variations (as array), packaging, pricing, production, marketing, marketPotential, acceptabilityScore (a number between 0-100)

Example format:
{
  "name": "Enhanced Product Name",
  "description": "Refined product description",
  "category": "Product category",
  "features": ["Feature 1", "Feature 2", "Feature 3"],
  "usps": ["USP 1", "USP 2", "USP 3"],
  "variations": ["Variation 1", "Variation 2"],
  "packaging": "Packaging details and suggestions",
  "pricing": "Pricing strategy details",
  "production": "Production considerations",
  "marketing": "Marketing positioning details",
  "marketPotential": "Analysis of market potential",
  "acceptabilityScore": 85
}
`)
	return b.String()
}

func buildMarketResearchPrompt(req PromptRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert market research analyst using advanced data analysis techniques to generate comprehensive market insights.\n\n")

	b.WriteString("RESEARCH DATA:\n\n")
	fmt.Fprintf(&b, "Secondary Research:\n%s\n\n", freeTextOr(req.FreeText, "secondaryResearch", "No secondary research data provided."))
	fmt.Fprintf(&b, "Primary Research:\n%s\n\n", freeTextOr(req.FreeText, "primaryResearch", "No primary research data provided."))

	b.WriteString(`Based on this research data, generate a comprehensive market analysis with the following structure:

1. Metrics (include percentages where appropriate):
   - Data Quality Score
   - Research Completeness
   - Confidence Level
   - Data Reliability
   - Insight Quality

2. Market Trends:
   - Summary (1-2 paragraphs with specific percentages and growth metrics)
   - Key Insights (5-7 bullet points with specific percentages)
   - Emerging Opportunities (3-5 bullet points)

3. Customer Behavior:
   - Key Segments (4-5 segments with market share percentages)
   - Pain Points (4-5 points with percentage of respondents)
   - Opportunities (4-5 detailed points)
   - Buying Journey (awareness channels, decision factors, purchase barriers, loyalty drivers with percentages)

4. Competitive Analysis:
   - Market Leaders (3-5 companies with their strengths and weaknesses)
   - Market Gaps (3-5 points)

5. Strategic Recommendations:
   - Short Term (3-5 actionable recommendations)
   - Medium Term (3-5 actionable recommendations)
   - Long Term (3-5 actionable recommendations)

IMPORTANT: Format your response as a valid JSON object with these exact field names and structure:
{
  "metrics": {
    "dataQualityScore": "X%",
    "researchCompleteness": "X%",
    "confidenceLevel": "High/Medium/Low",
    "dataReliability": "X%",
    "insightQuality": "X%"
  },
  "marketTrends": {
    "summary": "text",
    "keyInsights": ["insight1", "insight2"],
    "emergingOpportunities": ["opportunity1", "opportunity2"]
  },
  "customerBehavior": {
    "segments": ["segment1", "segment2"],
    "painPoints": ["painPoint1", "painPoint2"],
    "opportunities": ["opportunity1", "opportunity2"],
    "buyingJourney": {
      "awarenessChannels": ["channel1", "channel2"],
      "decisionFactors": ["factor1", "factor2"],
      "purchaseBarriers": ["barrier1", "barrier2"],
      "loyaltyDrivers": ["driver1", "driver2"]
    }
  },
  "competitiveAnalysis": {
    "marketLeaders": [
      { "name": "Company1", "strengths": ["strength1"], "weaknesses": ["weakness1"] }
    ],
    "marketGaps": ["gap1", "gap2"]
  },
  "recommendations": {
    "shortTerm": ["rec1", "rec2"],
    "mediumTerm": ["rec1", "rec2"],
    "longTerm": ["rec1", "rec2"]
  }
}

Make sure your analysis is data-driven, specific, and actionable. Include percentages and specific metrics wherever possible.
`)
	return b.String()
}

func buildBCGNarrativePrompt(req PromptRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert business strategy consultant interpreting a BCG growth-share matrix computed from sales data.\n\n")

	b.WriteString("MATRIX SUMMARY:\n")
	fmt.Fprintf(&b, "%s\n\n", freeTextOr(req.FreeText, "matrixSummary", "No matrix summary available."))

	b.WriteString("KEY METRICS:\n")
	b.WriteString(formatAggregates(req.Aggregates, req.TotalRows))
	b.WriteString("\n")

	b.WriteString(`Based on the quadrant distribution and top products above, write a portfolio commentary covering:

1. An overall summary of the portfolio balance
2. Portfolio strengths worth protecting
3. Risks that need attention
4. Strategic recommendations per quadrant

IMPORTANT: Format your response as a valid JSON object with these exact field names:
summary, strengths (as array), risks (as array), recommendations (as array)

Example format:
{
  "summary": "Overall portfolio assessment",
  "strengths": ["Strength 1", "Strength 2"],
  "risks": ["Risk 1", "Risk 2"],
  "recommendations": ["Recommendation 1", "Recommendation 2"]
}
`)
	return b.String()
}

// formatAggregates renders the human-readable metrics block: numeric averages
// to 2 decimals, then the top 3 categories of each frequency table with
// percentages. Keys are walked in sorted order so rendering is deterministic.
func formatAggregates(agg dataset.AggregateSummary, totalRows int) string {
	var b strings.Builder

	numKeys := make([]string, 0, len(agg.Numbers))
	for key := range agg.Numbers {
		if strings.HasPrefix(key, "avg_") {
			numKeys = append(numKeys, key)
		}
	}
	sort.Strings(numKeys)
	for _, key := range numKeys {
		field := strings.TrimPrefix(key, "avg_")
		fmt.Fprintf(&b, "- Average %s: %.2f\n", field, agg.Numbers[key])
	}

	freqKeys := make([]string, 0, len(agg.Frequencies))
	for key := range agg.Frequencies {
		freqKeys = append(freqKeys, key)
	}
	sort.Strings(freqKeys)
	for _, key := range freqKeys {
		field := strings.TrimPrefix(key, "freq_")
		fmt.Fprintf(&b, "- Top %s categories:\n", field)
		for _, entry := range topEntries(agg.Frequencies[key], topCategories) {
			pct := 0.0
			if totalRows > 0 {
				pct = float64(entry.count) / float64(totalRows) * 100
			}
			fmt.Fprintf(&b, "  * %s: %d (%.1f%%)\n", entry.name, entry.count, pct)
		}
	}

	if b.Len() == 0 {
		return "No aggregated metrics available.\n"
	}
	return b.String()
}

type freqEntry struct {
	name  string
	count int
}

// topEntries orders a frequency table by count descending, name ascending on
// ties so output is stable.
func topEntries(freq map[string]int, n int) []freqEntry {
	entries := make([]freqEntry, 0, len(freq))
	for name, count := range freq {
		entries = append(entries, freqEntry{name: name, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}

// formatSampleRows serializes up to 5 rows as indented JSON. Maps marshal with
// sorted keys, keeping the rendering deterministic.
func formatSampleRows(rows []dataset.Row) string {
	if len(rows) > maxSampleRows {
		rows = rows[:maxSampleRows]
	}
	if len(rows) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "[]"
	}
	return truncateField(string(data))
}

func writeFreeText(b *strings.Builder, freeText map[string]string) {
	if len(freeText) == 0 {
		return
	}
	keys := make([]string, 0, len(freeText))
	for key := range freeText {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	b.WriteString("ADDITIONAL CONTEXT:\n")
	for _, key := range keys {
		fmt.Fprintf(b, "- %s: %s\n", key, truncateField(freeText[key]))
	}
	b.WriteString("\n")
}

func freeTextOr(freeText map[string]string, key, fallback string) string {
	if value, ok := freeText[key]; ok && strings.TrimSpace(value) != "" {
		return truncateField(value)
	}
	return fallback
}

// truncateField caps oversized free text. The cut backs off to a rune
// boundary so the prompt never carries invalid UTF-8.
func truncateField(s string) string {
	if len(s) <= maxFieldLength {
		return s
	}
	cut := maxFieldLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
