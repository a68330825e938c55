package ai

import (
	"regexp"
	"strings"
)

// Degraded-mode text parser. When no JSON can be extracted at all, the raw
// prose is split into candidate sections and mined with labeled regexes for
// strategy-shaped fields. Intentionally lossy: anything not matched stays
// absent and the normalizer fills it with defaults. Never returns an error.

const maxFallbackSections = 3

var (
	sectionHeaderRe = regexp.MustCompile(`(?is)Strategy\s*(\d+|name|title)?[:.\-\s]+`)
	enumeratedRe    = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	blankLineRe     = regexp.MustCompile(`\n\s*\n`)

	nameLabelRe  = regexp.MustCompile(`(?i)(?:strategy|campaign|plan|initiative)\s*(?:name|title)?[:.\-\s]+([^\n]+)`)
	enumNameRe   = regexp.MustCompile(`(?m)^\s*(\d+)[.)\s]+([^\n]+)`)
	firstLineRe  = regexp.MustCompile(`^([^\n:]+?)(?:\n|:)`)
	typeLabelRe  = regexp.MustCompile(`(?i)type[:.\-\s]+([^\n]+)`)
	typeWordRe   = regexp.MustCompile(`(?i)(retention|launch|upsell)`)
	audienceRe   = regexp.MustCompile(`(?i)(?:target|audience)[:.\-\s]+([^\n]+)`)
	objectivesRe = regexp.MustCompile(`(?i)(?:objective|goal|aim)s?[:.\-\s]+([^\n]+)`)
	channelsRe   = regexp.MustCompile(`(?i)(?:channel|platform|medium)s?[:.\-\s]+([^\n]+)`)
	outcomesRe   = regexp.MustCompile(`(?i)(?:outcome|result|benefit)s?[:.\-\s]+([^\n]+)`)
	timelineRe   = regexp.MustCompile(`(?i)(?:timeline|timeframe|duration|period)[:.\-\s]+([^\n]+)`)
	budgetRe     = regexp.MustCompile(`(?i)(?:budget|cost|investment)[:.\-\s]+([^\n]+)`)

	channelSplitRe = regexp.MustCompile(`[,;]|\band\b`)
)

// ParseTextSections mines free-form model prose for partial strategy records.
// Returns at most 3 partial objects; may return none when the text has no
// recognizable sections.
func ParseTextSections(text string) []map[string]interface{} {
	sections := splitSections(text)
	if len(sections) > maxFallbackSections {
		sections = sections[:maxFallbackSections]
	}

	var partials []map[string]interface{}
	for _, section := range sections {
		partial := mineSection(section)
		if len(partial) > 0 {
			partials = append(partials, partial)
		}
	}
	return partials
}

// splitSections breaks prose into candidate strategy sections: explicit
// "Strategy N" headers first, then enumerated lines, then blank-line blocks
// long enough to carry content.
func splitSections(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if locs := sectionHeaderRe.FindAllStringIndex(text, -1); len(locs) > 0 {
		var sections []string
		for i, loc := range locs {
			end := len(text)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			if section := strings.TrimSpace(text[loc[0]:end]); section != "" {
				sections = append(sections, section)
			}
		}
		return sections
	}

	if locs := enumeratedRe.FindAllStringIndex(text, -1); len(locs) > 1 {
		var sections []string
		for i, loc := range locs {
			end := len(text)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			if section := strings.TrimSpace(text[loc[0]:end]); section != "" {
				sections = append(sections, section)
			}
		}
		return sections
	}

	var sections []string
	for _, block := range blankLineRe.Split(text, -1) {
		if len(strings.TrimSpace(block)) > 50 {
			sections = append(sections, strings.TrimSpace(block))
		}
	}
	return sections
}

func mineSection(section string) map[string]interface{} {
	partial := make(map[string]interface{})

	if m := nameLabelRe.FindStringSubmatch(section); m != nil {
		partial["name"] = strings.TrimSpace(m[1])
	} else if m := enumNameRe.FindStringSubmatch(section); m != nil {
		partial["name"] = strings.TrimSpace(m[2])
	} else if m := firstLineRe.FindStringSubmatch(section); m != nil {
		partial["name"] = strings.TrimSpace(m[1])
	}

	if m := typeLabelRe.FindStringSubmatch(section); m != nil {
		partial["type"] = canonicalType(m[1])
	} else if m := typeWordRe.FindStringSubmatch(section); m != nil {
		partial["type"] = canonicalType(m[1])
	}

	if m := audienceRe.FindStringSubmatch(section); m != nil {
		partial["targetAudience"] = strings.TrimSpace(m[1])
	}
	if m := objectivesRe.FindStringSubmatch(section); m != nil {
		partial["objectives"] = strings.TrimSpace(m[1])
	}
	if m := channelsRe.FindStringSubmatch(section); m != nil {
		if channels := splitChannels(m[1]); len(channels) > 0 {
			partial["channels"] = channels
		}
	}
	if m := outcomesRe.FindStringSubmatch(section); m != nil {
		partial["outcomes"] = strings.TrimSpace(m[1])
	}
	if m := timelineRe.FindStringSubmatch(section); m != nil {
		partial["timeline"] = strings.TrimSpace(m[1])
	}
	if m := budgetRe.FindStringSubmatch(section); m != nil {
		partial["budget"] = strings.TrimSpace(m[1])
	}

	// Drop degenerate empty-string names so defaults take over.
	if name, ok := partial["name"].(string); ok && name == "" {
		delete(partial, "name")
	}
	return partial
}

func canonicalType(match string) string {
	switch {
	case strings.Contains(strings.ToLower(match), "retention"):
		return "Retention"
	case strings.Contains(strings.ToLower(match), "upsell"):
		return "Upsell"
	default:
		return "Launch"
	}
}

func splitChannels(raw string) []interface{} {
	var channels []interface{}
	for _, part := range channelSplitRe.Split(raw, -1) {
		if channel := strings.TrimSpace(part); channel != "" {
			channels = append(channels, channel)
		}
	}
	return channels
}
