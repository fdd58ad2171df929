package ai

import (
	"encoding/json"
	"strings"

	"crypto_ta/internal/models"
)

// untitledSource is the placeholder title for citations that arrive without one.
const untitledSource = "Untitled Source"

// requiredSections are the top-level fields every response must carry.
// Order matters only for error reporting: the first missing path wins.
var requiredSections = []string{
	"currentPrice",
	"bottomLine",
	"biasProbabilities",
	"keyLevels",
	"technicalJustification",
	"educationalTradeIdea",
	"riskWarning",
}

// requiredLevels are the six fixed key-level names of the output schema.
var requiredLevels = []string{
	"resistance1",
	"support1",
	"resistance2",
	"support2",
	"dailyPivot",
	"invalidationLevel",
}

// ValidateAnalysis turns the backend's raw text into a canonical
// AnalysisRecord, or a MalformedResponseError carrying the offending text.
//
// The model output is adversarial from this function's point of view: every
// parse is fallible, and nothing is coerced, rounded or renormalized. Only
// shape and the probability-sum invariant are enforced; the numbers
// themselves are the model's responsibility.
func ValidateAnalysis(raw string, chunks []GroundingChunk) (*models.AnalysisRecord, error) {
	text := stripFence(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Cause: err}
	}

	for _, section := range requiredSections {
		v, ok := top[section]
		if !ok || isNull(v) {
			return nil, &MalformedResponseError{Path: section, Raw: raw}
		}
	}

	var levels map[string]json.RawMessage
	if err := json.Unmarshal(top["keyLevels"], &levels); err != nil {
		return nil, &MalformedResponseError{Path: "keyLevels", Raw: raw, Cause: err}
	}
	for _, name := range requiredLevels {
		v, ok := levels[name]
		if !ok || isNull(v) {
			return nil, &MalformedResponseError{Path: "keyLevels." + name, Raw: raw}
		}
		var level models.KeyLevel
		if err := json.Unmarshal(v, &level); err != nil {
			return nil, &MalformedResponseError{Path: "keyLevels." + name, Raw: raw, Cause: err}
		}
		if level.Price == "" {
			return nil, &MalformedResponseError{Path: "keyLevels." + name + ".price", Raw: raw}
		}
		if level.Description == "" {
			return nil, &MalformedResponseError{Path: "keyLevels." + name + ".description", Raw: raw}
		}
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Cause: err}
	}

	if record.CurrentPrice == "" {
		return nil, &MalformedResponseError{Path: "currentPrice", Raw: raw}
	}
	if record.BottomLine == "" {
		return nil, &MalformedResponseError{Path: "bottomLine", Raw: raw}
	}
	if record.RiskWarning == "" {
		return nil, &MalformedResponseError{Path: "riskWarning", Raw: raw}
	}

	// The backend's arithmetic must be exact. A 49/50 split is a model
	// error to surface, not something to silently renormalize.
	probs := record.BiasProbabilities
	if probs.Long < 0 || probs.Long > 100 || probs.Short < 0 || probs.Short > 100 ||
		probs.Long+probs.Short != 100 {
		return nil, &MalformedResponseError{Path: "biasProbabilities", Raw: raw}
	}

	record.Sources = ExtractSources(chunks)

	return &record, nil
}

// ExtractSources maps citation chunks to deduplicated grounding sources.
// Entries without a URI are dropped, missing titles get a placeholder, and
// an empty or absent chunk list yields nil. This step never fails.
func ExtractSources(chunks []GroundingChunk) []models.GroundingSource {
	if len(chunks) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(chunks))
	var sources []models.GroundingSource
	for _, chunk := range chunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		if seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true

		title := chunk.Web.Title
		if title == "" {
			title = untitledSource
		}
		sources = append(sources, models.GroundingSource{URI: chunk.Web.URI, Title: title})
	}
	return sources
}

// stripFence removes a markdown code fence wrapping the payload, with or
// without a language tag. Exactly one leading fence line and one trailing
// fence line are removed; interior content is never touched. Text that is
// not fenced passes through unchanged apart from whitespace trimming.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	nl := strings.Index(s, "\n")
	if nl < 0 {
		// A single fence line with no body; nothing sensible to strip.
		return s
	}
	body := s[nl+1:]

	trimmed := strings.TrimRight(body, " \t\r\n")
	if last := strings.LastIndex(trimmed, "\n"); last >= 0 {
		if strings.TrimSpace(trimmed[last+1:]) == "```" {
			return strings.TrimSpace(trimmed[:last])
		}
	} else if strings.TrimSpace(trimmed) == "```" {
		return ""
	}

	return strings.TrimSpace(body)
}

func isNull(v json.RawMessage) bool {
	return string(v) == "null"
}
