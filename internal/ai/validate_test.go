package ai

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const validResponse = `{
  "currentPrice": "$65,123.45",
  "assumptions": "Assuming average funding rates.",
  "bottomLine": "The primary bias is LONG for the 4 Hours horizon.",
  "biasProbabilities": {"long": 62, "short": 38},
  "keyLevels": {
    "resistance1": {"price": "$66,000", "description": "Swing high."},
    "support1": {"price": "$64,500", "description": "4H 50 EMA."},
    "resistance2": {"price": "$67,200", "description": "Weekly open."},
    "support2": {"price": "$63,100", "description": "Consolidation zone."},
    "dailyPivot": {"price": "$65,100", "description": "Daily pivot."},
    "invalidationLevel": {"price": "$62,500", "description": "Thesis invalidation."}
  },
  "liveNews": [
    {"title": "ETF inflows continue", "source": "Reuters", "summary": "Spot ETF demand remains strong.", "importance": "Medium"}
  ],
  "upcomingEvents": [
    {"event": "US CPI Data Release", "date": "2099-01-12T13:30:00Z", "potentialImpact": "High volatility expected."}
  ],
  "technicalJustification": {
    "confluenceScore": 71,
    "marketRegime": "Trend Up on 1H",
    "methodsEvaluation": {
      "Trend-Following Pullback": {"score": 8, "reasoning": "Strong 1H trend."}
    },
    "trendAndStructure": "HH/HL on 1H.",
    "keyLevels": "Levels from recent swing points.",
    "momentumAndVolume": "RSI rising, volume confirming.",
    "liquidityNotes": "Liquidity resting above 66k.",
    "newsSummary": "Mildly bullish."
  },
  "educationalTradeIdea": {
    "bias": "LONG",
    "entryZone": "$64,900 - $65,000",
    "stopLossZone": "$64,400",
    "takeProfitZones": ["$65,800", "$66,400"],
    "riskReward": "~1:2.5",
    "explanation": "Pullback to support within the dominant trend."
  },
  "riskWarning": "This is educational, not financial advice."
}`

// withoutField returns validResponse with one top-level or nested field
// removed, so missing-path cases don't need a dozen hand-written fixtures.
func withoutField(t *testing.T, path ...string) string {
	t.Helper()

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(validResponse), &doc); err != nil {
		t.Fatalf("fixture does not parse: %v", err)
	}

	target := doc
	for _, key := range path[:len(path)-1] {
		target = target[key].(map[string]interface{})
	}
	delete(target, path[len(path)-1])

	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to re-marshal fixture: %v", err)
	}
	return string(b)
}

func TestValidateAnalysis_Valid(t *testing.T) {
	record, err := ValidateAnalysis(validResponse, nil)
	if err != nil {
		t.Fatalf("expected valid record, got error: %v", err)
	}

	if record.CurrentPrice != "$65,123.45" {
		t.Errorf("CurrentPrice mismatch: got %q", record.CurrentPrice)
	}
	if record.BiasProbabilities.Long+record.BiasProbabilities.Short != 100 {
		t.Errorf("probabilities do not sum to 100: %+v", record.BiasProbabilities)
	}
	if record.KeyLevels.DailyPivot.Price != "$65,100" {
		t.Errorf("dailyPivot mismatch: %+v", record.KeyLevels.DailyPivot)
	}
	if record.EducationalTradeIdea.Bias != "LONG" {
		t.Errorf("bias mismatch: got %q", record.EducationalTradeIdea.Bias)
	}
	if len(record.Sources) != 0 {
		t.Errorf("expected no sources without chunks, got %v", record.Sources)
	}
	method, ok := record.TechnicalJustification.MethodsEvaluation["Trend-Following Pullback"]
	if !ok || method.Score != 8 {
		t.Errorf("methodsEvaluation not preserved: %+v", record.TechnicalJustification.MethodsEvaluation)
	}
}

func TestValidateAnalysis_FenceStripping(t *testing.T) {
	fenced := []string{
		"```json\n" + validResponse + "\n```",
		"```\n" + validResponse + "\n```",
		"  \n```json\n" + validResponse + "\n```  \n",
	}

	want, err := ValidateAnalysis(validResponse, nil)
	if err != nil {
		t.Fatalf("plain fixture failed: %v", err)
	}

	for _, raw := range fenced {
		got, err := ValidateAnalysis(raw, nil)
		if err != nil {
			t.Fatalf("fenced variant failed: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("fenced parse differs from plain parse")
		}
	}
}

func TestValidateAnalysis_FenceNeverStripsInterior(t *testing.T) {
	// A fence marker inside a JSON string must survive stripping.
	inner := strings.Replace(validResponse,
		"This is educational, not financial advice.",
		"Watch the ``` marker level.", 1)

	record, err := ValidateAnalysis("```json\n"+inner+"\n```", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(record.RiskWarning, "```") {
		t.Errorf("interior fence content was stripped: %q", record.RiskWarning)
	}
}

func TestValidateAnalysis_ParseFailure(t *testing.T) {
	_, err := ValidateAnalysis("The market looks bullish today!", nil)

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	if malformed.Raw != "The market looks bullish today!" {
		t.Errorf("raw text not retained: %q", malformed.Raw)
	}
}

func TestValidateAnalysis_MissingSection(t *testing.T) {
	cases := []struct {
		path     []string
		wantPath string
	}{
		{[]string{"technicalJustification"}, "technicalJustification"},
		{[]string{"biasProbabilities"}, "biasProbabilities"},
		{[]string{"riskWarning"}, "riskWarning"},
		{[]string{"keyLevels", "dailyPivot"}, "keyLevels.dailyPivot"},
		{[]string{"keyLevels", "invalidationLevel"}, "keyLevels.invalidationLevel"},
	}

	for _, tc := range cases {
		raw := withoutField(t, tc.path...)
		_, err := ValidateAnalysis(raw, nil)

		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("%s: expected MalformedResponseError, got %v", tc.wantPath, err)
		}
		if malformed.Path != tc.wantPath {
			t.Errorf("expected path %q, got %q", tc.wantPath, malformed.Path)
		}
	}
}

func TestValidateAnalysis_ProbabilitySum(t *testing.T) {
	cases := []string{
		strings.Replace(validResponse, `{"long": 62, "short": 38}`, `{"long": 62, "short": 37}`, 1),
		strings.Replace(validResponse, `{"long": 62, "short": 38}`, `{"long": 110, "short": -10}`, 1),
	}

	for _, raw := range cases {
		_, err := ValidateAnalysis(raw, nil)
		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedResponseError, got %v", err)
		}
		if malformed.Path != "biasProbabilities" {
			t.Errorf("expected biasProbabilities path, got %q", malformed.Path)
		}
	}
}

func TestValidateAnalysis_Idempotent(t *testing.T) {
	first, err := ValidateAnalysis(validResponse, nil)
	if err != nil {
		t.Fatalf("first validation failed: %v", err)
	}
	second, err := ValidateAnalysis(validResponse, nil)
	if err != nil {
		t.Fatalf("second validation failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical raw text produced different records")
	}
}

func TestExtractSources(t *testing.T) {
	chunks := []GroundingChunk{
		{Web: &WebReference{URI: "https://a.example/1", Title: "Article One"}},
		{Web: &WebReference{URI: "https://a.example/2"}},              // Missing title
		{Web: &WebReference{URI: "", Title: "No URI"}},                // Dropped
		{Web: nil},                                                    // Dropped
		{Web: &WebReference{URI: "https://a.example/1", Title: "Dup"}}, // Deduped
	}

	sources := ExtractSources(chunks)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d: %v", len(sources), sources)
	}
	if sources[0].Title != "Article One" {
		t.Errorf("unexpected first source: %+v", sources[0])
	}
	if sources[1].Title != "Untitled Source" {
		t.Errorf("missing title not defaulted: %+v", sources[1])
	}

	if got := ExtractSources(nil); got != nil {
		t.Errorf("expected nil for empty chunk list, got %v", got)
	}
}

func TestValidateAnalysis_AttachesSources(t *testing.T) {
	chunks := []GroundingChunk{
		{Web: &WebReference{URI: "https://news.example/btc", Title: "BTC News"}},
	}
	record, err := ValidateAnalysis(validResponse, chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Sources) != 1 || record.Sources[0].URI != "https://news.example/btc" {
		t.Errorf("sources not attached: %v", record.Sources)
	}
}
