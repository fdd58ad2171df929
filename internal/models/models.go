package models

// This package holds the canonical shape of one analysis result and the
// history records built from it. The structs mirror the JSON schema the
// AI backend is instructed to emit, so the struct tags here ARE the wire
// contract: renaming a tag silently breaks validation.

// GroundingSource is one web citation the backend used while searching.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// KeyLevel is a single named price level with its rationale.
type KeyLevel struct {
	Price       string `json:"price"`       // Display string, e.g. "$66,000"
	Description string `json:"description"` // Why this level matters
}

// KeyLevels is the closed set of six named levels every analysis must carry.
// This is deliberately a struct, not a map: the level names are fixed by the
// output schema and the chart layer depends on all six being addressable.
type KeyLevels struct {
	Resistance1       KeyLevel `json:"resistance1"`
	Support1          KeyLevel `json:"support1"`
	Resistance2       KeyLevel `json:"resistance2"`
	Support2          KeyLevel `json:"support2"`
	DailyPivot        KeyLevel `json:"dailyPivot"`
	InvalidationLevel KeyLevel `json:"invalidationLevel"`
}

// LiveNews is a recent news item the backend found relevant.
type LiveNews struct {
	Title      string `json:"title"`
	Source     string `json:"source"`
	Summary    string `json:"summary"`
	Importance string `json:"importance"` // Low, Medium, High
}

// UpcomingEvent is a scheduled market-moving event.
type UpcomingEvent struct {
	Event           string `json:"event"`
	Date            string `json:"date"` // ISO-8601 UTC, instructed to be future-dated
	PotentialImpact string `json:"potentialImpact"`
}

// BiasProbabilities splits conviction between the two allowed directions.
// The validator enforces Long + Short == 100.
type BiasProbabilities struct {
	Long  float64 `json:"long"`
	Short float64 `json:"short"`
}

// MethodScore rates one trading method for the current setup.
type MethodScore struct {
	Score     float64 `json:"score"` // 0-10
	Reasoning string  `json:"reasoning"`
}

// TechnicalJustification is the analytical backbone of the report.
// MethodsEvaluation is an open map on purpose: the method names are
// prompt-suggested, not schema-fixed, and the backend may add its own.
type TechnicalJustification struct {
	ConfluenceScore   float64                `json:"confluenceScore"` // 0-100
	MarketRegime      string                 `json:"marketRegime"`
	MethodsEvaluation map[string]MethodScore `json:"methodsEvaluation"`
	TrendAndStructure string                 `json:"trendAndStructure"`
	KeyLevels         string                 `json:"keyLevels"` // Prose summary, not the level map
	MomentumAndVolume string                 `json:"momentumAndVolume"`
	LiquidityNotes    string                 `json:"liquidityNotes"`
	NewsSummary       string                 `json:"newsSummary"`
}

// TradeIdea is the single educational setup derived from the analysis.
type TradeIdea struct {
	Bias            string   `json:"bias"` // LONG or SHORT, never neutral
	EntryZone       string   `json:"entryZone"`
	StopLossZone    string   `json:"stopLossZone"`
	TakeProfitZones []string `json:"takeProfitZones"`
	RiskReward      string   `json:"riskReward"`
	Explanation     string   `json:"explanation"`
}

// AnalysisRecord is one validated analysis. Immutable once created: the
// validator is the only producer, and nothing downstream mutates it.
type AnalysisRecord struct {
	CurrentPrice           string                 `json:"currentPrice"`
	Assumptions            string                 `json:"assumptions,omitempty"`
	BottomLine             string                 `json:"bottomLine"`
	BiasProbabilities      BiasProbabilities      `json:"biasProbabilities"`
	KeyLevels              KeyLevels              `json:"keyLevels"`
	LiveNews               []LiveNews             `json:"liveNews"`
	UpcomingEvents         []UpcomingEvent        `json:"upcomingEvents"`
	TechnicalJustification TechnicalJustification `json:"technicalJustification"`
	EducationalTradeIdea   TradeIdea              `json:"educationalTradeIdea"`
	RiskWarning            string                 `json:"riskWarning"`
	Sources                []GroundingSource      `json:"sources,omitempty"`
}

// HistoryEntry wraps an AnalysisRecord with the request context it answered.
// Entries are immutable after creation; the history store only prepends
// and trims, it never edits.
type HistoryEntry struct {
	ID         string         `json:"id"`        // Timestamp-derived, unique per entry
	Timestamp  string         `json:"timestamp"` // RFC3339
	CryptoName string         `json:"cryptoName"`
	Ticker     string         `json:"ticker"`
	Timeframe  string         `json:"timeframe"`
	Analysis   AnalysisRecord `json:"analysis"`
}
