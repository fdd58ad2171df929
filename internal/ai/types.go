package ai

// Request/response envelopes for the Gemini generateContent REST API.
// Only the fields we actually read are declared.

type apiRequest struct {
	Contents []apiContent `json:"contents"`
	Tools    []apiTool    `json:"tools,omitempty"`
}

type apiContent struct {
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text string `json:"text"`
}

// apiTool enables server-side capabilities. GoogleSearch non-nil turns on
// search grounding for the request.
type apiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type apiResponse struct {
	Candidates []apiCandidate `json:"candidates"`
}

type apiCandidate struct {
	Content           apiContent         `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks"`
}

// GroundingChunk is one citation attached by the search tool. Only web
// references carry a usable URI.
type GroundingChunk struct {
	Web *WebReference `json:"web,omitempty"`
}

// WebReference points at the page the model grounded a claim on.
type WebReference struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
