package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Client talks to the Gemini generateContent endpoint. One Analyze call is
// exactly one outbound request: no implicit retries, the user re-runs the
// analysis if it fails.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewClient builds a client from the environment. A missing key is only a
// warning here; Analyze fails fast with ErrCredentialMissing when actually
// invoked, so the rest of the app (price feed, history) keeps working.
func NewClient(timeout time.Duration) *Client {
	apiKey := os.Getenv("GEMINI_API_KEY")
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-pro" // The structured output schema needs a strong model
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", model)

	if apiKey == "" {
		log.Println("WARNING: GEMINI_API_KEY not found. Analysis requests will fail until it is set.")
	}

	return &Client{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze sends the instruction payload with search grounding enabled and
// returns the raw response text plus any citation chunks. The text is NOT
// validated here; that is the validator's job.
func (c *Client) Analyze(prompt string) (string, []GroundingChunk, error) {
	if c.apiKey == "" {
		return "", nil, ErrCredentialMissing
	}

	reqBody := apiRequest{
		Contents: []apiContent{
			{Parts: []apiPart{{Text: prompt}}},
		},
		Tools: []apiTool{
			{GoogleSearch: &struct{}{}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, &BackendCallError{Cause: err}
	}

	req, err := http.NewRequest(http.MethodPost, c.url+"?key="+c.apiKey, bytes.NewBuffer(payload))
	if err != nil {
		return "", nil, &BackendCallError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers transport failures and the client timeout.
		return "", nil, &BackendCallError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", nil, &BackendCallError{Cause: fmt.Errorf("AI API error %d: %s", resp.StatusCode, string(body))}
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", nil, &BackendCallError{Cause: err}
	}

	if len(result.Candidates) == 0 {
		return "", nil, &BackendCallError{Cause: fmt.Errorf("no candidates in AI response")}
	}
	candidate := result.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return "", nil, &BackendCallError{Cause: fmt.Errorf("no content parts in AI response")}
	}

	var chunks []GroundingChunk
	if candidate.GroundingMetadata != nil {
		chunks = candidate.GroundingMetadata.GroundingChunks
	}

	return candidate.Content.Parts[0].Text, chunks, nil
}
