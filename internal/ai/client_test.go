package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(url string) *Client {
	return &Client{
		apiKey:     "test-key",
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestAnalyze_CredentialMissing(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := testClient(server.URL)
	c.apiKey = ""

	_, _, err := c.Analyze("prompt")
	if !errors.Is(err, ErrCredentialMissing) {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
	// Fail fast means no network call was attempted.
	if calls != 0 {
		t.Errorf("expected 0 requests, backend saw %d", calls)
	}
}

func TestAnalyze_Success(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "{\"ok\":true}"}]},
				"groundingMetadata": {
					"groundingChunks": [
						{"web": {"uri": "https://x.example", "title": "X"}}
					]
				}
			}]
		}`))
	}))
	defer server.Close()

	text, chunks, err := testClient(server.URL).Analyze("my prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"ok":true}` {
		t.Errorf("unexpected text: %q", text)
	}
	if len(chunks) != 1 || chunks[0].Web.URI != "https://x.example" {
		t.Errorf("grounding chunks not extracted: %v", chunks)
	}

	// The request carries the prompt and enables search grounding.
	if _, ok := gotBody["tools"]; !ok {
		t.Error("request body missing tools (search grounding)")
	}
	contents := gotBody["contents"].([]interface{})
	part := contents[0].(map[string]interface{})["parts"].([]interface{})[0].(map[string]interface{})
	if part["text"] != "my prompt" {
		t.Errorf("prompt not sent verbatim: %v", part["text"])
	}
}

func TestAnalyze_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := testClient(server.URL).Analyze("prompt")

	var backendErr *BackendCallError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendCallError, got %v", err)
	}
}

func TestAnalyze_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	_, _, err := testClient(server.URL).Analyze("prompt")

	var backendErr *BackendCallError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected BackendCallError, got %v", err)
	}
}
