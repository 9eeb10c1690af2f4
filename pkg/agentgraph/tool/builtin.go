package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NewDateTime returns the built-in current_datetime tool. It reports
// the current date, time, and day of the week so the model can answer
// time-sensitive questions.
func NewDateTime(now func() time.Time) Tool {
	if now == nil {
		now = time.Now
	}
	return &Func{
		ToolName:        "current_datetime",
		ToolDescription: "Get the current date, time, and day of the week.",
		ToolSchema: json.RawMessage(`{
			"type": "object",
			"properties": {},
			"required": []
		}`),
		Fn: func(_ context.Context, _ json.RawMessage) (string, error) {
			t := now()
			return fmt.Sprintf("Current date and time: %s (%s)",
				t.Format("2006-01-02 15:04:05 MST"), t.Weekday()), nil
		},
	}
}

// WebSearchConfig configures the built-in web_search tool.
type WebSearchConfig struct {
	// APIKey authenticates against the search API.
	APIKey string

	// Endpoint is the search API URL. Defaults to the Tavily search
	// endpoint when empty.
	Endpoint string

	// MaxResults caps the number of results per query. Defaults to 3.
	MaxResults int

	// HTTPClient overrides the default HTTP client (useful for tests).
	HTTPClient *http.Client
}

const defaultSearchEndpoint = "https://api.tavily.com/search"

// webSearch is the built-in web search tool, backed by the Tavily
// search API.
type webSearch struct {
	cfg    WebSearchConfig
	client *http.Client
}

// NewWebSearch returns the built-in web_search tool.
func NewWebSearch(cfg WebSearchConfig) Tool {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultSearchEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &webSearch{cfg: cfg, client: client}
}

func (w *webSearch) Name() string { return "web_search" }

func (w *webSearch) Description() string {
	return "Search the web for up-to-date information on a topic."
}

func (w *webSearch) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The search query"
			}
		},
		"required": ["query"]
	}`)
}

func (w *webSearch) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parse arguments: %w", err)
	}
	if params.Query == "" {
		return "", fmt.Errorf("query cannot be empty")
	}

	body, err := json.Marshal(map[string]any{
		"api_key":     w.cfg.APIKey,
		"query":       params.Query,
		"max_results": w.cfg.MaxResults,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: search API returned %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API returned %d: %s", resp.StatusCode, data)
	}

	var result struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(result.Results) == 0 {
		return "No results found.", nil
	}

	var buf bytes.Buffer
	for i, r := range result.Results {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		fmt.Fprintf(&buf, "%s\n%s\n%s", r.Title, r.URL, r.Content)
	}
	return buf.String(), nil
}
