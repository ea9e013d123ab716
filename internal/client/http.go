package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/progress"
)

// HTTPClient implements ShowClient using the cueline HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Show control ---

func (c *HTTPClient) GetShow(ctx context.Context) (*ShowStatus, error) {
	var status ShowStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/show", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) StartShow(ctx context.Context) (*StartShowResponse, error) {
	var resp StartShowResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/show/start", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ResetShow(ctx context.Context) (*ResetShowResponse, error) {
	var resp ResetShowResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/show/reset", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Broadcast and cues ---

// GetBroadcast returns the currently visible cue, or nil when nothing has
// fired yet.
func (c *HTTPClient) GetBroadcast(ctx context.Context) (*model.CueView, error) {
	var resp struct {
		Cue *model.CueView `json:"cue"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/broadcast", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cue, nil
}

func (c *HTTPClient) ListCues(ctx context.Context) ([]*model.Cue, error) {
	var resp struct {
		Cues []*model.Cue `json:"cues"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/cues", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cues, nil
}

func (c *HTTPClient) GetCue(ctx context.Context, id string) (*model.Cue, error) {
	var cue model.Cue
	if err := c.doJSON(ctx, http.MethodGet, "/v1/cues/"+url.PathEscape(id), nil, &cue); err != nil {
		return nil, err
	}
	return &cue, nil
}

// --- Participant session ---

func (c *HTTPClient) Session(ctx context.Context, participantKey string) (*SessionResponse, error) {
	path := "/v1/session?participant=" + url.QueryEscape(participantKey)
	var resp SessionResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SubmitAnswer(ctx context.Context, participantKey, cueID string, answer any) (*progress.SubmitResult, error) {
	body := map[string]any{
		"participant": participantKey,
		"cue_id":      cueID,
		"answer":      answer,
	}
	var result progress.SubmitResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/session/answer", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Roster ---

func (c *HTTPClient) GetRoster(ctx context.Context, staleThresholdSecs int) (*RosterResponse, error) {
	path := fmt.Sprintf("/v1/participants/roster?stale_threshold_secs=%d", staleThresholdSecs)
	var resp RosterResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
