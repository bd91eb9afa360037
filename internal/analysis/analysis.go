// Package analysis is the client for the external behavioral classifier.
//
// The classifier is a remote HTTP service we do not own: it takes a
// 4-element usage vector and returns a cluster label, an addiction
// prediction, and a list of recommendations. This package only adapts the
// wire contract — it never interprets the payloads, and it makes no
// assumption that the service is deterministic.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sakif/detox-companion/internal/apperror"
)

// Analyzer is the collaborator interface the orchestration layer depends
// on. Tests substitute a fake; production uses *Client.
type Analyzer interface {
	Analyze(ctx context.Context, usage []float64) (*Result, error)
}

// Result is the classifier's response, passed through verbatim. The three
// payloads are raw JSON on purpose: their structure belongs to the
// analysis service, and decoding them here would couple us to a schema we
// don't control.
type Result struct {
	Cluster         json.RawMessage `json:"cluster"`
	Prediction      json.RawMessage `json:"prediction"`
	Recommendations json.RawMessage `json:"recommendations"`
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the analysis service, e.g. "http://127.0.0.1:5000".
	BaseURL string
	// Timeout for one analyze call, end to end.
	Timeout time.Duration
}

// DefaultConfig returns the configuration used when none is provided:
// the classifier's conventional local address and a 10s budget.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:5000",
		Timeout: 10 * time.Second,
	}
}

// Client calls the analysis service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given config.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// analyzeRequest is the wire shape: {"usage":[n1,n2,n3,n4]}.
type analyzeRequest struct {
	Usage []float64 `json:"usage"`
}

// analyzeResponse mirrors the service's envelope. The service reports its
// own failures with error=true alongside a message, even on HTTP 200-ish
// statuses, so both the status code and the flag are checked.
type analyzeResponse struct {
	Error           bool            `json:"error"`
	Message         string          `json:"message"`
	Cluster         json.RawMessage `json:"cluster"`
	Prediction      json.RawMessage `json:"prediction"`
	Recommendations json.RawMessage `json:"recommendations"`
}

// Analyze posts the usage vector and returns the classifier's result.
//
// Every failure mode — unreachable service, non-2xx status, malformed
// body, error flag set — comes back as apperror.ErrDependency tagged
// "analysis", so callers can render "analysis unavailable" distinctly
// from internal errors. The caller validates vector arity before calling;
// this client transports whatever it is given.
func (c *Client) Analyze(ctx context.Context, usage []float64) (*Result, error) {
	body, err := json.Marshal(analyzeRequest{Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("analysis: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("analysis: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(fmt.Sprintf("analysis service unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(fmt.Sprintf("analysis service returned status %d", resp.StatusCode))
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, unavailable("analysis service returned a malformed response")
	}
	if decoded.Error {
		return nil, unavailable("analysis service reported an error: " + decoded.Message)
	}
	if len(decoded.Cluster) == 0 && len(decoded.Prediction) == 0 {
		// An empty 200 is as useless as a 500 — never fabricate a result.
		return nil, unavailable("analysis service returned an empty result")
	}

	return &Result{
		Cluster:         decoded.Cluster,
		Prediction:      decoded.Prediction,
		Recommendations: decoded.Recommendations,
	}, nil
}

func unavailable(message string) error {
	return apperror.Dependency("analysis", message)
}
