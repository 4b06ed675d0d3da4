package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

// Challenge is the context handed to the captcha-solving collaborator.
type Challenge struct {
	Provider   string `json:"provider"`
	SecurityID string `json:"security_id"`
	ImageURL   string `json:"image_url"`
	Tag        string `json:"tag"`
	Kind       string `json:"kind"`
}

// CaptchaSolver is the external solve-and-submit collaborator. It returns a
// solved token or fails; its timeouts propagate as authentication failures.
type CaptchaSolver interface {
	Solve(ctx context.Context, ch Challenge) (string, error)
}

// HTTPSolver posts challenges to an external solver service.
type HTTPSolver struct {
	endpoint string
	client   *httpx.Client
}

func NewHTTPSolver(endpoint string, client *httpx.Client) *HTTPSolver {
	return &HTTPSolver{endpoint: endpoint, client: client}
}

type solverResponse struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

func (s *HTTPSolver) Solve(ctx context.Context, ch Challenge) (string, error) {
	if s.endpoint == "" {
		return "", fmt.Errorf("no captcha solver endpoint configured")
	}

	resp, err := s.client.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    s.endpoint,
		JSON:   ch,
	})
	if err != nil {
		return "", fmt.Errorf("captcha solver: %w", err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("captcha solver returned status %d", resp.StatusCode)
	}

	var sr solverResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return "", fmt.Errorf("decode solver response: %w", err)
	}
	if sr.Error != "" {
		return "", fmt.Errorf("captcha unsolved: %s", sr.Error)
	}
	if sr.Token == "" {
		return "", fmt.Errorf("captcha solver returned empty token")
	}
	return sr.Token, nil
}
