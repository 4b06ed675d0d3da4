package quicknode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

var baseURL = "https://api.quicknode.com"

type Client struct {
	httpc   *httpx.Client
	baseURL string
	apiKey  string
}

func NewClient(httpc *httpx.Client, apiKey string) *Client {
	return &Client{
		httpc:   httpc,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (c *Client) GetUsage(ctx context.Context) (*UsageResponse, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/v0/usage/rpc",
		Header: http.Header{
			"X-Api-Key": []string{c.apiKey},
			"Accept":    []string{"application/json"},
		},
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result UsageResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode usage response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("quicknode error: %s", result.Error)
	}
	return &result, nil
}
