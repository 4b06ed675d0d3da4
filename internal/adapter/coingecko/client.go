package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

var baseURL = "https://pro-api.coingecko.com"

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

func (c *Client) GetKey(ctx context.Context) (*KeyResponse, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/api/v3/key",
		Header: http.Header{
			"X-Cg-Pro-Api-Key": []string{c.apiKey},
			"Accept":           []string{"application/json"},
			"User-Agent":       []string{"apikey-usage-inspector/1.0"},
		},
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result KeyResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode key response: %w", err)
	}
	return &result, nil
}
