package twitterapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

var baseURL = "https://api.twitterapi.io"

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

func (c *Client) GetInfo(ctx context.Context) (*InfoResponse, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/oapi/my/info",
		Header: http.Header{
			"X-Api-Key":  []string{c.apiKey},
			"Accept":     []string{"application/json"},
			"User-Agent": []string{"apikey-usage-inspector/1.0"},
		},
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result InfoResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode info response: %w", err)
	}
	return &result, nil
}
