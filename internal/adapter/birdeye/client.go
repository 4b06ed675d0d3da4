package birdeye

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

// The API host resolves through a Cloudflare path that rejects datacenter
// traffic; the network layer's DNS override table carries its origin address.
var baseURL = "https://multichain-api.birdeye.so"

type Client struct {
	httpc   *httpx.Client
	baseURL string
}

func NewClient(httpc *httpx.Client) *Client {
	return &Client{
		httpc:   httpc,
		baseURL: baseURL,
	}
}

func (c *Client) header() http.Header {
	return http.Header{
		"Origin":     []string{"https://bds.birdeye.so"},
		"Referer":    []string{"https://bds.birdeye.so/"},
		"Accept":     []string{"application/json, text/plain, */*"},
		"User-Agent": []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0 Safari/537.36"},
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/user/login",
		Header: c.header(),
		JSON:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var result LoginResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if result.Token == "" {
		return "", errors.New("login succeeded but no token returned")
	}
	return result.Token, nil
}

func (c *Client) GetAccount(ctx context.Context, token string) (*AccountInfoResponse, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/accounts/default",
		Query:  url.Values{"token": []string{token}},
		Header: c.header(),
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result AccountInfoResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode account response: %w", err)
	}
	return &result, nil
}

func (c *Client) GetUsage(ctx context.Context, subscriptionID, token string) (*UsageDataResponse, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/payments/subscriptions/%s/usage", c.baseURL, subscriptionID),
		Query:  url.Values{"token": []string{token}},
		Header: c.header(),
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result UsageDataResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode usage response: %w", err)
	}
	return &result, nil
}
