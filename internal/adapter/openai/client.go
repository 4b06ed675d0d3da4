package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

var baseURL = "https://api.openai.com"

type Client struct {
	httpc       *httpx.Client
	baseURL     string
	adminAPIKey string
}

func NewClient(httpc *httpx.Client, adminAPIKey string) *Client {
	return &Client{
		httpc:       httpc,
		baseURL:     baseURL,
		adminAPIKey: adminAPIKey,
	}
}

func (c *Client) header() http.Header {
	return http.Header{
		"Authorization": []string{"Bearer " + c.adminAPIKey},
		"Content-Type":  []string{"application/json"},
		"User-Agent":    []string{"apikey-usage-inspector/1.0"},
	}
}

func windowQuery(start, end time.Time) url.Values {
	return url.Values{
		"start_time":   []string{strconv.FormatInt(start.Unix(), 10)},
		"end_time":     []string{strconv.FormatInt(end.Unix(), 10)},
		"bucket_width": []string{"1d"},
		"limit":        []string{"7"},
	}
}

// GetUsage fetches bucketed organization usage for one endpoint kind,
// e.g. "completions" or "embeddings".
func (c *Client) GetUsage(ctx context.Context, endpoint string, start, end time.Time) (*UsageResponse, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/v1/organization/usage/" + endpoint,
		Query:  windowQuery(start, end),
		Header: c.header(),
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result UsageResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode %s usage response: %w", endpoint, err)
	}
	return &result, nil
}

func (c *Client) GetCosts(ctx context.Context, start, end time.Time) (*CostResponse, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/v1/organization/costs",
		Query:  windowQuery(start, end),
		Header: c.header(),
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result CostResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode costs response: %w", err)
	}
	return &result, nil
}
