// Package httpx is the shared network access layer. It applies a static
// hostname override table when dialing (to bypass hostile DNS/CDN paths for
// known providers), optionally routes requests through a FlareSolverr-style
// anti-bot relay, and bounds every request with a timeout. It never retries:
// retry policy belongs to callers, since it differs per provider.
package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTransport wraps connection-level failures (dial, TLS, timeout) so
// callers can tell a dead upstream apart from an HTTP-level rejection.
var ErrTransport = errors.New("transport failure")

const defaultTimeout = 30 * time.Second

// RelayConfig points at an anti-bot bypass relay. The relay is an opaque
// HTTP-fetching proxy that returns the final rendered response.
type RelayConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Proxy    string `yaml:"proxy" mapstructure:"proxy"`
}

// Options configures a Client. DNSOverride maps hostname to address; hosts in
// the map are dialed at the mapped address while TLS SNI and the Host header
// keep the original hostname.
type Options struct {
	DNSOverride map[string]string
	Relay       RelayConfig
	Timeout     time.Duration
}

type Client struct {
	httpc *http.Client
	relay RelayConfig
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, overrideAddr(opts.DNSOverride, addr))
		},
	}

	return &Client{
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		relay: opts.Relay,
	}
}

// overrideAddr swaps the host part of addr when it appears in the override
// table, preserving the port.
func overrideAddr(overrides map[string]string, addr string) string {
	if len(overrides) == 0 {
		return addr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if ip, ok := overrides[host]; ok {
		return net.JoinHostPort(ip, port)
	}
	return addr
}

// Request describes one HTTP call. At most one of JSON, Form, or Body may be
// set. ViaRelay forces the call through the relay even when other requests
// go direct; it is ignored when no relay is configured.
type Request struct {
	Method   string
	URL      string
	Query    url.Values
	Header   http.Header
	JSON     any
	Form     url.Values
	Body     []byte
	ViaRelay bool
}

// Response is the final upstream response, whether obtained directly or
// through the relay. Any HTTP status is returned without error; only
// transport-level failures produce a non-nil error.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cookies    []*http.Cookie
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.relay.Enabled || (req.ViaRelay && c.relay.Endpoint != "") {
		return c.doViaRelay(ctx, req)
	}
	return c.doDirect(ctx, req)
}

func (c *Client) doDirect(ctx context.Context, req Request) (*Response, error) {
	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.JSON != nil:
		buf, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	case len(req.Form) > 0:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case len(req.Body) > 0:
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Cookies:    resp.Cookies(),
	}, nil
}

// relayCommand is the FlareSolverr request envelope.
type relayCommand struct {
	Cmd        string      `json:"cmd"`
	URL        string      `json:"url"`
	MaxTimeout int         `json:"maxTimeout"`
	PostData   string      `json:"postData,omitempty"`
	Proxy      *relayProxy `json:"proxy,omitempty"`
}

type relayProxy struct {
	URL string `json:"url"`
}

type relayResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Solution struct {
		URL      string            `json:"url"`
		Status   int               `json:"status"`
		Response string            `json:"response"`
		Headers  map[string]string `json:"headers"`
	} `json:"solution"`
}

func (c *Client) doViaRelay(ctx context.Context, req Request) (*Response, error) {
	target := req.URL
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	cmd := relayCommand{
		Cmd:        "request." + strings.ToLower(req.Method),
		URL:        target,
		MaxTimeout: int(c.httpc.Timeout / time.Millisecond),
	}
	if c.relay.Proxy != "" {
		cmd.Proxy = &relayProxy{URL: c.relay.Proxy}
	}
	switch {
	case req.JSON != nil:
		buf, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode relay post data: %w", err)
		}
		cmd.PostData = string(buf)
	case len(req.Form) > 0:
		cmd.PostData = req.Form.Encode()
	case len(req.Body) > 0:
		cmd.PostData = string(req.Body)
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode relay command: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relay.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: relay %s: %v", ErrTransport, c.relay.Endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read relay body: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: relay returned status %d", ErrTransport, resp.StatusCode)
	}

	var rr relayResponse
	if err := json.Unmarshal(data, &rr); err != nil {
		return nil, fmt.Errorf("decode relay response: %w", err)
	}
	if rr.Status != "ok" {
		return nil, fmt.Errorf("%w: relay error: %s", ErrTransport, rr.Message)
	}

	header := make(http.Header, len(rr.Solution.Headers))
	for k, v := range rr.Solution.Headers {
		header.Set(k, v)
	}

	return &Response{
		StatusCode: rr.Solution.Status,
		Header:     header,
		Body:       []byte(rr.Solution.Response),
	}, nil
}
