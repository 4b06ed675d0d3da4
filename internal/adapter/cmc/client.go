package cmc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
)

var (
	portalURL  = "https://portal-api.coinmarketcap.com"
	gatewayURL = "https://api.commonservice.io"

	// Path prefix for captcha challenge images referenced by path2.
	captchaImageBase = "https://staticrecap.cgicgi.io"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"
	captchaBizID = "CMC_login"
)

type Client struct {
	httpc      *httpx.Client
	portalURL  string
	gatewayURL string
}

func NewClient(httpc *httpx.Client) *Client {
	return &Client{
		httpc:      httpc,
		portalURL:  portalURL,
		gatewayURL: gatewayURL,
	}
}

func (c *Client) portalHeader() http.Header {
	return http.Header{
		"Accept":           []string{"application/json"},
		"Authorization":    []string{"Basic Og=="},
		"Content-Type":     []string{"application/json"},
		"Origin":           []string{"https://pro.coinmarketcap.com"},
		"Referer":          []string{"https://pro.coinmarketcap.com/"},
		"User-Agent":       []string{userAgent},
		"X-Requested-With": []string{"xhr"},
	}
}

// deviceInfo mimics the browser fingerprint the portal expects alongside
// login requests.
func deviceInfo() string {
	info := map[string]any{
		"screen_resolution":           "1920,1080",
		"available_screen_resolution": "1920,1040",
		"timezone":                    "UTC",
		"user_agent":                  userAgent,
		"platform":                    "Win32",
	}
	b, _ := json.Marshal(info)
	return string(b)
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Captcha    string `json:"captcha"`
	SecurityID string `json:"securityId"`
	DeviceInfo string `json:"deviceInfo"`
	FvideoID   string `json:"fvideoId"`
}

// SeedLogin performs an initial credential-only login attempt. The portal
// answers with the captcha security context instead of a session.
func (c *Client) SeedLogin(ctx context.Context, email, password string) (*CaptchaInit, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    c.portalURL + "/v1/login",
		Header: c.portalHeader(),
		JSON: loginRequest{
			Email:      email,
			Password:   password,
			DeviceInfo: deviceInfo(),
			FvideoID:   uuid.NewString(),
		},
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var init CaptchaInit
	if err := json.Unmarshal(resp.Body, &init); err != nil {
		return nil, fmt.Errorf("decode seed login response: %w", err)
	}
	if init.CaptchaSecurityID == "" {
		return nil, errors.New("seed login returned no captcha security id")
	}
	return &init, nil
}

func (c *Client) gatewayHeader() http.Header {
	return http.Header{
		"Accept":              []string{"*/*"},
		"Bnc-Uuid":            []string{uuid.NewString()},
		"Captcha-Sdk-Version": []string{"1.0.0"},
		"Clienttype":          []string{"web"},
		"Content-Type":        []string{"text/plain; charset=UTF-8"},
		"Device-Info":         []string{base64.StdEncoding.EncodeToString([]byte(deviceInfo()))},
		"Origin":              []string{"https://pro.coinmarketcap.com"},
		"Referer":             []string{"https://pro.coinmarketcap.com/"},
		"User-Agent":          []string{userAgent},
		"X-Captcha-Se":        []string{"true"},
	}
}

func (c *Client) GetCaptchaChallenge(ctx context.Context, securityID string) (*CaptchaChallengeResponse, error) {
	body := fmt.Sprintf("bizId=%s&sv=20220812&lang=en&securityCheckResponseValidateId=%s&clientType=web",
		captchaBizID, securityID)

	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    c.gatewayURL + "/gateway-api/v1/public/antibot/getCaptcha",
		Header: c.gatewayHeader(),
		Body:   []byte(body),
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var challenge CaptchaChallengeResponse
	if err := json.Unmarshal(resp.Body, &challenge); err != nil {
		return nil, fmt.Errorf("decode captcha challenge: %w", err)
	}
	return &challenge, nil
}

func (c *Client) ValidateCaptcha(ctx context.Context, securityID, sig, solution string) (string, error) {
	body := fmt.Sprintf("bizId=%s&sv=20220812&lang=en&securityCheckResponseValidateId=%s&clientType=web&data=%s&sig=%s",
		captchaBizID, securityID, solution, sig)

	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    c.gatewayURL + "/gateway-api/v1/public/antibot/validateCaptcha",
		Header: c.gatewayHeader(),
		Body:   []byte(body),
	})
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	var validation CaptchaValidationResponse
	if err := json.Unmarshal(resp.Body, &validation); err != nil {
		return "", fmt.Errorf("decode captcha validation: %w", err)
	}
	if !validation.Success || validation.Code != "000000" {
		return "", fmt.Errorf("captcha validation failed: code %s", validation.Code)
	}
	token := validation.Data["token"]
	if token == "" {
		return "", errors.New("captcha validation returned no token")
	}
	return token, nil
}

// Login completes the credential exchange with a solved captcha token and
// returns the portal session cookie value.
func (c *Client) Login(ctx context.Context, email, password, captchaToken, securityID string) (string, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    c.portalURL + "/v1/login",
		Header: c.portalHeader(),
		JSON: loginRequest{
			Email:      email,
			Password:   password,
			Captcha:    captchaToken,
			SecurityID: securityID,
			DeviceInfo: deviceInfo(),
			FvideoID:   uuid.NewString(),
		},
	})
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}

	for _, cookie := range resp.Cookies {
		if cookie.Name == "s" && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", errors.New("login succeeded but no session cookie returned")
}

func (c *Client) sessionHeader(sessionToken string) http.Header {
	h := c.portalHeader()
	h.Set("Cookie", "s="+sessionToken)
	return h
}

func (c *Client) GetPlanStats(ctx context.Context, sessionToken string) (*UsageStats, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.portalURL + "/v1/accounts/my/plan/stats",
		Header: c.sessionHeader(sessionToken),
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var stats UsageStats
	if err := json.Unmarshal(resp.Body, &stats); err != nil {
		return nil, fmt.Errorf("decode plan stats: %w", err)
	}
	return &stats, nil
}

func (c *Client) GetPlanInfo(ctx context.Context, sessionToken string) (*PlanInfo, error) {
	resp, err := c.httpc.Do(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.portalURL + "/v1/accounts/my/plan/info",
		Header: c.sessionHeader(sessionToken),
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var info PlanInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, fmt.Errorf("decode plan info: %w", err)
	}
	return &info, nil
}
