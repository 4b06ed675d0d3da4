package cmc

type DayStats struct {
	CreditsUsed      int64 `json:"credits_used"`
	TotalCallsCount  int64 `json:"total_calls_count"`
	UniqueCallsCount int64 `json:"unique_calls_count"`
}

// UsageStats is the plan/stats payload. Only the month bucket feeds metrics;
// the rest is kept for error detail and debugging.
type UsageStats struct {
	Day       DayStats `json:"day"`
	Yesterday DayStats `json:"yesterday"`
	Month     DayStats `json:"month"`
	LastMonth DayStats `json:"last_month"`
}

type PlanInfo struct {
	KeyPlan *KeyPlan `json:"keyPlan"`
}

type KeyPlan struct {
	Plan PlanDetail `json:"plan"`
}

type PlanDetail struct {
	Label        string `json:"label"`
	LimitMonthly int64  `json:"limit_monthly"`
}

// CaptchaInit is the login response fragment announcing that a captcha
// round-trip is required before credentials are accepted.
type CaptchaInit struct {
	CaptchaSecurityID string `json:"captchaSecurityId"`
	CaptchaBizCode    string `json:"captchaBizCode"`
}

type CaptchaChallengeResponse struct {
	Code    string           `json:"code"`
	Data    CaptchaChallenge `json:"data"`
	Success bool             `json:"success"`
}

type CaptchaChallenge struct {
	Sig         string `json:"sig"`
	Salt        string `json:"salt"`
	Path2       string `json:"path2"`
	CaptchaType string `json:"captchaType"`
	Tag         string `json:"tag"`
}

type CaptchaValidationResponse struct {
	Code    string            `json:"code"`
	Data    map[string]string `json:"data"`
	Success bool              `json:"success"`
}
