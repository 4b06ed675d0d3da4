package coingecko

// KeyResponse is the pro API key introspection payload.
type KeyResponse struct {
	Plan                         string `json:"plan"`
	RateLimitRequestPerMinute    int64  `json:"rate_limit_request_per_minute"`
	MonthlyCallCredit            int64  `json:"monthly_call_credit"`
	CurrentTotalMonthlyCalls     int64  `json:"current_total_monthly_calls"`
	CurrentRemainingMonthlyCalls int64  `json:"current_remaining_monthly_calls"`
}
