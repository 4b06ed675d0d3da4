package quicknode

// UsageResponse wraps the console usage endpoint payload.
// https://www.quicknode.com/docs/console-api/usage/v0-usage-rpc
type UsageResponse struct {
	Data  UsageData `json:"data"`
	Error string    `json:"error"`
}

type UsageData struct {
	CreditsUsed      int64 `json:"credits_used"`
	CreditsRemaining int64 `json:"credits_remaining"`
	Limit            int64 `json:"limit"`
	Overages         int64 `json:"overages"`
	StartTime        int64 `json:"start_time"`
	EndTime          int64 `json:"end_time"`
}
