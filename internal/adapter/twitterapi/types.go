package twitterapi

// InfoResponse is the account info payload; the API only exposes the
// remaining recharge credit balance, never a usage counter.
type InfoResponse struct {
	RechargeCredits int64 `json:"recharge_credits"`
}
