package birdeye

type LoginResponse struct {
	Token string `json:"token"`
}

type AccountInfoResponse struct {
	Success bool        `json:"success"`
	Data    AccountInfo `json:"data"`
}

type AccountInfo struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Subscription Subscription `json:"subscription"`
	IsSuspended  bool         `json:"isSuspended"`
}

type Subscription struct {
	ID     string `json:"_id"`
	Plan   Plan   `json:"plan"`
	Status string `json:"status"`
}

type Plan struct {
	Name         string `json:"name"`
	Level        int    `json:"level"`
	MonthlyUnits int64  `json:"monthlyUnits"`
}

type UsageDataResponse struct {
	Success bool      `json:"success"`
	Data    UsageData `json:"data"`
}

type UsageData struct {
	Usage      int64 `json:"usage"`
	APIUsage   int64 `json:"api_usage"`
	WSUsage    int64 `json:"ws_usage"`
	CSVUsage   int64 `json:"csv_usage"`
	HasOverage bool  `json:"has_overage"`
}
