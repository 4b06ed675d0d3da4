package openai

// UsageResponse is the organization usage API payload (bucketed).
type UsageResponse struct {
	Object  string        `json:"object"`
	Data    []UsageBucket `json:"data"`
	HasMore bool          `json:"has_more"`
}

type UsageBucket struct {
	Object    string        `json:"object"`
	StartTime int64         `json:"start_time"`
	EndTime   int64         `json:"end_time"`
	Results   []UsageResult `json:"results"`
}

type UsageResult struct {
	InputTokens      int64 `json:"input_tokens"`
	OutputTokens     int64 `json:"output_tokens"`
	NumModelRequests int64 `json:"num_model_requests"`
}

// CostResponse is the organization costs API payload.
type CostResponse struct {
	Object  string       `json:"object"`
	Data    []CostBucket `json:"data"`
	HasMore bool         `json:"has_more"`
}

type CostBucket struct {
	Object    string       `json:"object"`
	StartTime int64        `json:"start_time"`
	EndTime   int64        `json:"end_time"`
	Results   []CostResult `json:"results"`
}

type CostResult struct {
	Object   string     `json:"object"`
	Amount   CostAmount `json:"amount"`
	LineItem string     `json:"line_item"`
}

type CostAmount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}
