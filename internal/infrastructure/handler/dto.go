package handler

// ConvertResponse represents the response for the conversion endpoint
type ConvertResponse struct {
	BTC      string  `json:"btc"`
	USD      string  `json:"usd"`
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

// RateResponse represents the response for the rate endpoint
type RateResponse struct {
	Rate      float64 `json:"rate"`
	FetchedAt string  `json:"fetched_at,omitempty"`
	Stale     bool    `json:"stale"`
}

// HealthResponse represents the response for the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
