package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/damon-houk/satsval/internal/domain/service"
	"github.com/tidwall/gjson"
)

const (
	coinbaseBaseURL  = "https://api.coinbase.com"
	exchangeRatePath = "/v2/exchange-rates"
	usdRatePath      = "data.rates.USD"

	// DefaultTimeout bounds a single fetch
	DefaultTimeout = 10 * time.Second

	maxBodySize = 1 << 20
)

// CoinbaseClient fetches the BTC→USD rate from the Coinbase exchange-rates endpoint
type CoinbaseClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinbaseClient creates a new Coinbase client. An empty baseURL selects
// the public API and a nil httpClient gets DefaultTimeout.
func NewCoinbaseClient(baseURL string, httpClient *http.Client) *CoinbaseClient {
	if baseURL == "" {
		baseURL = coinbaseBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	return &CoinbaseClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// FetchRate retrieves the USD price of one BTC
func (c *CoinbaseClient) FetchRate(ctx context.Context) (float64, error) {
	reqURL := c.baseURL + exchangeRatePath + "?currency=BTC"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned error status: %d", resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("failed to decode response: invalid JSON")
	}

	value := gjson.GetBytes(body, usdRatePath)
	if !value.Exists() {
		return 0, fmt.Errorf("no USD rate in response")
	}

	// Coinbase sends rates as strings; accept plain numbers too
	var rate float64
	switch value.Type {
	case gjson.Number:
		rate = value.Float()
	case gjson.String:
		rate, err = strconv.ParseFloat(value.Str, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse exchange rate '%s': %w", value.Str, err)
		}
	default:
		return 0, fmt.Errorf("unexpected USD rate type: %s", value.Type)
	}

	if rate <= 0 {
		return 0, fmt.Errorf("invalid exchange rate value: %f", rate)
	}

	return rate, nil
}

var _ service.RateFeed = (*CoinbaseClient)(nil)
