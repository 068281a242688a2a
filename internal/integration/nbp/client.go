package nbp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dhoini/licensing-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public NBP exchange-rate API
const DefaultBaseURL = "https://api.nbp.pl"

// Config holds the NBP client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client queries the NBP exchange-rate API for mid rates against PLN
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewClient creates a new NBP API client
func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// rateTable mirrors the NBP response body:
// {"table":"A","currency":...,"code":"USD","rates":[{"mid":3.65,...}]}
type rateTable struct {
	Code  string `json:"code"`
	Rates []struct {
		Mid decimal.Decimal `json:"mid"`
	} `json:"rates"`
}

// MidRate returns the current mid rate of a currency from table A.
// Any non-success status or a response without rates is a failure.
func (c *Client) MidRate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/exchangerates/rates/a/%s/?format=json", c.baseURL, strings.ToLower(currencyCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("nbp: failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("NBP request failed for %s: %v", currencyCode, err)
		return decimal.Zero, fmt.Errorf("nbp: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("NBP returned status %d for %s", resp.StatusCode, currencyCode)
		return decimal.Zero, fmt.Errorf("nbp: unexpected status %d", resp.StatusCode)
	}

	var table rateTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return decimal.Zero, fmt.Errorf("nbp: failed to decode response: %w", err)
	}

	if len(table.Rates) == 0 {
		return decimal.Zero, fmt.Errorf("nbp: no rates for %s", currencyCode)
	}

	mid := table.Rates[0].Mid
	c.log.Debug("NBP mid rate for %s: %s", currencyCode, mid.String())

	return mid, nil
}
