package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient fetches the asset catalog and per-asset market history
// from the CoinGecko REST API.
type CoinGeckoClient struct {
	BaseURL string
	apiKey  string
	httpc   *http.Client
}

func NewCoinGeckoClient(apiKey string) *CoinGeckoClient {
	return &CoinGeckoClient{
		BaseURL: defaultCoinGeckoURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// CoinInfo is one entry of the /coins/list catalog.
type CoinInfo struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// MarketChart is the raw /market_chart payload: parallel series of
// [timestamp-ms, value] pairs.
type MarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// ListCoins returns the full id/ticker catalog.
func (c *CoinGeckoClient) ListCoins(ctx context.Context) ([]CoinInfo, error) {
	var coins []CoinInfo
	if err := c.get(ctx, c.BaseURL+"/coins/list", &coins); err != nil {
		return nil, errors.Wrap(err, "list coins")
	}
	return coins, nil
}

// MarketChart returns the daily price/market-cap/volume series for one asset
// id over the given lookback window.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, id, vsCurrency string, days int) (*MarketChart, error) {
	query := url.Values{
		"vs_currency": {vsCurrency},
		"days":        {fmt.Sprint(days)},
		"interval":    {"daily"},
	}
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.BaseURL, url.PathEscape(id), query.Encode())

	var chart MarketChart
	if err := c.get(ctx, endpoint, &chart); err != nil {
		return nil, errors.Wrapf(err, "market chart for %s", id)
	}
	return &chart, nil
}

func (c *CoinGeckoClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrap(ErrSourceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrSourceUnavailable, "status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
