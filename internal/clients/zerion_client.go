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

const defaultZerionURL = "https://api.zerion.io"

// ZerionClient fetches aggregated DeFi positions for EVM wallets.
type ZerionClient struct {
	BaseURL string
	apiKey  string
	httpc   *http.Client
}

func NewZerionClient(apiKey string) *ZerionClient {
	return &ZerionClient{
		BaseURL: defaultZerionURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ZerionPosition is one wallet position as returned by the positions
// endpoint, decoded to just the fields the pipeline consumes.
type ZerionPosition struct {
	Attributes struct {
		Protocol     *string `json:"protocol"`
		PositionType string  `json:"position_type"`
		Quantity     struct {
			Numeric string `json:"numeric"`
		} `json:"quantity"`
		FungibleInfo struct {
			Symbol string `json:"symbol"`
		} `json:"fungible_info"`
	} `json:"attributes"`
	Relationships struct {
		Chain struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"chain"`
	} `json:"relationships"`
}

type zerionPositionsResponse struct {
	Data []ZerionPosition `json:"data"`
}

// WalletPositions returns all non-trash positions of one wallet, sorted by
// value, across every chain Zerion indexes.
func (c *ZerionClient) WalletPositions(ctx context.Context, address string) ([]ZerionPosition, error) {
	query := url.Values{
		"filter[positions]": {"no_filter"},
		"currency":          {"usd"},
		"filter[trash]":     {"only_non_trash"},
		"sort":              {"value"},
	}
	endpoint := fmt.Sprintf("%s/v1/wallets/%s/positions/?%s", c.BaseURL, url.PathEscape(address), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("authorization", "Basic "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrSourceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrSourceUnavailable, "status %d", resp.StatusCode)
	}

	var positions zerionPositionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		return nil, errors.Wrap(err, "decode positions response")
	}
	return positions.Data, nil
}
