package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultMexcURL = "https://api.mexc.com"

// MexcClient talks to the MEXC spot REST API. Account endpoints are signed
// with HMAC-SHA256 over a timestamped query string.
type MexcClient struct {
	BaseURL   string
	apiKey    string
	secretKey string
	httpc     *http.Client
	now       func() time.Time
}

func NewMexcClient(apiKey, secretKey string) *MexcClient {
	return &MexcClient{
		BaseURL:   defaultMexcURL,
		apiKey:    apiKey,
		secretKey: secretKey,
		httpc:     &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

// MexcBalance is one spot balance as reported by /api/v3/account.
type MexcBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type mexcAccountResponse struct {
	Balances []MexcBalance `json:"balances"`
}

// AccountBalances returns all spot balances currently held on the account.
func (c *MexcClient) AccountBalances(ctx context.Context) ([]MexcBalance, error) {
	query := fmt.Sprintf("timestamp=%d", c.now().UnixMilli())
	endpoint := fmt.Sprintf("%s/api/v3/account?%s&signature=%s", c.BaseURL, query, c.sign(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-MEXC-APIKEY", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrSourceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Wrapf(ErrSourceUnavailable, "status %d: %s", resp.StatusCode, body)
	}

	var account mexcAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, errors.Wrap(err, "decode account response")
	}
	return account.Balances, nil
}

func (c *MexcClient) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
