package fx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

const (
	yahooBaseURL   = "https://query2.finance.yahoo.com/v8/finance/chart"
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// YahooClient reads spot quotes from the Yahoo Finance chart endpoint.
type YahooClient struct {
	baseURL string
	http    *http.Client
}

// NewYahooClient creates a client against the public endpoint.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		baseURL: yahooBaseURL,
		http:    &http.Client{},
	}
}

// WithBaseURL points the client at another host, e.g. a test server.
func (c *YahooClient) WithBaseURL(u string) *YahooClient {
	c.baseURL = u
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
				RegularMarketTime  int64           `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Rate returns how many quote units buy one base unit.
func (c *YahooClient) Rate(ctx context.Context, base, quote string) (Rate, error) {
	base, err := NormalizeCode(base)
	if err != nil {
		return Rate{}, err
	}
	quote, err = NormalizeCode(quote)
	if err != nil {
		return Rate{}, err
	}
	if base == quote {
		return Rate{Base: base, Quote: quote, Value: decimal.NewFromInt(1), AsOf: time.Now(), Source: "identity"}, nil
	}

	body, err := c.get(ctx, fmt.Sprintf("/%s%s=X?interval=1h&range=1d", base, quote))
	if err != nil {
		return Rate{}, err
	}

	var raw chartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Rate{}, fmt.Errorf("fx: parsing chart: %w", err)
	}
	if len(raw.Chart.Result) == 0 {
		return Rate{}, fmt.Errorf("%w: %s/%s", ErrNotFound, base, quote)
	}

	meta := raw.Chart.Result[0].Meta
	if !meta.RegularMarketPrice.IsPositive() {
		return Rate{}, fmt.Errorf("fx: invalid quote %s for %s/%s", meta.RegularMarketPrice, base, quote)
	}
	asOf := time.Now()
	if meta.RegularMarketTime > 0 {
		asOf = time.Unix(meta.RegularMarketTime, 0)
	}

	return Rate{
		Base:   base,
		Quote:  quote,
		Value:  meta.RegularMarketPrice,
		AsOf:   asOf,
		Source: "yahoo",
	}, nil
}

func (c *YahooClient) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("fx: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/nestegg/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fx: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fx: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("fx: reading response: %w", err)
	}
	return body, nil
}
