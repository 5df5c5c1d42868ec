package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Bar is a single daily bar from the chart API. Close is nil when the
// exchange had no trade for that slot.
type Bar struct {
	Time  time.Time
	Close *float64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamps []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetChart retrieves daily bars for symbol over the given range ("2d", "5d", "1mo").
func (c *ChartAPIClient) GetChart(ctx context.Context, symbol string, rng string, interval string, opts ...ChartAPIClientOption) ([]Bar, error) {
	var override = &ChartAPIClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)
	if query == nil {
		query = url.Values{}
	}
	query.Set("range", rng)
	query.Set("interval", interval)

	url := fmt.Sprintf("%s/v8/finance/chart/%s?%s", override.baseURL, url.PathEscape(symbol), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return nil, fmt.Errorf("symbol %s not found: %s", symbol, describeError(res.Body))

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return []Bar{}, nil
	}

	// {
	//   "timestamp": [1704205800, 1704292200],
	//   "indicators": {"quote": [{"close": [2064.39, null]}]}
	// }
	result := body.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	var bars = make([]Bar, 0, len(closes))
	for i, v := range closes {
		var ts time.Time
		if i < len(result.Timestamps) {
			ts = time.Unix(result.Timestamps[i], 0).UTC()
		}
		bars = append(bars, Bar{Time: ts, Close: v})
	}

	return bars, nil
}

// describeError extracts the chart error description from an error body.
func describeError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 2<<10))
	var body chartResponse
	if err := json.Unmarshal(b, &body); err == nil && body.Chart.Error != nil {
		return body.Chart.Error.Description
	}
	return strings.TrimSpace(string(b))
}
