package yahoo

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const baseURL = "https://query1.finance.yahoo.com"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChartAPIClient is a client for the Yahoo Finance chart API.
type ChartAPIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// ChartAPIClientOption is a configuration option for the chart API client.
type ChartAPIClientOption func(*ChartAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithQuery sets additional query parameters to be sent with each request.
func WithQuery(query url.Values) ChartAPIClientOption {
	return func(c *ChartAPIClient) {
		for key, values := range query {
			for _, value := range values {
				c.query.Add(key, value)
			}
		}
	}
}

// NewChartAPIClient creates a new chart API client. The base URL must be an
// absolute http or https URL; a trailing slash is dropped.
func NewChartAPIClient(options ...ChartAPIClientOption) (*ChartAPIClient, error) {
	var chartAPIClient = &ChartAPIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	for _, option := range options {
		option(chartAPIClient)
	}

	if chartAPIClient.httpClient == nil {
		return nil, errors.New("yahoo: nil HTTP client")
	}
	base, err := url.Parse(chartAPIClient.baseURL)
	if err != nil {
		return nil, fmt.Errorf("yahoo: invalid base URL: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("yahoo: base URL %q must be an absolute http(s) URL", chartAPIClient.baseURL)
	}
	chartAPIClient.baseURL = strings.TrimRight(chartAPIClient.baseURL, "/")
	return chartAPIClient, nil
}
