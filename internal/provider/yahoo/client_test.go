package yahoo_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	yahoo "pricewatch/internal/provider/yahoo"
)

func TestNewChartAPIClient(t *testing.T) {
	t.Parallel()

	// Assert: a client is always returned.
	client, err := yahoo.NewChartAPIClient()
	require.NoErrorf(t, err, "unexpected error: %v", err)
	require.NotNilf(t, client, "unexpected nil client")
}

func TestNewChartAPIClient_RejectsBadBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options []yahoo.ChartAPIClientOption
	}{
		{name: "empty", options: []yahoo.ChartAPIClientOption{yahoo.WithBaseURL("")}},
		{name: "no scheme", options: []yahoo.ChartAPIClientOption{yahoo.WithBaseURL("query1.finance.yahoo.com")}},
		{name: "unsupported scheme", options: []yahoo.ChartAPIClientOption{yahoo.WithBaseURL("ftp://query1.finance.yahoo.com")}},
		{name: "no host", options: []yahoo.ChartAPIClientOption{yahoo.WithBaseURL("http://")}},
		{name: "control character", options: []yahoo.ChartAPIClientOption{yahoo.WithBaseURL(string([]rune{0x7f}))}},
		{name: "nil http client", options: []yahoo.ChartAPIClientOption{yahoo.WithHTTPClient(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Act
			client, err := yahoo.NewChartAPIClient(tt.options...)

			// Assert
			require.Error(t, err)
			require.Nil(t, client)
		})
	}
}

func TestNewChartAPIClient_TrimsTrailingSlash(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the path has no double slash
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v8/finance/chart/GLD", req.URL.Path)

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(encode(t, map[string]any{})),
			}, nil
		}).
		Times(1)

	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient), yahoo.WithBaseURL("http://localhost:8080/"))
	require.NoError(t, err)

	// Act
	_, _ = client.GetChart(t.Context(), "GLD", "5d", "1d")
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(encode(t, map[string]any{})),
			}, nil
		}).
		Times(1)

	// Arrange: create a new client with a custom HTTP client.
	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)
	require.NotNil(t, client)

	// Act: call GetChart with the custom HTTP client.
	_, _ = client.GetChart(t.Context(), "GC=F", "5d", "1d")
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Arrange: define a base url
	baseURL := "http://localhost:8080"

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(encode(t, map[string]any{})),
			}, nil
		}).
		Times(1)

	// Arrange: create a new client.
	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient), yahoo.WithBaseURL(baseURL))
	require.NoError(t, err)
	require.NotNil(t, client)

	// Act: call GetChart with the overridden base URL.
	_, _ = client.GetChart(t.Context(), "GLD", "5d", "1d")
}

func TestWithHeaderAndQuery(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			require.Equal(t, "false", req.URL.Query().Get("includePrePost"))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(encode(t, map[string]any{})),
			}, nil
		}).
		Times(1)

	// Arrange: create a new client with a custom header and query.
	client, err := yahoo.NewChartAPIClient(
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithHeader(http.Header{"foo": []string{"bar"}}),
		yahoo.WithQuery(url.Values{"includePrePost": []string{"false"}}),
	)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Act: call GetChart with the custom header.
	_, _ = client.GetChart(t.Context(), "GLD", "5d", "1d")
}

// encode is a small helper that JSON-encodes v into a buffer.
func encode(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(v))
	return buffer
}
