package yahoo_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	yahoo "pricewatch/internal/provider/yahoo"
)

func TestGetChart(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/v8/finance/chart/GC=F", req.URL.Path)
			require.Equal(t, "2d", req.URL.Query().Get("range"))
			require.Equal(t, "1d", req.URL.Query().Get("interval"))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(encode(t, mockChartResponse)),
			}, nil
		}).
		Times(1)

	// Arrange: setup a new chart API client
	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)
	require.NotNil(t, client)

	// Act: call GetChart
	bars, err := client.GetChart(t.Context(), "GC=F", "2d", "1d")
	require.NoError(t, err)

	// Assert: bars should be unmarshalled from the mock response
	require.Len(t, bars, 2)
	require.Equal(t, time.Unix(1704205800, 0).UTC(), bars[0].Time)
	require.NotNil(t, bars[0].Close)
	require.InEpsilon(t, 1990.0, *bars[0].Close, 0.0001)
	require.NotNil(t, bars[1].Close)
	require.InEpsilon(t, 2000.0, *bars[1].Close, 0.0001)
}

func TestGetChart_ErrCreatingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the client must never be called
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	// Arrange: setup a new chart API client
	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetChart with an invalid base URL
	bars, err := client.GetChart(t.Context(), "GC=F", "2d", "1d", yahoo.WithBaseURL(string([]rune{0x7f})))
	require.Error(t, err)
	require.Nil(t, bars)
}

func TestGetChart_ErrPerformingRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("connection reset")
		}).
		Times(1)

	// Arrange: setup a new chart API client
	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetChart
	bars, err := client.GetChart(t.Context(), "GC=F", "2d", "1d")
	require.ErrorContains(t, err, "connection reset")
	require.Nil(t, bars)
}

func TestGetChart_ErrStatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, "symbol may be delisted"},
		{"forbidden", http.StatusForbidden, "", "unauthorized"},
		{"rate limited", http.StatusTooManyRequests, "Too Many Requests", "rate limited"},
		{"server error", http.StatusInternalServerError, "", "unexpected status code: 500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Arrange: create a mock HTTP client
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				DoAndReturn(func(req *http.Request) (*http.Response, error) {
					return &http.Response{
						StatusCode: tc.status,
						Body:       io.NopCloser(strings.NewReader(tc.body)),
					}, nil
				}).
				Times(1)

			client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient))
			require.NoError(t, err)

			// Act: call GetChart
			bars, err := client.GetChart(t.Context(), "XXXX", "2d", "1d")

			// Assert: the status is reported
			require.ErrorContains(t, err, tc.want)
			require.Nil(t, bars)
		})
	}
}

func TestGetChart_ErrDecodingResponse(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString("invalid json")),
			}, nil
		}).
		Times(1)

	// Arrange: setup a new chart API client
	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetChart
	bars, err := client.GetChart(t.Context(), "GC=F", "2d", "1d")
	require.Error(t, err)
	require.Nil(t, bars)
}

func TestGetChart_WithFixture(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Load the fixture data
	fixtureData, err := os.OpenFile("fixtures/chart_gc_f.json", os.O_RDONLY, 0600)
	require.NoError(t, err)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "5d", req.URL.Query().Get("range"))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       fixtureData,
			}, nil
		}).
		Times(1)

	// Arrange: setup a new chart API client
	client, err := yahoo.NewChartAPIClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call GetChart
	bars, err := client.GetChart(t.Context(), "GC=F", "5d", "1d")
	require.NoError(t, err)

	// Assert: every slot is kept, including the holiday with no close
	require.Lenf(t, bars, 5, "expected 5 bars, got %d", len(bars))
	require.Nil(t, bars[3].Close)
	require.NotNil(t, bars[4].Close)
	require.InEpsilon(t, 2071.800048828125, *bars[4].Close, 0.0001)
	require.Equal(t, time.Unix(1704430800, 0).UTC(), bars[4].Time)
}

// mockChartResponse is a mock response from the chart API
var mockChartResponse = map[string]any{
	"chart": map[string]any{
		"result": []any{
			map[string]any{
				"meta":      map[string]any{"currency": "USD", "symbol": "GC=F"},
				"timestamp": []int64{1704205800, 1704292200},
				"indicators": map[string]any{
					"quote": []any{
						map[string]any{"close": []float64{1990.0, 2000.0}},
					},
				},
			},
		},
		"error": nil,
	},
}
