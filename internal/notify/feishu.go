package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 2 << 10

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=notify_test -destination=mock_http_client_test.go -source=feishu.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Feishu posts text messages to a Feishu/Lark custom bot webhook.
type Feishu struct {
	webhookURL string
	httpClient HTTPClient
	header     http.Header
}

// FeishuOption is a configuration option for the Feishu notifier.
type FeishuOption func(*Feishu)

// WithHTTPClient sets the HTTP client used for delivery.
func WithHTTPClient(httpClient HTTPClient) FeishuOption {
	return func(f *Feishu) {
		f.httpClient = httpClient
	}
}

// WithHeader adds headers to every delivery request.
func WithHeader(header http.Header) FeishuOption {
	return func(f *Feishu) {
		for key, values := range header {
			for _, value := range values {
				f.header.Add(key, value)
			}
		}
	}
}

// NewFeishu creates a notifier for webhookURL.
func NewFeishu(webhookURL string, options ...FeishuOption) (*Feishu, error) {
	if strings.TrimSpace(webhookURL) == "" {
		return nil, errors.New("feishu: webhook URL is empty")
	}
	f := &Feishu{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(f)
	}
	return f, nil
}

type feishuMessage struct {
	MsgType string        `json:"msg_type"`
	Content feishuContent `json:"content"`
}

type feishuContent struct {
	Text string `json:"text"`
}

type feishuReply struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Notify posts text as a plain text message. Delivery fails on a non-2xx
// status or, when the body is JSON, on a non-zero code.
func (f *Feishu) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(feishuMessage{MsgType: "text", Content: feishuContent{Text: text}})
	if err != nil {
		return fmt.Errorf("feishu: encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu: creating request: %w", err)
	}
	for key, values := range f.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("feishu: performing request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("feishu: reading response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("feishu: unexpected status code %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}

	var reply feishuReply
	if json.Unmarshal(raw, &reply) == nil && reply.Code != 0 {
		return fmt.Errorf("feishu: rejected with code %d: %s", reply.Code, reply.Msg)
	}
	return nil
}
