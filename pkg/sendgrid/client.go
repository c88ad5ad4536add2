// Package sendgrid provides a lightweight client for the SendGrid v3 mail send API.
// Uses raw HTTP calls (no SDK) to minimize external dependencies.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL は SendGrid API のベース URL
const DefaultBaseURL = "https://api.sendgrid.com"

// Mail は 1 通のメール送信リクエスト
type Mail struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Client は SendGrid API クライアントのインターフェース
type Client interface {
	// Send はメールを 1 回だけ送信する（リトライしない）
	Send(ctx context.Context, mail Mail) error
}

// RealClient は SendGrid API への raw HTTP クライアント実装
type RealClient struct {
	APIKey     string
	BaseURL    string
	httpClient *http.Client
}

// NewClient は RealClient を生成する
func NewClient(apiKey string) *RealClient {
	return &RealClient{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ErrNotConfigured は API キーが設定されていない場合のエラー
var ErrNotConfigured = errors.New("sendgrid: API key is not configured")

// APIError is returned for a non-2xx response. Body holds the raw response
// payload for diagnostics.
type APIError struct {
	StatusCode int
	Messages   []string
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("sendgrid: status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("sendgrid: status %d", e.StatusCode)
}

type address struct {
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// Send は /v3/mail/send を呼び出す。202 以外はエラー
func (c *RealClient) Send(ctx context.Context, mail Mail) error {
	if c.APIKey == "" {
		return ErrNotConfigured
	}

	jsonBody, err := json.Marshal(sendRequest{
		Personalizations: []personalization{{To: []address{{Email: mail.To}}}},
		From:             address{Email: mail.From},
		Subject:          mail.Subject,
		Content:          []content{{Type: "text/html", Value: mail.HTML}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.BaseURL, "/")+"/v3/mail/send",
		bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	var result struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &result) == nil {
		for _, e := range result.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
	}
	return apiErr
}
