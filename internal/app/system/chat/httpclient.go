// internal/app/system/chat/httpclient.go
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rollcallhq/rollcall/internal/domain/models"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// HTTPClient talks to the chat platform's web API. Calls are retried
// with exponential backoff on transient failures and wrapped in a
// circuit breaker so a platform outage cannot pile up workers behind
// timed-out requests.
type HTTPClient struct {
	baseURL string
	token   string
	hc      *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "chat-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: timeout},
		breaker: cb,
		log:     logger,
	}
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	TS         string `json:"ts,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`

	Messages []models.Message `json:"messages,omitempty"`

	User struct {
		Profile struct {
			Email string `json:"email"`
		} `json:"profile"`
	} `json:"user,omitempty"`

	BotUserID string `json:"bot_user_id,omitempty"`
}

func (c *HTTPClient) call(ctx context.Context, method string, body any) (apiResponse, error) {
	var resp apiResponse

	op := func() error {
		res, err := c.breaker.Execute(func() (any, error) {
			return c.doOnce(ctx, method, body)
		})
		if err != nil {
			return err
		}
		resp = res.(apiResponse)
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return apiResponse{}, fmt.Errorf("chat api %s: %w", method, err)
	}
	if !resp.OK {
		return apiResponse{}, fmt.Errorf("chat api %s: %s", method, resp.Error)
	}
	return resp, nil
}

func (c *HTTPClient) doOnce(ctx context.Context, method string, body any) (apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return apiResponse{}, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return apiResponse{}, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.hc.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
		return apiResponse{}, fmt.Errorf("chat api %s: status %d", method, res.StatusCode)
	}

	var out apiResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return apiResponse{}, backoff.Permanent(err)
	}
	return out, nil
}

func (c *HTTPClient) PostMessage(ctx context.Context, tenantID, channelID, threadTS, text string) (string, error) {
	resp, err := c.call(ctx, "chat.postMessage", map[string]string{
		"team_id":   tenantID,
		"channel":   channelID,
		"thread_ts": threadTS,
		"text":      text,
	})
	if err != nil {
		return "", err
	}
	return resp.TS, nil
}

func (c *HTTPClient) UpdateMessage(ctx context.Context, tenantID, channelID, ts, text string) error {
	_, err := c.call(ctx, "chat.update", map[string]string{
		"team_id": tenantID,
		"channel": channelID,
		"ts":      ts,
		"text":    text,
	})
	return err
}

func (c *HTTPClient) PostEphemeral(ctx context.Context, tenantID, channelID, userID, text string) error {
	_, err := c.call(ctx, "chat.postEphemeral", map[string]string{
		"team_id": tenantID,
		"channel": channelID,
		"user":    userID,
		"text":    text,
	})
	return err
}

func (c *HTTPClient) History(ctx context.Context, tenantID, channelID, oldest, cursor string) (HistoryPage, error) {
	resp, err := c.call(ctx, "conversations.history", map[string]string{
		"team_id": tenantID,
		"channel": channelID,
		"oldest":  oldest,
		"cursor":  cursor,
	})
	if err != nil {
		return HistoryPage{}, err
	}

	msgs := resp.Messages
	for i := range msgs {
		msgs[i].TenantID = tenantID
		msgs[i].ChannelID = channelID
	}
	return HistoryPage{Messages: msgs, NextCursor: resp.NextCursor}, nil
}

func (c *HTTPClient) UserEmail(ctx context.Context, tenantID, userID string) (string, error) {
	resp, err := c.call(ctx, "users.info", map[string]string{
		"team_id": tenantID,
		"user":    userID,
	})
	if err != nil {
		// Identity matching is best-effort; log and degrade to user id.
		c.log.Warn("user email lookup failed",
			zap.String("tenant_id", tenantID),
			zap.String("user_id", userID),
			zap.Error(err))
		return "", nil
	}
	return resp.User.Profile.Email, nil
}

func (c *HTTPClient) BotUserID(ctx context.Context, tenantID string) (string, error) {
	resp, err := c.call(ctx, "auth.test", map[string]string{"team_id": tenantID})
	if err != nil {
		return "", err
	}
	return resp.BotUserID, nil
}

var _ Client = (*HTTPClient)(nil)
