// internal/app/system/extract/httpextractor.go
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// HTTPExtractor calls an extraction endpoint that wraps the language
// model. The endpoint receives the raw text plus a base date for
// resolving relative day references, and returns zero or more items.
// Transient failures are retried with exponential backoff before the
// error is surfaced to the pipeline.
type HTTPExtractor struct {
	endpoint string
	apiKey   string
	hc       *http.Client
	log      *zap.Logger
}

func NewHTTPExtractor(endpoint, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPExtractor {
	return &HTTPExtractor{
		endpoint: endpoint,
		apiKey:   apiKey,
		hc:       &http.Client{Timeout: timeout},
		log:      logger,
	}
}

type extractRequest struct {
	Text string `json:"text"`
	Base string `json:"base_date"` // YYYY-MM-DD
}

type extractResponse struct {
	Items []Item `json:"items"`
}

func (e *HTTPExtractor) Extract(ctx context.Context, text string, base time.Time) ([]Item, error) {
	body, err := json.Marshal(extractRequest{Text: text, Base: base.Format("2006-01-02")})
	if err != nil {
		return nil, err
	}

	var out extractResponse
	op := func() error {
		var oerr error
		out, oerr = e.doOnce(ctx, body)
		return oerr
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}

	// Fill defaults the model tends to omit.
	for i := range out.Items {
		if out.Items[i].Action == "" {
			out.Items[i].Action = ActionSave
		}
		if out.Items[i].Date == "" {
			out.Items[i].Date = base.Format("2006-01-02")
		}
	}
	return out.Items, nil
}

func (e *HTTPExtractor) doOnce(ctx context.Context, body []byte) (extractResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return extractResponse{}, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	res, err := e.hc.Do(req)
	if err != nil {
		return extractResponse{}, fmt.Errorf("extract call: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
		return extractResponse{}, fmt.Errorf("extract call: status %d", res.StatusCode)
	}
	if res.StatusCode != http.StatusOK {
		return extractResponse{}, backoff.Permanent(fmt.Errorf("extract call: status %d", res.StatusCode))
	}

	var out extractResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return extractResponse{}, backoff.Permanent(fmt.Errorf("extract call: decode: %w", err))
	}
	return out, nil
}

var _ Extractor = (*HTTPExtractor)(nil)
