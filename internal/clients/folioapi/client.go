// Package folioapi provides the HTTP client for the portfolio data API.
package folioapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/castellan/foliodash/internal/domain"
	"github.com/castellan/foliodash/internal/modules/transactions"
)

const (
	maxAttempts      = 3
	retryBackoffBase = 1 * time.Second
)

// Client talks to the portfolio data API. Reads are retried with
// exponential backoff; mutations are issued exactly once.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	// backoff is replaced in tests to avoid real sleeps.
	backoff func(attempt int) time.Duration
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:3000").
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("client", "folioapi").Logger(),
		backoff: func(attempt int) time.Duration {
			return retryBackoffBase << (attempt - 1)
		},
	}
}

// GetPortfolios fetches all portfolios.
func (c *Client) GetPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	var portfolios []domain.Portfolio
	if err := c.getJSON(ctx, "/api/portfolios", nil, &portfolios, nil); err != nil {
		return nil, err
	}
	return portfolios, nil
}

// GetPortfolio fetches a single portfolio by id.
func (c *Client) GetPortfolio(ctx context.Context, id string) (domain.Portfolio, error) {
	var portfolio domain.Portfolio
	if err := c.getJSON(ctx, "/api/portfolios/"+id, nil, &portfolio, nil); err != nil {
		return domain.Portfolio{}, err
	}
	return portfolio, nil
}

// GetPositions fetches positions, optionally scoped to one portfolio.
// An empty portfolioID fetches positions across all portfolios.
func (c *Client) GetPositions(ctx context.Context, portfolioID string) ([]domain.Position, error) {
	query := url.Values{}
	if portfolioID != "" {
		query.Set("portfolioId", portfolioID)
	}

	var positions []domain.Position
	if err := c.getJSON(ctx, "/api/positions", query, &positions, nil); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetTransactionsPage fetches one page of transactions. The total
// matching count comes from the X-Total-Count response header.
func (c *Client) GetTransactionsPage(ctx context.Context, req transactions.PageRequest) (transactions.Page, error) {
	q, err := transactions.BuildQuery(req)
	if err != nil {
		return transactions.Page{}, err
	}

	var records []domain.Transaction
	var header http.Header
	if err := c.getJSON(ctx, "/api/transactions", q.Values(), &records, &header); err != nil {
		return transactions.Page{}, err
	}
	return transactions.UnpackPage(records, header.Get("X-Total-Count")), nil
}

// CreatePortfolio creates a portfolio and returns the server's record,
// including the assigned identifier.
func (c *Client) CreatePortfolio(ctx context.Context, draft domain.PortfolioDraft) (domain.Portfolio, error) {
	var created domain.Portfolio
	if err := c.writeJSON(ctx, http.MethodPost, "/api/portfolios", draft, &created); err != nil {
		return domain.Portfolio{}, err
	}
	return created, nil
}

// UpdatePortfolio applies a partial update and returns the updated record.
func (c *Client) UpdatePortfolio(ctx context.Context, id string, patch domain.PortfolioPatch) (domain.Portfolio, error) {
	var updated domain.Portfolio
	if err := c.writeJSON(ctx, http.MethodPatch, "/api/portfolios/"+id, patch, &updated); err != nil {
		return domain.Portfolio{}, err
	}
	return updated, nil
}

// DeletePortfolio removes a portfolio.
func (c *Client) DeletePortfolio(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, "/api/portfolios/"+id, nil, nil)
}

// getJSON issues a GET with retries and decodes the response body into
// out. When header is non-nil it receives the response headers of the
// successful attempt.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}, header *http.Header) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return &domain.AppError{Kind: domain.NetworkFailure, Message: err.Error(), URL: reqURL}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &domain.AppError{Kind: domain.NetworkFailure, Message: err.Error(), URL: reqURL}
		} else {
			lastErr = c.decodeResponse(resp, reqURL, out, header)
			if lastErr == nil {
				return nil
			}
		}

		// Client errors are permanent; retrying cannot help.
		if !domain.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt < maxAttempts {
			delay := c.backoff(attempt)
			c.log.Warn().
				Err(lastErr).
				Str("url", reqURL).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Request failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &domain.AppError{Kind: domain.NetworkFailure, Message: ctx.Err().Error(), URL: reqURL}
			}
		}
	}
	return lastErr
}

// writeJSON issues a non-GET request exactly once. Mutations are not
// retried because a timed-out attempt may still have been applied.
func (c *Client) writeJSON(ctx context.Context, method, path string, body, out interface{}) error {
	reqURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &domain.AppError{Kind: domain.ValidationFailure, Message: fmt.Sprintf("failed to encode request body: %v", err), URL: reqURL}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return &domain.AppError{Kind: domain.NetworkFailure, Message: err.Error(), URL: reqURL}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.AppError{Kind: domain.NetworkFailure, Message: err.Error(), URL: reqURL}
	}
	return c.decodeResponse(resp, reqURL, out, nil)
}

// decodeResponse maps the HTTP status onto the error taxonomy and
// decodes a successful body into out when requested.
func (c *Client) decodeResponse(resp *http.Response, reqURL string, out interface{}, header *http.Header) error {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return &domain.AppError{
			Kind:    domain.ServerError,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
			URL:     reqURL,
		}
	case resp.StatusCode >= 400:
		io.Copy(io.Discard, resp.Body)
		return &domain.AppError{
			Kind:    domain.ClientError,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
			URL:     reqURL,
		}
	}

	if header != nil {
		*header = resp.Header
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.AppError{
			Kind:    domain.ServerError,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("failed to parse response: %v", err),
			URL:     reqURL,
		}
	}
	return nil
}
