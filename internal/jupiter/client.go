package jupiter

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// QuoteClientInterface defines the interface for the Jupiter quote API client.
type QuoteClientInterface interface {
	// GetQuote asks the provider how much of outputMint would be received for
	// amount of inputMint. Amount is expressed in whole-token units; the
	// client handles the smallest-unit conversion in both directions.
	GetQuote(ctx context.Context, inputMint, outputMint string, amount float64, slippageBps int) (float64, error)
}

// Client is a client for the Jupiter V6 quote API.
// It implements the QuoteClientInterface.
type Client struct {
	client     *resty.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
	unitScale  float64
}

// ensure Client implements the interface
var _ QuoteClientInterface = (*Client)(nil)

// quoteResponse is the subset of the quote payload the simulator needs.
// Jupiter encodes amounts as decimal strings of smallest units.
type quoteResponse struct {
	OutAmount string `json:"outAmount"`
}

// NewClient creates a new Jupiter quote API client.
func NewClient(cfg *config.Jupiter, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	// Initialize the rate limiter
	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:     client,
		logger:     logger,
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		unitScale:  math.Pow(10, float64(cfg.UnitDecimals)),
	}
}

// GetQuote fetches a swap quote for the given pair and amount.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount float64, slippageBps int) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("quote amount must be positive, got %f", amount)
	}

	smallestUnits := int64(amount * c.unitScale)

	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   inputMint,
			"outputMint":  outputMint,
			"amount":      strconv.FormatInt(smallestUnits, 10),
			"slippageBps": strconv.Itoa(slippageBps),
		}).
		SetResult(&quoteResponse{})

	resp, err := c.doRequest(ctx, "GET", "/quote", req)
	if err != nil {
		c.logger.Error("Failed to fetch quote",
			zap.String("input_mint", inputMint),
			zap.String("output_mint", outputMint),
			zap.Error(err),
		)
		return 0, fmt.Errorf("failed to fetch quote: %w", err)
	}

	result := resp.Result().(*quoteResponse)
	outUnits, err := strconv.ParseFloat(result.OutAmount, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed quote payload: outAmount %q: %w", result.OutAmount, err)
	}

	return outUnits / c.unitScale, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
// The retry budget comes from configuration; zero means a single attempt, so the
// caller's no-retry contract holds unless retries are asked for explicitly.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	attempts := c.maxRetries + 1

	for i := 0; i < attempts; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if i == attempts-1 {
			break
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
	}
	return nil, fmt.Errorf("request failed after %d attempts with status %s: %s", attempts, resp.Status(), resp.String())
}
