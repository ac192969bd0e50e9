package slibuy

import (
	"context"
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"slibuy-scraper/config"
	"slibuy-scraper/utils"
)

// Client fetches pages without rendering them. It is used where the server
// HTML is enough: the page-count probe and single-listing refreshes.
type Client struct {
	http  *resty.Client
	retry *utils.RetryConfig
}

// NewClient creates a Client with the configured timeout, user agent and retry policy.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetHeader("User-Agent", cfg.UserAgent)

	return &Client{
		http: client,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Get returns the body of pageURL, retrying failed requests.
func (c *Client) Get(ctx context.Context, pageURL string) (string, error) {
	var body string
	err := c.retry.Do(ctx, "GET "+pageURL, func(ctx context.Context) error {
		res, err := c.http.R().
			SetContext(ctx).
			Get(pageURL)
		if err != nil {
			return err
		}
		if res.IsError() {
			return fmt.Errorf("unexpected status %d", res.StatusCode())
		}
		body = res.String()
		return nil
	})
	return body, err
}
