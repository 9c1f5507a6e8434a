// Package jobs holds the background work scheduled next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// RateStore persists the GBYTE/USD rate
type RateStore interface {
	Set(ctx context.Context, gbyteUSD float64) error
}

// ExchangeRateJob pulls the GBYTE/USD rate from a JSON price feed
type ExchangeRateJob struct {
	feedURL string
	path    string // gjson path of the rate in the feed document
	store   RateStore
	http    *http.Client
}

func NewExchangeRateJob(feedURL, path string, store RateStore, httpClient *http.Client) *ExchangeRateJob {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &ExchangeRateJob{feedURL: feedURL, path: path, store: store, http: httpClient}
}

// Refresh fetches the feed once and stores the rate found at the configured path
func (j *ExchangeRateJob) Refresh(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.feedURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build feed request: %w", err)
	}
	resp, err := j.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch price feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price feed answered %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read price feed: %w", err)
	}
	value := gjson.GetBytes(raw, j.path)
	if !value.Exists() || value.Float() <= 0 {
		return 0, fmt.Errorf("price feed has no rate at %q", j.path)
	}
	rate := value.Float()
	if err := j.store.Set(ctx, rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// Schedule registers the job on c with a cron spec such as "@every 10m"
func (j *ExchangeRateJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		rate, err := j.Refresh(ctx)
		if err != nil {
			logrus.WithFields(logrus.Fields{"feed": j.feedURL, "error": err.Error()}).Warn("Exchange rate refresh failed")
			return
		}
		logrus.WithField("gbyte_usd", rate).Info("Exchange rate refreshed")
	})
}
