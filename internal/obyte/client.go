// Package obyte talks to the chat bot that bridges PolloPollo and the Obyte network.
package obyte

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Client calls the chat bot's HTTP endpoints
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// DonorBalance asks the bot for the balance of an autonomous agent donor account.
// The HTTP status is returned alongside so callers can relay it; the balance is only
// meaningful for a 2xx status.
func (c *Client) DonorBalance(ctx context.Context, aaAccount string) (int64, int, error) {
	body, err := json.Marshal(map[string]string{"aaAccount": aaAccount})
	if err != nil {
		return 0, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/aaGetDonorBalance", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build balance request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("balance request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, resp.StatusCode, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, resp.StatusCode, fmt.Errorf("read balance: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return 0, resp.StatusCode, fmt.Errorf("balance response is not JSON: %q", raw)
	}
	return gjson.ParseBytes(raw).Int(), resp.StatusCode, nil
}
