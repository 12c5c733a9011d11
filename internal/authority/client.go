package authority

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fieldtel/internal/config"
	"fieldtel/internal/constants"
	"fieldtel/internal/logger"
	"fieldtel/pkg/circuitbreaker"
	"fieldtel/pkg/metrics"
)

// Client looks a machine up in the external machine authority. Only the
// call outcome is used: a 2xx response means the machine is known, anything
// else is a validation failure. Callers treat all failures as fail-closed.
type Client struct {
	baseURL string
	client  *http.Client
	breaker *circuitbreaker.Wrapper
	logger  logger.Logger
}

func NewClient(cfg config.AuthorityConfig, breaker *circuitbreaker.Wrapper, log logger.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
		logger:  log,
	}
}

// Validate resolves the machine by its numeric id. A nil return is the only
// success signal; the response body is discarded.
func (c *Client) Validate(ctx context.Context, machineID int) error {
	start := time.Now()

	var err error
	if c.breaker != nil {
		_, err = c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
			return nil, c.lookup(ctx, machineID)
		})
	} else {
		err = c.lookup(ctx, machineID)
	}

	metrics.ObserveAuthorityDuration(time.Since(start))
	if err != nil {
		metrics.AuthorityRequestsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.AuthorityRequestsTotal.WithLabelValues("success").Inc()
	return nil
}

func (c *Client) lookup(ctx context.Context, machineID int) error {
	url := fmt.Sprintf("%s/machines/%d", c.baseURL, machineID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create authority request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("authority request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return fmt.Errorf("authority returned status %d for machine %d", resp.StatusCode, machineID)
	}

	return nil
}
