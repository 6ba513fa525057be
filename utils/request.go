package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultRetryTimes    = 5
	DefaultRetryInterval = 100 * time.Millisecond
	DefaultTimeout       = 30 * time.Second
)

func PostUrlResponse(ctx context.Context, url string, body any, result any, logger *slog.Logger) error {
	return PostUrlResponseWithRetry(ctx, url, body, result, 1, logger)
}

func PostUrlResponseWithRetry(ctx context.Context, url string, body any, result any, retry int, logger *slog.Logger) error {
	var lastErr error
	for i := 0; i < retry; i++ {
		lastErr = doPost(ctx, url, body, result)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		logger.Warn("POST request failed, retrying...", "url", url, "attempt", i+1, "err", lastErr)
		time.Sleep(DefaultRetryInterval)
	}
	return fmt.Errorf("POST request failed after %d attempts: %w", retry, lastErr)
}

func doPost(ctx context.Context, url string, body any, result any) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal POST body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyResp, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST request returned status %d: %s", resp.StatusCode, string(bodyResp))
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("failed to stream and unmarshal POST response: %w", err)
	}

	return nil
}
