// internal/adapter/social/client.go

package social

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ecodash/internal/domain/post"
)

const defaultTimeout = 10 * time.Second

// checkStatus converts a non-2xx response into an error. Credential and
// quota rejections are reported as an unavailable source.
func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	detail := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s returned status code %d", post.ErrSourceUnavailable, provider, resp.StatusCode)
	}
	return fmt.Errorf("%s returned status code %d: %s", provider, resp.StatusCode, detail)
}

// decodeJSON decodes a successful response body into v
func decodeJSON(provider string, resp *http.Response, v interface{}) error {
	if err := checkStatus(provider, resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}

// unreachable wraps a transport error as an unavailable source
func unreachable(provider string, err error) error {
	return fmt.Errorf("%w: failed to connect to %s: %v", post.ErrSourceUnavailable, provider, err)
}
