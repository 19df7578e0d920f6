package sources

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/retry"
)

// statusError maps a non-2xx HTTP response to a wrapped domain sentinel.
// 429 responses carry their Retry-After hint so the retry layer can wait
// the amount the server asked for.
func statusError(source string, status int, detail string, header http.Header) error {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w: %s", source, domain.ErrUnauthorized, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %s", source, domain.ErrNotFound, detail)
	case status == http.StatusTooManyRequests:
		err := fmt.Errorf("%s: %w: %s", source, domain.ErrRateLimited, detail)
		if wait := retryAfter(header); wait > 0 {
			return &retry.RateLimitError{RetryAfter: wait, Err: err}
		}
		return err
	case status >= 500:
		return fmt.Errorf("%s: %w: %s", source, domain.ErrUnavailable, detail)
	}
	return fmt.Errorf("%s: unexpected status %d: %s", source, status, detail)
}

// retryAfter parses a Retry-After header as either delay seconds or an
// HTTP date. Returns 0 when absent or unparseable.
func retryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}

// rowDate parses the date encodings the upstream APIs emit: plain dates,
// RFC3339 timestamps, and unix seconds as a number or numeric string.
func rowDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04:05.000 UTC"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
	case float64:
		return time.Unix(int64(d), 0).UTC(), true
	case int64:
		return time.Unix(d, 0).UTC(), true
	}
	return time.Time{}, false
}
