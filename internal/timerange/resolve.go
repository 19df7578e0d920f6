// Package timerange resolves symbolic range tokens into concrete time
// windows.
//
// Tokens like "30D" or "1Y" select a window ending now; "ALL" (or "max")
// starts at the network's hardcoded floor date. Unrecognized tokens never
// fail: the resolver silently falls back to its default token, matching
// how range pickers behave (a bad selection degrades to the default view,
// it does not error).
package timerange

import (
	"strconv"
	"strings"
	"time"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/util"
)

// DefaultToken is used when a token is unrecognized and no per-widget
// default was configured.
const DefaultToken = "1Y"

// Tokens returns the standard picker tokens in display order.
func Tokens() []string {
	return []string{"7D", "30D", "1M", "3M", "6M", "1Y", "ALL"}
}

// Resolver maps range tokens to windows. The zero value is not usable;
// construct with New.
type Resolver struct {
	now          func() time.Time
	defaultToken string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNow overrides the clock. Intended for testing and for callers that
// freeze "now" across several resolutions.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithDefaultToken sets the token used for unrecognized input. Widgets
// whose pickers default to 90 days pass "90" here.
func WithDefaultToken(token string) Option {
	return func(r *Resolver) {
		r.defaultToken = token
	}
}

// New returns a Resolver with the real clock and the package default
// token.
func New(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now, defaultToken: DefaultToken}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps a token to a concrete window for the given network. The
// window's End is always now; Start is truncated to UTC midnight so that
// date-keyed queries and floor constants line up exactly.
func (r *Resolver) Resolve(token string, network domain.Network) domain.RangeWindow {
	return r.resolve(token, network.Floor)
}

// ResolveMetric is Resolve with the metric's floor override applied:
// metrics whose history starts later than the chain (e.g. staking data)
// carry their own "ALL" floor.
func (r *Resolver) ResolveMetric(token string, network domain.Network, metric domain.Metric) domain.RangeWindow {
	floor := network.Floor
	if !metric.Floor.IsZero() {
		floor = metric.Floor
	}
	return r.resolve(token, floor)
}

func (r *Resolver) resolve(token string, floor time.Time) domain.RangeWindow {
	end := r.now().UTC()
	start, ok := startFor(token, end, floor)
	if !ok {
		// Silent default, not an error: fall through exactly once.
		start, ok = startFor(r.defaultToken, end, floor)
		if !ok {
			start, _ = startFor(DefaultToken, end, floor)
		}
	}

	start = truncateDay(start)
	if start.After(end) {
		start = truncateDay(end)
	}

	return domain.RangeWindow{
		Start:  start,
		End:    end,
		Bucket: bucketFor(start, end),
	}
}

// startFor computes the window start for a token, reporting false for
// unrecognized tokens.
func startFor(token string, end, floor time.Time) (time.Time, bool) {
	switch util.NormalizeKey(token) {
	case "7d":
		return end.AddDate(0, 0, -7), true
	case "30d":
		return end.AddDate(0, 0, -30), true
	case "90d":
		return end.AddDate(0, 0, -90), true
	case "1m":
		return end.AddDate(0, -1, 0), true
	case "3m":
		return end.AddDate(0, -3, 0), true
	case "6m":
		return end.AddDate(0, -6, 0), true
	case "1y":
		return end.AddDate(-1, 0, 0), true
	case "all", "max":
		return floor, true
	}

	// A couple of pickers use bare day counts ("7", "90", "365").
	if n, err := strconv.Atoi(strings.TrimSpace(token)); err == nil && n > 0 {
		return end.AddDate(0, 0, -n), true
	}

	return time.Time{}, false
}

// bucketFor picks the grouping granularity by window span: short windows
// chart daily rows as-is, longer ones group to weeks, multi-year to
// months. Six calendar months never exceed 184 days, so "6M" stays daily.
func bucketFor(start, end time.Time) domain.Bucket {
	days := int(end.Sub(start) / (24 * time.Hour))
	switch {
	case days <= 184:
		return domain.BucketDay
	case days <= 730:
		return domain.BucketWeek
	default:
		return domain.BucketMonth
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
