package boardstore

import "time"

// Board is a saved dashboard layout: which network and metrics to show and
// over what range. Boards are keyed by name so they can be reopened with
// `chainpulse board open <name>` or `chainpulse dash --board <name>`.
type Board struct {
	// ID is the auto-increment primary key (assigned on insert).
	ID int64

	// Name uniquely identifies the board, e.g. "avax-health".
	Name string

	// Network is the network slug the board is pinned to.
	Network string

	// Metrics lists the metric slugs shown on the board, in display order.
	Metrics []string

	// Range is the range token the board opens with, e.g. "90D".
	Range string

	// UpdatedAt is the last time the board was saved.
	UpdatedAt time.Time
}
